package progtest

import (
	"os"
	"testing"

	"github.com/thistle-tpl/thistle/pkg/prog"
)

// Verify we don't deadlock if more output is written to stdout than can be
// buffered by a pipe.
func TestOutputCaptureDoesNotDeadlock(t *testing.T) {
	Test(t, noisyProgram{},
		ThatThistle().WritesStdoutContaining("hello"),
	)
}

type noisyProgram struct{}

func (noisyProgram) RegisterFlags(f *prog.FlagSet) {}

func (noisyProgram) Run(fds [3]*os.File, args []string) error {
	// We need enough data to verify whether we're likely to deadlock due to
	// filling the pipe before the test completes. Pipes typically buffer 8 to
	// 128 KiB.
	bytes := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	for i := 0; i < 128*1024/len(bytes); i++ {
		fds[1].Write(bytes)
	}
	fds[1].WriteString("hello")
	return nil
}

func TestRun(t *testing.T) {
	exit, stdout, stderr := Run(echoProgram{}, "a", "b")
	if exit != 0 || stdout != "a b\n" || stderr != "" {
		t.Errorf("Run -> (%v, %q, %q), want (0, %q, %q)",
			exit, stdout, stderr, "a b\n", "")
	}
}

func TestWithStdin(t *testing.T) {
	Test(t, catProgram{},
		ThatThistle().WithStdin("foo").WritesStdout("foo"),
	)
}

type echoProgram struct{}

func (echoProgram) RegisterFlags(f *prog.FlagSet) {}

func (echoProgram) Run(fds [3]*os.File, args []string) error {
	for i, arg := range args {
		if i > 0 {
			fds[1].WriteString(" ")
		}
		fds[1].WriteString(arg)
	}
	fds[1].WriteString("\n")
	return nil
}

type catProgram struct{}

func (catProgram) RegisterFlags(f *prog.FlagSet) {}

func (catProgram) Run(fds [3]*os.File, args []string) error {
	buf := make([]byte, 64)
	n, _ := fds[0].Read(buf)
	fds[1].Write(buf[:n])
	return nil
}
