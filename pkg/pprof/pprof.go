// Package pprof adds profiling flags to the thistle command. Profiles cover
// whichever subprogram runs after this one, which is useful for measuring
// the compiler and linker on large templates.
package pprof

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/thistle-tpl/thistle/pkg/prog"
)

// Program adds support for the -cpuprofile and -allocsprofile flags.
type Program struct {
	cpuProfile    string
	allocsProfile string
}

func (p *Program) RegisterFlags(f *prog.FlagSet) {
	f.StringVar(&p.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	f.StringVar(&p.allocsProfile, "allocsprofile", "", "Write memory allocation profile to file")
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	var cleanups []func([3]*os.File)
	if p.cpuProfile != "" {
		if f, ok := create(fds, p.cpuProfile, "CPU profile"); ok {
			if err := pprof.StartCPUProfile(f); err != nil {
				fmt.Fprintln(fds[2], "Warning: cannot start CPU profiling:", err)
				f.Close()
			} else {
				cleanups = append(cleanups, func([3]*os.File) {
					pprof.StopCPUProfile()
					f.Close()
				})
			}
		}
	}
	if p.allocsProfile != "" {
		if f, ok := create(fds, p.allocsProfile, "memory allocation profile"); ok {
			cleanups = append(cleanups, func(fds [3]*os.File) {
				if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
					fmt.Fprintln(fds[2], "Warning: cannot write memory allocation profile:", err)
				}
				f.Close()
			})
		}
	}
	return prog.NextProgram(cleanups...)
}

func create(fds [3]*os.File, name, what string) (*os.File, bool) {
	f, err := os.Create(name)
	if err != nil {
		fmt.Fprintf(fds[2], "Warning: cannot create %s: %v\n", what, err)
		fmt.Fprintf(fds[2], "Continuing without %s.\n", what)
		return nil, false
	}
	return f, true
}
