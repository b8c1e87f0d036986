package buildinfo

import (
	"runtime/debug"
	"testing"

	. "github.com/thistle-tpl/thistle/pkg/prog/progtest"
	"github.com/thistle-tpl/thistle/pkg/tt"
)

func TestProgram(t *testing.T) {
	Test(t, &Program{},
		ThatThistle("-version").WritesStdout(Value.Version+"\n"),
		ThatThistle("-version", "-json").WritesStdout(`"`+Value.Version+`"`+"\n"),
		ThatThistle("-buildinfo").
			WritesStdout("Version: "+Value.Version+"\nGo version: "+Value.GoVersion+"\n"),
		ThatThistle("-buildinfo", "-json").WritesStdoutContaining(`"goversion":"`+Value.GoVersion+`"`),
		ThatThistle("template.html").
			ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}

// Builds a readBuildInfo function from VCS settings.
func vcs(revision, time, modified string) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: revision},
			{Key: "vcs.time", Value: time},
			{Key: "vcs.modified", Value: modified},
		}}, true
	}
}

func mainVersion(v string) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: v}}, true
	}
}

func noBuildInfo() (*debug.BuildInfo, bool) { return nil, false }

func TestDevVersion(t *testing.T) {
	const rev = "abcdef0123456789"
	tt.Test(t, tt.Fn("devVersion", devVersion).ArgsFmt("%q, %q, %p"), tt.Table{
		tt.Args("0.5.0", "", noBuildInfo).Rets("0.5.0-dev.unknown"),
		tt.Args("0.5.0", "", mainVersion("(devel)")).Rets("0.5.0-dev.unknown"),
		tt.Args("0.5.0", "", mainVersion("v0.4.2")).Rets("0.4.2"),
		tt.Args("0.5.0", "", vcs(rev, "2026-03-01T08:30:00Z", "false")).
			Rets("0.5.0-dev.0.20260301083000-abcdef012345"),
		tt.Args("0.5.0", "", vcs(rev, "2026-03-01T10:30:00+02:00", "true")).
			Rets("0.5.0-dev.0.20260301083000-abcdef012345-dirty"),
		tt.Args("0.5.0", "", vcs("abc", "2026-03-01T08:30:00Z", "false")).
			Rets("0.5.0-dev.unknown"),
		tt.Args("0.5.0", "", vcs(rev, "March first", "false")).Rets("0.5.0-dev.unknown"),
		tt.Args("0.5.0", "20260301083000-abcdef012345", noBuildInfo).
			Rets("0.5.0-dev.0.20260301083000-abcdef012345"),
	})
}

func TestAddVariant(t *testing.T) {
	tt.Test(t, tt.Fn("addVariant", addVariant), tt.Table{
		tt.Args("0.5.0", "").Rets("0.5.0"),
		tt.Args("0.5.0", "distro").Rets("0.5.0+distro"),
	})
}
