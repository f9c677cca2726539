package config

import "testing"

func TestParseArgsCompileBasic(t *testing.T) {
	opt, err := parseArgs([]string{"compile", "main.vx", "-o", "main.o", "-O", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if opt.Command != CmdCompile {
		t.Errorf("got command %v, want compile", opt.Command)
	}
	if opt.Src != "main.vx" {
		t.Errorf("got src %q, want main.vx", opt.Src)
	}
	if opt.Out != "main.o" {
		t.Errorf("got out %q, want main.o", opt.Out)
	}
	if opt.OptLevel != 2 {
		t.Errorf("got opt level %d, want 2", opt.OptLevel)
	}
}

func TestParseArgsRunAndCheck(t *testing.T) {
	for _, sub := range []struct {
		arg  string
		want Command
	}{
		{"run", CmdRun},
		{"check", CmdCheck},
	} {
		opt, err := parseArgs([]string{sub.arg, "main.vx"})
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", sub.arg, err)
		}
		if opt.Command != sub.want {
			t.Errorf("%s: got command %v, want %v", sub.arg, opt.Command, sub.want)
		}
	}
}

func TestParseArgsEmitFlags(t *testing.T) {
	opt, err := parseArgs([]string{"compile", "main.vx", "--emit-llvm", "--emit-asm"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !opt.EmitLLVM || !opt.EmitAsm {
		t.Errorf("expected both emit flags set, got %+v", opt)
	}
}

func TestParseArgsWorkspaceAndStdlibFlags(t *testing.T) {
	opt, err := parseArgs([]string{"compile", "main.vx", "--workspace", "/ws", "--stdlib", "/std"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if opt.WorkspaceRoot != "/ws" || opt.StdlibRoot != "/std" {
		t.Errorf("got roots %+v", opt)
	}
}

func TestParseArgsRejectsMissingSubcommand(t *testing.T) {
	if _, err := parseArgs(nil); err == nil {
		t.Fatal("expected an error for a missing subcommand")
	}
}

func TestParseArgsRejectsUnknownSubcommand(t *testing.T) {
	if _, err := parseArgs([]string{"frobnicate", "main.vx"}); err == nil {
		t.Fatal("expected an error for an unknown subcommand")
	}
}

func TestParseArgsRejectsMissingSourceFile(t *testing.T) {
	if _, err := parseArgs([]string{"compile"}); err == nil {
		t.Fatal("expected an error for a missing source path")
	}
}

func TestParseArgsRejectsBadOptLevel(t *testing.T) {
	if _, err := parseArgs([]string{"compile", "main.vx", "-O", "9"}); err == nil {
		t.Fatal("expected an error for an out-of-range optimization level")
	}
}

func TestParseArgsRejectsFlagMissingArgument(t *testing.T) {
	if _, err := parseArgs([]string{"compile", "main.vx", "-o"}); err == nil {
		t.Fatal("expected an error for -o with no argument")
	}
}
