package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-i2p/kdbxgo/cmd"
)

func TestExecute_Help(t *testing.T) {
	var buf bytes.Buffer
	err := cmd.ExecuteWithArgs([]string{"--help"})
	if err != nil {
		t.Fatalf("ExecuteWithArgs(--help): %v", err)
	}
	_ = buf // cobra writes help to os.Stdout directly; this test only checks
	// the root command parses --help without error.
}

func TestExecute_UnknownCommand(t *testing.T) {
	err := cmd.ExecuteWithArgs([]string{"not-a-real-subcommand"})
	if err == nil {
		t.Fatal("expected an error for an unknown subcommand")
	}
}

func TestSubcommands_NoLocalConfigFlag(t *testing.T) {
	for _, name := range []string{"inspect", "export", "fetch", "serve", "sign"} {
		if f := cmd.LookupFlag(name, "config"); f != nil {
			t.Errorf("LookupFlag(%q, \"config\") unexpectedly found a command-local flag; config is a persistent root flag", name)
		}
	}
}

func TestRootCmd_PersistentConfigFlag(t *testing.T) {
	if f := cmd.LookupFlag("", "config"); f == nil {
		t.Fatal("expected the persistent --config flag on the root command")
	}
}

func TestInspectCmd_RequiresArg(t *testing.T) {
	err := cmd.ExecuteWithArgs([]string{"inspect"})
	if err == nil {
		t.Fatal("expected an error when inspect is run without a file argument")
	}
	if !strings.Contains(err.Error(), "arg") {
		t.Errorf("error = %q, want a message about the missing argument", err.Error())
	}
}

func TestExportCmd_RequiresArg(t *testing.T) {
	err := cmd.ExecuteWithArgs([]string{"export"})
	if err == nil {
		t.Fatal("expected an error when export is run without a file argument")
	}
}

func TestFetchCmd_RequiresArg(t *testing.T) {
	err := cmd.ExecuteWithArgs([]string{"fetch"})
	if err == nil {
		t.Fatal("expected an error when fetch is run without a URL argument")
	}
}

func TestServeCmd_RequiresArg(t *testing.T) {
	err := cmd.ExecuteWithArgs([]string{"serve"})
	if err == nil {
		t.Fatal("expected an error when serve is run without a file argument")
	}
}

func TestSignCmd_RequiresArg(t *testing.T) {
	err := cmd.ExecuteWithArgs([]string{"sign"})
	if err == nil {
		t.Fatal("expected an error when sign is run without a file argument")
	}
}
