package commands

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func TestGetCommands(t *testing.T) {
	want := []string{"server", "create-user", "disable-user", "version"}

	cmds := GetCommands()
	if len(cmds) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(cmds))
	}
	for i, cmd := range cmds {
		if cmd.Name != want[i] {
			t.Errorf("command %d: got %q, want %q", i, cmd.Name, want[i])
		}
		if cmd.Action == nil {
			t.Errorf("command %q has no action", cmd.Name)
		}
	}
}

func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range GlobalFlags() {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestBefore(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())

	if err := Before(newContext(t, "--log-level", "debug")); err != nil {
		t.Fatalf("Before: %v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", logrus.GetLevel())
	}

	if err := Before(newContext(t, "--log-level", "loud")); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}

func TestLoadDotEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(file, []byte("UNPLAYIT_TEST_FROM_FILE=file\nUNPLAYIT_TEST_PRESET=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UNPLAYIT_TEST_PRESET", "env")
	t.Setenv("UNPLAYIT_TEST_FROM_FILE", "")
	os.Unsetenv("UNPLAYIT_TEST_FROM_FILE")

	LoadDotEnv(file)

	if got := os.Getenv("UNPLAYIT_TEST_FROM_FILE"); got != "file" {
		t.Errorf("expected value from .env, got %q", got)
	}
	if got := os.Getenv("UNPLAYIT_TEST_PRESET"); got != "env" {
		t.Errorf("existing variables must win, got %q", got)
	}

	// a missing file is not an error
	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}
