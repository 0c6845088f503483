package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/strrl/typerace/cmd/typerace/commands"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"typerace": commands.Run,
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			homeDir := filepath.Join(env.WorkDir, "home")
			if err := os.MkdirAll(filepath.Join(homeDir, ".config", "typerace"), 0o755); err != nil {
				return err
			}
			env.Setenv("HOME", homeDir)
			return nil
		},
	})
}
