package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}

	if versionCmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", versionCmd.Use)
	}

	if versionCmd.Short != "Print version information" {
		t.Errorf("Unexpected Short: %s", versionCmd.Short)
	}
}

func TestVersionOutput(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, []string{})

	output := buf.String()
	if !strings.Contains(output, "newscast version") {
		t.Errorf("version output missing header: %q", output)
	}
	if !strings.Contains(output, "commit:") {
		t.Errorf("version output missing commit: %q", output)
	}
}

func TestRootCommandWiring(t *testing.T) {
	want := []string{"scripts", "render", "anchor", "build", "serve", "run", "config", "version", "completion"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q not registered on root", name)
		}
	}
}

func TestRootGlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "output", "debug"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag not found on root command", name)
		}
	}
}

func TestConfigSubcommands(t *testing.T) {
	want := []string{"show", "init", "set", "set-key"}

	registered := make(map[string]bool)
	for _, c := range configCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("config subcommand %q not registered", name)
		}
	}
}

func TestValueOrDefault(t *testing.T) {
	if got := valueOrDefault("", "(not set)"); got != "(not set)" {
		t.Errorf("valueOrDefault empty = %q", got)
	}
	if got := valueOrDefault("KXOB", "(not set)"); got != "KXOB" {
		t.Errorf("valueOrDefault non-empty = %q", got)
	}
}
