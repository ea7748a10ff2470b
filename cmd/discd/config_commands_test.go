package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--path", target})
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[drive]") {
		t.Fatalf("sample config missing drive section:\n%s", data)
	}

	// Refuses to clobber an existing file.
	cmd2 := newConfigInitCommand()
	cmd2.SetArgs([]string{"--path", target})
	cmd2.SetOut(&bytes.Buffer{})
	if err := cmd2.Execute(); err == nil {
		t.Fatal("second init should refuse to overwrite")
	}
}

func TestConfigShowPrintsDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	flag := missing

	cmd := newConfigShowCommand(&flag)
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	rendered := out.String()
	if !strings.Contains(rendered, "defaults") || !strings.Contains(rendered, "device") {
		t.Fatalf("unexpected output:\n%s", rendered)
	}
}
