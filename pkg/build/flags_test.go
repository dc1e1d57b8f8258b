// SPDX-License-Identifier: MIT
package build

import (
	"strings"
	"testing"
)

func TestInitializeDefaults(t *testing.T) {
	// Without ldflags the development defaults stand.
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	flags := GetBuildFlags()
	if flags.Name != "tuner" {
		t.Errorf("Default name should be tuner, got %q", flags.Name)
	}
	if flags.Version != "dev" {
		t.Errorf("Default version should be dev, got %q", flags.Version)
	}
}

func TestInitializeAppliesLdflags(t *testing.T) {
	origVersion := buildVersion
	origCommit := buildCommit
	defer func() {
		buildVersion = origVersion
		buildCommit = origCommit
		Initialize()
	}()

	buildVersion = "v1.2.3"
	buildCommit = "abcdef1"
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	flags := GetBuildFlags()
	if flags.Version != "v1.2.3" {
		t.Errorf("Version should be v1.2.3, got %q", flags.Version)
	}
	if flags.Commit != "abcdef1" {
		t.Errorf("Commit should be abcdef1, got %q", flags.Commit)
	}
}

func TestStringSummary(t *testing.T) {
	flags := &ldFlags{
		Name:    "tuner",
		Time:    "2025-04-13",
		Commit:  "abcdef1",
		Version: "v1.0.0",
	}

	s := flags.String()
	for _, want := range []string{"tuner", "v1.0.0", "abcdef1", "2025-04-13"} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary %q should contain %q", s, want)
		}
	}
}
