package cli

import (
	"strings"
	"testing"
)

func TestPromptPassword_FailsWithoutTerminal(t *testing.T) {
	// Test processes never have a terminal on stdin.
	_, err := promptPassword("crawler")
	if err == nil {
		t.Fatal("Expected error when stdin is not a terminal")
	}
	if !strings.Contains(err.Error(), "not a terminal") {
		t.Errorf("Expected terminal error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "PGPASSWORD") {
		t.Errorf("Expected the error to name the alternatives, got: %v", err)
	}
}

func TestCrawlCommands_PasswordPromptFlag(t *testing.T) {
	for _, cmd := range []string{"geo", "arrayexpress", "all", "reset"} {
		for _, c := range rootCmd.Commands() {
			if c.Name() != cmd {
				continue
			}
			flag := c.Flags().Lookup("password-prompt")
			if flag == nil {
				t.Errorf("%s missing --password-prompt", cmd)
				continue
			}
			if flag.Shorthand != "W" {
				t.Errorf("%s --password-prompt shorthand = %q, want W", cmd, flag.Shorthand)
			}
		}
	}
}
