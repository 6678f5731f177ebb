// ABOUTME: Tests for project command structure
// ABOUTME: Verifies register and list subcommands and their flags

package commands

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestNewProjectCmd(t *testing.T) {
	cmd := NewProjectCmd()

	if cmd.Use != "project" {
		t.Errorf("Use = %q, want %q", cmd.Use, "project")
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
}

func TestProjectCmd_Subcommands(t *testing.T) {
	cmd := NewProjectCmd()

	var register, list *cobra.Command
	for _, sub := range cmd.Commands() {
		if strings.HasPrefix(sub.Use, "register") {
			register = sub
		}
		if sub.Use == "list" {
			list = sub
		}
	}

	if register == nil {
		t.Fatal("register subcommand not found")
	}
	if list == nil {
		t.Fatal("list subcommand not found")
	}

	if register.RunE == nil {
		t.Error("register should have RunE set")
	}
	if list.RunE == nil {
		t.Error("list should have RunE set")
	}
}

func TestProjectCmd_RegisterFlags(t *testing.T) {
	cmd := NewProjectCmd()

	var register *cobra.Command
	for _, sub := range cmd.Commands() {
		if strings.HasPrefix(sub.Use, "register") {
			register = sub
		}
	}
	if register == nil {
		t.Fatal("register subcommand not found")
	}

	tests := []struct {
		flagName string
		defValue string
	}{
		{"id", ""},
		{"root", ""},
		{"tech", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := register.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}
