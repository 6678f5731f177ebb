// ABOUTME: Tests for ContextItem validation, kinds, and content hashing
// ABOUTME: Verifies tag helpers used by scope filtering and transfer linking
package models

import (
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Kind
		wantErr bool
	}{
		{name: "conversation", input: "conversation", want: KindConversation},
		{name: "decision", input: "decision", want: KindDecision},
		{name: "code pattern", input: "code_pattern", want: KindCodePattern},
		{name: "anti pattern", input: "anti_pattern", want: KindAntiPattern},
		{name: "unknown kind", input: "poem", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "wrong case", input: "Decision", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestContextItem_Validate(t *testing.T) {
	valid := ContextItem{
		ProjectID: "proj_1",
		Kind:      KindCodePattern,
		Content:   "func retry() {}",
	}

	tests := []struct {
		name    string
		mutate  func(*ContextItem)
		wantErr string
	}{
		{name: "valid item", mutate: func(i *ContextItem) {}},
		{name: "missing project", mutate: func(i *ContextItem) { i.ProjectID = "" }, wantErr: "project_id"},
		{name: "missing content", mutate: func(i *ContextItem) { i.Content = "" }, wantErr: "content"},
		{name: "bad kind", mutate: func(i *ContextItem) { i.Kind = "haiku" }, wantErr: "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid
			tt.mutate(&item)
			err := item.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestHashContent(t *testing.T) {
	a := HashContent("use context.WithTimeout for outbound calls")
	b := HashContent("use context.WithTimeout for outbound calls")
	c := HashContent("use context.WithTimeout for outbound calls ")

	if a != b {
		t.Errorf("identical content hashed differently: %s vs %s", a, b)
	}
	if a == c {
		t.Error("distinct content produced identical hashes")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestContextItem_Tags(t *testing.T) {
	item := ContextItem{TechnologyTags: []string{"go", "sqlite"}}
	other := ContextItem{TechnologyTags: []string{"python", "sqlite"}}
	disjoint := ContextItem{TechnologyTags: []string{"swift"}}

	if !item.HasTag("go") {
		t.Error("HasTag(go) = false, want true")
	}
	if item.HasTag("rust") {
		t.Error("HasTag(rust) = true, want false")
	}
	if !item.SharesTag(&other) {
		t.Error("SharesTag with overlapping tags = false, want true")
	}
	if item.SharesTag(&disjoint) {
		t.Error("SharesTag with disjoint tags = true, want false")
	}
}
