package main

import (
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	expected := []string{"login", "logout", "whoami", "task", "users", "ocr", "config", "test-notify"}
	for _, name := range expected {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("root command is missing %q", name)
		}
	}
}

func TestTaskCommandRegistersTransitions(t *testing.T) {
	root := newRootCommand()
	names := make(map[string]bool)

	for _, cmd := range root.Commands() {
		if cmd.Name() != "task" {
			continue
		}
		for _, sub := range cmd.Commands() {
			names[sub.Name()] = true
		}
	}
	if len(names) == 0 {
		t.Fatal("task command not registered")
	}
	for _, name := range []string{"start", "submit", "approve", "deny", "list", "add", "download", "assigned"} {
		if !names[name] {
			t.Fatalf("task command is missing %q", name)
		}
	}
}

func TestParseTaskIDRejectsGarbage(t *testing.T) {
	if _, err := parseTaskID("abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
	if _, err := parseTaskID("-3"); err == nil {
		t.Fatal("expected error for negative id")
	}
	id, err := parseTaskID(" 42 ")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d err %v", id, err)
	}
}
