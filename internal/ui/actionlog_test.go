package ui

import (
	"errors"
	"fmt"
	"testing"
)

func TestActionLogAppendAndListLimit(t *testing.T) {
	s := NewActionLogStore(3)
	for i := 0; i < 5; i++ {
		s.Append("alice", "assign", fmt.Sprintf("user=%d", i), nil)
	}
	got := s.List("alice", 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Target != "user=2" || got[2].Target != "user=4" {
		t.Fatalf("wrong entries kept: %+v", got)
	}
	if len(s.List("bob", 0)) != 0 {
		t.Fatalf("users must not share logs")
	}
}

func TestDescribe(t *testing.T) {
	s := NewActionLogStore(5)
	s.Append("alice", "reminder", "task=4", errors.New("bereits heute gesendet"))
	if got := Describe(s.List("alice", 1)[0]); got != "reminder task=4 → bereits heute gesendet" {
		t.Fatalf("Describe=%q", got)
	}
}
