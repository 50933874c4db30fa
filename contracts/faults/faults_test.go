package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestModuleSentinelMatchesKind(t *testing.T) {
	errBoardNotFound := New(ErrNotFound, "board not found")
	wrapped := fmt.Errorf("load board 7: %w", errBoardNotFound)

	if !errors.Is(wrapped, errBoardNotFound) {
		t.Fatalf("expected wrapped error to match its sentinel")
	}
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("expected wrapped error to match its kind")
	}
	if errors.Is(wrapped, ErrConflict) {
		t.Fatalf("expected no match against an unrelated kind")
	}
	if Kind(wrapped) != ErrNotFound {
		t.Fatalf("expected kind not found, got %v", Kind(wrapped))
	}
	if Kind(errors.New("boom")) != nil {
		t.Fatalf("expected nil kind for unclassified error")
	}
}
