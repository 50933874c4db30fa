package roles

import "testing"

func TestBoardRoleOrdering(t *testing.T) {
	cases := []struct {
		held     BoardRole
		required BoardRole
		want     bool
	}{
		{BoardAdmin, BoardAdmin, true},
		{BoardAdmin, BoardEditor, true},
		{BoardAdmin, BoardViewer, true},
		{BoardEditor, BoardAdmin, false},
		{BoardEditor, BoardEditor, true},
		{BoardEditor, BoardViewer, true},
		{BoardViewer, BoardEditor, false},
		{BoardViewer, BoardViewer, true},
		{"", BoardViewer, false},
		{"OWNER", BoardViewer, false},
	}
	for _, tc := range cases {
		if got := tc.held.AtLeast(tc.required); got != tc.want {
			t.Fatalf("%q at least %q: expected %v, got %v", tc.held, tc.required, tc.want, got)
		}
	}
}

func TestWorkspaceRoleOrdering(t *testing.T) {
	if !WorkspaceOwner.AtLeast(WorkspaceAdmin) {
		t.Fatalf("expected owner to satisfy admin")
	}
	if WorkspaceMember.AtLeast(WorkspaceAdmin) {
		t.Fatalf("expected member not to satisfy admin")
	}
	if WorkspaceRole("").AtLeast(WorkspaceMember) {
		t.Fatalf("expected absent role to satisfy nothing")
	}
	if Sufficient(WorkspaceOwner, WorkspaceRole("bogus")) {
		t.Fatalf("expected invalid requirement to never be satisfied")
	}
}

func TestOutranks(t *testing.T) {
	if !Outranks(BoardAdmin, BoardEditor) {
		t.Fatalf("expected admin to outrank editor")
	}
	if Outranks(BoardAdmin, BoardAdmin) {
		t.Fatalf("expected equal roles not to outrank")
	}
	if !Outranks(WorkspaceAdmin, WorkspaceRole("")) {
		t.Fatalf("expected admin to outrank an absent role")
	}
}

func TestParseRoles(t *testing.T) {
	if role, ok := ParseBoardRole(" editor "); !ok || role != BoardEditor {
		t.Fatalf("expected EDITOR, got %q ok=%v", role, ok)
	}
	if _, ok := ParseBoardRole("OWNER"); ok {
		t.Fatalf("expected OWNER to be rejected as a board role")
	}
	if role, ok := ParseWorkspaceRole("owner"); !ok || role != WorkspaceOwner {
		t.Fatalf("expected OWNER, got %q ok=%v", role, ok)
	}
}
