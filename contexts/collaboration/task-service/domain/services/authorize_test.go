package services

import (
	"errors"
	"testing"

	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contracts/roles"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		principal int64
		role      string
		required  roles.BoardRole
		want      error
	}{
		{principal: 0, role: "ADMIN", required: roles.BoardViewer, want: domainerrors.ErrUnauthenticated},
		{principal: 5, role: "", required: roles.BoardViewer, want: domainerrors.ErrForbidden},
		{principal: 5, role: "OWNER", required: roles.BoardViewer, want: domainerrors.ErrForbidden},
		{principal: 5, role: "VIEWER", required: roles.BoardEditor, want: domainerrors.ErrForbidden},
		{principal: 5, role: "EDITOR", required: roles.BoardEditor},
		{principal: 5, role: "ADMIN", required: roles.BoardViewer},
	}
	for _, tc := range cases {
		_, err := Authorize(tc.principal, tc.role, tc.required)
		if tc.want == nil && err != nil {
			t.Fatalf("principal=%d role=%q: unexpected error %v", tc.principal, tc.role, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("principal=%d role=%q: expected %v, got %v", tc.principal, tc.role, tc.want, err)
		}
	}
}
