// Package boardservice owns workspaces, boards, their memberships and the
// invitations that create memberships.
//
// It is the single source of truth for roles. Other services learn about
// membership changes from board.events and workspace.events, and the edge
// gateway asks it for a caller's board role on every task or realtime
// request.
package boardservice
