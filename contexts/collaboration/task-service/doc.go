// Package taskservice owns the columns and tasks of every board, their
// fractional ordering and task assignees.
//
// Callers reach it only through the edge gateway, which resolves the
// caller's board role and passes it in X-Board-Role. Board and workspace
// deletions and membership removals arrive as events and are applied to
// local state.
package taskservice
