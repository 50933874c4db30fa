// Package realtimeservice pushes board and notification changes to
// connected clients over server-sent events. Every message is appended to a
// bounded per-channel replay log so a reconnecting client can resume from
// its Last-Event-ID.
package realtimeservice
