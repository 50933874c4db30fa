// Package gateway is the single public entry point. It authenticates the
// caller, resolves the board role for routes that need one, and forwards
// the request to the owning service with trusted identity headers.
package gateway
