// Package userservice owns Kanvas identities: registration, credential
// checks, profiles and the user.events stream other services replicate.
package userservice
