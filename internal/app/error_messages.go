// SPDX-License-Identifier: Apache-2.0

// Package app contains shared application-layer constants used across the
// stash-sync server handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written
// into HTTP response bodies or log entries to describe the outcome of an
// operation. Keeping them in one place ensures consistent wording
// throughout the API.
package app

const (
	// MsgNoUserIDProvided is returned when an authenticated route is reached
	// without a user id in the request context.
	MsgNoUserIDProvided = "no user ID was given"

	// MsgErrorReadingBody is returned when the request body cannot be read.
	MsgErrorReadingBody = "error reading request body"

	// MsgErrorReconcilingBatch is returned when a sync batch fails for a
	// reason other than a malformed envelope.
	MsgErrorReconcilingBatch = "error reconciling batch"

	// MsgErrorListingRecent is returned when the recent-activity view cannot
	// be produced.
	MsgErrorListingRecent = "error listing recent activity"

	// MsgTokenIsExpired is returned when a JWT bearer token is syntactically
	// valid but its expiry time has passed.
	MsgTokenIsExpired = "token expired"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"
)
