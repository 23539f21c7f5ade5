// Package gateway is the client side of the remote cart service.
//
// The backend owns the authoritative cart; this package only reads it or
// proposes changes. Every failure is reported as an *Error carrying a
// structured Kind, and the sync coordinator decides per kind whether an
// optimistic local change is kept or rolled back. Classification is by
// HTTP status and transport outcome - never by matching message text.
//
// An absent server cart (204, 404 or an empty body on fetch) is an empty
// snapshot, not an error.
package gateway
