package gateway

import (
	"errors"
	"fmt"
)

// Kind categorizes a gateway failure for the sync coordinator.
//
// The coordinator treats KindValidation as revert-worthy: the remote
// rejected the proposed state, so the optimistic local change is undone.
// Every other kind keeps the local change - the user's intent is worth
// more than strict agreement with a server we could not reach or that
// failed in an unrecognized way.
type Kind int

const (
	// KindUnknown is the conservative default for anything unmatched.
	KindUnknown Kind = iota

	// KindValidation covers stock conflicts, not-found, forbidden and
	// malformed-request rejections. Revert-worthy.
	KindValidation

	// KindAuth covers missing, expired or rejected credentials.
	KindAuth

	// KindNetwork covers unreachable hosts, timeouts and other
	// transport failures where no response was obtained.
	KindNetwork
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is a classified gateway failure.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // server-provided message when available
	Err     error  // underlying error, if any
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("cart gateway: %s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("cart gateway: %s (%d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("cart gateway: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("cart gateway: %s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain.
// Errors that did not originate here classify as KindUnknown.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

// classifyStatus maps a non-2xx HTTP status to a failure kind.
func classifyStatus(status int) Kind {
	switch status {
	case 401:
		return KindAuth
	case 400, 403, 404, 409, 422:
		return KindValidation
	default:
		return KindUnknown
	}
}
