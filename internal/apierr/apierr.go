// Package apierr defines the error taxonomy shared by the gateway, the API
// services and the checkout orchestrator.
//
// Presentation code branches on Kind and Silent instead of inspecting
// message text. Silent errors mean "the caller is not logged in": they carry
// no user-facing message and must never be shown or logged.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuthRequired: no token present for a protected endpoint; no network call was made.
	KindAuthRequired
	// KindAuthExpired: the server answered 401; the session has been cleared.
	KindAuthExpired
	// KindRequestFailed: any other non-2xx response.
	KindRequestFailed
	// KindNetwork: no response was received.
	KindNetwork
	// KindEmptySelection: nothing valid left to check out.
	KindEmptySelection
	// KindPartialCheckout: some address groups' orders were created, others failed.
	KindPartialCheckout
	// KindAddressRequired: an order cannot be created without a delivery address.
	KindAddressRequired
)

func (k Kind) String() string {
	switch k {
	case KindAuthRequired:
		return "auth required"
	case KindAuthExpired:
		return "auth expired"
	case KindRequestFailed:
		return "request failed"
	case KindNetwork:
		return "network error"
	case KindEmptySelection:
		return "empty selection"
	case KindPartialCheckout:
		return "partial checkout failure"
	case KindAddressRequired:
		return "address required"
	default:
		return "unknown"
	}
}

// Error is the tagged error value returned across the client.
type Error struct {
	Kind Kind
	// Silent errors are never surfaced to the user or written to logs.
	Silent bool
	// Auth marks authentication failures, including ambiguous transport errors.
	Auth bool
	// StatusCode and Body are set for responses that were received.
	StatusCode int
	Body       []byte
	// Message is the human-readable text for display. Always empty when Silent.
	Message string
	Err     error
}

// Sentinels for errors.Is; matching is by Kind only.
var (
	ErrAuthRequired    = &Error{Kind: KindAuthRequired, Silent: true, Auth: true}
	ErrAuthExpired     = &Error{Kind: KindAuthExpired, Silent: true, Auth: true}
	ErrRequestFailed   = &Error{Kind: KindRequestFailed}
	ErrNetwork         = &Error{Kind: KindNetwork}
	ErrEmptySelection  = &Error{Kind: KindEmptySelection}
	ErrPartialCheckout = &Error{Kind: KindPartialCheckout}
	ErrAddressRequired = &Error{Kind: KindAddressRequired}
)

func (e *Error) Error() string {
	switch {
	case e.Silent:
		return e.Kind.String()
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// AuthRequired returns a fresh pre-flight auth error.
func AuthRequired() *Error {
	return &Error{Kind: KindAuthRequired, Silent: true, Auth: true}
}

// AuthExpired returns a fresh 401 error.
func AuthExpired() *Error {
	return &Error{Kind: KindAuthExpired, Silent: true, Auth: true, StatusCode: 401}
}

// RequestFailed wraps a non-2xx response other than 401.
func RequestFailed(status int, body []byte, message string) *Error {
	if message == "" {
		message = "request failed, please try again"
	}
	return &Error{Kind: KindRequestFailed, StatusCode: status, Body: body, Message: message}
}

// Network wraps a transport failure. Auth-tagged transport failures are silent.
func Network(err error, auth bool) *Error {
	if auth {
		return &Error{Kind: KindNetwork, Silent: true, Auth: true, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: "network unavailable, please try again", Err: err}
}

// EmptySelection reports that no valid checkout line remains.
func EmptySelection(message string) *Error {
	if message == "" {
		message = "no items selected"
	}
	return &Error{Kind: KindEmptySelection, Message: message}
}

// AddressRequired reports a missing delivery address.
func AddressRequired(message string) *Error {
	if message == "" {
		message = "please select a delivery address"
	}
	return &Error{Kind: KindAddressRequired, Message: message}
}

// PartialCheckout reports an aggregate of per-group failures.
func PartialCheckout(created, total int, err error) *Error {
	return &Error{
		Kind:    KindPartialCheckout,
		Message: fmt.Sprintf("%d of %d orders created", created, total),
		Err:     err,
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsSilent reports whether err must be suppressed from logs and UI.
func IsSilent(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Silent
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Auth
}

// UserMessage returns the text to display for err, or "" when nothing
// should be shown.
func UserMessage(err error) string {
	if err == nil || IsSilent(err) {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "something went wrong, please try again"
}
