package errors

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested entity (account, token,
	// transaction) does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrInput stands for general input problems indication
	ErrInput = Register(4, "invalid input")

	// ErrConfiguration is a local batch construction failure: too few
	// participants, a fee on a non-designated account, or a mismatched
	// signer set. It must never reach the oracle.
	ErrConfiguration = Register(5, "invalid batch configuration")

	// ErrSignature is the oracle rejection raised when any required
	// root-chain signature fails verification against the canonical
	// message. The description text is a wire contract; clients match
	// on it.
	ErrSignature = Register(6, "Eth signature is incorrect")

	// ErrNonce is returned when a transaction nonce does not match the
	// next expected value for its account.
	ErrNonce = Register(7, "nonce mismatch")

	// ErrExpired is returned when execution time falls outside a
	// transaction's validity window.
	ErrExpired = Register(8, "validity window expired")

	// ErrAmount stands for invalid amount of whatever
	ErrAmount = Register(9, "invalid amount")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(10, "value overflow")

	// ErrFunds is returned when an account balance cannot cover a
	// transaction's amount plus fee.
	ErrFunds = Register(11, "insufficient funds")

	// ErrNetwork is a transport level failure talking to the oracle.
	ErrNetwork = Register(12, "network")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Popular root errors are declared in this package, but extensions may want
// to declare custom codes. This function ensures that no error code is used
// twice. Attempt to reuse an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No
// two error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: nil, // Error code 1 is restricted for unclassified errors and must not be used.
}

// internalCode is the fallback for errors that do not carry a registered
// code, for example stdlib errors.
const internalCode uint32 = 1

// Error represents a root error.
//
// Each error instance created during runtime should wrap one of the
// declared root errors. This allows error tests and returning all errors
// to the client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the registered code of this error kind. Codes travel over
// the RPC boundary so the client can rebuild the matching root error.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set
// to this error. Below two lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// CodeOf returns the registered code of the root of the given error, or
// the internal code when the error does not wrap a registered root.
func CodeOf(err error) uint32 {
	for {
		if e, ok := err.(*Error); ok {
			return e.code
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// FromCode rebuilds an error from a code and description that traveled
// over the RPC boundary. Unknown codes produce a plain opaque error. The
// rebuilt error renders exactly the wire description, so error text is
// stable across the boundary.
func FromCode(code uint32, description string) error {
	root, ok := usedCodes[code]
	if !ok || root == nil {
		return errors.New(description)
	}
	if description == root.desc {
		return root
	}
	// A wrapped error arrives with the root description as its suffix.
	// Wrap appends it again, so strip it first.
	if prefix := strings.TrimSuffix(description, ": "+root.desc); prefix != description {
		return Wrap(root, prefix)
	}
	return Wrap(root, description)
}

// Wrap extends given error with an additional information.
//
// If err is nil, this returns nil, avoiding the need for an if statement
// when wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional functionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover captures a panic and stop its propagation. If panic happens it
// is transformed into a ErrPanic instance and assigned to given error.
// Call this function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// stackTrace returns the first found stack trace frame carried by given
// error or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// causer is an interface implemented by an error that supports wrapping.
// Use it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}
