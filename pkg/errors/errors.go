// Package errors provides structured error handling for the motion runtime.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindTypeMismatch indicates interpolation between incompatible value variants.
	KindTypeMismatch
	// KindHandleNotFound indicates an operation on a stale or unknown animation handle.
	KindHandleNotFound
	// KindNumericInstability indicates a spring integrator producing non-finite values.
	KindNumericInstability
	// KindConfig indicates an invalid configuration value.
	KindConfig
	// KindDelegation indicates a native animation facility failure.
	KindDelegation
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindTypeMismatch:
		return "type-mismatch"
	case KindHandleNotFound:
		return "handle-not-found"
	case KindNumericInstability:
		return "numeric-instability"
	case KindConfig:
		return "config"
	case KindDelegation:
		return "delegation"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// MotionError represents a structured error in the motion runtime.
type MotionError struct {
	// Op is the operation that failed (e.g., "motion.Engine.Submit").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Property is the animated property name, if applicable.
	Property string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *MotionError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("%s [%s] property=%s: %v", e.Op, e.Kind, e.Property, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *MotionError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err if it is a *MotionError, KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	if me, ok := err.(*MotionError); ok {
		return me.Kind
	}
	return KindUnknown
}

// TypeMismatch builds the submit-time error for interpolating incompatible
// value variants.
func TypeMismatch(op, property string, got, want string) *MotionError {
	return &MotionError{
		Op:       op,
		Kind:     KindTypeMismatch,
		Property: property,
		Err:      fmt.Errorf("cannot interpolate %s into %s", got, want),
	}
}

// HandleNotFound builds the recoverable error for operations on stale or
// unknown handles.
func HandleNotFound(op string) *MotionError {
	return &MotionError{
		Op:   op,
		Kind: KindHandleNotFound,
		Err:  fmt.Errorf("handle not found"),
	}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "motion.Engine.AdvanceFrame").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the motion runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *MotionError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
