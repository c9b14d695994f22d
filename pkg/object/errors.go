package object

import "fmt"

// ErrorKind enumerates every failure mode the core can raise, per the
// proxy's error taxonomy. Kind determines whether the owning connection
// must be torn down (Fatal) or whether the offending message is merely
// logged and dropped.
type ErrorKind int

const (
	ErrUnknownMessageID ErrorKind = iota
	ErrNoClientObject
	ErrNoServerObject
	ErrWrongObjectType
	ErrReceiverNoServerID
	ErrReceiverNoClient
	ErrArgNoServerID
	ErrArgNoClientID
	ErrSetClientID
	ErrSetServerID
	ErrGenerateClientID
	ErrGenerateServerID
	ErrHandlerBorrowed
	ErrNoHandler
	ErrClientAlreadySet
	ErrIDAlreadyRegistered
	ErrIDOutOfRange
	ErrWireWrongMessageSize
	ErrWireMissingArgument
	ErrWireNonUTF8
	ErrWireNullString
	ErrWireTrailingBytes
)

// Error carries one object-level or wire-level failure plus the context
// needed to format and log it.
type Error struct {
	Kind        ErrorKind
	Opcode      uint16
	MessageName string
	Arg         string
	ID          uint32
	ClientID    uint64
	Got         string
	Want        string
	Cause       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnknownMessageID:
		return fmt.Sprintf("unknown message id %d", e.Opcode)
	case ErrNoClientObject:
		return fmt.Sprintf("no client object %d on client %d", e.ID, e.ClientID)
	case ErrNoServerObject:
		return fmt.Sprintf("no server object %d", e.ID)
	case ErrWrongObjectType:
		return fmt.Sprintf("argument %q refers to a %s, expected %s", e.Arg, e.Got, e.Want)
	case ErrReceiverNoServerID:
		return "receiver has no server id"
	case ErrReceiverNoClient:
		return "receiver has no client"
	case ErrArgNoServerID:
		return fmt.Sprintf("argument %q has no server id", e.Arg)
	case ErrArgNoClientID:
		return fmt.Sprintf("argument %q has no client id on client %d", e.Arg, e.ClientID)
	case ErrSetClientID:
		return fmt.Sprintf("could not set client id %d for argument %q: %v", e.ID, e.Arg, e.Cause)
	case ErrSetServerID:
		return fmt.Sprintf("could not set server id %d for argument %q: %v", e.ID, e.Arg, e.Cause)
	case ErrGenerateClientID:
		return fmt.Sprintf("could not generate client id for argument %q: %v", e.Arg, e.Cause)
	case ErrGenerateServerID:
		return fmt.Sprintf("could not generate server id for argument %q: %v", e.Arg, e.Cause)
	case ErrHandlerBorrowed:
		return "object handler is already borrowed"
	case ErrNoHandler:
		return "object has no handler set"
	case ErrClientAlreadySet:
		return "object already has a client"
	case ErrIDAlreadyRegistered:
		return fmt.Sprintf("id %d is already registered", e.ID)
	case ErrIDOutOfRange:
		return fmt.Sprintf("id %d is out of range for this endpoint", e.ID)
	case ErrWireWrongMessageSize, ErrWireMissingArgument, ErrWireNonUTF8, ErrWireNullString, ErrWireTrailingBytes:
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return "wire codec error"
	default:
		return "object error"
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Fatal reports whether this error is severe enough that the offending
// connection must be torn down rather than merely logged and dropped. This
// mirrors spec §7's policy table.
func (e *Error) Fatal() bool {
	switch e.Kind {
	case ErrUnknownMessageID,
		ErrNoClientObject,
		ErrNoServerObject,
		ErrWrongObjectType,
		ErrWireWrongMessageSize,
		ErrWireMissingArgument,
		ErrWireNonUTF8,
		ErrWireNullString,
		ErrWireTrailingBytes:
		return true
	case ErrSetClientID, ErrSetServerID, ErrGenerateClientID, ErrGenerateServerID:
		return true
	default:
		return false
	}
}
