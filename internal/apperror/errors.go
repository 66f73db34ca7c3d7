// Package apperror is the error taxonomy shared by the ingestion and query pipelines.
// Every error is recoverable: callers retry the whole action.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindTransport  Kind = "transport"
	KindChunk      Kind = "chunk"
	KindQuery      Kind = "query"
	KindConflict   Kind = "conflict"
)

type Code string

const (
	CodeNoFileChosen       Code = "NoFileChosen"
	CodeEmptyQuestion      Code = "EmptyQuestion"
	CodeAlreadyLoaded      Code = "AlreadyLoaded"
	CodeTooLarge           Code = "TooLarge"
	CodeBrokerFailed       Code = "BrokerFailed"
	CodeTransferFailed     Code = "TransferFailed"
	CodeTriggerFailed      Code = "TriggerFailed"
	CodeUnsupportedType    Code = "UnsupportedType"
	CodeUnreadableDocument Code = "UnreadableDocument"
	CodeEmptyExtraction    Code = "EmptyExtraction"
	CodeNoDocumentLoaded   Code = "NoDocumentLoaded"
	CodeMissingCredential  Code = "MissingCredential"
	CodeGenerationFailed   Code = "GenerationFailed"
	CodeDocumentChanged    Code = "DocumentChanged"
	CodeLoadInFlight       Code = "LoadInFlight"
	CodeQueryInFlight      Code = "QueryInFlight"
)

// Error carries a kind for routing (HTTP status, status color) and a code for matching.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrNoFileChosen       = &Error{Kind: KindValidation, Code: CodeNoFileChosen}
	ErrEmptyQuestion      = &Error{Kind: KindValidation, Code: CodeEmptyQuestion}
	ErrAlreadyLoaded      = &Error{Kind: KindValidation, Code: CodeAlreadyLoaded}
	ErrTooLarge           = &Error{Kind: KindValidation, Code: CodeTooLarge}
	ErrBrokerFailed       = &Error{Kind: KindTransport, Code: CodeBrokerFailed}
	ErrTransferFailed     = &Error{Kind: KindTransport, Code: CodeTransferFailed}
	ErrTriggerFailed      = &Error{Kind: KindTransport, Code: CodeTriggerFailed}
	ErrUnsupportedType    = &Error{Kind: KindChunk, Code: CodeUnsupportedType}
	ErrUnreadableDocument = &Error{Kind: KindChunk, Code: CodeUnreadableDocument}
	ErrEmptyExtraction    = &Error{Kind: KindChunk, Code: CodeEmptyExtraction}
	ErrNoDocumentLoaded   = &Error{Kind: KindQuery, Code: CodeNoDocumentLoaded}
	ErrMissingCredential  = &Error{Kind: KindQuery, Code: CodeMissingCredential}
	ErrGenerationFailed   = &Error{Kind: KindQuery, Code: CodeGenerationFailed}
	ErrDocumentChanged    = &Error{Kind: KindQuery, Code: CodeDocumentChanged}
	ErrLoadInFlight       = &Error{Kind: KindConflict, Code: CodeLoadInFlight}
	ErrQueryInFlight      = &Error{Kind: KindConflict, Code: CodeQueryInFlight}
)

func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code Code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// As returns the first *Error in the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in the chain, or "".
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ""
}
