package events

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	OpGet    = "get"
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// StoreError describes a failed store operation with enough context to
// reproduce the request against the access rules.
type StoreError struct {
	Path           string      `json:"path"`
	Operation      string      `json:"operation"`
	RequestPayload interface{} `json:"requestResourceData,omitempty"`
	UserID         string      `json:"userId,omitempty"`
	Err            error       `json:"-"`
}

func NewStoreError(path, operation string, payload interface{}, err error) *StoreError {
	return &StoreError{Path: path, Operation: operation, RequestPayload: payload, Err: err}
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.DebugMessage()
	}
	return fmt.Sprintf("%s: %v", e.DebugMessage(), e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) PermissionDenied() bool {
	return status.Code(e.Err) == codes.PermissionDenied
}

func (e *StoreError) DebugMessage() string {
	if e.PermissionDenied() {
		return fmt.Sprintf("Firestore permission denied for %s on path: %s", e.Operation, e.Path)
	}
	return fmt.Sprintf("Firestore %s failed on path: %s", e.Operation, e.Path)
}

// EventName picks the channel event a failure is published under.
func (e *StoreError) EventName() string {
	if e.PermissionDenied() {
		return PermissionError
	}
	return StoreFailure
}
