package models

import "errors"

// ErrSessionConflict indicates a start attempt while a session is active.
// The caller must discard the existing session first.
var ErrSessionConflict = errors.New("an opname session is already active")

// ErrNoActiveSession indicates an operation that requires an active session
// found none.
var ErrNoActiveSession = errors.New("no active opname session")

// ErrItemNotFound indicates the inventory backend has no item for the
// requested code.
var ErrItemNotFound = errors.New("inventory item not found")
