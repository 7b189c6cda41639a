// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver error strings themselves. Duplicate-key detection
// happens here, against MySQL error 1062, so that uniqueness rules are
// enforced by the indexes with atomic insert-if-absent semantics instead
// of read-then-write checks in handlers.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as removing equipment that still has sessions.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrUserExists is returned when creating a user whose id is already
// present in the directory.
var ErrUserExists = errors.New("user already exists")

// ErrLastAdmin is returned when a delete or role change would leave the
// directory without a single admin.
var ErrLastAdmin = errors.New("cannot remove the last admin")

// ErrPayloadExists is returned when an insert would violate the global
// uniqueness of a static or dynamic QR payload.
var ErrPayloadExists = errors.New("qr payload already exists")

// ErrEquipmentExists is returned when creating equipment with an id that
// is already registered.
var ErrEquipmentExists = errors.New("equipment already exists")

// ErrAlreadyScanned is returned when a student scans a session they have
// already checked in to. It is a soft outcome, not a failure: the handler
// reports "already scanned" with a 200.
var ErrAlreadyScanned = errors.New("already scanned")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062). The driver does not expose a typed error for it, so the
// code is matched in the message.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// duplicateOnKey reports whether a duplicate-key error hit the index whose
// name contains key. MySQL includes the violated key name in the 1062
// message, which lets a table with several unique indexes map each to its
// own sentinel.
func duplicateOnKey(err error, key string) bool {
	return isDuplicate(err) && strings.Contains(err.Error(), key)
}
