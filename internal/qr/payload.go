// Package qr owns the QR payload formats and their classification.  The QR
// image is purely a transport encoding: everything in the system matches on
// the payload string, never on code geometry.
//
// Two payload namespaces exist and are disjoint by construction:
//
//	equipment (static):  {institution}_{equipmentID}_{type}_{room}
//	session   (dynamic): SESSION_{sessionID}_{YYYYMMDDHHMMSS}
//
// The SESSION_ prefix is reserved; equipment payloads can never start with
// it because the institution name is validated against it at derivation
// time.  Uniqueness of each payload is enforced by the persistence layer's
// unique indexes, not here.
package qr

import (
	"fmt"
	"strings"
	"time"
)

// SessionPrefix marks dynamic session payloads.
const SessionPrefix = "SESSION_"

// timestampLayout is the compact UTC stamp embedded in session payloads.
const timestampLayout = "20060102150405"

// Kind classifies a scanned payload by namespace.
type Kind int

const (
	// KindUnknown means the payload matches neither namespace.
	KindUnknown Kind = iota
	// KindEquipment is a static equipment payload.
	KindEquipment
	// KindSession is a dynamic session payload.
	KindSession
)

// EquipmentPayload derives the static payload for a piece of equipment.
// The result is deterministic: re-deriving after an equipment edit yields
// the payload matching the current type and room.  It fails when any
// component is empty, contains the separator in a way that would make the
// payload ambiguous to a human reader, or when the institution would
// collide with the session namespace.
func EquipmentPayload(institution, equipmentID, equipType, room string) (string, error) {
	institution = strings.TrimSpace(institution)
	equipmentID = strings.TrimSpace(equipmentID)
	equipType = strings.TrimSpace(equipType)
	room = strings.TrimSpace(room)
	if institution == "" || equipmentID == "" || equipType == "" || room == "" {
		return "", fmt.Errorf("equipment payload: institution, id, type and room are all required")
	}
	if strings.HasPrefix(strings.ToUpper(institution), strings.TrimSuffix(SessionPrefix, "_")) {
		return "", fmt.Errorf("equipment payload: institution %q collides with the session namespace", institution)
	}
	return fmt.Sprintf("%s_%s_%s_%s", institution, equipmentID, equipType, room), nil
}

// SessionPayload derives the dynamic payload for a session opened at the
// given instant.  The timestamp is rendered in UTC so that two processes
// deriving for the same session agree on the string.
func SessionPayload(sessionID string, openedAt time.Time) string {
	return SessionPrefix + sessionID + "_" + openedAt.UTC().Format(timestampLayout)
}

// Classify reports which namespace a scanned payload belongs to.  It is a
// prefix test only; whether the payload actually designates a live row is
// the dispatcher's lookup to make.
func Classify(payload string) Kind {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return KindUnknown
	}
	if strings.HasPrefix(payload, SessionPrefix) {
		return KindSession
	}
	// Static payloads carry at least institution, id, type and room.
	if strings.Count(payload, "_") >= 3 {
		return KindEquipment
	}
	return KindUnknown
}

// SessionID extracts the session identifier from a dynamic payload.  The
// boolean is false when the payload is not in the session namespace or is
// missing the trailing timestamp.
func SessionID(payload string) (string, bool) {
	if !strings.HasPrefix(payload, SessionPrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(payload, SessionPrefix)
	i := strings.LastIndex(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return "", false
	}
	return rest[:i], true
}
