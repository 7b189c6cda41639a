package model

import "time"

// Equipment represents a piece of trackable equipment as stored in the
// `equipments` table.  The static QR payload is derived from the
// institution, id, type and room when the record is created or edited; it
// is never chosen by the caller.
//
// Fields:
//  ID            – equipment identifier chosen by the administrator (e.g. EQ001).
//  Room          – room where the equipment lives.
//  Type          – equipment type (e.g. Microscope).
//  StaticPayload – unique static QR payload identifying the equipment.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Equipment struct {
	ID            string    // equipments.id
	Room          string    // equipments.room
	Type          string    // equipments.type
	StaticPayload string    // equipments.static_payload
	CreatedAt     time.Time // equipments.created_at
	UpdatedAt     time.Time // equipments.updated_at
}
