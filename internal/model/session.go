package model

import "time"

// Session records one usage window binding a piece of equipment to the
// teacher who opened it.  While active, students check in against its
// dynamic QR payload.  A session is closed exactly once: either explicitly
// by its owner or an admin, or by the reaper sweep after the configured
// timeout.  EndedAt is null if and only if Active is true.
//
// Fields:
//  ID             – opaque UUID primary key.
//  Name           – display name assigned at creation.
//  EquipmentID    – equipment in use.
//  TeacherID      – user who opened the session.
//  DynamicPayload – unique per-session QR payload, valid while active.
//  StartedAt      – when the session was opened.
//  EndedAt        – when the session was closed (nullable).
//  Active         – whether students may still check in.
type Session struct {
	ID             string     // sessions.id
	Name           string     // sessions.name
	EquipmentID    string     // sessions.equipment_id
	TeacherID      string     // sessions.teacher_id
	DynamicPayload string     // sessions.dynamic_payload
	StartedAt      time.Time  // sessions.started_at
	EndedAt        *time.Time // sessions.ended_at (nullable)
	Active         bool       // sessions.active
}
