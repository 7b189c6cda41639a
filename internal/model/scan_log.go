package model

import "time"

// ScanLog is one student check-in against a session.  Rows are immutable
// once created and unique per (session, student): re-scanning the same
// session is answered with "already scanned" instead of a second row.
//
// Fields:
//  ID        – opaque UUID primary key.
//  SessionID – session the student scanned into.
//  StudentID – user who scanned.
//  ScannedAt – timestamp of the check-in.
type ScanLog struct {
	ID        string    // scan_logs.id
	SessionID string    // scan_logs.session_id
	StudentID string    // scan_logs.student_id
	ScannedAt time.Time // scan_logs.scanned_at
}
