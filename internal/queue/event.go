// Package queue defines message payloads exchanged over the message broker.
package queue

// ScanRecordedEvent is published when a student check-in is successfully
// recorded.  It carries enough information for downstream consumers to
// log or feed attendance exports without querying the primary database.
type ScanRecordedEvent struct {
	ScanID        string `json:"scan_id"`
	SessionID     string `json:"session_id"`
	SessionName   string `json:"session_name"`
	EquipmentID   string `json:"equipment_id"`
	EquipmentType string `json:"equipment_type"`
	Room          string `json:"room"`
	StudentID     string `json:"student_id"`
	ScannedAt     string `json:"scanned_at"`
}
