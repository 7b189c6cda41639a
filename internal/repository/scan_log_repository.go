package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/eafc-tic/equiptrack/internal/model"
)

// ScanLogRepo provides access to the 'scan_logs' table. Rows are append
// only; the unique index on (session_id, student_id) makes re-scans a
// conflict at insert time, which Create maps to ErrAlreadyScanned. There
// is deliberately no exists-then-insert path: two concurrent first scans
// race safely because the index arbitrates.
type ScanLogRepo struct{ DB *sql.DB }

func NewScanLogRepo(db *sql.DB) *ScanLogRepo { return &ScanLogRepo{DB: db} }

// Create appends one check-in stamped with the current UTC time.
func (r *ScanLogRepo) Create(ctx context.Context, sessionID, studentID string) (model.ScanLog, error) {
	log := model.ScanLog{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		StudentID: studentID,
		ScannedAt: time.Now().UTC(),
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO scan_logs (id, session_id, student_id, scanned_at) VALUES (?,?,?,?)",
		log.ID, log.SessionID, log.StudentID, log.ScannedAt)
	if isDuplicate(err) {
		return model.ScanLog{}, ErrAlreadyScanned
	}
	if err != nil {
		return model.ScanLog{}, err
	}
	return log, nil
}

// SessionScan pairs a scan log with the student's display name for the
// session detail view.
type SessionScan struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// ListBySession returns all check-ins for a session in scan order.
func (r *ScanLogRepo) ListBySession(ctx context.Context, sessionID string) ([]SessionScan, error) {
	const q = `SELECT l.id, l.student_id, u.full_name, l.scanned_at
	           FROM scan_logs l
	           JOIN users u ON u.id = l.student_id
	           WHERE l.session_id = ?
	           ORDER BY l.scanned_at`
	rows, err := r.DB.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SessionScan, 0)
	for rows.Next() {
		var s SessionScan
		if err := rows.Scan(&s.ID, &s.StudentID, &s.StudentName, &s.ScannedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// HasScanned reports whether the student already checked in to the
// session. Used only for read paths (e.g. student access to a session
// view); write paths rely on Create's conflict mapping instead.
func (r *ScanLogRepo) HasScanned(ctx context.Context, sessionID, studentID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM scan_logs WHERE session_id=? AND student_id=? LIMIT 1",
		sessionID, studentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
