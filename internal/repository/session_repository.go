package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/eafc-tic/equiptrack/internal/model"
)

// SessionRepo provides access to the 'sessions' table. A session row is
// mutated on exactly one path after creation: Close/CloseStale flip the
// active flag and stamp ended_at together, so active=0 always implies a
// non-null end time and vice versa.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

const sessionColumns = "id, name, equipment_id, teacher_id, dynamic_payload, started_at, ended_at, active"

func scanSession(row interface{ Scan(...interface{}) error }) (model.Session, error) {
	var s model.Session
	var ended sql.NullTime
	err := row.Scan(&s.ID, &s.Name, &s.EquipmentID, &s.TeacherID, &s.DynamicPayload,
		&s.StartedAt, &ended, &s.Active)
	if ended.Valid {
		t := ended.Time
		s.EndedAt = &t
	}
	return s, err
}

// Create inserts a new active session. The dynamic payload carries a
// unique index (uq_sessions_payload); a collision surfaces as
// ErrPayloadExists and is treated as an error, not retried.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, name, equipment_id, teacher_id, dynamic_payload, started_at, active) VALUES (?,?,?,?,?,?,1)",
		s.ID, s.Name, s.EquipmentID, s.TeacherID, s.DynamicPayload, s.StartedAt.UTC())
	if duplicateOnKey(err, "uq_sessions_payload") {
		return ErrPayloadExists
	}
	return err
}

// GetByID fetches a session by id.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (model.Session, error) {
	return scanSession(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id=? LIMIT 1", id))
}

// GetActiveByPayload resolves a dynamic payload to its session only while
// that session is active. A closed session's payload does not match: the
// scan dispatcher treats it exactly like an unknown payload.
func (r *SessionRepo) GetActiveByPayload(ctx context.Context, payload string) (model.Session, error) {
	return scanSession(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE dynamic_payload=? AND active=1 LIMIT 1", payload))
}

// FindActiveForTeacher returns the teacher's active session on the given
// equipment, if any. Used for the reuse rule: a teacher scanning the same
// equipment twice gets the existing session back instead of a duplicate.
func (r *SessionRepo) FindActiveForTeacher(ctx context.Context, teacherID, equipmentID string) (model.Session, error) {
	return scanSession(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE teacher_id=? AND equipment_id=? AND active=1 LIMIT 1",
		teacherID, equipmentID))
}

// ListAll returns every session, newest first. Admin view.
func (r *SessionRepo) ListAll(ctx context.Context) ([]model.Session, error) {
	return r.list(ctx, "SELECT "+sessionColumns+" FROM sessions ORDER BY started_at DESC")
}

// ListByTeacher returns the sessions a teacher opened, newest first.
func (r *SessionRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Session, error) {
	return r.list(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE teacher_id=? ORDER BY started_at DESC", teacherID)
}

// ListByStudent returns the sessions a student has scanned into, newest
// first.
func (r *SessionRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE id IN (SELECT session_id FROM scan_logs WHERE student_id=?)
		 ORDER BY started_at DESC`, studentID)
}

func (r *SessionRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Session, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close flips a session to closed and stamps ended_at. It returns false
// when the session exists but was already closed, and sql.ErrNoRows when
// the id is unknown. The guard on active=1 makes the flip idempotent under
// concurrent closes: only one caller wins the update.
func (r *SessionRepo) Close(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET active=0, ended_at=UTC_TIMESTAMP() WHERE id=? AND active=1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	var exists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE id=?", id).Scan(&exists); err != nil {
		return false, err
	}
	if exists == 0 {
		return false, sql.ErrNoRows
	}
	return false, nil
}

// CloseStale closes every active session that started before cutoff and
// returns how many rows were closed. The sweep is a single UPDATE so a
// concurrently running sweep or an explicit close cannot double-close:
// each row is flipped at most once by whoever matches active=1 first.
func (r *SessionRepo) CloseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET active=0, ended_at=UTC_TIMESTAMP() WHERE active=1 AND started_at < ?",
		cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
