package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/eafc-tic/equiptrack/internal/model"
)

// EquipmentRepo provides access to the 'equipments' table. The static QR
// payload column carries a unique index (uq_equipments_payload); insert
// conflicts on it surface as ErrPayloadExists so the uniqueness rule is
// enforced atomically by the database rather than checked beforehand.
type EquipmentRepo struct{ DB *sql.DB }

func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{DB: db} }

const equipmentColumns = "id, room, type, static_payload, created_at, updated_at"

// Create inserts a new equipment row.
func (r *EquipmentRepo) Create(ctx context.Context, e model.Equipment) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO equipments (id, room, type, static_payload) VALUES (?,?,?,?)",
		e.ID, e.Room, e.Type, e.StaticPayload)
	if duplicateOnKey(err, "uq_equipments_payload") {
		return ErrPayloadExists
	}
	if isDuplicate(err) {
		return ErrEquipmentExists
	}
	return err
}

// GetByID fetches equipment by id.
func (r *EquipmentRepo) GetByID(ctx context.Context, id string) (model.Equipment, error) {
	var e model.Equipment
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+equipmentColumns+" FROM equipments WHERE id=? LIMIT 1",
		strings.TrimSpace(id)).Scan(&e.ID, &e.Room, &e.Type, &e.StaticPayload, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// GetByStaticPayload resolves a scanned static payload to its equipment.
func (r *EquipmentRepo) GetByStaticPayload(ctx context.Context, payload string) (model.Equipment, error) {
	var e model.Equipment
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+equipmentColumns+" FROM equipments WHERE static_payload=? LIMIT 1",
		payload).Scan(&e.ID, &e.Room, &e.Type, &e.StaticPayload, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// List returns all equipment ordered by id.
func (r *EquipmentRepo) List(ctx context.Context) ([]model.Equipment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+equipmentColumns+" FROM equipments ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Equipment, 0)
	for rows.Next() {
		var e model.Equipment
		if err := rows.Scan(&e.ID, &e.Room, &e.Type, &e.StaticPayload, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update rewrites room, type and the re-derived static payload.
func (r *EquipmentRepo) Update(ctx context.Context, e model.Equipment) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE equipments SET room=?, type=?, static_payload=? WHERE id=?",
		e.Room, e.Type, e.StaticPayload, e.ID)
	if duplicateOnKey(err, "uq_equipments_payload") {
		return ErrPayloadExists
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// No row changed: either the id is unknown or the values are
		// identical. Distinguish so handlers can 404 on the former.
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM equipments WHERE id=?", e.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return sql.ErrNoRows
		}
	}
	return nil
}

// Delete removes equipment unless it has dependent sessions, in which case
// ErrConflict is returned. The dependency check and the delete run in one
// transaction so a session created in between cannot be orphaned.
func (r *EquipmentRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var sessions int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE equipment_id=?", id).Scan(&sessions); err != nil {
		return err
	}
	if sessions > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM equipments WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}
