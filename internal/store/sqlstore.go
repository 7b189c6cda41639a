package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
)

// SQLStore is the database-backed implementation of the inventory
// prototype. The qr_code primary key provides the uniqueness-checked
// insert: a duplicate surfaces as MySQL error 1062 and maps to
// ErrDuplicateQRCode, same contract as the JSON store's locked check.
type SQLStore struct{ DB *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db} }

func sqlDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// AddEquipment validates and inserts a record.
func (s *SQLStore) AddEquipment(ctx context.Context, rec EquipmentRecord) (EquipmentRecord, error) {
	rec, err := validateEquipment(rec)
	if err != nil {
		return EquipmentRecord{}, err
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO inventory_equipments (qr_code, name, description, status, created_at) VALUES (?,?,?,?,?)",
		rec.QRCode, rec.Name, rec.Description, rec.Status, rec.CreatedAt)
	if sqlDuplicate(err) {
		return EquipmentRecord{}, ErrDuplicateQRCode
	}
	if err != nil {
		return EquipmentRecord{}, err
	}
	return rec, nil
}

// GetEquipment returns the record for a QR code.
func (s *SQLStore) GetEquipment(ctx context.Context, qrCode string) (EquipmentRecord, error) {
	code, err := NormalizeQRCode(qrCode)
	if err != nil {
		return EquipmentRecord{}, err
	}
	var rec EquipmentRecord
	err = s.DB.QueryRowContext(ctx,
		"SELECT qr_code, name, description, status, created_at FROM inventory_equipments WHERE qr_code=? LIMIT 1",
		code).Scan(&rec.QRCode, &rec.Name, &rec.Description, &rec.Status, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return EquipmentRecord{}, ErrNotFound
	}
	return rec, err
}

// ListEquipment returns all records ordered by QR code.
func (s *SQLStore) ListEquipment(ctx context.Context) ([]EquipmentRecord, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT qr_code, name, description, status, created_at FROM inventory_equipments ORDER BY qr_code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]EquipmentRecord, 0)
	for rows.Next() {
		var rec EquipmentRecord
		if err := rows.Scan(&rec.QRCode, &rec.Name, &rec.Description, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateEquipmentStatus changes a record's status.
func (s *SQLStore) UpdateEquipmentStatus(ctx context.Context, qrCode, status string) (EquipmentRecord, error) {
	code, err := NormalizeQRCode(qrCode)
	if err != nil {
		return EquipmentRecord{}, err
	}
	if !validStatuses[status] {
		return EquipmentRecord{}, FieldError{Field: "status", Message: "must be one of disponible, maintenance, hors_service"}
	}
	res, err := s.DB.ExecContext(ctx,
		"UPDATE inventory_equipments SET status=? WHERE qr_code=?", status, code)
	if err != nil {
		return EquipmentRecord{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return EquipmentRecord{}, err
	} else if n == 0 {
		if _, err := s.GetEquipment(ctx, code); err != nil {
			return EquipmentRecord{}, err
		}
	}
	return s.GetEquipment(ctx, code)
}

// DeleteEquipment removes a record.
func (s *SQLStore) DeleteEquipment(ctx context.Context, qrCode string) error {
	code, err := NormalizeQRCode(qrCode)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, "DELETE FROM inventory_equipments WHERE qr_code=?", code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddUsage validates and inserts a usage record.
func (s *SQLStore) AddUsage(ctx context.Context, rec UsageRecord) (UsageRecord, error) {
	rec, err := validateUsage(rec)
	if err != nil {
		return UsageRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO inventory_usages (id, qr_code, type, user, notes, ts) VALUES (?,?,?,?,?,?)",
		rec.ID, rec.QRCode, rec.Type, rec.User, rec.Notes, rec.Timestamp)
	if err != nil {
		return UsageRecord{}, err
	}
	return rec, nil
}

// ListUsages returns usage records, optionally filtered by QR code.
func (s *SQLStore) ListUsages(ctx context.Context, qrCode string) ([]UsageRecord, error) {
	q := "SELECT id, qr_code, type, user, notes, ts FROM inventory_usages"
	args := []interface{}{}
	if qrCode != "" {
		code, err := NormalizeQRCode(qrCode)
		if err != nil {
			return nil, err
		}
		q += " WHERE qr_code=?"
		args = append(args, code)
	}
	q += " ORDER BY ts"
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]UsageRecord, 0)
	for rows.Next() {
		var rec UsageRecord
		if err := rows.Scan(&rec.ID, &rec.QRCode, &rec.Type, &rec.User, &rec.Notes, &rec.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
