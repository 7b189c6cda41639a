package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// JSONStore persists inventory records as two JSON files under a data
// directory, mirroring the original prototype exactly: the whole file is
// read and rewritten on every mutation. A mutex serializes writers; this
// backend is a single-process prototype, not a concurrent database.
type JSONStore struct {
	mu             sync.Mutex
	equipmentsPath string
	usagesPath     string
}

// NewJSONStore creates the data directory and empty files as needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &JSONStore{
		equipmentsPath: filepath.Join(dir, "equipments.json"),
		usagesPath:     filepath.Join(dir, "usages.json"),
	}
	for _, p := range []string{s.equipmentsPath, s.usagesPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			if err := os.WriteFile(p, []byte("[]\n"), 0o644); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func loadJSON[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func saveJSON[T any](path string, data []T) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

// AddEquipment validates and appends a record, rejecting duplicate QR
// codes. The uniqueness check and the append happen under one lock, which
// is this backend's equivalent of insert-if-absent.
func (s *JSONStore) AddEquipment(_ context.Context, rec EquipmentRecord) (EquipmentRecord, error) {
	rec, err := validateEquipment(rec)
	if err != nil {
		return EquipmentRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadJSON[EquipmentRecord](s.equipmentsPath)
	if err != nil {
		return EquipmentRecord{}, err
	}
	for _, it := range items {
		if it.QRCode == rec.QRCode {
			return EquipmentRecord{}, ErrDuplicateQRCode
		}
	}
	items = append(items, rec)
	if err := saveJSON(s.equipmentsPath, items); err != nil {
		return EquipmentRecord{}, err
	}
	return rec, nil
}

// GetEquipment returns the record for a QR code.
func (s *JSONStore) GetEquipment(_ context.Context, qrCode string) (EquipmentRecord, error) {
	code, err := NormalizeQRCode(qrCode)
	if err != nil {
		return EquipmentRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadJSON[EquipmentRecord](s.equipmentsPath)
	if err != nil {
		return EquipmentRecord{}, err
	}
	for _, it := range items {
		if it.QRCode == code {
			return it, nil
		}
	}
	return EquipmentRecord{}, ErrNotFound
}

// ListEquipment returns all records in file order.
func (s *JSONStore) ListEquipment(_ context.Context) ([]EquipmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadJSON[EquipmentRecord](s.equipmentsPath)
}

// UpdateEquipmentStatus changes a record's status.
func (s *JSONStore) UpdateEquipmentStatus(_ context.Context, qrCode, status string) (EquipmentRecord, error) {
	code, err := NormalizeQRCode(qrCode)
	if err != nil {
		return EquipmentRecord{}, err
	}
	if !validStatuses[status] {
		return EquipmentRecord{}, FieldError{Field: "status", Message: "must be one of disponible, maintenance, hors_service"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadJSON[EquipmentRecord](s.equipmentsPath)
	if err != nil {
		return EquipmentRecord{}, err
	}
	for i, it := range items {
		if it.QRCode == code {
			items[i].Status = status
			if err := saveJSON(s.equipmentsPath, items); err != nil {
				return EquipmentRecord{}, err
			}
			return items[i], nil
		}
	}
	return EquipmentRecord{}, ErrNotFound
}

// DeleteEquipment removes a record.
func (s *JSONStore) DeleteEquipment(_ context.Context, qrCode string) error {
	code, err := NormalizeQRCode(qrCode)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadJSON[EquipmentRecord](s.equipmentsPath)
	if err != nil {
		return err
	}
	for i, it := range items {
		if it.QRCode == code {
			items = append(items[:i], items[i+1:]...)
			return saveJSON(s.equipmentsPath, items)
		}
	}
	return ErrNotFound
}

// AddUsage validates and appends a usage record.
func (s *JSONStore) AddUsage(_ context.Context, rec UsageRecord) (UsageRecord, error) {
	rec, err := validateUsage(rec)
	if err != nil {
		return UsageRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadJSON[UsageRecord](s.usagesPath)
	if err != nil {
		return UsageRecord{}, err
	}
	items = append(items, rec)
	if err := saveJSON(s.usagesPath, items); err != nil {
		return UsageRecord{}, err
	}
	return rec, nil
}

// ListUsages returns usage records, optionally filtered by QR code.
func (s *JSONStore) ListUsages(_ context.Context, qrCode string) ([]UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadJSON[UsageRecord](s.usagesPath)
	if err != nil {
		return nil, err
	}
	if qrCode == "" {
		return items, nil
	}
	code, err := NormalizeQRCode(qrCode)
	if err != nil {
		return nil, err
	}
	out := make([]UsageRecord, 0)
	for _, it := range items {
		if it.QRCode == code {
			out = append(out, it)
		}
	}
	return out, nil
}
