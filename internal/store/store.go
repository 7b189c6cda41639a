// Package store is the standalone inventory prototype: a small
// equipment/usage record store keyed by short 6-character QR codes, kept
// apart from the primary session workflow. Two interchangeable
// implementations exist behind the Store interface — a JSON-file store
// and a MySQL-backed one — and a deployment wires exactly one of them;
// they are never combined as parallel sources of truth.
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Statuses an inventory equipment record may carry.
const (
	StatusAvailable    = "disponible"
	StatusMaintenance  = "maintenance"
	StatusOutOfService = "hors_service"
)

// Usage record types.
const (
	UsageScan        = "scan"
	UsageMaintenance = "maintenance"
	UsageInventory   = "inventaire"
)

var validStatuses = map[string]bool{
	StatusAvailable:    true,
	StatusMaintenance:  true,
	StatusOutOfService: true,
}

var validUsageTypes = map[string]bool{
	UsageScan:        true,
	UsageMaintenance: true,
	UsageInventory:   true,
}

// ErrNotFound is returned when no record matches the given QR code.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateQRCode is returned when an insert would reuse an existing
// QR code. Both implementations enforce this on the insert itself.
var ErrDuplicateQRCode = errors.New("qr code already exists")

// FieldError reports a validation failure on a single field. Handlers
// render it as a 400 with the field name so callers can fix their input.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

// EquipmentRecord is one inventory equipment entry. The QR code is the
// record's identity.
type EquipmentRecord struct {
	QRCode      string `json:"qr_code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// UsageRecord is one usage entry against an inventory QR code.
type UsageRecord struct {
	ID        string `json:"id"`
	QRCode    string `json:"qr_code"`
	Type      string `json:"type"`
	User      string `json:"user,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Store is the prototype persistence contract: CRUD plus
// uniqueness-checked insert on the QR code.
type Store interface {
	AddEquipment(ctx context.Context, rec EquipmentRecord) (EquipmentRecord, error)
	GetEquipment(ctx context.Context, qrCode string) (EquipmentRecord, error)
	ListEquipment(ctx context.Context) ([]EquipmentRecord, error)
	UpdateEquipmentStatus(ctx context.Context, qrCode, status string) (EquipmentRecord, error)
	DeleteEquipment(ctx context.Context, qrCode string) error
	AddUsage(ctx context.Context, rec UsageRecord) (UsageRecord, error)
	ListUsages(ctx context.Context, qrCode string) ([]UsageRecord, error)
}

// NormalizeQRCode validates the 6-character alphanumeric format and
// upper-cases the code for consistency.
func NormalizeQRCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 6 {
		return "", FieldError{Field: "qr_code", Message: "must be exactly 6 characters"}
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", FieldError{Field: "qr_code", Message: "must contain only letters and digits"}
		}
	}
	return code, nil
}

const qrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateQRCode returns a random 6-character code from the inventory
// alphabet. Callers retry on ErrDuplicateQRCode from the insert.
func GenerateQRCode() (string, error) {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(qrAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(qrAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// validateEquipment checks and normalizes a record, filling defaults.
// A missing QR code is generated.
func validateEquipment(rec EquipmentRecord) (EquipmentRecord, error) {
	if rec.QRCode != "" {
		code, err := NormalizeQRCode(rec.QRCode)
		if err != nil {
			return EquipmentRecord{}, err
		}
		rec.QRCode = code
	} else {
		code, err := GenerateQRCode()
		if err != nil {
			return EquipmentRecord{}, err
		}
		rec.QRCode = code
	}
	rec.Name = strings.TrimSpace(rec.Name)
	if len(rec.Name) < 2 || len(rec.Name) > 100 {
		return EquipmentRecord{}, FieldError{Field: "name", Message: "must be between 2 and 100 characters"}
	}
	if len(rec.Description) > 500 {
		return EquipmentRecord{}, FieldError{Field: "description", Message: "must not exceed 500 characters"}
	}
	if rec.Status == "" {
		rec.Status = StatusAvailable
	}
	if !validStatuses[rec.Status] {
		return EquipmentRecord{}, FieldError{Field: "status", Message: "must be one of disponible, maintenance, hors_service"}
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	} else if _, err := time.Parse(time.RFC3339, rec.CreatedAt); err != nil {
		return EquipmentRecord{}, FieldError{Field: "created_at", Message: "must be a valid RFC3339 timestamp"}
	}
	return rec, nil
}

// validateUsage checks and normalizes a usage record.
func validateUsage(rec UsageRecord) (UsageRecord, error) {
	code, err := NormalizeQRCode(rec.QRCode)
	if err != nil {
		return UsageRecord{}, err
	}
	rec.QRCode = code
	if rec.Type == "" {
		rec.Type = UsageScan
	}
	if !validUsageTypes[rec.Type] {
		return UsageRecord{}, FieldError{Field: "type", Message: "must be one of scan, maintenance, inventaire"}
	}
	if rec.User != "" {
		rec.User = strings.TrimSpace(rec.User)
		if len(rec.User) < 2 || len(rec.User) > 100 {
			return UsageRecord{}, FieldError{Field: "user", Message: "must be between 2 and 100 characters"}
		}
	}
	if len(rec.Notes) > 1000 {
		return UsageRecord{}, FieldError{Field: "notes", Message: "must not exceed 1000 characters"}
	}
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	} else if _, err := time.Parse(time.RFC3339, rec.Timestamp); err != nil {
		return UsageRecord{}, FieldError{Field: "timestamp", Message: "must be a valid RFC3339 timestamp"}
	}
	return rec, nil
}
