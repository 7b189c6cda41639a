package store

import (
	"context"
	"errors"
	"testing"
)

func newTestJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	s, err := NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewJSONStore failed: %v", err)
	}
	return s
}

func TestAddAndGetEquipment(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	created, err := s.AddEquipment(ctx, EquipmentRecord{QRCode: "abc123", Name: "Oscilloscope"})
	if err != nil {
		t.Fatalf("AddEquipment failed: %v", err)
	}
	if created.QRCode != "ABC123" {
		t.Fatalf("qr code not normalized: %q", created.QRCode)
	}
	if created.Status != StatusAvailable {
		t.Fatalf("default status not applied: %q", created.Status)
	}
	if created.CreatedAt == "" {
		t.Fatal("created_at not filled")
	}

	got, err := s.GetEquipment(ctx, "ABC123")
	if err != nil {
		t.Fatalf("GetEquipment failed: %v", err)
	}
	if got.Name != "Oscilloscope" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestAddEquipmentGeneratesCode(t *testing.T) {
	s := newTestJSONStore(t)
	created, err := s.AddEquipment(context.Background(), EquipmentRecord{Name: "Projector"})
	if err != nil {
		t.Fatalf("AddEquipment failed: %v", err)
	}
	if _, err := NormalizeQRCode(created.QRCode); err != nil {
		t.Fatalf("generated code %q is not valid: %v", created.QRCode, err)
	}
}

func TestAddEquipmentDuplicateCode(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	if _, err := s.AddEquipment(ctx, EquipmentRecord{QRCode: "ABC123", Name: "Oscilloscope"}); err != nil {
		t.Fatalf("first AddEquipment failed: %v", err)
	}
	if _, err := s.AddEquipment(ctx, EquipmentRecord{QRCode: "abc123", Name: "Projector"}); err != ErrDuplicateQRCode {
		t.Fatalf("second AddEquipment = %v, want ErrDuplicateQRCode", err)
	}
}

func TestAddEquipmentValidation(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	var fe FieldError
	if _, err := s.AddEquipment(ctx, EquipmentRecord{QRCode: "AB", Name: "Oscilloscope"}); !errors.As(err, &fe) || fe.Field != "qr_code" {
		t.Fatalf("short qr code: got %v", err)
	}
	if _, err := s.AddEquipment(ctx, EquipmentRecord{Name: "x"}); !errors.As(err, &fe) || fe.Field != "name" {
		t.Fatalf("short name: got %v", err)
	}
	if _, err := s.AddEquipment(ctx, EquipmentRecord{Name: "Oscilloscope", Status: "broken"}); !errors.As(err, &fe) || fe.Field != "status" {
		t.Fatalf("bad status: got %v", err)
	}
}

func TestGetEquipmentNotFound(t *testing.T) {
	s := newTestJSONStore(t)
	if _, err := s.GetEquipment(context.Background(), "ZZZZZZ"); err != ErrNotFound {
		t.Fatalf("GetEquipment = %v, want ErrNotFound", err)
	}
}

func TestUpdateEquipmentStatus(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	if _, err := s.AddEquipment(ctx, EquipmentRecord{QRCode: "ABC123", Name: "Oscilloscope"}); err != nil {
		t.Fatalf("AddEquipment failed: %v", err)
	}

	rec, err := s.UpdateEquipmentStatus(ctx, "ABC123", StatusMaintenance)
	if err != nil {
		t.Fatalf("UpdateEquipmentStatus failed: %v", err)
	}
	if rec.Status != StatusMaintenance {
		t.Fatalf("status not updated: %q", rec.Status)
	}

	if _, err := s.UpdateEquipmentStatus(ctx, "ABC123", "broken"); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
	if _, err := s.UpdateEquipmentStatus(ctx, "ZZZZZZ", StatusAvailable); err != ErrNotFound {
		t.Fatalf("unknown code: got %v, want ErrNotFound", err)
	}
}

func TestDeleteEquipment(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	if _, err := s.AddEquipment(ctx, EquipmentRecord{QRCode: "ABC123", Name: "Oscilloscope"}); err != nil {
		t.Fatalf("AddEquipment failed: %v", err)
	}
	if err := s.DeleteEquipment(ctx, "ABC123"); err != nil {
		t.Fatalf("DeleteEquipment failed: %v", err)
	}
	if _, err := s.GetEquipment(ctx, "ABC123"); err != ErrNotFound {
		t.Fatalf("record still present after delete: %v", err)
	}
	if err := s.DeleteEquipment(ctx, "ABC123"); err != ErrNotFound {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestAddAndListUsages(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	u, err := s.AddUsage(ctx, UsageRecord{QRCode: "abc123", User: "Mme Dupont", Notes: "calibration"})
	if err != nil {
		t.Fatalf("AddUsage failed: %v", err)
	}
	if u.ID == "" {
		t.Fatal("usage id not generated")
	}
	if u.Type != UsageScan {
		t.Fatalf("default type not applied: %q", u.Type)
	}
	if u.Timestamp == "" {
		t.Fatal("timestamp not filled")
	}

	if _, err := s.AddUsage(ctx, UsageRecord{QRCode: "ABC123", Type: UsageMaintenance}); err != nil {
		t.Fatalf("AddUsage failed: %v", err)
	}
	if _, err := s.AddUsage(ctx, UsageRecord{QRCode: "XYZ789", Type: UsageInventory}); err != nil {
		t.Fatalf("AddUsage failed: %v", err)
	}

	got, err := s.ListUsages(ctx, "ABC123")
	if err != nil {
		t.Fatalf("ListUsages failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListUsages returned %d records, want 2", len(got))
	}

	all, err := s.ListUsages(ctx, "")
	if err != nil {
		t.Fatalf("ListUsages failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListUsages returned %d records, want 3", len(all))
	}
}

func TestAddUsageRejectsUnknownType(t *testing.T) {
	s := newTestJSONStore(t)
	var fe FieldError
	if _, err := s.AddUsage(context.Background(), UsageRecord{QRCode: "ABC123", Type: "repair"}); !errors.As(err, &fe) || fe.Field != "type" {
		t.Fatalf("expected field error on type, got %v", err)
	}
}

func TestNormalizeQRCode(t *testing.T) {
	code, err := NormalizeQRCode(" abc123 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "ABC123" {
		t.Fatalf("unexpected code: %q", code)
	}
	for _, bad := range []string{"", "ABC", "ABCDEFG", "ABC 12", "ABC-12"} {
		if _, err := NormalizeQRCode(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestGenerateQRCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateQRCode()
		if err != nil {
			t.Fatalf("GenerateQRCode failed: %v", err)
		}
		if _, err := NormalizeQRCode(code); err != nil {
			t.Fatalf("generated code %q is invalid: %v", code, err)
		}
	}
}
