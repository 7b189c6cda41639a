package qr

import (
	"strings"
	"testing"
	"time"
)

func TestEquipmentPayloadFormat(t *testing.T) {
	p, err := EquipmentPayload("EAFC-TIC", "EQ001", "Microscope", "B12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != "EAFC-TIC_EQ001_Microscope_B12" {
		t.Fatalf("unexpected payload: %q", p)
	}
}

func TestEquipmentPayloadTrimsComponents(t *testing.T) {
	p, err := EquipmentPayload(" EAFC-TIC ", " EQ001 ", " Microscope ", " B12 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != "EAFC-TIC_EQ001_Microscope_B12" {
		t.Fatalf("unexpected payload: %q", p)
	}
}

func TestEquipmentPayloadRejectsEmptyComponents(t *testing.T) {
	cases := [][4]string{
		{"", "EQ001", "Microscope", "B12"},
		{"EAFC-TIC", "", "Microscope", "B12"},
		{"EAFC-TIC", "EQ001", "", "B12"},
		{"EAFC-TIC", "EQ001", "Microscope", ""},
	}
	for _, tc := range cases {
		if _, err := EquipmentPayload(tc[0], tc[1], tc[2], tc[3]); err == nil {
			t.Fatalf("expected error for components %v", tc)
		}
	}
}

func TestEquipmentPayloadRejectsSessionNamespaceCollision(t *testing.T) {
	if _, err := EquipmentPayload("session", "EQ001", "Microscope", "B12"); err == nil {
		t.Fatal("expected collision error for institution in the session namespace")
	}
	if _, err := EquipmentPayload("SESSIONVILLE", "EQ001", "Microscope", "B12"); err == nil {
		t.Fatal("expected collision error for institution with SESSION prefix")
	}
}

func TestSessionPayloadFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	p := SessionPayload("abc-123", at)
	if p != "SESSION_abc-123_20260314092653" {
		t.Fatalf("unexpected payload: %q", p)
	}
}

func TestSessionPayloadUsesUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, loc) // 09:00 UTC
	p := SessionPayload("s1", at)
	if !strings.HasSuffix(p, "_20260314090000") {
		t.Fatalf("timestamp not rendered in UTC: %q", p)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		payload string
		want    Kind
	}{
		{"SESSION_abc_20260314092653", KindSession},
		{"EAFC-TIC_EQ001_Microscope_B12", KindEquipment},
		{"", KindUnknown},
		{"   ", KindUnknown},
		{"hello", KindUnknown},
		{"a_b", KindUnknown},
		{"a_b_c_d", KindEquipment},
	}
	for _, tc := range cases {
		if got := Classify(tc.payload); got != tc.want {
			t.Fatalf("Classify(%q) = %v, want %v", tc.payload, got, tc.want)
		}
	}
}

func TestNamespacesDisjoint(t *testing.T) {
	// A valid equipment payload must never classify as a session.
	p, err := EquipmentPayload("EAFC-TIC", "EQ001", "Microscope", "B12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Classify(p) != KindEquipment {
		t.Fatalf("equipment payload classified as %v", Classify(p))
	}
	s := SessionPayload("id", time.Now())
	if Classify(s) != KindSession {
		t.Fatalf("session payload classified as %v", Classify(s))
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	at := time.Now().UTC()
	p := SessionPayload("9f8e7d6c", at)
	id, ok := SessionID(p)
	if !ok || id != "9f8e7d6c" {
		t.Fatalf("SessionID(%q) = %q, %v", p, id, ok)
	}
}

func TestSessionIDKeepsEmbeddedSeparators(t *testing.T) {
	// UUIDs contain no underscores, but an id with one must still resolve:
	// only the trailing timestamp is stripped.
	p := SessionPayload("a_b", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	id, ok := SessionID(p)
	if !ok || id != "a_b" {
		t.Fatalf("SessionID(%q) = %q, %v", p, id, ok)
	}
}

func TestSessionIDRejectsMalformed(t *testing.T) {
	for _, p := range []string{"", "SESSION_", "SESSION_abc", "EAFC_EQ1_T_R", "SESSION_abc_"} {
		if _, ok := SessionID(p); ok {
			t.Fatalf("expected SessionID(%q) to fail", p)
		}
	}
}
