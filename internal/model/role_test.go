package model

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"ADMIN", RoleAdmin},
		{"admin", RoleAdmin},
		{" Teacher ", RoleTeacher},
		{"student", RoleStudent},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "OWNER", "superadmin", "ADMINS"} {
		if _, err := ParseRole(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleAdmin.Valid() || !RoleTeacher.Valid() || !RoleStudent.Valid() {
		t.Fatal("enumerated roles must be valid")
	}
	if Role("GUEST").Valid() {
		t.Fatal("unknown role must be invalid")
	}
}

func TestRolePredicates(t *testing.T) {
	if !RoleAdmin.CanManageUsers() || RoleTeacher.CanManageUsers() || RoleStudent.CanManageUsers() {
		t.Fatal("only admins manage users")
	}
	if !RoleAdmin.CanManageEquipment() || RoleTeacher.CanManageEquipment() {
		t.Fatal("only admins manage equipment")
	}
	if !RoleAdmin.CanOpenSession() || !RoleTeacher.CanOpenSession() || RoleStudent.CanOpenSession() {
		t.Fatal("admins and teachers open sessions")
	}
	if !RoleAdmin.CanViewSessionQR() || !RoleTeacher.CanViewSessionQR() || RoleStudent.CanViewSessionQR() {
		t.Fatal("students never see the session QR endpoint")
	}
}

func TestCanCloseSession(t *testing.T) {
	if !RoleAdmin.CanCloseSession("someone@school.be", "owner@school.be") {
		t.Fatal("admin closes any session")
	}
	if !RoleTeacher.CanCloseSession("owner@school.be", "owner@school.be") {
		t.Fatal("teacher closes their own session")
	}
	if RoleTeacher.CanCloseSession("other@school.be", "owner@school.be") {
		t.Fatal("teacher must not close another teacher's session")
	}
	if RoleStudent.CanCloseSession("s@school.be", "s@school.be") {
		t.Fatal("students never close sessions")
	}
}

func TestRoleRankOrdering(t *testing.T) {
	if !(RoleAdmin.Rank() > RoleTeacher.Rank() && RoleTeacher.Rank() > RoleStudent.Rank()) {
		t.Fatal("rank must order admin > teacher > student")
	}
}
