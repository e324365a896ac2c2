package auth

import (
	"errors"
	"testing"
	"time"

	"okr/internal/domain/employee"
	"okr/internal/shared"
)

func TestTokenRoundTrip(t *testing.T) {
	emp := employee.Employee{UserID: "emp1", Name: "Eve", Role: employee.RoleSupervisor}
	raw, err := GenerateToken("secret", emp, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := ParseToken("secret", raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != "emp1" || claims.Name != "Eve" || claims.Role != employee.RoleSupervisor {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredTokenIsUnauthenticated(t *testing.T) {
	emp := employee.Employee{UserID: "emp1", Role: employee.RoleEmployee}
	raw, err := GenerateToken("secret", emp, time.Minute, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := ParseToken("secret", raw); !errors.Is(err, shared.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestWrongSecretIsUnauthenticated(t *testing.T) {
	emp := employee.Employee{UserID: "emp1", Role: employee.RoleEmployee}
	raw, err := GenerateToken("secret", emp, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := ParseToken("other", raw); !errors.Is(err, shared.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		role employee.Role
		perm Permission
		want bool
	}{
		{employee.RoleEmployee, PermObjectiveWrite, true},
		{employee.RoleEmployee, PermObjectiveGrade, false},
		{employee.RoleEmployee, PermEmployeeAdmin, false},
		{employee.RoleSupervisor, PermObjectiveGrade, true},
		{employee.RoleSupervisor, PermCompletionGrade, true},
		{employee.RoleSupervisor, PermReportRead, false},
		{employee.RoleAdmin, PermReportRead, true},
		{employee.RoleAdmin, PermLogRead, true},
		{employee.RoleAdmin, PermObjectiveWrite, true},
	}
	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.perm); got != tc.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}
