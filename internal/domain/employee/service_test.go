package employee

import (
	"context"
	"errors"
	"testing"

	"okr/internal/shared"
	"okr/internal/tablestore"
)

func newTestService() *Service {
	return NewService(tablestore.NewMemory(nil), "employees")
}

func TestByUserIDNotFound(t *testing.T) {
	svc := newTestService()
	if _, err := svc.ByUserID(context.Background(), "ghost"); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRejectsDuplicateUserID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, Employee{UserID: "emp1", Name: "Eve"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, Employee{UserID: "emp1", Name: "Imposter"}); !errors.Is(err, shared.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := newTestService()
	emp, err := svc.Create(context.Background(), Employee{UserID: "emp1", Name: "Eve"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if emp.Role != RoleEmployee {
		t.Fatalf("expected employee role default, got %s", emp.Role)
	}
	if emp.Status != StatusActive {
		t.Fatalf("expected active status default, got %s", emp.Status)
	}
}

func TestAdminsExcludesInactive(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	seed := []Employee{
		{UserID: "a1", Name: "Ada", Role: RoleAdmin},
		{UserID: "a2", Name: "Gone", Role: RoleAdmin, Status: StatusInactive},
		{UserID: "emp1", Name: "Eve"},
	}
	for _, e := range seed {
		if _, err := svc.Create(ctx, e); err != nil {
			t.Fatalf("seed %s failed: %v", e.UserID, err)
		}
	}

	admins, err := svc.Admins(ctx)
	if err != nil {
		t.Fatalf("admins failed: %v", err)
	}
	if len(admins) != 1 || admins[0].UserID != "a1" {
		t.Fatalf("expected only the active admin, got %+v", admins)
	}
}

func TestSupervisorRelationIsSingleLevel(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	seed := []Employee{
		{UserID: "boss", Name: "Boss", Role: RoleSupervisor},
		{UserID: "mid", Name: "Mid", Role: RoleSupervisor, SupervisorID: "boss"},
		{UserID: "emp1", Name: "Eve", SupervisorID: "mid"},
	}
	for _, e := range seed {
		if _, err := svc.Create(ctx, e); err != nil {
			t.Fatalf("seed %s failed: %v", e.UserID, err)
		}
	}

	ok, err := svc.IsSupervisorOf(ctx, "mid", "emp1")
	if err != nil || !ok {
		t.Fatalf("expected mid to supervise emp1, got ok=%v err=%v", ok, err)
	}

	// Skip-level: boss is not emp1's direct supervisor.
	ok, err = svc.IsSupervisorOf(ctx, "boss", "emp1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if ok {
		t.Fatal("skip-level manager must not count as supervisor")
	}

	subs, err := svc.Subordinates(ctx, "mid")
	if err != nil {
		t.Fatalf("subordinates failed: %v", err)
	}
	if len(subs) != 1 || subs[0].UserID != "emp1" {
		t.Fatalf("unexpected subordinates: %+v", subs)
	}
}

func TestUpdateIsPartial(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, Employee{UserID: "emp1", Name: "Eve", Department: "Eng"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dept := "Design"
	updated, err := svc.Update(ctx, "emp1", UpdateInput{Department: &dept})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Department != "Design" {
		t.Fatalf("department not updated: %+v", updated)
	}
	if updated.Name != "Eve" {
		t.Fatalf("name should be untouched: %+v", updated)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, Employee{UserID: "emp1", Name: "Eve"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, "emp1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.ByUserID(ctx, "emp1"); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
