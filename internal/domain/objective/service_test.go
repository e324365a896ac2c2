package objective

import (
	"context"
	"errors"
	"sync"
	"testing"

	"okr/internal/domain/employee"
	"okr/internal/shared"
	"okr/internal/tablestore"
)

type fakeNotifier struct {
	mu        sync.Mutex
	submitted []string
	decided   []string
	counts    []int
}

func (f *fakeNotifier) ObjectiveSubmitted(_ context.Context, supervisor employee.Employee, obj Objective, pendingCount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, supervisor.UserID)
	f.counts = append(f.counts, pendingCount)
}

func (f *fakeNotifier) ObjectiveDecided(_ context.Context, owner employee.Employee, obj Objective) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decided = append(f.decided, owner.UserID+":"+obj.Status)
}

type fixture struct {
	svc       *Service
	employees *employee.Service
	notifier  *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := tablestore.NewMemory(nil)
	employees := employee.NewService(mem, "employees")
	notifier := &fakeNotifier{}
	svc := NewService(mem, "objectives", employees, notifier)

	ctx := context.Background()
	seed := []employee.Employee{
		{UserID: "ceo", Name: "Casey", Role: employee.RoleSupervisor},
		{UserID: "boss", Name: "Blake", Role: employee.RoleSupervisor, SupervisorID: "ceo"},
		{UserID: "emp1", Name: "Eve", Role: employee.RoleEmployee, SupervisorID: "boss"},
		{UserID: "emp2", Name: "Omar", Role: employee.RoleEmployee, SupervisorID: "boss"},
	}
	for _, e := range seed {
		if _, err := employees.Create(ctx, e); err != nil {
			t.Fatalf("seed %s failed: %v", e.UserID, err)
		}
	}
	return &fixture{svc: svc, employees: employees, notifier: notifier}
}

func (f *fixture) employee(t *testing.T, userID string) employee.Employee {
	t.Helper()
	emp, err := f.employees.ByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("lookup %s failed: %v", userID, err)
	}
	return emp
}

func (f *fixture) createDraft(t *testing.T, ownerID string) Objective {
	t.Helper()
	obj, err := f.svc.Create(context.Background(), f.employee(t, ownerID), CreateInput{
		Title:      "Ship v2",
		Type:       TypeBusiness,
		Weight:     30,
		Target:     "v2 in production",
		Priority:   PriorityHigh,
		DueDate:    "2026-06-30",
		PeriodID:   "2026H1",
		PeriodName: "First Half 2026",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return obj
}

func TestLifecycleDraftToApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	obj := f.createDraft(t, "emp1")
	if obj.Status != StatusDraft {
		t.Fatalf("expected draft, got %s", obj.Status)
	}
	if obj.ObjectiveID == "" || obj.CreatedAt == "" {
		t.Fatalf("missing stamps: %+v", obj)
	}
	if obj.Type != TypeBusiness || obj.Target != "v2 in production" || obj.DueDate != "2026-06-30" {
		t.Fatalf("descriptive fields not stored: %+v", obj)
	}

	submitted, err := f.svc.Submit(ctx, "emp1", obj.ObjectiveID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submitted.Status != StatusPending || submitted.SubmittedAt == "" {
		t.Fatalf("unexpected submit result: %+v", submitted)
	}
	if len(f.notifier.submitted) != 1 || f.notifier.submitted[0] != "boss" {
		t.Fatalf("supervisor not notified: %v", f.notifier.submitted)
	}
	if f.notifier.counts[0] != 1 {
		t.Fatalf("expected pending count 1, got %d", f.notifier.counts[0])
	}

	approved, err := f.svc.Approve(ctx, f.employee(t, "boss"), obj.ObjectiveID, "Looks good")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != StatusApproved || approved.DecidedAt == "" {
		t.Fatalf("unexpected approve result: %+v", approved)
	}
	if approved.ApproverID != "boss" || approved.ApproverName != "Blake" || approved.ApproverComment != "Looks good" {
		t.Fatalf("approver fields not stamped: %+v", approved)
	}
	if len(f.notifier.decided) != 1 || f.notifier.decided[0] != "emp1:approved" {
		t.Fatalf("owner not notified: %v", f.notifier.decided)
	}
}

func TestRejectKeepsComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	obj := f.createDraft(t, "emp1")
	if _, err := f.svc.Submit(ctx, "emp1", obj.ObjectiveID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	rejected, err := f.svc.Reject(ctx, f.employee(t, "boss"), obj.ObjectiveID, "too vague")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != StatusRejected || rejected.ApproverComment != "too vague" {
		t.Fatalf("unexpected reject result: %+v", rejected)
	}
}

func TestCreateDefaultsTypeAndLinksParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.createDraft(t, "emp1")
	child, err := f.svc.Create(ctx, f.employee(t, "emp1"), CreateInput{
		Title:      "Ship v2 docs",
		Weight:     10,
		Priority:   PriorityLow,
		ParentID:   parent.ObjectiveID,
		PeriodID:   "2026H1",
		PeriodName: "First Half 2026",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if child.Type != TypeBusiness {
		t.Fatalf("expected business type default, got %q", child.Type)
	}
	if child.ParentID != parent.ObjectiveID {
		t.Fatalf("parent link not stored: %+v", child)
	}
}

func TestUpdateEditsDescriptiveFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	obj := f.createDraft(t, "emp1")
	typ := TypeDevelopment
	target := "two conference talks"
	dueDate := "2026-05-31"
	updated, err := f.svc.Update(ctx, "emp1", obj.ObjectiveID, UpdateInput{
		Type:    &typ,
		Target:  &target,
		DueDate: &dueDate,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Type != TypeDevelopment || updated.Target != target || updated.DueDate != dueDate {
		t.Fatalf("descriptive fields not updated: %+v", updated)
	}
	if updated.Title != obj.Title {
		t.Fatalf("untouched field changed: %+v", updated)
	}
}

func TestOnlyOwnerMayEditDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	obj := f.createDraft(t, "emp1")
	title := "hijacked"
	if _, err := f.svc.Update(ctx, "emp2", obj.ObjectiveID, UpdateInput{Title: &title}); !errors.Is(err, shared.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, "emp2", obj.ObjectiveID); !errors.Is(err, shared.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.Submit(ctx, "emp2", obj.ObjectiveID); !errors.Is(err, shared.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestPendingObjectiveIsLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	obj := f.createDraft(t, "emp1")
	if _, err := f.svc.Submit(ctx, "emp1", obj.ObjectiveID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	title := "late edit"
	if _, err := f.svc.Update(ctx, "emp1", obj.ObjectiveID, UpdateInput{Title: &title}); !errors.Is(err, shared.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, "emp1", obj.ObjectiveID); !errors.Is(err, shared.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSkipLevelManagerMayNotDecide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	obj := f.createDraft(t, "emp1")
	if _, err := f.svc.Submit(ctx, "emp1", obj.ObjectiveID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := f.svc.Approve(ctx, f.employee(t, "ceo"), obj.ObjectiveID, ""); !errors.Is(err, shared.ErrForbidden) {
		t.Fatalf("expected forbidden for skip-level approval, got %v", err)
	}
}

func TestConcurrentSubmitExactlyOneSucceeds(t *testing.T) {
	f := newFixture(t)
	obj := f.createDraft(t, "emp1")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Submit(context.Background(), "emp1", obj.ObjectiveID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		failed++
		if !errors.Is(err, shared.ErrForbidden) {
			t.Fatalf("loser should get forbidden, got %v", err)
		}
	}
	if succeeded != 1 || failed != 1 {
		t.Fatalf("expected exactly one winner, got %d winners %d losers", succeeded, failed)
	}
	if len(f.notifier.submitted) != 1 {
		t.Fatalf("supervisor should be notified exactly once, got %d", len(f.notifier.submitted))
	}
}

func TestPendingApprovalsFiltersToDirectSubordinates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o1 := f.createDraft(t, "emp1")
	o2 := f.createDraft(t, "emp2")
	if _, err := f.svc.Submit(ctx, "emp1", o1.ObjectiveID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := f.svc.Submit(ctx, "emp2", o2.ObjectiveID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	pending, err := f.svc.PendingApprovals(ctx, "boss")
	if err != nil {
		t.Fatalf("pending approvals failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}

	// The ceo supervises only boss, who has nothing pending.
	pending, err = f.svc.PendingApprovals(ctx, "ceo")
	if err != nil {
		t.Fatalf("pending approvals failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending for ceo, got %d", len(pending))
	}
}

func TestMineFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o1 := f.createDraft(t, "emp1")
	f.createDraft(t, "emp1")
	if _, err := f.svc.Submit(ctx, "emp1", o1.ObjectiveID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	drafts, err := f.svc.Mine(ctx, "emp1", StatusDraft)
	if err != nil {
		t.Fatalf("mine failed: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}

	all, err := f.svc.Mine(ctx, "emp1", "")
	if err != nil {
		t.Fatalf("mine failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 objectives, got %d", len(all))
	}
}
