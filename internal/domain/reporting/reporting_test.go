package reporting

import (
	"context"
	"strings"
	"testing"

	"okr/internal/domain/completion"
	"okr/internal/domain/employee"
	"okr/internal/domain/objective"
	"okr/internal/tablestore"
)

func TestCompletionRateRounding(t *testing.T) {
	cases := []struct {
		approved, total int
		want            float64
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 8, 13},
	}
	for _, tc := range cases {
		if got := completionRate(tc.approved, tc.total); got != tc.want {
			t.Errorf("completionRate(%d, %d) = %v, want %v", tc.approved, tc.total, got, tc.want)
		}
	}
}

func TestCountObjectives(t *testing.T) {
	objectives := []objective.Objective{
		{Status: objective.StatusApproved},
		{Status: objective.StatusApproved},
		{Status: objective.StatusPending},
		{Status: objective.StatusRejected},
		{Status: objective.StatusDraft},
	}
	total, approved, pending, rejected := countObjectives(objectives)
	if total != 5 || approved != 2 || pending != 1 || rejected != 1 {
		t.Fatalf("unexpected counts: total=%d approved=%d pending=%d rejected=%d", total, approved, pending, rejected)
	}
}

func TestCountCompletionsAveragesCalibration(t *testing.T) {
	completions := []completion.Completion{
		{Status: completion.StatusScored, CalibrationScore: 80},
		{Status: completion.StatusArchived, CalibrationScore: 90},
		{Status: completion.StatusSubmitted},
		{Status: completion.StatusDraft},
	}
	total, scored, pendingScores, average := countCompletions(completions)
	if total != 4 || scored != 2 || pendingScores != 1 {
		t.Fatalf("unexpected counts: total=%d scored=%d pending=%d", total, scored, pendingScores)
	}
	if average != 85 {
		t.Fatalf("unexpected average %v", average)
	}
}

func TestDepartmentProgress(t *testing.T) {
	employees := []employee.Employee{
		{UserID: "e1", Department: "Eng"},
		{UserID: "e2", Department: "Eng"},
		{UserID: "d1", Department: "Design"},
		{UserID: "x1"},
	}
	objectives := []objective.Objective{
		{UserID: "e1", Status: objective.StatusApproved},
		{UserID: "e1", Status: objective.StatusPending},
		{UserID: "e2", Status: objective.StatusApproved},
		{UserID: "d1", Status: objective.StatusRejected},
	}
	completions := []completion.Completion{
		{UserID: "e1", Status: completion.StatusScored, CalibrationScore: 80},
		{UserID: "e2", Status: completion.StatusScored, CalibrationScore: 70},
		{UserID: "d1", Status: completion.StatusDraft},
	}

	progress := departmentProgress(employees, objectives, completions)
	if len(progress) != 3 {
		t.Fatalf("expected 3 departments, got %d", len(progress))
	}

	// Sorted by department name: Design, Eng, Unassigned.
	design, eng, unassigned := progress[0], progress[1], progress[2]
	if design.Department != "Design" || eng.Department != "Eng" || unassigned.Department != "Unassigned" {
		t.Fatalf("unexpected ordering: %+v", progress)
	}
	if eng.Employees != 2 || eng.Objectives != 3 || eng.Approved != 2 {
		t.Fatalf("unexpected eng rollup: %+v", eng)
	}
	if eng.CompletionRate != 67 {
		t.Fatalf("unexpected eng completion rate %v", eng.CompletionRate)
	}
	if eng.AverageScore != 75 {
		t.Fatalf("unexpected eng average %v", eng.AverageScore)
	}
	if design.CompletionRate != 0 || design.ScoredAssessments != 0 {
		t.Fatalf("unexpected design rollup: %+v", design)
	}
}

func TestEmployeeStatsKeepsSeedOrder(t *testing.T) {
	employees := []employee.Employee{
		{UserID: "e1", Name: "A"},
		{UserID: "e2", Name: "B"},
	}
	objectives := []objective.Objective{
		{UserID: "e2", Status: objective.StatusApproved},
	}
	stats := employeeStats(employees, objectives, nil)
	if len(stats) != 2 || stats[0].UserID != "e1" || stats[1].UserID != "e2" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats[1].CompletionRate != 100 {
		t.Fatalf("unexpected rate %v", stats[1].CompletionRate)
	}
}

func TestRenderCSV(t *testing.T) {
	rows := [][]string{{"e1", "Eve", "Eng", "2", "1", "50%", "85.0"}}
	data, err := renderCSV(rows)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "User ID,Name,Department") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "e1,Eve,Eng,2,1,50%,85.0" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	rows := [][]string{{"e1", "Eve", "Eng", "2", "1", "50%", "85.0"}}
	data, err := renderPDF("2026H1", rows)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Fatalf("output does not look like a PDF (%d bytes)", len(data))
	}
}

type noopNotifier struct{}

func (noopNotifier) ObjectiveSubmitted(context.Context, employee.Employee, objective.Objective, int) {
}
func (noopNotifier) ObjectiveDecided(context.Context, employee.Employee, objective.Objective) {}
func (noopNotifier) CompletionSubmitted(context.Context, employee.Employee, completion.Completion) {}
func (noopNotifier) CompletionScored(context.Context, employee.Employee, completion.Completion)   {}
func (noopNotifier) UnlockRequested(context.Context, []employee.Employee, employee.Employee, completion.Completion, string) {
}
func (noopNotifier) CompletionReminder(context.Context, employee.Employee, objective.Objective) {}

func newServiceFixture(t *testing.T) *Service {
	t.Helper()
	mem := tablestore.NewMemory(nil)
	employees := employee.NewService(mem, "employees")
	objectives := objective.NewService(mem, "objectives", employees, noopNotifier{})
	completions := completion.NewService(mem, "completions", employees, objectives, noopNotifier{})
	return NewService(employees, objectives, completions)
}

// Statistics over live services is exercised through the journey test;
// here a focused sanity check with empty stores.
func TestStatisticsEmptyStores(t *testing.T) {
	f := newServiceFixture(t)
	stats, err := f.Statistics(context.Background(), "")
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.TotalObjectives != 0 || stats.CompletionRate != 0 || stats.AverageScore != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
