// Package reporting computes period statistics over objectives and
// completions. The record store has no aggregation primitives, so all
// rollups are computed here after a full fetch.
package reporting

import (
	"context"
	"math"
	"sort"

	"okr/internal/domain/completion"
	"okr/internal/domain/employee"
	"okr/internal/domain/objective"
)

type Service struct {
	employees   *employee.Service
	objectives  *objective.Service
	completions *completion.Service
}

func NewService(employees *employee.Service, objectives *objective.Service, completions *completion.Service) *Service {
	return &Service{employees: employees, objectives: objectives, completions: completions}
}

// Statistics is the admin dashboard headline rollup.
type Statistics struct {
	PeriodID           string  `json:"periodId,omitempty"`
	TotalEmployees     int     `json:"totalEmployees"`
	TotalObjectives    int     `json:"totalObjectives"`
	ApprovedObjectives int     `json:"approvedObjectives"`
	PendingObjectives  int     `json:"pendingObjectives"`
	RejectedObjectives int     `json:"rejectedObjectives"`
	CompletionRate     float64 `json:"completionRate"`
	TotalCompletions   int     `json:"totalCompletions"`
	ScoredCompletions  int     `json:"scoredCompletions"`
	AverageScore       float64 `json:"averageScore"`
	PendingScores      int     `json:"pendingScores"`
}

func (s *Service) Statistics(ctx context.Context, periodID string) (Statistics, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return Statistics{}, err
	}
	objectives, err := s.listObjectives(ctx, periodID)
	if err != nil {
		return Statistics{}, err
	}
	completions, err := s.listCompletions(ctx, periodID)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		PeriodID:       periodID,
		TotalEmployees: len(employees),
	}
	stats.TotalObjectives, stats.ApprovedObjectives, stats.PendingObjectives, stats.RejectedObjectives = countObjectives(objectives)
	stats.CompletionRate = completionRate(stats.ApprovedObjectives, stats.TotalObjectives)
	stats.TotalCompletions, stats.ScoredCompletions, stats.PendingScores, stats.AverageScore = countCompletions(completions)
	return stats, nil
}

// Progress reports how far each department has come in a period.
type Progress struct {
	Department        string  `json:"department"`
	Employees         int     `json:"employees"`
	Objectives        int     `json:"objectives"`
	Approved          int     `json:"approved"`
	CompletionRate    float64 `json:"completionRate"`
	ScoredAssessments int     `json:"scoredAssessments"`
	AverageScore      float64 `json:"averageScore"`
}

func (s *Service) Progress(ctx context.Context, periodID string) ([]Progress, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	objectives, err := s.listObjectives(ctx, periodID)
	if err != nil {
		return nil, err
	}
	completions, err := s.listCompletions(ctx, periodID)
	if err != nil {
		return nil, err
	}
	return departmentProgress(employees, objectives, completions), nil
}

// EmployeeStats is the per-person rollup in a period.
type EmployeeStats struct {
	UserID         string  `json:"userId"`
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	Objectives     int     `json:"objectives"`
	Approved       int     `json:"approved"`
	CompletionRate float64 `json:"completionRate"`
	AverageScore   float64 `json:"averageScore"`
}

// EmployeeStatsPage is an in-memory page of per-employee rollups.
type EmployeeStatsPage struct {
	Items    []EmployeeStats `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

func (s *Service) EmployeeStats(ctx context.Context, periodID string, page, pageSize int) (EmployeeStatsPage, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return EmployeeStatsPage{}, err
	}
	objectives, err := s.listObjectives(ctx, periodID)
	if err != nil {
		return EmployeeStatsPage{}, err
	}
	completions, err := s.listCompletions(ctx, periodID)
	if err != nil {
		return EmployeeStatsPage{}, err
	}

	all := employeeStats(employees, objectives, completions)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return EmployeeStatsPage{
		Items:    all[start:end],
		Total:    len(all),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// DepartmentStats is Progress for a single department.
func (s *Service) DepartmentStats(ctx context.Context, department, periodID string) (Progress, error) {
	all, err := s.Progress(ctx, periodID)
	if err != nil {
		return Progress{}, err
	}
	for _, p := range all {
		if p.Department == department {
			return p, nil
		}
	}
	return Progress{Department: department}, nil
}

func (s *Service) listObjectives(ctx context.Context, periodID string) ([]objective.Objective, error) {
	if periodID == "" {
		return s.objectives.All(ctx)
	}
	return s.objectives.ByPeriod(ctx, periodID)
}

func (s *Service) listCompletions(ctx context.Context, periodID string) ([]completion.Completion, error) {
	if periodID == "" {
		return s.completions.All(ctx)
	}
	return s.completions.ByPeriod(ctx, periodID)
}

func countObjectives(objectives []objective.Objective) (total, approved, pending, rejected int) {
	total = len(objectives)
	for _, o := range objectives {
		switch o.Status {
		case objective.StatusApproved:
			approved++
		case objective.StatusPending:
			pending++
		case objective.StatusRejected:
			rejected++
		}
	}
	return total, approved, pending, rejected
}

func countCompletions(completions []completion.Completion) (total, scored, pendingScores int, average float64) {
	total = len(completions)
	var sum float64
	for _, c := range completions {
		switch c.Status {
		case completion.StatusScored, completion.StatusArchived:
			scored++
			sum += c.CalibrationScore
		case completion.StatusSubmitted:
			pendingScores++
		}
	}
	if scored > 0 {
		average = round1(sum / float64(scored))
	}
	return total, scored, pendingScores, average
}

// completionRate is approved objectives over total, as a whole
// percentage.
func completionRate(approved, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(approved) / float64(total) * 100)
}

func departmentProgress(employees []employee.Employee, objectives []objective.Objective, completions []completion.Completion) []Progress {
	department := make(map[string]string, len(employees))
	byDept := map[string]*Progress{}
	for _, e := range employees {
		dept := e.Department
		if dept == "" {
			dept = "Unassigned"
		}
		department[e.UserID] = dept
		if _, ok := byDept[dept]; !ok {
			byDept[dept] = &Progress{Department: dept}
		}
		byDept[dept].Employees++
	}

	for _, o := range objectives {
		dept, ok := department[o.UserID]
		if !ok {
			continue
		}
		byDept[dept].Objectives++
		if o.Status == objective.StatusApproved {
			byDept[dept].Approved++
		}
	}

	scoreSum := map[string]float64{}
	for _, c := range completions {
		dept, ok := department[c.UserID]
		if !ok {
			continue
		}
		if c.Status == completion.StatusScored || c.Status == completion.StatusArchived {
			byDept[dept].ScoredAssessments++
			scoreSum[dept] += c.CalibrationScore
		}
	}

	out := make([]Progress, 0, len(byDept))
	for dept, p := range byDept {
		p.CompletionRate = completionRate(p.Approved, p.Objectives)
		if p.ScoredAssessments > 0 {
			p.AverageScore = round1(scoreSum[dept] / float64(p.ScoredAssessments))
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

func employeeStats(employees []employee.Employee, objectives []objective.Objective, completions []completion.Completion) []EmployeeStats {
	byUser := make(map[string]*EmployeeStats, len(employees))
	order := make([]string, 0, len(employees))
	for _, e := range employees {
		byUser[e.UserID] = &EmployeeStats{UserID: e.UserID, Name: e.Name, Department: e.Department}
		order = append(order, e.UserID)
	}

	for _, o := range objectives {
		st, ok := byUser[o.UserID]
		if !ok {
			continue
		}
		st.Objectives++
		if o.Status == objective.StatusApproved {
			st.Approved++
		}
	}

	scoreSum := map[string]float64{}
	scoreCount := map[string]int{}
	for _, c := range completions {
		if c.Status != completion.StatusScored && c.Status != completion.StatusArchived {
			continue
		}
		scoreSum[c.UserID] += c.CalibrationScore
		scoreCount[c.UserID]++
	}

	out := make([]EmployeeStats, 0, len(order))
	for _, uid := range order {
		st := byUser[uid]
		st.CompletionRate = completionRate(st.Approved, st.Objectives)
		if n := scoreCount[uid]; n > 0 {
			st.AverageScore = round1(scoreSum[uid] / float64(n))
		}
		out = append(out, *st)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
