package objective

import (
	"context"
	"errors"
	"fmt"
	"time"

	"okr/internal/domain/employee"
	"okr/internal/shared"
	"okr/internal/tablestore"
)

var (
	ErrNotFound     = fmt.Errorf("objective not found: %w", shared.ErrNotFound)
	ErrNotOwner     = fmt.Errorf("not the objective owner: %w", shared.ErrForbidden)
	ErrNotDraft     = fmt.Errorf("objective is not a draft: %w", shared.ErrForbidden)
	ErrNotPending   = fmt.Errorf("objective is not pending approval: %w", shared.ErrForbidden)
	ErrNotApprover  = fmt.Errorf("only the direct supervisor may decide: %w", shared.ErrForbidden)
	ErrNoSupervisor = fmt.Errorf("employee has no supervisor: %w", shared.ErrForbidden)
)

// Notifier delivers objective lifecycle notifications. Implementations
// never fail the calling transition; delivery problems are logged and
// dropped.
type Notifier interface {
	ObjectiveSubmitted(ctx context.Context, supervisor employee.Employee, obj Objective, pendingCount int)
	ObjectiveDecided(ctx context.Context, owner employee.Employee, obj Objective)
}

// Service owns the objective lifecycle: draft, pending, then approved
// or rejected by the owner's direct supervisor.
type Service struct {
	store     tablestore.API
	table     string
	employees *employee.Service
	notifier  Notifier
	locks     *shared.KeyedMutex
	now       func() time.Time
	newID     func() string
}

func NewService(store tablestore.API, tableID string, employees *employee.Service, notifier Notifier) *Service {
	return &Service{
		store:     store,
		table:     tableID,
		employees: employees,
		notifier:  notifier,
		locks:     shared.NewKeyedMutex(),
		now:       time.Now,
		newID:     func() string { return shared.EntityID("OBJ") },
	}
}

// CreateInput is the caller-editable subset of an objective.
type CreateInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Type        string  `json:"type" validate:"omitempty,oneof=business competency development"`
	Weight      float64 `json:"weight" validate:"gte=0,lte=100"`
	Target      string  `json:"target" validate:"max=500"`
	Priority    string  `json:"priority" validate:"oneof=high medium low"`
	DueDate     string  `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	ParentID    string  `json:"parentId"`
	PeriodID    string  `json:"periodId" validate:"required"`
	PeriodName  string  `json:"periodName" validate:"required"`
}

// Create stores a new draft objective owned by the caller. An omitted
// type defaults to business.
func (s *Service) Create(ctx context.Context, caller employee.Employee, in CreateInput) (Objective, error) {
	if in.Type == "" {
		in.Type = TypeBusiness
	}
	ts := s.timestamp()
	obj := Objective{
		ObjectiveID: s.newID(),
		UserID:      caller.UserID,
		UserName:    caller.Name,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Weight:      in.Weight,
		Target:      in.Target,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		ParentID:    in.ParentID,
		PeriodID:    in.PeriodID,
		PeriodName:  in.PeriodName,
		Status:      StatusDraft,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	rec, err := s.store.Create(ctx, s.table, fieldsOf(obj))
	if err != nil {
		return Objective{}, err
	}
	return fromRecord(rec), nil
}

// UpdateInput carries partial draft edits; nil means leave unchanged.
// The parent link is fixed at creation and not editable here.
type UpdateInput struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Type        *string  `json:"type" validate:"omitempty,oneof=business competency development"`
	Weight      *float64 `json:"weight" validate:"omitempty,gte=0,lte=100"`
	Target      *string  `json:"target" validate:"omitempty,max=500"`
	Priority    *string  `json:"priority" validate:"omitempty,oneof=high medium low"`
	DueDate     *string  `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	PeriodID    *string  `json:"periodId"`
	PeriodName  *string  `json:"periodName"`
}

// Update edits a draft. Only the owner may edit, and only while draft.
func (s *Service) Update(ctx context.Context, callerID, objectiveID string, in UpdateInput) (Objective, error) {
	obj, err := s.byObjectiveID(ctx, objectiveID)
	if err != nil {
		return Objective{}, err
	}
	if obj.UserID != callerID {
		return Objective{}, ErrNotOwner
	}
	if obj.Status != StatusDraft {
		return Objective{}, ErrNotDraft
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields[fieldTitle] = *in.Title
	}
	if in.Description != nil {
		fields[fieldDescription] = *in.Description
	}
	if in.Type != nil {
		fields[fieldType] = *in.Type
	}
	if in.Weight != nil {
		fields[fieldWeight] = *in.Weight
	}
	if in.Target != nil {
		fields[fieldTarget] = *in.Target
	}
	if in.Priority != nil {
		fields[fieldPriority] = *in.Priority
	}
	if in.DueDate != nil {
		fields[fieldDueDate] = *in.DueDate
	}
	if in.PeriodID != nil {
		fields[fieldPeriodID] = *in.PeriodID
	}
	if in.PeriodName != nil {
		fields[fieldPeriodName] = *in.PeriodName
	}
	if len(fields) == 0 {
		return obj, nil
	}
	fields[fieldUpdatedAt] = s.timestamp()

	rec, err := s.store.Update(ctx, s.table, obj.RecordID, fields)
	if err != nil {
		return Objective{}, err
	}
	return fromRecord(rec), nil
}

// Delete removes a draft. Only the owner may delete, and only drafts.
func (s *Service) Delete(ctx context.Context, callerID, objectiveID string) error {
	obj, err := s.byObjectiveID(ctx, objectiveID)
	if err != nil {
		return err
	}
	if obj.UserID != callerID {
		return ErrNotOwner
	}
	if obj.Status != StatusDraft {
		return ErrNotDraft
	}
	return s.store.Delete(ctx, s.table, obj.RecordID)
}

// Submit moves a draft to pending and notifies the owner's supervisor.
// The per-objective lock plus a status re-read under the lock makes a
// double submit lose cleanly instead of firing twice.
func (s *Service) Submit(ctx context.Context, callerID, objectiveID string) (Objective, error) {
	unlock := s.locks.Lock("objective:" + objectiveID)
	defer unlock()

	obj, err := s.byObjectiveID(ctx, objectiveID)
	if err != nil {
		return Objective{}, err
	}
	if obj.UserID != callerID {
		return Objective{}, ErrNotOwner
	}
	if obj.Status != StatusDraft {
		return Objective{}, fmt.Errorf("objective %s already %s: %w", objectiveID, obj.Status, shared.ErrForbidden)
	}

	owner, err := s.employees.ByUserID(ctx, callerID)
	if err != nil {
		return Objective{}, err
	}
	if owner.SupervisorID == "" {
		return Objective{}, ErrNoSupervisor
	}
	supervisor, err := s.employees.ByUserID(ctx, owner.SupervisorID)
	if err != nil {
		return Objective{}, fmt.Errorf("supervisor %s: %w", owner.SupervisorID, err)
	}

	ts := s.timestamp()
	rec, err := s.store.Update(ctx, s.table, obj.RecordID, map[string]any{
		fieldStatus:      StatusPending,
		fieldSubmittedAt: ts,
		fieldUpdatedAt:   ts,
	})
	if err != nil {
		return Objective{}, err
	}
	updated := fromRecord(rec)

	pending, err := s.siblingCount(ctx, callerID, updated.PeriodID)
	if err != nil {
		pending = 1
	}
	s.notifier.ObjectiveSubmitted(ctx, supervisor, updated, pending)

	return updated, nil
}

// Approve marks a pending objective approved. Only the owner's direct
// supervisor may decide; skip-level managers and admins are refused.
func (s *Service) Approve(ctx context.Context, caller employee.Employee, objectiveID, comment string) (Objective, error) {
	return s.decide(ctx, caller, objectiveID, StatusApproved, comment)
}

// Reject marks a pending objective rejected with a comment.
func (s *Service) Reject(ctx context.Context, caller employee.Employee, objectiveID, comment string) (Objective, error) {
	return s.decide(ctx, caller, objectiveID, StatusRejected, comment)
}

func (s *Service) decide(ctx context.Context, caller employee.Employee, objectiveID, status, comment string) (Objective, error) {
	unlock := s.locks.Lock("objective:" + objectiveID)
	defer unlock()

	obj, err := s.byObjectiveID(ctx, objectiveID)
	if err != nil {
		return Objective{}, err
	}
	if obj.Status != StatusPending {
		return Objective{}, ErrNotPending
	}
	ok, err := s.employees.IsSupervisorOf(ctx, caller.UserID, obj.UserID)
	if err != nil {
		return Objective{}, err
	}
	if !ok {
		return Objective{}, ErrNotApprover
	}

	ts := s.timestamp()
	rec, err := s.store.Update(ctx, s.table, obj.RecordID, map[string]any{
		fieldStatus:          status,
		fieldApproverID:      caller.UserID,
		fieldApproverName:    caller.Name,
		fieldApproverComment: comment,
		fieldDecidedAt:       ts,
		fieldUpdatedAt:       ts,
	})
	if err != nil {
		return Objective{}, err
	}
	updated := fromRecord(rec)

	if owner, err := s.employees.ByUserID(ctx, obj.UserID); err == nil {
		s.notifier.ObjectiveDecided(ctx, owner, updated)
	}

	return updated, nil
}

// Mine lists the caller's objectives, optionally narrowed to one status.
func (s *Service) Mine(ctx context.Context, callerID, status string) ([]Objective, error) {
	filter := tablestore.And(tablestore.Eq(fieldUserID, callerID), statusFilter(status))
	records, err := s.store.Find(ctx, s.table, filter)
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// Get returns one objective. Owners, their direct supervisor and admins
// may read; everybody else gets not-found semantics hidden behind the
// forbidden sentinel.
func (s *Service) Get(ctx context.Context, caller employee.Employee, objectiveID string) (Objective, error) {
	obj, err := s.byObjectiveID(ctx, objectiveID)
	if err != nil {
		return Objective{}, err
	}
	if obj.UserID == caller.UserID || caller.Role == employee.RoleAdmin {
		return obj, nil
	}
	ok, err := s.employees.IsSupervisorOf(ctx, caller.UserID, obj.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return Objective{}, err
	}
	if !ok {
		return Objective{}, fmt.Errorf("objective %s: %w", objectiveID, shared.ErrForbidden)
	}
	return obj, nil
}

// PendingApprovals lists pending objectives belonging to the caller's
// direct subordinates.
func (s *Service) PendingApprovals(ctx context.Context, supervisorID string) ([]Objective, error) {
	subs, err := s.employees.Subordinates(ctx, supervisorID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return []Objective{}, nil
	}

	records, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldStatus, StatusPending))
	if err != nil {
		return nil, err
	}

	direct := make(map[string]bool, len(subs))
	for _, sub := range subs {
		direct[sub.UserID] = true
	}
	out := []Objective{}
	for _, rec := range records {
		obj := fromRecord(rec)
		if direct[obj.UserID] {
			out = append(out, obj)
		}
	}
	return out, nil
}

// SubordinateObjectives lists every objective owned by the caller's
// direct subordinates, optionally narrowed to one status.
func (s *Service) SubordinateObjectives(ctx context.Context, supervisorID, status string) ([]Objective, error) {
	subs, err := s.employees.Subordinates(ctx, supervisorID)
	if err != nil {
		return nil, err
	}
	out := []Objective{}
	for _, sub := range subs {
		records, err := s.store.Find(ctx, s.table, tablestore.And(
			tablestore.Eq(fieldUserID, sub.UserID),
			statusFilter(status),
		))
		if err != nil {
			return nil, err
		}
		out = append(out, fromRecords(records)...)
	}
	return out, nil
}

// ByPeriod lists every objective in a period (reporting).
func (s *Service) ByPeriod(ctx context.Context, periodID string) ([]Objective, error) {
	records, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldPeriodID, periodID))
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// All lists every objective (reporting).
func (s *Service) All(ctx context.Context) ([]Objective, error) {
	records, err := s.store.Find(ctx, s.table, nil)
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

func (s *Service) byObjectiveID(ctx context.Context, objectiveID string) (Objective, error) {
	records, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldObjectiveID, objectiveID))
	if err != nil {
		return Objective{}, err
	}
	if len(records) == 0 {
		return Objective{}, ErrNotFound
	}
	return fromRecord(records[0]), nil
}

// siblingCount counts the owner's pending objectives in the same period,
// shown in the supervisor's notification.
func (s *Service) siblingCount(ctx context.Context, userID, periodID string) (int, error) {
	records, err := s.store.Find(ctx, s.table, tablestore.And(
		tablestore.Eq(fieldUserID, userID),
		tablestore.Eq(fieldPeriodID, periodID),
		tablestore.Eq(fieldStatus, StatusPending),
	))
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func statusFilter(status string) tablestore.Expr {
	if status == "" {
		return nil
	}
	return tablestore.Eq(fieldStatus, status)
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
