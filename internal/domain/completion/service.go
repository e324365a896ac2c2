package completion

import (
	"context"
	"fmt"
	"time"

	"okr/internal/domain/employee"
	"okr/internal/domain/objective"
	"okr/internal/shared"
	"okr/internal/tablestore"
)

var (
	ErrNotFound     = fmt.Errorf("completion not found: %w", shared.ErrNotFound)
	ErrNotOwner     = fmt.Errorf("not the completion owner: %w", shared.ErrForbidden)
	ErrNotDraft     = fmt.Errorf("completion is not a draft: %w", shared.ErrForbidden)
	ErrNotSubmitted = fmt.Errorf("completion is not awaiting a score: %w", shared.ErrForbidden)
	ErrNotScored    = fmt.Errorf("completion is not scored: %w", shared.ErrForbidden)
	ErrNotArchived  = fmt.Errorf("completion is not archived: %w", shared.ErrForbidden)
	ErrNotScorer    = fmt.Errorf("only the direct supervisor may score: %w", shared.ErrForbidden)
)

// Notifier delivers completion lifecycle notifications. Implementations
// never fail the calling transition.
type Notifier interface {
	CompletionSubmitted(ctx context.Context, supervisor employee.Employee, c Completion)
	CompletionScored(ctx context.Context, owner employee.Employee, c Completion)
	UnlockRequested(ctx context.Context, admins []employee.Employee, requester employee.Employee, c Completion, reason string)
	CompletionReminder(ctx context.Context, owner employee.Employee, obj objective.Objective)
}

// Service owns the completion lifecycle: the owner self-assesses an
// approved objective, the direct supervisor scores it, then the record
// is archived.
type Service struct {
	store      tablestore.API
	table      string
	employees  *employee.Service
	objectives *objective.Service
	notifier   Notifier
	locks      *shared.KeyedMutex
	now        func() time.Time
	newID      func() string
}

func NewService(store tablestore.API, tableID string, employees *employee.Service, objectives *objective.Service, notifier Notifier) *Service {
	return &Service{
		store:      store,
		table:      tableID,
		employees:  employees,
		objectives: objectives,
		notifier:   notifier,
		locks:      shared.NewKeyedMutex(),
		now:        time.Now,
		newID:      func() string { return shared.EntityID("COMP") },
	}
}

// CreateInput starts a draft self-assessment against one objective.
type CreateInput struct {
	ObjectiveID    string  `json:"objectiveId" validate:"required"`
	Summary        string  `json:"summary" validate:"max=2000"`
	ActualValue    string  `json:"actualValue" validate:"max=500"`
	CompletionRate float64 `json:"completionRate" validate:"gte=0,lte=100"`
	SelfScore      float64 `json:"selfScore" validate:"gte=0,lte=100"`
	Evidence       string  `json:"evidence" validate:"max=2000"`
}

// Create stores a draft completion. The referenced objective must exist
// and belong to the caller; period metadata is inherited from it.
func (s *Service) Create(ctx context.Context, caller employee.Employee, in CreateInput) (Completion, error) {
	obj, err := s.objectives.Get(ctx, caller, in.ObjectiveID)
	if err != nil {
		return Completion{}, err
	}
	if obj.UserID != caller.UserID {
		return Completion{}, fmt.Errorf("objective %s is not yours: %w", in.ObjectiveID, shared.ErrForbidden)
	}

	ts := s.timestamp()
	c := Completion{
		CompletionID:   s.newID(),
		ObjectiveID:    obj.ObjectiveID,
		UserID:         caller.UserID,
		UserName:       caller.Name,
		PeriodID:       obj.PeriodID,
		PeriodName:     obj.PeriodName,
		Summary:        in.Summary,
		ActualValue:    in.ActualValue,
		CompletionRate: in.CompletionRate,
		SelfScore:      in.SelfScore,
		Evidence:       in.Evidence,
		Status:         StatusDraft,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	rec, err := s.store.Create(ctx, s.table, fieldsOf(c))
	if err != nil {
		return Completion{}, err
	}
	return fromRecord(rec), nil
}

// UpdateInput carries partial draft edits; nil means leave unchanged.
// Evidence is fixed at creation and not editable here.
type UpdateInput struct {
	Summary        *string  `json:"summary" validate:"omitempty,max=2000"`
	ActualValue    *string  `json:"actualValue" validate:"omitempty,max=500"`
	CompletionRate *float64 `json:"completionRate" validate:"omitempty,gte=0,lte=100"`
	SelfScore      *float64 `json:"selfScore" validate:"omitempty,gte=0,lte=100"`
}

func (s *Service) Update(ctx context.Context, callerID, completionID string, in UpdateInput) (Completion, error) {
	c, err := s.byCompletionID(ctx, completionID)
	if err != nil {
		return Completion{}, err
	}
	if c.UserID != callerID {
		return Completion{}, ErrNotOwner
	}
	if c.Status != StatusDraft {
		return Completion{}, ErrNotDraft
	}

	fields := map[string]any{}
	if in.Summary != nil {
		fields[fieldSummary] = *in.Summary
	}
	if in.ActualValue != nil {
		fields[fieldActualValue] = *in.ActualValue
	}
	if in.CompletionRate != nil {
		fields[fieldCompletionRate] = *in.CompletionRate
	}
	if in.SelfScore != nil {
		fields[fieldSelfScore] = *in.SelfScore
	}
	if len(fields) == 0 {
		return c, nil
	}
	fields[fieldUpdatedAt] = s.timestamp()

	rec, err := s.store.Update(ctx, s.table, c.RecordID, fields)
	if err != nil {
		return Completion{}, err
	}
	return fromRecord(rec), nil
}

func (s *Service) Delete(ctx context.Context, callerID, completionID string) error {
	c, err := s.byCompletionID(ctx, completionID)
	if err != nil {
		return err
	}
	if c.UserID != callerID {
		return ErrNotOwner
	}
	if c.Status != StatusDraft {
		return ErrNotDraft
	}
	return s.store.Delete(ctx, s.table, c.RecordID)
}

// Submit hands a draft to the owner's supervisor for scoring. The
// per-completion lock plus the status re-read under it makes a double
// submit lose cleanly.
func (s *Service) Submit(ctx context.Context, callerID, completionID string) (Completion, error) {
	unlock := s.locks.Lock("completion:" + completionID)
	defer unlock()

	c, err := s.byCompletionID(ctx, completionID)
	if err != nil {
		return Completion{}, err
	}
	if c.UserID != callerID {
		return Completion{}, ErrNotOwner
	}
	if c.Status != StatusDraft {
		return Completion{}, fmt.Errorf("completion %s already %s: %w", completionID, c.Status, shared.ErrForbidden)
	}

	owner, err := s.employees.ByUserID(ctx, callerID)
	if err != nil {
		return Completion{}, err
	}
	if owner.SupervisorID == "" {
		return Completion{}, fmt.Errorf("employee has no supervisor: %w", shared.ErrForbidden)
	}
	supervisor, err := s.employees.ByUserID(ctx, owner.SupervisorID)
	if err != nil {
		return Completion{}, fmt.Errorf("supervisor %s: %w", owner.SupervisorID, err)
	}

	ts := s.timestamp()
	rec, err := s.store.Update(ctx, s.table, c.RecordID, map[string]any{
		fieldStatus:      StatusSubmitted,
		fieldSubmittedAt: ts,
		fieldUpdatedAt:   ts,
	})
	if err != nil {
		return Completion{}, err
	}
	updated := fromRecord(rec)

	s.notifier.CompletionSubmitted(ctx, supervisor, updated)
	return updated, nil
}

// ScoreInput is the supervisor's verdict. A zero calibration score means
// the supervisor score stands as final.
type ScoreInput struct {
	SupervisorScore  float64  `json:"supervisorScore" validate:"gte=0,lte=100"`
	CalibrationScore *float64 `json:"calibrationScore" validate:"omitempty,gte=0,lte=100"`
	Comment          string   `json:"comment" validate:"max=2000"`
}

// Score records the supervisor's score on a submitted completion. Only
// the owner's direct supervisor may score.
func (s *Service) Score(ctx context.Context, caller employee.Employee, completionID string, in ScoreInput) (Completion, error) {
	unlock := s.locks.Lock("completion:" + completionID)
	defer unlock()

	c, err := s.byCompletionID(ctx, completionID)
	if err != nil {
		return Completion{}, err
	}
	if c.Status != StatusSubmitted {
		return Completion{}, ErrNotSubmitted
	}
	ok, err := s.employees.IsSupervisorOf(ctx, caller.UserID, c.UserID)
	if err != nil {
		return Completion{}, err
	}
	if !ok {
		return Completion{}, ErrNotScorer
	}

	calibration := in.SupervisorScore
	if in.CalibrationScore != nil {
		calibration = *in.CalibrationScore
	}

	ts := s.timestamp()
	rec, err := s.store.Update(ctx, s.table, c.RecordID, map[string]any{
		fieldStatus:           StatusScored,
		fieldSupervisorScore:  in.SupervisorScore,
		fieldCalibrationScore: calibration,
		fieldScorerID:         caller.UserID,
		fieldScorerName:       caller.Name,
		fieldScorerComment:    in.Comment,
		fieldScoredAt:         ts,
		fieldUpdatedAt:        ts,
	})
	if err != nil {
		return Completion{}, err
	}
	updated := fromRecord(rec)

	if owner, err := s.employees.ByUserID(ctx, c.UserID); err == nil {
		s.notifier.CompletionScored(ctx, owner, updated)
	}
	return updated, nil
}

// Archive freezes a scored completion. Admin action.
func (s *Service) Archive(ctx context.Context, completionID string) (Completion, error) {
	c, err := s.byCompletionID(ctx, completionID)
	if err != nil {
		return Completion{}, err
	}
	if c.Status != StatusScored {
		return Completion{}, ErrNotScored
	}
	rec, err := s.store.Update(ctx, s.table, c.RecordID, map[string]any{
		fieldStatus:    StatusArchived,
		fieldUpdatedAt: s.timestamp(),
	})
	if err != nil {
		return Completion{}, err
	}
	return fromRecord(rec), nil
}

// RequestUnlock asks the admins to re-open an archived completion. The
// record itself is not changed; admins act through the platform UI.
func (s *Service) RequestUnlock(ctx context.Context, caller employee.Employee, completionID, reason string) error {
	c, err := s.byCompletionID(ctx, completionID)
	if err != nil {
		return err
	}
	if c.UserID != caller.UserID {
		return ErrNotOwner
	}
	if c.Status != StatusArchived {
		return ErrNotArchived
	}

	admins, err := s.employees.Admins(ctx)
	if err != nil {
		return err
	}
	s.notifier.UnlockRequested(ctx, admins, caller, c, reason)
	return nil
}

// RemindPending nudges every owner of an approved objective that has no
// self-assessment on file yet. Returns the number of reminders sent.
func (s *Service) RemindPending(ctx context.Context) (int, error) {
	objectives, err := s.objectives.All(ctx)
	if err != nil {
		return 0, err
	}
	completions, err := s.All(ctx)
	if err != nil {
		return 0, err
	}

	covered := make(map[string]bool, len(completions))
	for _, c := range completions {
		covered[c.ObjectiveID] = true
	}

	sent := 0
	for _, obj := range objectives {
		if obj.Status != objective.StatusApproved || covered[obj.ObjectiveID] {
			continue
		}
		owner, err := s.employees.ByUserID(ctx, obj.UserID)
		if err != nil {
			continue
		}
		s.notifier.CompletionReminder(ctx, owner, obj)
		sent++
	}
	return sent, nil
}

// Mine lists the caller's completions, optionally narrowed to a status.
func (s *Service) Mine(ctx context.Context, callerID, status string) ([]Completion, error) {
	filter := tablestore.Eq(fieldUserID, callerID)
	if status != "" {
		filter = tablestore.And(filter, tablestore.Eq(fieldStatus, status))
	}
	records, err := s.store.Find(ctx, s.table, filter)
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// Get returns one completion, visible to the owner, the owner's direct
// supervisor, and admins.
func (s *Service) Get(ctx context.Context, caller employee.Employee, completionID string) (Completion, error) {
	c, err := s.byCompletionID(ctx, completionID)
	if err != nil {
		return Completion{}, err
	}
	if c.UserID == caller.UserID || caller.Role == employee.RoleAdmin {
		return c, nil
	}
	ok, err := s.employees.IsSupervisorOf(ctx, caller.UserID, c.UserID)
	if err != nil {
		return Completion{}, err
	}
	if !ok {
		return Completion{}, fmt.Errorf("completion %s: %w", completionID, shared.ErrForbidden)
	}
	return c, nil
}

// PendingScores lists submitted completions belonging to the caller's
// direct subordinates.
func (s *Service) PendingScores(ctx context.Context, supervisorID string) ([]Completion, error) {
	subs, err := s.employees.Subordinates(ctx, supervisorID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return []Completion{}, nil
	}

	records, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldStatus, StatusSubmitted))
	if err != nil {
		return nil, err
	}

	direct := make(map[string]bool, len(subs))
	for _, sub := range subs {
		direct[sub.UserID] = true
	}
	out := []Completion{}
	for _, rec := range records {
		c := fromRecord(rec)
		if direct[c.UserID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// ByPeriod lists every completion in a period (reporting).
func (s *Service) ByPeriod(ctx context.Context, periodID string) ([]Completion, error) {
	records, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldPeriodID, periodID))
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// All lists every completion (reporting).
func (s *Service) All(ctx context.Context) ([]Completion, error) {
	records, err := s.store.Find(ctx, s.table, nil)
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

func (s *Service) byCompletionID(ctx context.Context, completionID string) (Completion, error) {
	records, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldCompletionID, completionID))
	if err != nil {
		return Completion{}, err
	}
	if len(records) == 0 {
		return Completion{}, ErrNotFound
	}
	return fromRecord(records[0]), nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
