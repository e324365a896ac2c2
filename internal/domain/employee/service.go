package employee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"okr/internal/shared"
	"okr/internal/tablestore"
)

// Service resolves employees and the supervisor relation from the
// employees table. The record store is the single source of truth; no
// local cache exists.
type Service struct {
	store tablestore.API
	table string
	now   func() time.Time
}

func NewService(store tablestore.API, tableID string) *Service {
	return &Service{store: store, table: tableID, now: time.Now}
}

func (s *Service) ByUserID(ctx context.Context, userID string) (Employee, error) {
	records, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldUserID, userID))
	if err != nil {
		return Employee{}, err
	}
	if len(records) == 0 {
		return Employee{}, fmt.Errorf("employee %s: %w", userID, shared.ErrNotFound)
	}
	return fromRecord(records[0]), nil
}

// Subordinates returns the direct reports of supervisorID. The relation
// is a single level: it never walks the organisational tree.
func (s *Service) Subordinates(ctx context.Context, supervisorID string) ([]Employee, error) {
	records, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldSupervisorID, supervisorID))
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// IsSupervisorOf reports whether userID's employee record names
// supervisorID as its direct supervisor.
func (s *Service) IsSupervisorOf(ctx context.Context, supervisorID, userID string) (bool, error) {
	emp, err := s.ByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return emp.SupervisorID != "" && emp.SupervisorID == supervisorID, nil
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	records, err := s.store.Find(ctx, s.table, nil)
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

func (s *Service) ByDepartment(ctx context.Context, department string) ([]Employee, error) {
	records, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldDepartment, department))
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// Admins returns every active employee holding the admin role.
func (s *Service) Admins(ctx context.Context) ([]Employee, error) {
	records, err := s.store.Find(ctx, s.table, tablestore.And(
		tablestore.Eq(fieldRole, string(RoleAdmin)),
		tablestore.Eq(fieldStatus, StatusActive),
	))
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// Create provisions a new employee record (admin action). Duplicate
// user ids are rejected.
func (s *Service) Create(ctx context.Context, e Employee) (Employee, error) {
	if strings.TrimSpace(e.UserID) == "" {
		return Employee{}, fmt.Errorf("employee user id required: %w", shared.ErrForbidden)
	}
	existing, err := s.store.Find(ctx, s.table, tablestore.Eq(fieldUserID, e.UserID))
	if err != nil {
		return Employee{}, err
	}
	if len(existing) > 0 {
		return Employee{}, fmt.Errorf("employee %s already exists: %w", e.UserID, shared.ErrConflict)
	}
	if e.Role == "" {
		e.Role = RoleEmployee
	}
	if e.Status == "" {
		e.Status = StatusActive
	}
	e.CreatedAt = s.now().UTC().Format(time.RFC3339)
	rec, err := s.store.Create(ctx, s.table, fieldsOf(e))
	if err != nil {
		return Employee{}, err
	}
	return fromRecord(rec), nil
}

// UpdateInput carries partial changes; nil means leave unchanged.
type UpdateInput struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Department   *string `json:"department"`
	Position     *string `json:"position"`
	SupervisorID *string `json:"supervisorId"`
	Role         *string `json:"role"`
	Status       *string `json:"status"`
}

func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (Employee, error) {
	current, err := s.ByUserID(ctx, userID)
	if err != nil {
		return Employee{}, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields[fieldName] = *in.Name
	}
	if in.Email != nil {
		fields[fieldEmail] = *in.Email
	}
	if in.Department != nil {
		fields[fieldDepartment] = *in.Department
	}
	if in.Position != nil {
		fields[fieldPosition] = *in.Position
	}
	if in.SupervisorID != nil {
		fields[fieldSupervisorID] = *in.SupervisorID
	}
	if in.Role != nil {
		fields[fieldRole] = string(ParseRole(*in.Role))
	}
	if in.Status != nil {
		fields[fieldStatus] = *in.Status
	}
	if len(fields) == 0 {
		return current, nil
	}

	rec, err := s.store.Update(ctx, s.table, current.RecordID, fields)
	if err != nil {
		return Employee{}, err
	}
	return fromRecord(rec), nil
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	current, err := s.ByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, s.table, current.RecordID)
}

func fromRecords(records []tablestore.Record) []Employee {
	out := make([]Employee, len(records))
	for i, rec := range records {
		out[i] = fromRecord(rec)
	}
	return out
}
