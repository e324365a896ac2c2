package auth

import (
	"context"
	"fmt"
	"time"

	"okr/internal/domain/employee"
	"okr/internal/platform/oauth"
	"okr/internal/shared"
)

// Service exchanges platform OAuth codes for application sessions.
// Only people already present in the employees table may log in; the
// OAuth provider authenticates, the table authorizes.
type Service struct {
	exchanger oauth.Exchanger
	employees *employee.Service
	secret    string
	ttl       time.Duration
	now       func() time.Time
}

func NewService(exchanger oauth.Exchanger, employees *employee.Service, secret string, ttl time.Duration) *Service {
	return &Service{
		exchanger: exchanger,
		employees: employees,
		secret:    secret,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Session is the login response payload.
type Session struct {
	Token     string            `json:"token"`
	ExpiresAt string            `json:"expiresAt"`
	User      employee.Employee `json:"user"`
}

// Login completes the OAuth code exchange and issues a session token.
func (s *Service) Login(ctx context.Context, code string) (Session, error) {
	info, err := s.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return Session{}, fmt.Errorf("oauth exchange: %w", err)
	}

	emp, err := s.employees.ByUserID(ctx, info.ExternalID())
	if err != nil {
		return Session{}, fmt.Errorf("no employee record for %s: %w", info.ExternalID(), shared.ErrUnauthenticated)
	}
	if emp.Status == employee.StatusInactive {
		return Session{}, fmt.Errorf("employee %s inactive: %w", emp.UserID, shared.ErrUnauthenticated)
	}

	return s.issue(emp)
}

// Profile returns the employee record behind a session.
func (s *Service) Profile(ctx context.Context, userID string) (employee.Employee, error) {
	return s.employees.ByUserID(ctx, userID)
}

// Refresh re-issues a token for an already-authenticated caller,
// re-reading the employee record so role changes take effect.
func (s *Service) Refresh(ctx context.Context, userID string) (Session, error) {
	emp, err := s.employees.ByUserID(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("refresh: %w", shared.ErrUnauthenticated)
	}
	if emp.Status == employee.StatusInactive {
		return Session{}, fmt.Errorf("employee %s inactive: %w", emp.UserID, shared.ErrUnauthenticated)
	}
	return s.issue(emp)
}

// Parse validates a raw bearer token.
func (s *Service) Parse(raw string) (Claims, error) {
	return ParseToken(s.secret, raw)
}

func (s *Service) issue(emp employee.Employee) (Session, error) {
	now := s.now().UTC()
	token, err := GenerateToken(s.secret, emp, s.ttl, now)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		ExpiresAt: now.Add(s.ttl).Format(time.RFC3339),
		User:      emp,
	}, nil
}
