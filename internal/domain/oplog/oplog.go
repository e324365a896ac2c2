// Package oplog appends operation records to the audit table. Writes
// are best effort: a full audit trail must never block the operation it
// describes, so failures are logged and dropped.
package oplog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"okr/internal/tablestore"
)

const (
	fieldLogID        = "Log ID"
	fieldOperatorID   = "Operator ID"
	fieldOperatorName = "Operator Name"
	fieldOperation    = "Operation"
	fieldResourceType = "Resource Type"
	fieldResourceID   = "Resource ID"
	fieldOldValue     = "Old Value"
	fieldNewValue     = "New Value"
	fieldClientIP     = "Client IP"
	fieldUserAgent    = "User Agent"
	fieldLoggedAt     = "Logged At"
)

type Entry struct {
	LogID        string `json:"logId"`
	OperatorID   string `json:"operatorId"`
	OperatorName string `json:"operatorName"`
	Operation    string `json:"operation"`
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`
	OldValue     string `json:"oldValue,omitempty"`
	NewValue     string `json:"newValue,omitempty"`
	ClientIP     string `json:"clientIp,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
	LoggedAt     string `json:"loggedAt"`
}

type Service struct {
	store tablestore.API
	table string
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store tablestore.API, tableID string, log *slog.Logger) *Service {
	return &Service{store: store, table: tableID, log: log, now: time.Now}
}

// Record appends one audit entry. oldValue and newValue are serialized
// as JSON snapshots; nil values are omitted. An unconfigured table id
// disables auditing entirely.
func (s *Service) Record(ctx context.Context, operatorID, operatorName, operation, resourceType, resourceID string, oldValue, newValue any, clientIP, userAgent string) {
	if s.table == "" {
		return
	}

	fields := map[string]any{
		fieldLogID:        uuid.NewString(),
		fieldOperatorID:   operatorID,
		fieldOperatorName: operatorName,
		fieldOperation:    operation,
		fieldResourceType: resourceType,
		fieldResourceID:   resourceID,
		fieldOldValue:     snapshot(oldValue),
		fieldNewValue:     snapshot(newValue),
		fieldClientIP:     clientIP,
		fieldUserAgent:    userAgent,
		fieldLoggedAt:     s.now().UTC().Format(time.RFC3339),
	}

	if _, err := s.store.Create(ctx, s.table, fields); err != nil {
		s.log.Warn("audit write failed",
			slog.String("operation", operation),
			slog.String("resource", resourceID),
			slog.String("error", err.Error()))
	}
}

// Query narrows the admin log listing; zero values match everything.
type Query struct {
	OperatorID   string
	Operation    string
	ResourceType string
}

// List returns audit entries matching the query, newest first by the
// store's insertion order reversed.
func (s *Service) List(ctx context.Context, q Query) ([]Entry, error) {
	filter := tablestore.And(
		optionalEq(fieldOperatorID, q.OperatorID),
		optionalEq(fieldOperation, q.Operation),
		optionalEq(fieldResourceType, q.ResourceType),
	)
	records, err := s.store.Find(ctx, s.table, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		out = append(out, Entry{
			LogID:        rec.String(fieldLogID),
			OperatorID:   rec.String(fieldOperatorID),
			OperatorName: rec.String(fieldOperatorName),
			Operation:    rec.String(fieldOperation),
			ResourceType: rec.String(fieldResourceType),
			ResourceID:   rec.String(fieldResourceID),
			OldValue:     rec.String(fieldOldValue),
			NewValue:     rec.String(fieldNewValue),
			ClientIP:     rec.String(fieldClientIP),
			UserAgent:    rec.String(fieldUserAgent),
			LoggedAt:     rec.String(fieldLoggedAt),
		})
	}
	return out, nil
}

func optionalEq(field, value string) tablestore.Expr {
	if value == "" {
		return nil
	}
	return tablestore.Eq(field, value)
}

func snapshot(v any) string {
	if v == nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
