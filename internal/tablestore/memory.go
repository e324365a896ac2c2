package tablestore

import (
	"context"
	"fmt"
	"sync"

	"okr/internal/platform/openapi"
	"okr/internal/shared"
)

// Memory is an in-process API implementation evaluating typed filters
// directly. It backs the test suite and local development; the remote
// Store is the production implementation.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]Record
	serial int
	nowMS  func() int64
}

func NewMemory(nowMS func() int64) *Memory {
	if nowMS == nil {
		nowMS = func() int64 { return 0 }
	}
	return &Memory{tables: make(map[string][]Record), nowMS: nowMS}
}

func (m *Memory) Find(_ context.Context, tableID string, filter Expr) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, rec := range m.tables[tableID] {
		if filter == nil || filter.Matches(rec.Fields) {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (m *Memory) FindByID(_ context.Context, tableID, recordID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.tables[tableID] {
		if rec.ID == recordID {
			return cloneRecord(rec), nil
		}
	}
	return Record{}, fmt.Errorf("get record: %w", shared.ErrNotFound)
}

func (m *Memory) Create(_ context.Context, tableID string, fields map[string]any) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.serial++
	rec := Record{
		ID:               fmt.Sprintf("rec%06d", m.serial),
		Fields:           cloneFields(fields),
		CreatedTime:      m.nowMS(),
		LastModifiedTime: m.nowMS(),
	}
	m.tables[tableID] = append(m.tables[tableID], rec)
	return cloneRecord(rec), nil
}

func (m *Memory) Update(_ context.Context, tableID, recordID string, fields map[string]any) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.tables[tableID]
	for i := range table {
		if table[i].ID != recordID {
			continue
		}
		for k, v := range fields {
			table[i].Fields[k] = v
		}
		table[i].LastModifiedTime = m.nowMS()
		return cloneRecord(table[i]), nil
	}
	return Record{}, &openapi.APIError{Action: "update record", Code: 1254043, Msg: "record not found"}
}

func (m *Memory) Delete(_ context.Context, tableID, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.tables[tableID]
	for i := range table {
		if table[i].ID == recordID {
			m.tables[tableID] = append(table[:i], table[i+1:]...)
			return nil
		}
	}
	return &openapi.APIError{Action: "delete record", Code: 1254043, Msg: "record not found"}
}

func (m *Memory) BatchCreate(ctx context.Context, tableID string, fields []map[string]any) ([]Record, error) {
	out := make([]Record, 0, len(fields))
	for _, f := range fields {
		rec, err := m.Create(ctx, tableID, f)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *Memory) BatchUpdate(ctx context.Context, tableID string, updates []RecordUpdate) ([]Record, error) {
	out := make([]Record, 0, len(updates))
	for _, u := range updates {
		rec, err := m.Update(ctx, tableID, u.ID, u.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *Memory) BatchDelete(ctx context.Context, tableID string, recordIDs []string) error {
	for _, id := range recordIDs {
		if err := m.Delete(ctx, tableID, id); err != nil {
			return err
		}
	}
	return nil
}

func cloneRecord(rec Record) Record {
	out := rec
	out.Fields = cloneFields(rec.Fields)
	return out
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
