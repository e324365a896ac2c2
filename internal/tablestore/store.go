package tablestore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"okr/internal/platform/openapi"
)

// Record is one row of a remote table: an opaque record id plus a
// string-keyed field map.
type Record struct {
	ID               string         `json:"record_id"`
	Fields           map[string]any `json:"fields"`
	CreatedTime      int64          `json:"created_time"`
	LastModifiedTime int64          `json:"last_modified_time"`
}

// RecordUpdate pairs a record id with the fields to overwrite.
type RecordUpdate struct {
	ID     string
	Fields map[string]any
}

// API is the record store surface the domain services consume. Store
// implements it against the remote table API; Memory implements it
// in-process for tests.
type API interface {
	Find(ctx context.Context, tableID string, filter Expr) ([]Record, error)
	FindByID(ctx context.Context, tableID, recordID string) (Record, error)
	Create(ctx context.Context, tableID string, fields map[string]any) (Record, error)
	Update(ctx context.Context, tableID, recordID string, fields map[string]any) (Record, error)
	Delete(ctx context.Context, tableID, recordID string) error
	BatchCreate(ctx context.Context, tableID string, fields []map[string]any) ([]Record, error)
	BatchUpdate(ctx context.Context, tableID string, updates []RecordUpdate) ([]Record, error)
	BatchDelete(ctx context.Context, tableID string, recordIDs []string) error
}

// Store adapts typed record operations onto the remote table API.
type Store struct {
	client   *openapi.Client
	appToken string
	pageSize int
}

func New(client *openapi.Client, appToken string, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Store{client: client, appToken: appToken, pageSize: pageSize}
}

func (s *Store) recordsPath(tableID string) string {
	return fmt.Sprintf("/base/v1/apps/%s/tables/%s/records", s.appToken, tableID)
}

// Find returns every record matching filter, following the backend's
// continuation token until it reports no more pages. Callers never see
// pagination.
func (s *Store) Find(ctx context.Context, tableID string, filter Expr) ([]Record, error) {
	var all []Record
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("page_size", strconv.Itoa(s.pageSize))
		if filter != nil {
			query.Set("filter", filter.Render())
		}
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		var res struct {
			Data struct {
				Items     []Record `json:"items"`
				HasMore   bool     `json:"has_more"`
				PageToken string   `json:"page_token"`
			} `json:"data"`
		}
		if err := s.client.Do(ctx, http.MethodGet, s.recordsPath(tableID), query, nil, &res, "list records"); err != nil {
			return nil, err
		}

		all = append(all, res.Data.Items...)
		if !res.Data.HasMore {
			return all, nil
		}
		pageToken = res.Data.PageToken
	}
}

func (s *Store) FindByID(ctx context.Context, tableID, recordID string) (Record, error) {
	var res struct {
		Data struct {
			Record Record `json:"record"`
		} `json:"data"`
	}
	path := s.recordsPath(tableID) + "/" + recordID
	if err := s.client.Do(ctx, http.MethodGet, path, nil, nil, &res, "get record"); err != nil {
		return Record{}, err
	}
	return res.Data.Record, nil
}

func (s *Store) Create(ctx context.Context, tableID string, fields map[string]any) (Record, error) {
	var res struct {
		Data struct {
			Record Record `json:"record"`
		} `json:"data"`
	}
	body := map[string]any{"fields": fields}
	if err := s.client.Do(ctx, http.MethodPost, s.recordsPath(tableID), nil, body, &res, "create record"); err != nil {
		return Record{}, err
	}
	return res.Data.Record, nil
}

func (s *Store) Update(ctx context.Context, tableID, recordID string, fields map[string]any) (Record, error) {
	var res struct {
		Data struct {
			Record Record `json:"record"`
		} `json:"data"`
	}
	path := s.recordsPath(tableID) + "/" + recordID
	body := map[string]any{"fields": fields}
	if err := s.client.Do(ctx, http.MethodPut, path, nil, body, &res, "update record"); err != nil {
		return Record{}, err
	}
	return res.Data.Record, nil
}

func (s *Store) Delete(ctx context.Context, tableID, recordID string) error {
	path := s.recordsPath(tableID) + "/" + recordID
	return s.client.Do(ctx, http.MethodDelete, path, nil, nil, nil, "delete record")
}

func (s *Store) BatchCreate(ctx context.Context, tableID string, fields []map[string]any) ([]Record, error) {
	records := make([]map[string]any, len(fields))
	for i, f := range fields {
		records[i] = map[string]any{"fields": f}
	}
	var res struct {
		Data struct {
			Records []Record `json:"records"`
		} `json:"data"`
	}
	path := s.recordsPath(tableID) + "/batch_create"
	body := map[string]any{"records": records}
	if err := s.client.Do(ctx, http.MethodPost, path, nil, body, &res, "batch create records"); err != nil {
		return nil, err
	}
	return res.Data.Records, nil
}

func (s *Store) BatchUpdate(ctx context.Context, tableID string, updates []RecordUpdate) ([]Record, error) {
	records := make([]map[string]any, len(updates))
	for i, u := range updates {
		records[i] = map[string]any{"record_id": u.ID, "fields": u.Fields}
	}
	var res struct {
		Data struct {
			Records []Record `json:"records"`
		} `json:"data"`
	}
	path := s.recordsPath(tableID) + "/batch_update"
	body := map[string]any{"records": records}
	if err := s.client.Do(ctx, http.MethodPost, path, nil, body, &res, "batch update records"); err != nil {
		return nil, err
	}
	return res.Data.Records, nil
}

func (s *Store) BatchDelete(ctx context.Context, tableID string, recordIDs []string) error {
	path := s.recordsPath(tableID) + "/batch_delete"
	body := map[string]any{"records": recordIDs}
	return s.client.Do(ctx, http.MethodPost, path, nil, body, nil, "batch delete records")
}
