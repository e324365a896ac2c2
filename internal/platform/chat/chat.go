package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"okr/internal/platform/openapi"
)

// Messenger pushes one-way messages through the platform's chat API.
// Delivery is not tracked beyond the immediate success/failure.
type Messenger struct {
	api *openapi.Client
}

func New(api *openapi.Client) *Messenger {
	return &Messenger{api: api}
}

func (m *Messenger) SendText(ctx context.Context, receiverID, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	return m.send(ctx, receiverID, "text", string(content), "send text message")
}

func (m *Messenger) SendCard(ctx context.Context, receiverID string, card any) error {
	content, err := json.Marshal(card)
	if err != nil {
		return err
	}
	return m.send(ctx, receiverID, "interactive", string(content), "send card message")
}

func (m *Messenger) send(ctx context.Context, receiverID, msgType, content, action string) error {
	query := url.Values{}
	query.Set("receive_id_type", "user_id")
	body := map[string]string{
		"receive_id": receiverID,
		"msg_type":   msgType,
		"content":    content,
	}
	return m.api.Do(ctx, http.MethodPost, "/im/v1/messages", query, body, nil, action)
}
