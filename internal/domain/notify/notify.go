// Package notify turns lifecycle events into chat cards. Every method
// is fire-and-forget: delivery failures are logged at warn level and
// never propagate to the transition that triggered them.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"okr/internal/domain/completion"
	"okr/internal/domain/employee"
	"okr/internal/domain/objective"
)

// Sender is the slice of the chat client notifications need.
type Sender interface {
	SendCard(ctx context.Context, receiverID string, card any) error
}

type Service struct {
	sender      Sender
	frontendURL string
	log         *slog.Logger
}

func NewService(sender Sender, frontendURL string, log *slog.Logger) *Service {
	return &Service{sender: sender, frontendURL: frontendURL, log: log}
}

func (s *Service) ObjectiveSubmitted(ctx context.Context, supervisor employee.Employee, obj objective.Objective, pendingCount int) {
	card := s.card("Objective submitted for approval",
		"blue",
		fmt.Sprintf("**%s** submitted objective **%s** (%s).\nPending objectives this period: %d",
			obj.UserName, obj.Title, obj.PeriodName, pendingCount),
		"Review now", "/approvals")
	s.deliver(ctx, supervisor.UserID, card, "objective submitted")
}

func (s *Service) ObjectiveDecided(ctx context.Context, owner employee.Employee, obj objective.Objective) {
	header := "Objective approved"
	template := "green"
	if obj.Status == objective.StatusRejected {
		header = "Objective rejected"
		template = "red"
	}
	body := fmt.Sprintf("Your objective **%s** was %s by %s.", obj.Title, obj.Status, obj.ApproverName)
	if obj.ApproverComment != "" {
		body += "\nComment: " + obj.ApproverComment
	}
	card := s.card(header, template, body, "View objective", "/objectives")
	s.deliver(ctx, owner.UserID, card, "objective decided")
}

func (s *Service) CompletionSubmitted(ctx context.Context, supervisor employee.Employee, c completion.Completion) {
	card := s.card("Self-assessment submitted",
		"blue",
		fmt.Sprintf("**%s** submitted a self-assessment for objective %s (%s).\nSelf score: %.0f",
			c.UserName, c.ObjectiveID, c.PeriodName, c.SelfScore),
		"Score now", "/scoring")
	s.deliver(ctx, supervisor.UserID, card, "completion submitted")
}

func (s *Service) CompletionScored(ctx context.Context, owner employee.Employee, c completion.Completion) {
	body := fmt.Sprintf("Your self-assessment for objective %s was scored by %s.\nFinal score: %.0f",
		c.ObjectiveID, c.ScorerName, c.CalibrationScore)
	if c.ScorerComment != "" {
		body += "\nComment: " + c.ScorerComment
	}
	card := s.card("Self-assessment scored", "green", body, "View result", "/completions")
	s.deliver(ctx, owner.UserID, card, "completion scored")
}

func (s *Service) UnlockRequested(ctx context.Context, admins []employee.Employee, requester employee.Employee, c completion.Completion, reason string) {
	body := fmt.Sprintf("**%s** asks to re-open archived completion %s (%s).",
		requester.Name, c.CompletionID, c.PeriodName)
	if reason != "" {
		body += "\nReason: " + reason
	}
	card := s.card("Unlock requested", "orange", body, "Open admin console", "/admin/completions")
	for _, admin := range admins {
		s.deliver(ctx, admin.UserID, card, "unlock requested")
	}
}

// CompletionReminder nudges an employee who has not submitted a
// self-assessment for an approved objective.
func (s *Service) CompletionReminder(ctx context.Context, owner employee.Employee, obj objective.Objective) {
	card := s.card("Self-assessment reminder",
		"orange",
		fmt.Sprintf("Objective **%s** (%s) is approved but has no submitted self-assessment yet.",
			obj.Title, obj.PeriodName),
		"Write it now", "/completions/new")
	s.deliver(ctx, owner.UserID, card, "completion reminder")
}

func (s *Service) deliver(ctx context.Context, receiverID string, card any, event string) {
	if receiverID == "" {
		return
	}
	if err := s.sender.SendCard(ctx, receiverID, card); err != nil {
		s.log.Warn("notification delivery failed",
			slog.String("event", event),
			slog.String("receiver", receiverID),
			slog.String("error", err.Error()))
	}
}

// card builds an interactive card with a single action button linking
// into the web frontend.
func (s *Service) card(title, template, markdown, buttonText, path string) map[string]any {
	return map[string]any{
		"config": map[string]any{"wide_screen_mode": true},
		"header": map[string]any{
			"title":    map[string]any{"tag": "plain_text", "content": title},
			"template": template,
		},
		"elements": []any{
			map[string]any{
				"tag":  "div",
				"text": map[string]any{"tag": "lark_md", "content": markdown},
			},
			map[string]any{
				"tag": "action",
				"actions": []any{
					map[string]any{
						"tag":  "button",
						"text": map[string]any{"tag": "plain_text", "content": buttonText},
						"type": "primary",
						"url":  s.frontendURL + path,
					},
				},
			},
		},
	}
}
