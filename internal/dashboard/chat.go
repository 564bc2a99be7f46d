package dashboard

import (
	"context"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/apiclient"
	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// FallbackReply is appended as the bot's answer when a chat turn fails.
const FallbackReply = "Sorry, I couldn't reach the financial assistant right now. Please try again in a moment."

// Send runs one chat turn from the financial AI panel. See SendFrom.
func (d *Dashboard) Send(ctx context.Context, text string) bool {
	return d.SendFrom(ctx, domain.ContextFinancialAI, text)
}

// SendFrom runs one chat turn tagged with the initiating panel. It returns
// false without doing anything when text is blank or another turn is still
// in flight. Otherwise the user message is appended immediately, the prior
// history is sent along with it, and exactly one bot message follows: the
// reply, or FallbackReply if the request failed. A reply that arrives after
// a Reset is discarded.
func (d *Dashboard) SendFrom(ctx context.Context, panel domain.ChatContext, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if !panel.Valid() {
		panel = domain.ContextFinancialAI
	}

	d.mu.Lock()
	if d.chatLoading {
		d.mu.Unlock()
		return false
	}
	history := toHistory(d.messages)
	d.messages = append(d.messages, domain.Message{Role: domain.RoleUser, Content: text})
	d.chatLoading = true
	session := d.session
	d.mu.Unlock()

	reply, err := d.backend.Chat(ctx, apiclient.ChatRequest{
		Message: text,
		History: history,
		Context: panel,
	})
	d.metrics.ObserveWorkflow("chat", err)
	if err != nil {
		d.log.Error().Err(err).Str("context", string(panel)).Msg("Chat request failed")
		reply = FallbackReply
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.chatLoading = false
	if d.session != session {
		d.log.Debug().Str("context", string(panel)).Msg("Dropping chat reply after reset")
		return true
	}
	d.messages = append(d.messages, domain.Message{Role: domain.RoleBot, Content: reply})
	return true
}

// toHistory maps the internal roles onto the backend's: bot becomes assistant.
func toHistory(messages []domain.Message) []apiclient.HistoryEntry {
	history := make([]apiclient.HistoryEntry, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == domain.RoleBot {
			role = "assistant"
		}
		history = append(history, apiclient.HistoryEntry{Role: role, Content: m.Content})
	}
	return history
}
