package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ludobar/gamekeeper/api/internal/model"
)

// Helpers

// captureWebhook stands in for the Discord endpoint and records every
// payload posted to it
func captureWebhook(t *testing.T) (*httptest.Server, *[]discordMessage) {
	t.Helper()

	var messages []discordMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected application/json, got %q", got)
		}
		var msg discordMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("failed to decode webhook payload: %v", err)
		}
		messages = append(messages, msg)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	return server, &messages
}

// Tests

func TestDiscordStateStarted_Open_AnnouncesOpening(t *testing.T) {
	server, messages := captureWebhook(t)
	handler := NewDiscordTransitionHandler(server.URL, 5*time.Second, time.UTC)

	handler.StateStarted(context.Background(), &model.PlannedState{
		ID:         "state-1",
		Kind:       model.StateKindOpen,
		Start:      time.Date(2025, 4, 9, 18, 0, 0, 0, time.UTC),
		PlannedEnd: time.Date(2025, 4, 9, 22, 0, 0, 0, time.UTC),
	})

	if len(*messages) != 1 {
		t.Fatalf("expected one announcement, got %d", len(*messages))
	}
	msg := (*messages)[0]
	if msg.Content != "The club is now open!" {
		t.Errorf("unexpected content: %q", msg.Content)
	}
	if len(msg.Embeds) != 1 || msg.Embeds[0].Color != discordColourOpen {
		t.Errorf("expected a green embed, got %+v", msg.Embeds)
	}
	field := msg.Embeds[0].Fields[0]
	if field.Name != "Open until" || field.Value != "Wed 9 Apr 22:00" {
		t.Errorf("expected the closing time field, got %+v", field)
	}
}

func TestDiscordStateStarted_Closed_AnnouncesClosure(t *testing.T) {
	server, messages := captureWebhook(t)
	handler := NewDiscordTransitionHandler(server.URL, 5*time.Second, time.UTC)

	handler.StateStarted(context.Background(), &model.PlannedState{
		ID:         "state-1",
		Kind:       model.StateKindClosed,
		Start:      time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
		PlannedEnd: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC),
	})

	if len(*messages) != 1 {
		t.Fatalf("expected one announcement, got %d", len(*messages))
	}
	msg := (*messages)[0]
	if msg.Content != "The club is closed." {
		t.Errorf("unexpected content: %q", msg.Content)
	}
	if msg.Embeds[0].Color != discordColourClosed {
		t.Errorf("expected a red embed, got %#x", msg.Embeds[0].Color)
	}
	if msg.Embeds[0].Fields[0].Name != "Closed until" {
		t.Errorf("expected the reopening time field, got %+v", msg.Embeds[0].Fields[0])
	}
}

func TestDiscordStateStarted_IncludesPublicNote(t *testing.T) {
	server, messages := captureWebhook(t)
	handler := NewDiscordTransitionHandler(server.URL, 5*time.Second, time.UTC)
	note := "Summer break, back in two weeks"

	handler.StateStarted(context.Background(), &model.PlannedState{
		ID:         "state-1",
		Kind:       model.StateKindClosed,
		PlannedEnd: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC),
		NotePublic: &note,
	})

	if len(*messages) != 1 {
		t.Fatalf("expected one announcement, got %d", len(*messages))
	}
	if got := (*messages)[0].Embeds[0].Description; got != note {
		t.Errorf("expected the public note in the embed, got %q", got)
	}
}

func TestDiscordStateStarted_RendersLocalTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	server, messages := captureWebhook(t)
	handler := NewDiscordTransitionHandler(server.URL, 5*time.Second, loc)

	// 20:00 UTC in summer is 22:00 in Madrid
	handler.StateStarted(context.Background(), &model.PlannedState{
		ID:         "state-1",
		Kind:       model.StateKindOpen,
		PlannedEnd: time.Date(2025, 7, 2, 20, 0, 0, 0, time.UTC),
	})

	if len(*messages) != 1 {
		t.Fatalf("expected one announcement, got %d", len(*messages))
	}
	if got := (*messages)[0].Embeds[0].Fields[0].Value; got != "Wed 2 Jul 22:00" {
		t.Errorf("expected the time rendered in club time, got %q", got)
	}
}

func TestDiscordStateEnded_Open_PostsFarewell(t *testing.T) {
	server, messages := captureWebhook(t)
	handler := NewDiscordTransitionHandler(server.URL, 5*time.Second, time.UTC)

	handler.StateEnded(context.Background(), &model.PlannedState{
		ID:   "state-1",
		Kind: model.StateKindOpen,
	})

	if len(*messages) != 1 {
		t.Fatalf("expected one announcement, got %d", len(*messages))
	}
	if got := (*messages)[0].Content; got != "The club is now closed. See you next time!" {
		t.Errorf("unexpected content: %q", got)
	}
}

func TestDiscordStateEnded_Closed_StaysSilent(t *testing.T) {
	server, messages := captureWebhook(t)
	handler := NewDiscordTransitionHandler(server.URL, 5*time.Second, time.UTC)

	// The end of a closure is not news; the next opening announces itself
	handler.StateEnded(context.Background(), &model.PlannedState{
		ID:   "state-1",
		Kind: model.StateKindClosed,
	})

	if len(*messages) != 0 {
		t.Errorf("expected no announcement, got %d", len(*messages))
	}
}

func TestDiscordPost_WebhookRejection_IsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	handler := NewDiscordTransitionHandler(server.URL, 5*time.Second, time.UTC)

	// Must log and return; a dead webhook cannot take the engine down
	handler.StateStarted(context.Background(), &model.PlannedState{
		ID:         "state-1",
		Kind:       model.StateKindOpen,
		PlannedEnd: time.Date(2025, 4, 9, 22, 0, 0, 0, time.UTC),
	})
}
