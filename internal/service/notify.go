package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/ludobar/gamekeeper/api/internal/model"
)

// TransitionHandler reacts to club state transitions. The transition is
// already committed when handlers run; a failing handler never rolls it
// back, so implementations log and swallow their own errors.
type TransitionHandler interface {
	StateStarted(ctx context.Context, state *model.PlannedState)
	StateEnded(ctx context.Context, state *model.PlannedState)
}

// LogTransitionHandler writes every transition to the structured log
type LogTransitionHandler struct{}

// NewLogTransitionHandler creates the always-registered log handler
func NewLogTransitionHandler() *LogTransitionHandler {
	return &LogTransitionHandler{}
}

// StateStarted logs that a planned state began
func (h *LogTransitionHandler) StateStarted(_ context.Context, state *model.PlannedState) {
	slog.Info("club state started",
		slog.String("state_id", state.ID),
		slog.String("kind", string(state.Kind)),
		slog.Time("planned_end", state.PlannedEnd),
	)
}

// StateEnded logs that a planned state ended
func (h *LogTransitionHandler) StateEnded(_ context.Context, state *model.PlannedState) {
	slog.Info("club state ended",
		slog.String("state_id", state.ID),
		slog.String("kind", string(state.Kind)),
	)
}

// Embed strip colours, green for open and red for closed
const (
	discordColourOpen   = 0x2ecc71
	discordColourClosed = 0xe74c3c
)

// discordMessage is the payload shape the Discord webhook API expects
type discordMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// DiscordTransitionHandler announces transitions on a Discord webhook.
// Delivery is best effort with a short timeout; a dead webhook cannot
// stall the schedule.
type DiscordTransitionHandler struct {
	webhookURL string
	httpClient *http.Client
	location   *time.Location
}

// NewDiscordTransitionHandler creates a webhook announcer. Times in the
// announcements are rendered in the given location.
func NewDiscordTransitionHandler(webhookURL string, timeout time.Duration, location *time.Location) *DiscordTransitionHandler {
	if location == nil {
		location = time.UTC
	}
	return &DiscordTransitionHandler{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
		location:   location,
	}
}

// StateStarted announces that the club opened, or that a planned closure began
func (h *DiscordTransitionHandler) StateStarted(ctx context.Context, state *model.PlannedState) {
	embed := discordEmbed{Color: discordColourClosed}
	msg := discordMessage{Content: "The club is closed."}
	until := "Closed until"
	if state.Kind == model.StateKindOpen {
		embed.Color = discordColourOpen
		msg.Content = "The club is now open!"
		until = "Open until"
	}
	if state.NotePublic != nil && *state.NotePublic != "" {
		embed.Description = *state.NotePublic
	}
	embed.Fields = []discordEmbedField{{
		Name:  until,
		Value: h.formatLocal(state.PlannedEnd),
	}}
	msg.Embeds = []discordEmbed{embed}

	h.post(ctx, msg)
}

// StateEnded announces the close of an open period. Ends of planned
// closures stay silent; the next opening announces itself.
func (h *DiscordTransitionHandler) StateEnded(ctx context.Context, state *model.PlannedState) {
	if state.Kind != model.StateKindOpen {
		return
	}

	h.post(ctx, discordMessage{
		Content: "The club is now closed. See you next time!",
		Embeds: []discordEmbed{{
			Color: discordColourClosed,
		}},
	})
}

func (h *DiscordTransitionHandler) formatLocal(t time.Time) string {
	return t.In(h.location).Format("Mon 2 Jan 15:04")
}

func (h *DiscordTransitionHandler) post(ctx context.Context, msg discordMessage) {
	body, err := jsoniter.ConfigFastest.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal discord payload", slog.String("error", err.Error()))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewReader(body))
	if err != nil {
		slog.Error("failed to build discord request", slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		slog.Error("failed to post discord announcement", slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("discord webhook rejected announcement",
			slog.Int("status", resp.StatusCode),
			slog.String("response", string(detail)),
		)
	}
}
