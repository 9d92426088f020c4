// Package calendar wraps the Google Calendar API for the bot's scheduling
// subsystem. Every event this system creates carries the reserved
// "[Plato] " title prefix; that literal substring is the only correlation
// mechanism between calendar events and the adherence tracker, so both
// creation and removal go through it.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/jasonoc/plato/internal/config"
	"github.com/jasonoc/plato/internal/logger"
)

// TitlePrefix is the reserved marker on every externally visible event.
const TitlePrefix = "[Plato] "

// CategoryColors maps event categories to Google Calendar color ids.
// Unknown categories get no color, never an error.
var CategoryColors = map[string]string{
	"cfa":      "9",  // Blueberry
	"nitrogen": "10", // Basil
	"glowbook": "6",  // Tangerine
	"plato":    "7",  // Peacock
	"leetcode": "3",  // Grape
	"rest":     "8",  // Graphite
	"exercise": "2",  // Sage
	"personal": "4",  // Flamingo
	"citco":    "1",  // Lavender
	"audrey":   "11", // Tomato
}

// Event is the wire shape shared with the planning services.
type Event struct {
	Date        string `json:"date"`  // "YYYY-MM-DD"
	Start       string `json:"start"` // "HH:MM"
	End         string `json:"end"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Client talks to a single Google calendar using a stored refresh token.
type Client struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
}

func NewClient(ctx context.Context, cfg config.GoogleConfig) (*Client, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarScope},
	}
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{svc: svc, calendarID: cfg.CalendarID, timezone: cfg.Timezone}, nil
}

// CreateEvent inserts one event, tagging the title with the reserved prefix
// and mapping the category to a color.
func (c *Client) CreateEvent(ctx context.Context, ev Event) error {
	body := &gcal.Event{
		Summary:     TitlePrefix + ev.Title,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: fmt.Sprintf("%sT%s:00", ev.Date, ev.Start),
			TimeZone: c.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: fmt.Sprintf("%sT%s:00", ev.Date, ev.End),
			TimeZone: c.timezone,
		},
	}
	if color, ok := CategoryColors[ev.Category]; ok {
		body.ColorId = color
	}

	if _, err := c.svc.Events.Insert(c.calendarID, body).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create event %q: %w", ev.Title, err)
	}
	return nil
}

// ClearWeek deletes all prefixed events in [weekStart, weekStart+7d).
// Deletions are best-effort: a failure on one event is logged and the rest
// still get attempted. Returns the number deleted.
func (c *Client) ClearWeek(ctx context.Context, weekStart time.Time) int {
	weekEnd := weekStart.AddDate(0, 0, 7)

	items, err := c.listPrefixed(ctx,
		weekStart.Format("2006-01-02")+"T00:00:00Z",
		weekEnd.Format("2006-01-02")+"T00:00:00Z")
	if err != nil {
		logger.Error("Failed to list events for week clear", "error", err)
		return 0
	}

	deleted := 0
	for _, item := range items {
		if err := c.svc.Events.Delete(c.calendarID, item.Id).Context(ctx).Do(); err != nil {
			logger.Error("Failed to delete event", "title", item.Summary, "error", err)
			continue
		}
		deleted++
	}
	return deleted
}

// CancelFrom deletes prefixed events on date starting at or after fromTime
// ("HH:MM"). Returns the titles (prefix stripped) of cancelled events.
func (c *Client) CancelFrom(ctx context.Context, date, fromTime string) []string {
	items, err := c.listPrefixed(ctx,
		fmt.Sprintf("%sT%s:00Z", date, fromTime),
		fmt.Sprintf("%sT23:59:00Z", date))
	if err != nil {
		logger.Error("Failed to list events for cancellation", "date", date, "error", err)
		return nil
	}

	var cancelled []string
	for _, item := range items {
		if err := c.svc.Events.Delete(c.calendarID, item.Id).Context(ctx).Do(); err != nil {
			logger.Error("Failed to cancel event", "title", item.Summary, "error", err)
			continue
		}
		cancelled = append(cancelled, strings.TrimPrefix(item.Summary, TitlePrefix))
	}
	return cancelled
}

// listPrefixed returns the events in the window whose summary carries the
// reserved prefix. The q parameter narrows server-side; the summary check is
// the authoritative filter.
func (c *Client) listPrefixed(ctx context.Context, timeMin, timeMax string) ([]*gcal.Event, error) {
	result, err := c.svc.Events.List(c.calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		Q("[Plato]").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var matched []*gcal.Event
	for _, item := range result.Items {
		if strings.Contains(item.Summary, strings.TrimSpace(TitlePrefix)) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}
