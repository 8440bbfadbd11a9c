// Package calendar is a thin read-only proxy over the Google Calendar API.
// It owns the OAuth token lifecycle for each tenant and fetches the day's
// events from that tenant's selected calendars. The day itself always comes
// from the caller, never from the server clock.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/store"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// Config holds the Google OAuth application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Service manages per-tenant Google Calendar connections.
type Service struct {
	oauth    *oauth2.Config
	settings *store.CalendarSettingsStore
	client   *http.Client
	baseURL  string
	logger   *slog.Logger
}

func NewService(cfg Config, settings *store.CalendarSettingsStore, logger *slog.Logger) *Service {
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/calendar.readonly"},
			Endpoint:     google.Endpoint,
		},
		settings: settings,
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		logger:   logger,
	}
}

// Configured reports whether OAuth application credentials are present.
func (s *Service) Configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthURL returns the Google consent URL. The state parameter round-trips
// the tenant through the OAuth redirect.
func (s *Service) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for tokens and stores them for the
// tenant.
func (s *Service) Exchange(ctx context.Context, tenantID int64, code string) error {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	if _, err := s.settings.SaveTokens(tenantID, tok.AccessToken, tok.RefreshToken, tok.Expiry); err != nil {
		return err
	}
	return nil
}

// Status describes a tenant's calendar connection.
type Status struct {
	Authenticated     bool   `json:"authenticated"`
	SelectedCalendars string `json:"selected_calendars"`
}

func (s *Service) Status(tenantID int64) (Status, error) {
	cs, err := s.settings.GetByTenant(tenantID)
	if err != nil {
		return Status{}, err
	}
	if cs == nil {
		return Status{}, nil
	}
	return Status{Authenticated: true, SelectedCalendars: cs.SelectedCalendars}, nil
}

// SelectCalendars stores the comma-separated calendar IDs to show.
func (s *Service) SelectCalendars(tenantID int64, calendarIDs string) error {
	return s.settings.UpdateSelectedCalendars(tenantID, calendarIDs)
}

// Disconnect forgets the tenant's tokens.
func (s *Service) Disconnect(tenantID int64) error {
	return s.settings.Delete(tenantID)
}

// token returns a live access token for the tenant, refreshing and
// persisting it when expired. Returns ("", nil) when not connected.
func (s *Service) token(ctx context.Context, tenantID int64) (string, error) {
	cs, err := s.settings.GetByTenant(tenantID)
	if err != nil {
		return "", err
	}
	if cs == nil {
		return "", nil
	}

	tok := &oauth2.Token{
		AccessToken:  cs.AccessToken,
		RefreshToken: cs.RefreshToken,
		Expiry:       cs.TokenExpiry,
	}
	if tok.Valid() {
		return tok.AccessToken, nil
	}

	fresh, err := s.oauth.TokenSource(ctx, tok).Token()
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if _, err := s.settings.SaveTokens(tenantID, fresh.AccessToken, fresh.RefreshToken, fresh.Expiry); err != nil {
		s.logger.Warn("persist refreshed token", "tenant_id", tenantID, "error", err)
	}
	return fresh.AccessToken, nil
}

// CalendarInfo is one entry from the tenant's calendar list.
type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Color   string `json:"color"`
	Primary bool   `json:"primary"`
}

type calendarListResponse struct {
	Items []struct {
		ID              string `json:"id"`
		Summary         string `json:"summary"`
		BackgroundColor string `json:"backgroundColor"`
		Primary         bool   `json:"primary"`
	} `json:"items"`
}

// ListCalendars returns the calendars visible to the tenant's account.
// A tenant with no connection gets an empty list.
func (s *Service) ListCalendars(ctx context.Context, tenantID int64) ([]CalendarInfo, error) {
	accessToken, err := s.token(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, nil
	}

	var resp calendarListResponse
	if err := s.get(ctx, accessToken, s.baseURL+"/users/me/calendarList", &resp); err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}

	var out []CalendarInfo
	for _, item := range resp.Items {
		color := item.BackgroundColor
		if color == "" {
			color = "#3b82f6"
		}
		out = append(out, CalendarInfo{ID: item.ID, Summary: item.Summary, Color: color, Primary: item.Primary})
	}
	return out, nil
}

// Event is one calendar event on the requested day.
type Event struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	Start      string `json:"start"`
	End        string `json:"end"`
	AllDay     bool   `json:"all_day"`
	CalendarID string `json:"calendar_id"`
	Location   string `json:"location,omitempty"`
}

type eventsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
		Start   struct {
			DateTime string `json:"dateTime"`
			Date     string `json:"date"`
		} `json:"start"`
		End struct {
			DateTime string `json:"dateTime"`
			Date     string `json:"date"`
		} `json:"end"`
		Location string `json:"location"`
	} `json:"items"`
}

// EventsForDay fetches the day's events from every selected calendar.
// Calendars that fail are skipped with a warning so one bad calendar does
// not blank the whole dashboard.
func (s *Service) EventsForDay(ctx context.Context, tenantID int64, day dates.Date) ([]Event, error) {
	accessToken, err := s.token(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, nil
	}

	cs, err := s.settings.GetByTenant(tenantID)
	if err != nil {
		return nil, err
	}
	if cs == nil || cs.SelectedCalendars == "" {
		return nil, nil
	}

	timeMin := day.String() + "T00:00:00Z"
	timeMax := day.AddDays(1).String() + "T00:00:00Z"

	var events []Event
	for _, calendarID := range strings.Split(cs.SelectedCalendars, ",") {
		calendarID = strings.TrimSpace(calendarID)
		if calendarID == "" {
			continue
		}

		endpoint := fmt.Sprintf("%s/calendars/%s/events?%s",
			s.baseURL, url.PathEscape(calendarID),
			url.Values{
				"timeMin":      {timeMin},
				"timeMax":      {timeMax},
				"singleEvents": {"true"},
				"orderBy":      {"startTime"},
			}.Encode(),
		)

		var resp eventsResponse
		if err := s.get(ctx, accessToken, endpoint, &resp); err != nil {
			s.logger.Warn("fetch calendar events", "calendar_id", calendarID, "error", err)
			continue
		}

		for _, item := range resp.Items {
			ev := Event{
				ID:         item.ID,
				Summary:    item.Summary,
				CalendarID: calendarID,
				Location:   item.Location,
			}
			if item.Start.Date != "" {
				ev.AllDay = true
				ev.Start = item.Start.Date
				ev.End = item.End.Date
			} else {
				ev.Start = item.Start.DateTime
				ev.End = item.End.DateTime
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

func (s *Service) get(ctx context.Context, accessToken, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("calendar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calendar API status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
