package mapper

import (
	"errors"
	"strings"
	"time"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
)

// OpenSession is the payload that mounts a filter screen.
type OpenSession struct {
	Screen string `json:"screen"`
	UserID *int64 `json:"userId,omitempty"`
}

// Toggle selects or deselects one option.
type Toggle struct {
	Domain string `json:"domain"`
	ID     *int64 `json:"id"`
}

// SpecificAge carries the raw age typed into a bucket.
type SpecificAge struct {
	Age string `json:"age"`
}

// Search carries the free-text pet name.
type Search struct {
	Text string `json:"text"`
}

var (
	errMissingScreen = errors.New("screen is required")
	errMissingDomain = errors.New("domain is required")
	errMissingID     = errors.New("id is required")
)

// Option is one selectable entry of a filter list.
type Option struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Selected    bool   `json:"selected"`
	ParentID    int64  `json:"parentId,omitempty"`
	MinAge      *int   `json:"minAge,omitempty"`
	MaxAge      *int   `json:"maxAge,omitempty"`
	Unit        string `json:"unit,omitempty"`
	SpecificAge string `json:"specificAge,omitempty"`
	AgeError    string `json:"ageError,omitempty"`
}

// Alert is a one-shot notice about a degraded list.
type Alert struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Session is the HTTP representation of a filter session snapshot.
type Session struct {
	ID             string       `json:"id"`
	Screen         string       `json:"screen"`
	Species        []Option     `json:"species"`
	Breeds         []Option     `json:"breeds"`
	AgeRanges      []Option     `json:"ageRanges"`
	States         []Option     `json:"states"`
	Cities         []Option     `json:"cities"`
	OnlyFavorites  bool         `json:"onlyFavorites"`
	FavoritesCount int          `json:"favoritesCount"`
	SearchText     string       `json:"searchText,omitempty"`
	SearchResults  []domain.Pet `json:"searchResults"`
	Alerts         []Alert      `json:"alerts"`
	OpenedAt       time.Time    `json:"openedAt"`
	LastUsedAt     time.Time    `json:"lastUsedAt"`
}

// Commit is the response of a successful commit.
type Commit struct {
	SessionID string             `json:"sessionId"`
	Key       string             `json:"key"`
	Query     domain.FilterQuery `json:"query"`
}

// ToOpenInput validates and converts an open payload.
func ToOpenInput(payload OpenSession) (types.OpenSessionInput, error) {
	screen := strings.TrimSpace(payload.Screen)
	if screen == "" {
		return types.OpenSessionInput{}, errMissingScreen
	}
	return types.OpenSessionInput{Screen: screen, UserID: payload.UserID}, nil
}

// ToToggleInput validates and converts a toggle payload.
func ToToggleInput(sessionID string, payload Toggle) (types.ToggleInput, error) {
	domainName := strings.TrimSpace(payload.Domain)
	if domainName == "" {
		return types.ToggleInput{}, errMissingDomain
	}
	if payload.ID == nil {
		return types.ToggleInput{}, errMissingID
	}
	return types.ToggleInput{
		SessionRef: types.SessionRef{SessionID: sessionID},
		Domain:     domainName,
		ID:         *payload.ID,
	}, nil
}

// FromSnapshot maps a session snapshot to its HTTP representation.
func FromSnapshot(s *types.SessionSnapshot) Session {
	if s == nil {
		return Session{}
	}
	out := Session{
		ID:             s.ID,
		Screen:         s.Screen,
		Species:        make([]Option, 0, len(s.State.Species)),
		Breeds:         make([]Option, 0, len(s.State.Breeds)),
		AgeRanges:      make([]Option, 0, len(s.State.AgeRanges)),
		States:         make([]Option, 0, len(s.State.States)),
		Cities:         make([]Option, 0, len(s.State.Cities)),
		OnlyFavorites:  s.State.OnlyFavorites,
		FavoritesCount: s.FavoritesCount,
		SearchText:     s.State.SearchText,
		SearchResults:  append([]domain.Pet{}, s.State.SearchResults...),
		Alerts:         make([]Alert, 0, len(s.Alerts)),
		OpenedAt:       s.OpenedAt,
		LastUsedAt:     s.LastUsedAt,
	}
	for _, item := range s.State.Species {
		out.Species = append(out.Species, Option{ID: item.Value.ID, Name: item.Value.Name, Selected: item.Selected})
	}
	for _, item := range s.State.Breeds {
		out.Breeds = append(out.Breeds, Option{ID: item.Value.ID, Name: item.Value.Name, Selected: item.Selected, ParentID: item.Value.SpeciesID})
	}
	for _, item := range s.State.AgeRanges {
		minAge := item.Value.MinAge
		out.AgeRanges = append(out.AgeRanges, Option{
			ID:          item.Value.ID,
			Name:        item.Value.Name,
			Selected:    item.Selected,
			ParentID:    item.Value.SpeciesID,
			MinAge:      &minAge,
			MaxAge:      item.Value.MaxAge,
			Unit:        item.Value.Unit,
			SpecificAge: item.SpecificAge,
			AgeError:    item.AgeError,
		})
	}
	for _, item := range s.State.States {
		out.States = append(out.States, Option{ID: item.Value.ID, Name: item.Value.Name, Selected: item.Selected})
	}
	for _, item := range s.State.Cities {
		out.Cities = append(out.Cities, Option{ID: item.Value.ID, Name: item.Value.Name, Selected: item.Selected, ParentID: item.Value.StateID})
	}
	for _, alert := range s.Alerts {
		out.Alerts = append(out.Alerts, Alert{Source: alert.Source, Message: alert.Message})
	}
	return out
}

// FromCommit maps a commit result.
func FromCommit(result *types.CommitResult) Commit {
	if result == nil {
		return Commit{}
	}
	return Commit{SessionID: result.SessionID, Key: result.Key, Query: result.Query}
}
