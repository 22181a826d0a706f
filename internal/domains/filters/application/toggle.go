package application

import (
	"context"
	"fmt"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
)

// Toggle flips the selection of one item. The set of variants is closed: ToggleSpecies,
// ToggleBreed, ToggleAgeRange, ToggleState and ToggleCity.
type Toggle interface {
	flip(state *domain.SelectionState) bool
	// cascade returns the dependent refresh triggered by the toggle, or nil.
	cascade() cascade
}

type ToggleSpecies struct{ ID int64 }
type ToggleBreed struct{ ID int64 }
type ToggleAgeRange struct{ ID int64 }
type ToggleState struct{ ID int64 }
type ToggleCity struct{ ID int64 }

func (t ToggleSpecies) flip(s *domain.SelectionState) bool  { return domain.Toggle(s.Species, t.ID) }
func (t ToggleBreed) flip(s *domain.SelectionState) bool    { return domain.Toggle(s.Breeds, t.ID) }
func (t ToggleAgeRange) flip(s *domain.SelectionState) bool { return domain.Toggle(s.AgeRanges, t.ID) }
func (t ToggleState) flip(s *domain.SelectionState) bool    { return domain.Toggle(s.States, t.ID) }
func (t ToggleCity) flip(s *domain.SelectionState) bool     { return domain.Toggle(s.Cities, t.ID) }

func (ToggleSpecies) cascade() cascade  { return speciesCascade{} }
func (ToggleBreed) cascade() cascade    { return nil }
func (ToggleAgeRange) cascade() cascade { return nil }
func (ToggleState) cascade() cascade    { return stateCascade{} }
func (ToggleCity) cascade() cascade     { return nil }

// ParseToggle maps a transport domain name onto its toggle variant.
func ParseToggle(name string, id int64) (Toggle, error) {
	switch name {
	case types.DomainSpecies:
		return ToggleSpecies{ID: id}, nil
	case types.DomainBreed:
		return ToggleBreed{ID: id}, nil
	case types.DomainAgeRange:
		return ToggleAgeRange{ID: id}, nil
	case types.DomainState:
		return ToggleState{ID: id}, nil
	case types.DomainCity:
		return ToggleCity{ID: id}, nil
	default:
		return nil, fmt.Errorf("%w: unknown filter domain %q", ErrInvalidInput, name)
	}
}

// cascade refreshes child lists after a parent selection changed.
// begin runs with the session lock held; run must not hold it.
type cascade interface {
	begin(s *Session) cascadeTicket
	run(ctx context.Context, s *Session, t cascadeTicket, fb domain.QueryFallbacks)
}

type cascadeTicket struct {
	generation uint64
	parents    []int64
}

type speciesCascade struct{}

func (speciesCascade) begin(s *Session) cascadeTicket {
	s.speciesGen++
	return cascadeTicket{generation: s.speciesGen, parents: domain.SelectedIDs(s.state.Species)}
}

func (speciesCascade) run(ctx context.Context, s *Session, t cascadeTicket, fb domain.QueryFallbacks) {
	s.refreshSpeciesChildren(ctx, t, fb)
}

type stateCascade struct{}

func (stateCascade) begin(s *Session) cascadeTicket {
	s.statesGen++
	return cascadeTicket{generation: s.statesGen, parents: domain.SelectedIDs(s.state.States)}
}

func (stateCascade) run(ctx context.Context, s *Session, t cascadeTicket, fb domain.QueryFallbacks) {
	s.refreshCities(ctx, t, fb)
}
