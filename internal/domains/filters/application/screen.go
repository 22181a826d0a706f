package application

import (
	"fmt"
	"strings"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

// AgeRangeFallback decides what the age-range list shows while no species is selected.
type AgeRangeFallback int

const (
	// AgeRangesAll shows the unfiltered age-range catalog.
	AgeRangesAll AgeRangeFallback = iota
	// AgeRangesNone shows no age range until a species is selected.
	AgeRangesNone
)

// Screen describes a filter screen context: where its query is persisted and how it behaves
// with an empty species selection.
type Screen struct {
	Name             string
	Key              string
	AgeRangeFallback AgeRangeFallback
}

var (
	// PetListingScreen filters the public adoption listing.
	PetListingScreen = Screen{Name: "pet-listing", Key: ports.KeyPetFilters, AgeRangeFallback: AgeRangesAll}
	// MyPetsScreen filters the pets donated by the current user.
	MyPetsScreen = Screen{Name: "my-pets", Key: ports.KeyMyPetsFilters, AgeRangeFallback: AgeRangesNone}
)

// ScreenByName resolves a screen by its name or persistence key.
func ScreenByName(name string) (Screen, error) {
	name = strings.TrimSpace(name)
	for _, s := range []Screen{PetListingScreen, MyPetsScreen} {
		if strings.EqualFold(name, s.Name) || name == s.Key {
			return s, nil
		}
	}
	return Screen{}, fmt.Errorf("%w: %q", ErrUnknownScreen, name)
}
