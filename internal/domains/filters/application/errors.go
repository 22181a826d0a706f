package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidInput signals the request violated an input constraint.
	ErrInvalidInput = errors.New("invalid filter input")
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("filter session not found")
	// ErrUnknownItem is returned when a toggle or age edit targets an id missing from its list.
	ErrUnknownItem = errors.New("filter item not found")
	// ErrUnknownScreen is returned for unsupported screen contexts.
	ErrUnknownScreen = errors.New("unknown filter screen")
	// ErrInvalidAge blocks commit while a selected bucket has an out of bounds specific age.
	ErrInvalidAge = errors.New("specific age out of bounds")
)

// AgeValidationError lists the offending buckets of a rejected commit.
type AgeValidationError struct {
	Errors map[int64]string
}

func (e *AgeValidationError) Error() string {
	ids := make([]int64, 0, len(e.Errors))
	for id := range e.Errors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d: %s", id, e.Errors[id]))
	}
	return fmt.Sprintf("%s (%s)", ErrInvalidAge, strings.Join(parts, "; "))
}

// AgeErrors returns the out of bounds messages keyed by age-range bucket id.
func (e *AgeValidationError) AgeErrors() map[int64]string {
	return e.Errors
}

func (e *AgeValidationError) Is(target error) bool {
	return target == ErrInvalidAge
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnknownItem) || errors.Is(err, ErrUnknownScreen) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
