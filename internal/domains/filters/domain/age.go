package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SanitizeAgeInput keeps only ASCII digits, mirroring the numeric keyboard filter of the age field.
func SanitizeAgeInput(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateAge checks a specific age against the bounds of its bucket.
// It returns an empty string when the age is acceptable or absent.
func ValidateAge(ageText string, bucket AgeRangeBucket) string {
	if ageText == "" {
		return ""
	}
	age, err := strconv.Atoi(ageText)
	if err != nil {
		// an overflowing age lies above every bound, so only a closed bucket rejects it
		if errors.Is(err, strconv.ErrRange) && bucket.MaxAge == nil {
			return ""
		}
		return outOfBoundsMessage(bucket)
	}
	if bucket.MaxAge == nil {
		if age < bucket.MinAge {
			return outOfBoundsMessage(bucket)
		}
		return ""
	}
	if age < bucket.MinAge || age > *bucket.MaxAge {
		return outOfBoundsMessage(bucket)
	}
	return ""
}

func outOfBoundsMessage(bucket AgeRangeBucket) string {
	if bucket.MaxAge == nil {
		return fmt.Sprintf("age must be %d or more", bucket.MinAge)
	}
	return fmt.Sprintf("age must be between %d and %d", bucket.MinAge, *bucket.MaxAge)
}

// parseAge returns the numeric value of a specific age, if any.
func parseAge(ageText string) (int, bool) {
	if ageText == "" {
		return 0, false
	}
	age, err := strconv.Atoi(ageText)
	if err != nil {
		return 0, false
	}
	return age, true
}
