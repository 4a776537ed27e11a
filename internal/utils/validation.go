package utils

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

var (
	// Allow alphanumeric, underscore, hyphen, dot, colon - common in stop and route IDs
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// MaxWalkDistanceKm caps the walking distance a caller may request.
const MaxWalkDistanceKm = 25.0

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateWalkDistance validates a caller supplied maximum walking distance in kilometers.
// Zero and negative values are allowed and disable the walking limit.
func ValidateWalkDistance(km float64) error {
	if math.IsNaN(km) || math.IsInf(km, 0) {
		return errors.New("walk distance must be a finite number")
	}
	if km > MaxWalkDistanceKm {
		return errors.New("walk distance too large (max 25 km)")
	}
	return nil
}

// ValidateLocationParams validates a coordinate pair and reports errors under the given field names.
func ValidateLocationParams(latField string, lat float64, lonField string, lon float64, fieldErrors map[string][]string) map[string][]string {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	if err := ValidateLatitude(lat); err != nil {
		fieldErrors[latField] = append(fieldErrors[latField], err.Error())
	}

	if err := ValidateLongitude(lon); err != nil {
		fieldErrors[lonField] = append(fieldErrors[lonField], err.Error())
	}

	return fieldErrors
}

// SanitizeInput removes HTML tags and surrounding whitespace
func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(input, ""))
}
