// Package validation holds input rules shared by the services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var boardPathRegex = regexp.MustCompile(`^[a-z0-9-]{2,32}$`)

// MaxKeywordLength bounds a saved keyword in characters.
const MaxKeywordLength = 50

// ValidateBoardPath validates the board name a community post is filed under.
func ValidateBoardPath(path string) error {
	if !boardPathRegex.MatchString(path) {
		return fmt.Errorf("path must be 2-32 characters and contain only lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(path, "-") || strings.HasSuffix(path, "-") {
		return fmt.Errorf("path cannot start or end with a hyphen")
	}
	return nil
}

// ValidateKeyword validates one saved interest keyword. Keywords are joined with
// commas when injected into a listing filter, so they cannot contain one.
func ValidateKeyword(keyword string) error {
	if strings.Contains(keyword, ",") {
		return fmt.Errorf("keywords cannot contain commas")
	}
	if utf8.RuneCountInString(keyword) > MaxKeywordLength {
		return fmt.Errorf("keywords are limited to %d characters", MaxKeywordLength)
	}
	return nil
}
