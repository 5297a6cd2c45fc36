package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taskhub/taskhub/internal/models"
)

const maxTitleLength = 200

var (
	emailRegexp     = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	scriptTagRegexp = regexp.MustCompile(`(?is)<script.*?</script>`)
	markupRegexp    = regexp.MustCompile(`<[^>]+>`)
)

// Email reports whether the address looks like local@domain.tld.
func Email(email string) (bool, string) {
	if email == "" {
		return false, "email is required"
	}
	if !emailRegexp.MatchString(email) {
		return false, "invalid email format"
	}
	return true, ""
}

// Password enforces a minimum length of 8 with at least one
// uppercase letter, one lowercase letter and one digit.
func Password(password string) (bool, string) {
	if password == "" {
		return false, "password is required"
	}
	if len(password) < 8 {
		return false, "password must be at least 8 characters"
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return false, "password must contain at least one uppercase letter"
	}
	if !hasLower {
		return false, "password must contain at least one lowercase letter"
	}
	if !hasDigit {
		return false, "password must contain at least one number"
	}
	return true, ""
}

func TaskTitle(title string) (bool, string) {
	if strings.TrimSpace(title) == "" {
		return false, "title is required"
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return false, fmt.Sprintf("title must be %d characters or less", maxTitleLength)
	}
	return true, ""
}

func TaskStatus(status string) (bool, string) {
	switch status {
	case models.StatusPending, models.StatusInProgress, models.StatusCompleted:
		return true, ""
	}
	return false, fmt.Sprintf("status must be one of: %s, %s, %s",
		models.StatusPending, models.StatusInProgress, models.StatusCompleted)
}

// Sanitize strips tag-delimited markup from free-text input.
// Script blocks are removed with their contents before the
// remaining tags are stripped, so nothing between <script>
// and </script> survives.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = scriptTagRegexp.ReplaceAllString(text, "")
	text = markupRegexp.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
