package complaint

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

	// leading 0 or +country code, then 9-10 digits
	phonePattern = regexp.MustCompile(`^(0|\+\d{1,3})\d{9,10}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
)

// NormalizeEmail lowercases and trims the address. ok is false when it is not a valid address.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return "", false
	}
	return email, true
}

// NormalizePhone strips common separators. ok is false when the number does not
// look like a local or international mobile number.
func NormalizePhone(raw string) (string, bool) {
	phone := phoneSeparators.Replace(strings.TrimSpace(raw))
	if phone == "" || !phonePattern.MatchString(phone) {
		return "", false
	}
	return phone, true
}
