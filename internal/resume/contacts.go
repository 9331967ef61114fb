package resume

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// digit runs on one line with optional separators; the digit count is checked later
	phoneRe = regexp.MustCompile(`\+?\(?\d[\d ().\-]{5,}\d`)
	linkRe  = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>()"']+|\b(?:linkedin\.com|github\.com)/[^\s<>()"']+`)
)

// year ranges such as "2019 - 2021" have eight digits
const (
	minPhoneDigits = 9
	maxPhoneDigits = 15
)

// Contacts holds the contact details found in resume text.
type Contacts struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
	Links  []string `json:"links"`
}

// ExtractContacts finds emails, phone numbers and links in text. Results are
// deduplicated and keep the order of first appearance.
func ExtractContacts(text string) Contacts {
	links := unique(linkRe.FindAllString(text, -1), func(s string) string {
		return strings.TrimRight(s, ".,;:")
	})

	// links may contain digit runs, drop them before looking for phones
	withoutLinks := linkRe.ReplaceAllString(text, " ")
	withoutEmails := emailRe.ReplaceAllString(withoutLinks, " ")

	phones := make([]string, 0)
	for _, candidate := range phoneRe.FindAllString(withoutEmails, -1) {
		candidate = strings.TrimSpace(candidate)
		if digits := countDigits(candidate); digits < minPhoneDigits || digits > maxPhoneDigits {
			continue
		}
		phones = append(phones, candidate)
	}

	return Contacts{
		Emails: unique(emailRe.FindAllString(text, -1), strings.ToLower),
		Phones: unique(phones, nil),
		Links:  links,
	}
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func unique(values []string, normalize func(string) string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if normalize != nil {
			v = normalize(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
