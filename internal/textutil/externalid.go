package textutil

import "regexp"

// externalIDPatterns match the 11-character video identifier inside the URL
// forms accepted as identity shortcuts.
var externalIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([A-Za-z0-9_-]{11})`),
}

var bareExternalID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractExternalID returns the canonical external media identifier when the
// query is itself an 11-character identifier or a URL embedding one.
func ExtractExternalID(query string) (string, bool) {
	if query == "" {
		return "", false
	}
	for _, pattern := range externalIDPatterns {
		if m := pattern.FindStringSubmatch(query); m != nil {
			return m[1], true
		}
	}
	if bareExternalID.MatchString(query) {
		return query, true
	}
	return "", false
}
