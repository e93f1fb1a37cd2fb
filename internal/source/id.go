package source

import "regexp"

// idPatterns are tried in order; the first match wins.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:twitter\.com|x\.com)/\w+/status/(\d+)`),
	regexp.MustCompile(`(?:twitter\.com|x\.com)/i/web/status/(\d+)`),
	regexp.MustCompile(`/status/(\d+)`),
}

// ExtractID returns the numeric post ID contained in rawURL.
func ExtractID(rawURL string) (string, bool) {
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}
