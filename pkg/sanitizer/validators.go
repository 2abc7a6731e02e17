package sanitizer

import (
	"net/url"
	"regexp"
	"strings"
)

// ValidationResult carries a validity verdict together with the sanitized
// value. Invalid input is never an error: the cleaned value is still returned
// so that callers can log or echo it safely.
type ValidationResult struct {
	Valid     bool
	Sanitized string
}

// Pre-compiled patterns shared by the validators.
var (
	// Permissive email shape: local-part characters, single @, domain with
	// a TLD of at least two letters. Deliverability is not our problem.
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Characters with reserved meaning on common filesystems.
	unsafeFilenameRegex = regexp.MustCompile(`[<>:"|?*\\/]`)

	whitespaceRunRegex = regexp.MustCompile(`\s+`)
	underscoreRunRegex = regexp.MustCompile(`_+`)
)

// ValidateEmail sanitizes and shape-checks an email address. The address is
// case-folded to lower case and bounded at 254 characters (RFC 5321 path
// limit).
func ValidateEmail(input string) ValidationResult {
	res := sanitize(input, emailOptions())
	return ValidationResult{
		Valid:     emailRegex.MatchString(res.Sanitized),
		Sanitized: res.Sanitized,
	}
}

func emailOptions() Options {
	o := defaultOptions()
	o.MaxLength = 254
	o.Lowercase = true
	return o
}

// ValidateURL sanitizes a URL and accepts it only when it parses with an
// http or https scheme and a non-empty host. Dangerous schemes such as
// javascript: are stripped by the XSS stage before parsing, so they fail the
// scheme check rather than slipping through.
func ValidateURL(input string) ValidationResult {
	res := sanitize(input, urlOptions())

	u, err := url.Parse(res.Sanitized)
	valid := err == nil &&
		(u.Scheme == "http" || u.Scheme == "https") &&
		u.Host != ""

	return ValidationResult{Valid: valid, Sanitized: res.Sanitized}
}

func urlOptions() Options {
	o := defaultOptions()
	o.MaxLength = 2048
	// Entity escaping would mangle every slash in the URL; scheme and
	// pattern checks provide the safety here.
	o.AllowHTML = true
	// SQL keywords legitimately occur in URL paths and queries.
	o.PreventSQLInjection = false
	return o
}

// SanitizeFilename produces a name safe to use as a single filesystem path
// element: no separators, no reserved characters, no leading or trailing
// underscores, at most 255 characters. Empty results fall back to "file".
func SanitizeFilename(input string) string {
	res := sanitize(input, filenameOptions())

	s := unsafeFilenameRegex.ReplaceAllString(res.Sanitized, "_")
	s = whitespaceRunRegex.ReplaceAllString(s, "_")
	s = underscoreRunRegex.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	s = truncate(s, 255)
	s = strings.Trim(s, "_")

	if s == "" {
		return "file"
	}
	return s
}

func filenameOptions() Options {
	o := defaultOptions()
	o.MaxLength = 255
	o.AllowSpecialChars = false
	return o
}
