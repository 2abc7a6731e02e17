package sanitizer

import (
	"strings"
)

// Result describes the outcome of a single string sanitization.
type Result struct {
	// Sanitized is the cleaned value, safe to log and store.
	Sanitized string

	// Modified reports whether any stage changed the input.
	Modified bool

	// Threats lists the detected threat categories in stage order,
	// deduplicated.
	Threats []Threat

	// OriginalLength and SanitizedLength are rune counts of the input and
	// output. SanitizedLength never exceeds the configured MaxLength.
	OriginalLength  int
	SanitizedLength int
}

// SanitizeString runs input through the cleaning pipeline and reports what it
// found. It accepts any value so that callers forwarding decoded request
// fields do not need a type assertion first; a non-string value fails with
// ErrInvalidInput.
//
// Stage order matters: truncation runs before pattern scanning to bound cost,
// and escaping runs last so the detectors see the raw payload.
func SanitizeString(input any, opts ...Option) (*Result, error) {
	s, ok := input.(string)
	if !ok {
		return nil, ErrInvalidInput
	}
	o := buildOptions(opts)
	return sanitize(s, o), nil
}

func sanitize(s string, o Options) *Result {
	res := &Result{OriginalLength: len([]rune(s))}
	seen := make(map[Threat]struct{})
	flag := func(t Threat) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			res.Threats = append(res.Threats, t)
		}
	}

	original := s

	if o.RemoveNullBytes {
		cleaned := strings.ReplaceAll(s, "\x00", "")
		if cleaned != s {
			flag(ThreatNullBytes)
			s = cleaned
		}
	}

	if o.TrimWhitespace {
		s = strings.TrimSpace(s)
	}

	if truncated := truncate(s, o.MaxLength); truncated != s {
		flag(ThreatExcessiveLength)
		s = truncated
	}

	rules := make([]Rule, 0, 5+len(o.extraRules))
	if o.PreventXSS {
		rules = append(rules, xssRule)
	}
	if o.PreventSQLInjection {
		rules = append(rules, sqlRule)
	}
	rules = append(rules, nosqlRule)
	if o.PreventPathTraversal {
		rules = append(rules, pathTraversalRule)
	}
	if o.PreventCommandInjection {
		rules = append(rules, commandRule)
	}
	rules = append(rules, o.extraRules...)

	for _, rule := range rules {
		cleaned, modified := rule.apply(s)
		if modified {
			flag(rule.Threat)
			s = cleaned
		}
	}

	if !o.AllowHTML {
		escaped := escapeHTML(s)
		if escaped != s {
			flag(ThreatHTMLContent)
			s = escaped
		}
	}

	if !o.AllowSpecialChars {
		cleaned := stripSpecialChars(s)
		if cleaned != s {
			flag(ThreatSpecialChars)
			s = cleaned
		}
	}

	if o.Lowercase {
		s = strings.ToLower(s)
	}

	// Escaping can grow the string past the truncation applied earlier, so
	// the length invariant is re-enforced here.
	s = truncate(s, o.MaxLength)

	res.Sanitized = s
	res.Modified = s != original
	res.SanitizedLength = len([]rune(s))
	return res
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// entityPrefixes are the entities escapeHTML emits. An ampersand already
// starting one of them is left alone so that sanitizing twice is a no-op.
var entityPrefixes = []string{"&amp;", "&lt;", "&gt;", "&quot;", "&#x27;", "&#x2F;"}

func startsEntity(s string) bool {
	for _, p := range entityPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// escapeHTML escapes & < > " ' / for safe rendering. html.EscapeString is not
// used because it neither escapes the slash nor recognizes already-escaped
// input.
func escapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			if startsEntity(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#x27;")
		case '/':
			b.WriteString("&#x2F;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func stripSpecialChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '\'', '"', '&':
			return -1
		}
		return r
	}, s)
}
