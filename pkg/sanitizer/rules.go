package sanitizer

import "regexp"

// Threat labels a class of malicious pattern detected during sanitization.
type Threat string

const (
	ThreatNullBytes        Threat = "null_bytes"
	ThreatExcessiveLength  Threat = "excessive_length"
	ThreatXSS              Threat = "xss_attempt"
	ThreatSQLInjection     Threat = "sql_injection_attempt"
	ThreatNoSQLInjection   Threat = "nosql_injection_attempt"
	ThreatPathTraversal    Threat = "path_traversal_attempt"
	ThreatCommandInjection Threat = "command_injection_attempt"
	ThreatHTMLContent      Threat = "html_content"
	ThreatSpecialChars     Threat = "special_characters"
)

// Rule pairs a threat label with the patterns whose matches are stripped from
// the input. The built-in stages are rules too; custom rules can be appended
// via WithRules without touching the pipeline control flow.
type Rule struct {
	Threat   Threat
	Patterns []*regexp.Regexp
}

// apply strips every pattern match from s and reports whether anything was
// removed.
func (r Rule) apply(s string) (string, bool) {
	modified := false
	for _, re := range r.Patterns {
		cleaned := re.ReplaceAllString(s, "")
		if cleaned != s {
			modified = true
			s = cleaned
		}
	}
	return s, modified
}

// Denylists are inherently incomplete; these cover the common payload shapes
// and encodings. Callers needing more coverage add rules via WithRules.
var (
	xssRule = Rule{Threat: ThreatXSS, Patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`),
		regexp.MustCompile(`(?i)</?script\b[^>]*>?`),
		regexp.MustCompile(`(?i)</?(?:iframe|object|embed|link|meta)\b[^>]*>?`),
		regexp.MustCompile(`(?i)javascript\s*:`),
		regexp.MustCompile(`(?i)vbscript\s*:`),
		regexp.MustCompile(`(?i)data\s*:\s*text/html`),
		regexp.MustCompile(`(?i)\son\w+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`),
		regexp.MustCompile(`(?i)%3c|%3e|%22|%27|%28|%29`),
	}}

	sqlRule = Rule{Threat: ThreatSQLInjection, Patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:select|insert|update|delete|drop|create|alter|truncate|exec|execute|union|table|declare)\b`),
		regexp.MustCompile(`--|/\*|\*/`),
		regexp.MustCompile(`(?i)\b(?:or|and)\b\s+['"]?\d+['"]?\s*=\s*['"]?\d+`),
		regexp.MustCompile(`(?i)'\s*(?:or|and)\s*'`),
		regexp.MustCompile(`(?i)%27|%22`),
	}}

	nosqlRule = Rule{Threat: ThreatNoSQLInjection, Patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$(?:where|ne|gt|lt|regex|exists)\b`),
	}}

	pathTraversalRule = Rule{Threat: ThreatPathTraversal, Patterns: []*regexp.Regexp{
		regexp.MustCompile(`\.\.[\\/]`),
		regexp.MustCompile(`(?i)(?:%2e%2e|\.\.)(?:%2f|%5c)`),
		regexp.MustCompile(`(?i)%2e%2e[\\/]`),
	}}

	// A lone & or ; is ordinary punctuation and frequently part of an HTML
	// entity the escape stage emits, so neither is stripped here: the escape
	// stage neutralizes them, and stripping them would un-escape previously
	// sanitized output. The && chain operator is stripped; the ; separator is
	// caught through the command word that follows it.
	commandRule = Rule{Threat: ThreatCommandInjection, Patterns: []*regexp.Regexp{
		regexp.MustCompile("[|`$(){}\\[\\]]"),
		regexp.MustCompile(`&&`),
		regexp.MustCompile(`(?i)\b(?:cat|ls|pwd|whoami|wget|curl|nc|netcat|bash|sh|cmd|powershell|rm|mv|cp|chmod|chown|sudo|ping|nslookup|netstat)\b`),
	}}
)
