package sanitizer

// Options controls which pipeline stages run and how. The zero value is not
// useful; options are always derived from defaults via the With* helpers.
type Options struct {
	// MaxLength is the truncation bound applied before pattern scanning.
	MaxLength int

	// AllowHTML skips the HTML-entity escaping stage.
	AllowHTML bool

	// AllowSpecialChars keeps < > ' " & in the output. When false they are
	// stripped entirely after escaping.
	AllowSpecialChars bool

	// TrimWhitespace removes leading and trailing whitespace.
	TrimWhitespace bool

	// Lowercase converts the final result to lower case.
	Lowercase bool

	// RemoveNullBytes strips embedded NUL bytes.
	RemoveNullBytes bool

	// PreventPathTraversal, PreventXSS, PreventSQLInjection and
	// PreventCommandInjection gate the corresponding pattern-stripping
	// stages. NoSQL-operator stripping always runs.
	PreventPathTraversal    bool
	PreventXSS              bool
	PreventSQLInjection     bool
	PreventCommandInjection bool

	// MaxDepth bounds SanitizeObject traversal.
	MaxDepth int

	// extraRules are appended after the built-in pattern stages.
	extraRules []Rule
}

const (
	defaultMaxLength = 1000
	defaultMaxDepth  = 32
)

func defaultOptions() Options {
	return Options{
		MaxLength:               defaultMaxLength,
		AllowSpecialChars:       true,
		TrimWhitespace:          true,
		RemoveNullBytes:         true,
		PreventPathTraversal:    true,
		PreventXSS:              true,
		PreventSQLInjection:     true,
		PreventCommandInjection: true,
		MaxDepth:                defaultMaxDepth,
	}
}

// Option configures a sanitization call.
type Option func(*Options)

// WithMaxLength sets the truncation bound. Non-positive values are ignored.
func WithMaxLength(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxLength = n
		}
	}
}

// WithAllowHTML disables HTML-entity escaping of the result.
func WithAllowHTML() Option {
	return func(o *Options) { o.AllowHTML = true }
}

// WithoutSpecialChars strips < > ' " & from the result entirely.
func WithoutSpecialChars() Option {
	return func(o *Options) { o.AllowSpecialChars = false }
}

// WithoutTrim keeps leading and trailing whitespace.
func WithoutTrim() Option {
	return func(o *Options) { o.TrimWhitespace = false }
}

// WithLowercase converts the result to lower case.
func WithLowercase() Option {
	return func(o *Options) { o.Lowercase = true }
}

// WithoutNullByteRemoval keeps embedded NUL bytes.
func WithoutNullByteRemoval() Option {
	return func(o *Options) { o.RemoveNullBytes = false }
}

// WithoutPathTraversalCheck disables the path-traversal stripping stage.
func WithoutPathTraversalCheck() Option {
	return func(o *Options) { o.PreventPathTraversal = false }
}

// WithoutXSSCheck disables the XSS stripping stage.
func WithoutXSSCheck() Option {
	return func(o *Options) { o.PreventXSS = false }
}

// WithoutSQLInjectionCheck disables the SQL-injection stripping stage.
func WithoutSQLInjectionCheck() Option {
	return func(o *Options) { o.PreventSQLInjection = false }
}

// WithoutCommandInjectionCheck disables the command-injection stripping stage.
func WithoutCommandInjectionCheck() Option {
	return func(o *Options) { o.PreventCommandInjection = false }
}

// WithMaxDepth sets the SanitizeObject traversal bound.
// Non-positive values are ignored.
func WithMaxDepth(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxDepth = n
		}
	}
}

// WithRules appends custom pattern rules, applied in order after the built-in
// stages. Rules without patterns are ignored.
func WithRules(rules ...Rule) Option {
	return func(o *Options) {
		for _, r := range rules {
			if len(r.Patterns) > 0 {
				o.extraRules = append(o.extraRules, r)
			}
		}
	}
}

func buildOptions(opts []Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
