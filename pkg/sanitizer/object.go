package sanitizer

import (
	"fmt"
	"sort"
)

// FieldReport records the threats detected while sanitizing a single field of
// a structured value. Field is a dotted/bracketed path from the root, e.g.
// "user.emails[2]".
type FieldReport struct {
	Field   string
	Threats []Threat
}

// SanitizeObject walks a nested structure of the kind produced by decoding a
// JSON request body (map[string]any, []any, strings, numbers, booleans, nil)
// and passes every string leaf through the sanitization pipeline. Non-string
// leaves pass through unchanged. It returns the sanitized structure and a
// report per field whose sanitization detected at least one threat, in
// pre-order traversal order (sibling map keys visited in sorted order, since
// Go maps carry no insertion order).
//
// Traversal is bounded by the MaxDepth option; deeper input fails with
// ErrMaxDepthExceeded rather than assuming the upstream decoder limited it.
func SanitizeObject(input any, opts ...Option) (any, []FieldReport, error) {
	o := buildOptions(opts)
	w := &walker{opts: o}
	out, err := w.walk(input, "", 0)
	if err != nil {
		return nil, nil, err
	}
	return out, w.reports, nil
}

type walker struct {
	opts    Options
	reports []FieldReport
}

func (w *walker) walk(v any, path string, depth int) (any, error) {
	if depth > w.opts.MaxDepth {
		return nil, ErrMaxDepthExceeded
	}

	switch val := v.(type) {
	case string:
		res := sanitize(val, w.opts)
		if len(res.Threats) > 0 {
			w.reports = append(w.reports, FieldReport{Field: path, Threats: res.Threats})
		}
		return res.Sanitized, nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]any, len(val))
		for _, k := range keys {
			child, err := w.walk(val[k], joinPath(path, k), depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = child
		}
		return out, nil

	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			child, err := w.walk(item, fmt.Sprintf("%s[%d]", path, i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil

	default:
		// Numbers, booleans, nil and anything else pass through untouched.
		return v, nil
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
