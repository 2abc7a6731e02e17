package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the subsystem emitting the record under the key
// "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RateLimitKey records the quota bucket of a request under the key
// "rate_limit_key".
func RateLimitKey(key string) slog.Attr {
	return slog.String("rate_limit_key", key)
}

// Threats records detected threat categories under the key "threats".
// If the list is empty, it returns an empty Attr.
func Threats[T ~string](threats []T) slog.Attr {
	if len(threats) == 0 {
		return slog.Attr{}
	}
	labels := make([]string, len(threats))
	for i, t := range threats {
		labels[i] = string(t)
	}
	return slog.Any("threats", labels)
}
