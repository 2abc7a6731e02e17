package ratelimit

import "time"

// Named policies for the document vault's traffic classes. Ceilings reflect
// the relative cost of each operation class.

// GeneralPolicy covers ordinary API traffic.
func GeneralPolicy() Config {
	return Config{
		Window: 15 * time.Minute,
		Max:    100,
	}
}

// UploadPolicy covers document uploads. Failed uploads are refunded so a
// flaky client does not burn its quota on retries.
func UploadPolicy() Config {
	return Config{
		Window:     time.Hour,
		Max:        20,
		SkipFailed: true,
	}
}

// ProcessingPolicy covers OCR and classification calls, the most expensive
// operations behind the API. Failed attempts are refunded.
func ProcessingPolicy() Config {
	return Config{
		Window:     time.Hour,
		Max:        50,
		SkipFailed: true,
	}
}

// AuthPolicy is a brute-force brake on authentication: only failed attempts
// count, successful logins are refunded.
func AuthPolicy() Config {
	return Config{
		Window:         15 * time.Minute,
		Max:            5,
		SkipSuccessful: true,
	}
}
