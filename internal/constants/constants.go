// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Capture sequence timing. These are fixed and deliberately not configurable.
const (
	// PrimeDelay is the pause after the camera starts, before the countdown
	PrimeDelay = 1500 * time.Millisecond

	// CountdownStep is the time each countdown number stays on screen
	CountdownStep = 1000 * time.Millisecond

	// CountdownFrom is the first number shown by the countdown (3, 2, 1)
	CountdownFrom = 3

	// SnapDelay is the pause between the end of the countdown and the frame grab
	SnapDelay = 200 * time.Millisecond
)

// Storage keys of the two persisted blobs
const (
	// UsersKey is the key of the roster blob
	UsersKey = "smart-attendance-users"

	// RecordsKey is the key of the attendance log blob
	RecordsKey = "smart-attendance-records"
)

// Image constants
const (
	// OracleImageSize is the maximum dimension of images sent to the face comparison oracle
	OracleImageSize = 800

	// JPEGQuality is the quality used when encoding captured frames
	JPEGQuality = 92

	// MaxPhotoUploadSize is the maximum request body size for intents carrying a photo (20MB)
	MaxPhotoUploadSize = 20 << 20
)

// Oracle providers
const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderLlamaCpp = "llamacpp"
)

// Oracle answer matching modes
const (
	// MatchModeStrict accepts only the exact answer "yes" after trimming and lower-casing
	MatchModeStrict = "strict"

	// MatchModeLenient also accepts answers that start with the word "yes" ("Yes.", "Yes, they match")
	MatchModeLenient = "lenient"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMariaDB  = "mariadb"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Circuit breaker constants for the oracle
const (
	// BreakerConsecutiveFailures opens the breaker after this many failed comparisons in a row
	BreakerConsecutiveFailures = 3

	// BreakerOpenTimeout is how long the breaker stays open before letting a probe through
	BreakerOpenTimeout = 30 * time.Second
)
