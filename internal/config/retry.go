package config

import "time"

// RetryPolicy bounds a retry loop: at most MaxAttempts tries with a
// fixed Delay between them. Tests use zero-delay policies.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// NewRegistrationRetryPolicy returns the registration retry budget,
// overridable via REGISTRATION_MAX_ATTEMPTS and
// REGISTRATION_RETRY_DELAY_SEC.
func NewRegistrationRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: getIntEnv("REGISTRATION_MAX_ATTEMPTS", 5),
		Delay:       getSecondsEnv("REGISTRATION_RETRY_DELAY_SEC", 5*time.Second),
	}
}
