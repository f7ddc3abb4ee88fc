package constants

import "time"

// Session
const (
	SessionCookieName = "hextras_session"
	ContextKeyUserID  = "user_id"
	ContextKeyTask    = "task"
)

// Validation
const (
	MinPasswordLength = 6
	MinStars          = 1
	MaxStars          = 5
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Profile bootstrap retries immediately after signup/login to absorb
// store replication lag.
const (
	ProfileLoadMaxRetries = 3
	ProfileLoadRetryDelay = time.Second
)

// Geocoding
const (
	MinSearchQueryLength = 3
	GeocoderMaxResults   = 5
)
