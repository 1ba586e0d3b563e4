package api

// MaxFormSize bounds urlencoded page form bodies (1 MB).
const MaxFormSize = 1 << 20

// Cache-Control header values.
const (
	CacheOneDay  = "public, max-age=86400"
	CacheNoStore = "no-store"
)

// Page session cookies.
const (
	accessCookieName  = "simmer_access"
	refreshCookieName = "simmer_refresh"
)
