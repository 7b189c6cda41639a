package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses durations for timeouts and sweep intervals
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for TTLs and
// costs, durations for sweep timing.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for credential hashing

	Institution     string        // institution name embedded in static QR payloads
	DefaultPassword string        // credential applied when an admin creates a user without one
	UserCacheTTL    time.Duration // how long the directory listing cache stays fresh
	PendingScanTTL  time.Duration // how long an anonymous scan is held for replay after login

	SessionTimeout time.Duration // age past which the reaper closes an active session
	ReaperInterval time.Duration // how often the reaper sweep runs
	ReaperEnabled  bool          // disable the sweep entirely (tests, one-off tooling)

	InventoryBackend string // prototype store backend: "json" or "mysql"
	InventoryDataDir string // directory for the JSON backend's files
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Domain knobs all
// have defaults so a bare deployment only needs the server and database
// variables plus the JWT secret.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),                   // environment (dev/test/prod)
		Port:           must("APP_PORT"),                  // port to bind the HTTP server
		DBUser:         must("DB_USER"),                   // database user
		DBPass:         os.Getenv("DB_PASS"),              // database password (empty allowed)
		DBHost:         must("DB_HOST"),                   // database host
		DBPort:         must("DB_PORT"),                   // database port
		DBName:         must("DB_NAME"),                   // database name
		JWTSecret:      must("JWT_SECRET"),                // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
		BcryptCost:     mustInt("BCRYPT_COST"),            // bcrypt cost factor

		Institution:     getenv("INSTITUTION", "EAFC-TIC"),            // school name in static payloads
		DefaultPassword: getenv("DEFAULT_USER_PASSWORD", "1234"),      // default credential for new users
		UserCacheTTL:    parseDur(getenv("USERS_CACHE_TTL", "5m")),    // directory cache freshness
		PendingScanTTL:  parseDur(getenv("PENDING_SCAN_TTL", "10m")),  // pending scan hold duration
		SessionTimeout:  parseDur(getenv("SESSION_TIMEOUT", "1h")),    // reaper close threshold
		ReaperInterval:  parseDur(getenv("REAPER_INTERVAL", "1m")),    // reaper sweep cadence
		ReaperEnabled:   getenv("REAPER_ENABLED", "true") == "true",   // sweep on by default
		InventoryBackend: getenv("INVENTORY_BACKEND", "json"),         // prototype store backend
		InventoryDataDir: getenv("INVENTORY_DATA_DIR", "data"),        // JSON backend directory
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// getenv returns the value of an optional variable or the given default.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseDur parses a duration string, falling back to one second on error
// so a typo degrades to aggressive-but-safe timing instead of crashing.
func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
