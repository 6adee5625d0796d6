package config // package config loads application configuration from environment variables

import (
	"log/slog" // slog reports configuration errors before the process exits
	"os"       // os provides access to environment variables
	"strconv"  // strconv converts strings to other types
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are read with must(); optional
// ones fall back to defaults that suit a single-node deployment.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DB             DBConfig
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time‑to‑live in minutes
	RefreshTTLDays int    // refresh token time‑to‑live in days
	BcryptCost     int    // bcrypt cost for password hashing
	Webhook        WebhookConfig
	RabbitURL      string // broker used for deployment notifications; empty disables publishing
}

// DBConfig selects the relational store and bounds every call made to it.
type DBConfig struct {
	Driver        string        // "mysql" or "sqlite"
	User          string        // database username
	Pass          string        // database password (optional)
	Host          string        // database host address
	Port          string        // database port number
	Name          string        // database name
	Path          string        // sqlite file path
	QueryTimeout  time.Duration // upper bound for a single statement or transaction
	RetryAttempts int           // attempts for transient failures, including the first
	RetryBackoff  time.Duration // initial backoff, doubled after each failure
}

// WebhookConfig configures the deployment pull endpoint.
type WebhookConfig struct {
	Secret      string        // shared HMAC secret (W_SECRET)
	RepoDir     string        // working tree updated by git pull
	Remote      string        // remote pulled from
	Branch      string        // optional branch; empty pulls the tracking branch
	MaxBody     int64         // maximum accepted payload size in bytes
	PullTimeout time.Duration // upper bound for the git pull
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DB:             LoadDB(),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		Webhook: WebhookConfig{
			Secret:      os.Getenv("W_SECRET"), // empty secret rejects every delivery
			RepoDir:     envStr("REPO_DIR", "."),
			Remote:      envStr("GIT_REMOTE", "origin"),
			Branch:      os.Getenv("GIT_BRANCH"),
			MaxBody:     int64(envInt("WEBHOOK_MAX_BODY", 25<<20)),
			PullTimeout: envDur("GIT_PULL_TIMEOUT", 2*time.Minute),
		},
		RabbitURL: rabbitURL(),
	}
}

// LoadDB reads the store settings on its own, for commands that only
// touch the database.  MySQL credentials are only required
// when the mysql driver is selected.
func LoadDB() DBConfig {
	c := DBConfig{
		Driver:        strings.ToLower(envStr("DB_DRIVER", "mysql")),
		Path:          envStr("DB_PATH", "./data/theatre.db"),
		QueryTimeout:  envDur("DB_QUERY_TIMEOUT", 5*time.Second),
		RetryAttempts: envInt("DB_RETRY_ATTEMPTS", 3),
		RetryBackoff:  envDur("DB_RETRY_BACKOFF", 100*time.Millisecond),
	}
	if c.Driver == "mysql" {
		c.User = must("DB_USER")
		c.Pass = os.Getenv("DB_PASS") // empty allowed
		c.Host = must("DB_HOST")
		c.Port = must("DB_PORT")
		c.Name = must("DB_NAME")
	}
	if c.RetryAttempts < 1 {
		c.RetryAttempts = 1
	}
	return c
}

func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		slog.Error("missing required env var", "key", key)
		os.Exit(1)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		slog.Error("invalid int env var", "key", key, "value", s)
		os.Exit(1)
	}
	return n
}
