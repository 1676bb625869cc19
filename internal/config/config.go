package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CREDO_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CREDO_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// OpinionProvider returns the configured opinion-analysis provider.
// Defaults to "openai" if not set. Valid values: openai, anthropic, mock.
func OpinionProvider() string {
	p := os.Getenv("OPINION_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// OpinionAPIKey returns the API key for the configured provider.
func OpinionAPIKey() string {
	switch OpinionProvider() {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "mock":
		return ""
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// OpinionTimeout bounds each opinion-analysis call so one slow
// classification cannot stall a detection pass. Defaults to 20s.
func OpinionTimeout() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("OPINION_TIMEOUT_SECONDS"))
	if err != nil || secs <= 0 {
		return 20 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// TopicGateThreshold is the cosine threshold for the relatedness gate.
// Defaults to 0.2; sane values sit in [0.15, 0.3].
func TopicGateThreshold() float64 {
	t, err := strconv.ParseFloat(os.Getenv("TOPIC_GATE_THRESHOLD"), 64)
	if err != nil || t <= 0 || t >= 1 {
		return 0.2
	}
	return t
}

// MaxCandidates caps the comparison set per detection pass.
// Defaults to 50.
func MaxCandidates() int {
	n, err := strconv.Atoi(os.Getenv("MAX_CANDIDATES"))
	if err != nil || n <= 0 {
		return 50
	}
	return n
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
