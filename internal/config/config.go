package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// ScanInterval is the dispatch scanner tick period. A schedule is due when
	// its next_send_at falls inside (now-ScanInterval, now]. Default 15m.
	ScanInterval time.Duration

	// EnrichTimeout bounds the optional script+audio enrichment per assembly (default 15s).
	EnrichTimeout time.Duration

	// GenerateTimeout bounds the core report generation call (default 60s).
	GenerateTimeout time.Duration

	// ReportFreshness is how old a stored report may be before a scheduled
	// delivery regenerates instead of reusing it (default 24h).
	ReportFreshness time.Duration

	// OpenAI credentials for report generation, narration scripts, and speech.
	OpenAIKey      string
	OpenAIModel    string
	OpenAITTSVoice string

	// Twilio credentials for WhatsApp delivery and the inbound webhook.
	TwilioAccountSID string
	TwilioAuthToken  string
	// TwilioWhatsAppFrom is the sender, e.g. "whatsapp:+14155238886".
	TwilioWhatsAppFrom string

	// MediaDir is where synthesized audio files are written; MediaBaseURL is
	// the public prefix they are served under (must be reachable by Twilio).
	MediaDir     string
	MediaBaseURL string

	// CORSOrigins is a comma-separated allowlist; empty disables CORS headers.
	CORSOrigins []string
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "agripulse"),
		DBUser: getEnv("DB_USER", "agripulse"),
		DBPass: getEnv("DB_PASS", "agripulse"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		Env:            getEnv("ENV", "dev"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),

		ScanInterval:    getEnvMinutes("SCAN_INTERVAL_MINUTES", 15),
		EnrichTimeout:   getEnvSeconds("ENRICH_TIMEOUT_SECONDS", 15),
		GenerateTimeout: getEnvSeconds("GENERATE_TIMEOUT_SECONDS", 60),
		ReportFreshness: getEnvMinutes("REPORT_FRESHNESS_MINUTES", 24*60),

		OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITTSVoice: getEnv("OPENAI_TTS_VOICE", "alloy"),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),

		MediaDir:     getEnv("MEDIA_DIR", "data/media"),
		MediaBaseURL: getEnv("MEDIA_BASE_URL", "http://localhost:8080/media"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvMinutes(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Minute
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
