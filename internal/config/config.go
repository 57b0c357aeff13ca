package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"github.com/kozaktomas/smart-attendance/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

type Config struct {
	Oracle   OracleConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Ollama   OllamaConfig
	LlamaCpp LlamaCppConfig
	Camera   CameraConfig
	Storage  StorageConfig
	Database DatabaseConfig
	MariaDB  MariaDBConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Web      WebConfig
	Log      LogConfig
	Prices   PricesConfig
}

type OracleConfig struct {
	Provider  string // gemini, openai, ollama or llamacpp (default gemini)
	MatchMode string // strict or lenient (default strict)
}

type GeminiConfig struct {
	APIKey string
}

type OpenAIConfig struct {
	Token string
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.2-vision:11b
}

type LlamaCppConfig struct {
	URL   string // defaults to http://localhost:8080
	Model string // defaults to llava
}

type CameraConfig struct {
	URL      string // snapshot endpoint of an IP camera, e.g. http://cam.local/snapshot.jpg
	Username string
	Password string
	Path     string // image file or directory of images used as the camera feed
}

// Configured reports whether any camera source is set.
func (c *CameraConfig) Configured() bool {
	return c.URL != "" || c.Path != ""
}

type StorageConfig struct {
	Backend    string // file, sqlite, postgres, mariadb, redis or memory (default file)
	Dir        string // directory for the file backend (default ./data)
	SQLitePath string // database file for the sqlite backend (default ./data/attendance.db)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 10)
	MaxIdleConns int    // Maximum idle connections (default 2)
}

type MariaDBConfig struct {
	DSN string // e.g. attendance:attendance@tcp(mariadb:3306)/attendance
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	LockTTLSeconds int // lifetime of the attendance lock (default 30)
}

type AMQPConfig struct {
	URL   string
	Queue string
}

type WebConfig struct {
	JWTSecret      string   // when set, intents require a bearer token signed with it
	AllowedOrigins []string // extra CORS origins besides localhost
}

type LogConfig struct {
	Level  string
	Format string
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable, returning defaultVal when it is unset or blank.
func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma-separated environment variable. Blank entries are dropped.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		geminiKey = os.Getenv("API_KEY")
	}

	return &Config{
		Oracle: OracleConfig{
			Provider:  strings.ToLower(envString("ORACLE_PROVIDER", constants.ProviderGemini)),
			MatchMode: strings.ToLower(envString("ORACLE_MATCH_MODE", constants.MatchModeStrict)),
		},
		Gemini: GeminiConfig{
			APIKey: geminiKey,
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		LlamaCpp: LlamaCppConfig{
			URL:   os.Getenv("LLAMACPP_URL"),
			Model: os.Getenv("LLAMACPP_MODEL"),
		},
		Camera: CameraConfig{
			URL:      os.Getenv("CAMERA_URL"),
			Username: os.Getenv("CAMERA_USERNAME"),
			Password: os.Getenv("CAMERA_PASSWORD"),
			Path:     os.Getenv("CAMERA_PATH"),
		},
		Storage: StorageConfig{
			Backend:    strings.ToLower(envString("STORAGE_BACKEND", constants.BackendFile)),
			Dir:        envString("STORAGE_DIR", "data"),
			SQLitePath: envString("SQLITE_PATH", "data/attendance.db"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		MariaDB: MariaDBConfig{
			DSN: os.Getenv("MARIADB_DSN"),
		},
		Redis: RedisConfig{
			Addr:           os.Getenv("REDIS_ADDR"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             envInt("REDIS_DB", 0),
			LockTTLSeconds: envInt("REDIS_LOCK_TTL_SECONDS", 30),
		},
		AMQP: AMQPConfig{
			URL:   os.Getenv("AMQP_URL"),
			Queue: envString("AMQP_QUEUE", constants.DefaultEventQueue),
		},
		Web: WebConfig{
			JWTSecret:      os.Getenv("WEB_JWT_SECRET"),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "console"),
		},
		Prices: prices,
	}
}

// GetModelPricing returns pricing for a specific model
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return ModelPricing{}
}
