package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// Storage
	UsersFile    string `envconfig:"USERS_FILE" default:"data/users.json"`
	ArtifactsDir string `envconfig:"ARTIFACTS_DIR" default:"data/artifacts"`

	// Session cookie (signed JWT carrying the session ID)
	SessionCookieName string        `envconfig:"SESSION_COOKIE_NAME" default:"storyweaver_session"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SessionSecret     string        `envconfig:"SESSION_SECRET" default:"dev-only-session-secret"`

	// Password hashing pepper, applied before bcrypt
	PasswordPepper string `envconfig:"PASSWORD_PEPPER" default:"dev-only-pepper"`

	// AI text backend: "openai" or "ollama"
	AIProvider string        `envconfig:"AI_PROVIDER" default:"openai"`
	AIAPIKey   string        `envconfig:"AI_API_KEY"`
	AIBaseURL  string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel    string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITimeout  time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`

	// Narration (text to speech)
	TTSModel string `envconfig:"TTS_MODEL" default:"tts-1"`
	TTSVoice string `envconfig:"TTS_VOICE" default:"alloy"`

	// Image generation backend
	ImageServerURL   string        `envconfig:"IMAGE_SERVER_URL" default:"http://localhost:9090"`
	ImageTimeout     time.Duration `envconfig:"IMAGE_TIMEOUT" default:"120s"`
	ImageRatio       string        `envconfig:"IMAGE_RATIO" default:"16:9"`
	ImageStyleSuffix string        `envconfig:"IMAGE_STYLE_SUFFIX" default:", storybook illustration, soft colors"`

	// Video stitching
	FFmpegPath    string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	SceneSeconds  float64       `envconfig:"SCENE_SECONDS" default:"4"`
	StitchTimeout time.Duration `envconfig:"STITCH_TIMEOUT" default:"180s"`

	// Story request bounds
	MinScenes     int `envconfig:"MIN_SCENES" default:"3"`
	MaxScenes     int `envconfig:"MAX_SCENES" default:"8"`
	DefaultScenes int `envconfig:"DEFAULT_SCENES" default:"5"`

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Rate limiting for user actions (requests per minute per IP)
	ActionRateLimit uint `envconfig:"ACTION_RATE_LIMIT" default:"30"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// LoadConfig loads configuration from environment variables, optionally
// seeded from a .env file.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		if err := godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	if cfg.MinScenes < 1 || cfg.MaxScenes < cfg.MinScenes {
		return nil, fmt.Errorf("invalid scene bounds: min=%d max=%d", cfg.MinScenes, cfg.MaxScenes)
	}
	if cfg.DefaultScenes < cfg.MinScenes || cfg.DefaultScenes > cfg.MaxScenes {
		return nil, fmt.Errorf("default scene count %d outside bounds [%d, %d]", cfg.DefaultScenes, cfg.MinScenes, cfg.MaxScenes)
	}

	return &cfg, nil
}

// SceneBoundsValues returns the configured scene count bounds.
func (c *Config) SceneBoundsValues() (min, max, def int) {
	return c.MinScenes, c.MaxScenes, c.DefaultScenes
}
