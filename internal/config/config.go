// Package config loads rasoi configuration from defaults, an optional YAML file,
// a .env file and RASOI_* environment variables.
package config

import (
	"time"
)

// Config is the complete configuration shared by rasoi-recipes and rasoi-mouse.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Server  ServerConfig  `koanf:"server"`
	Data    DataConfig    `koanf:"data"`
	Cache   CacheConfig   `koanf:"cache"`
	MealDB  MealDBConfig  `koanf:"mealdb"`
	Gemini  GeminiConfig  `koanf:"gemini"`
	YouTube YouTubeConfig `koanf:"youtube"`
	Speech  SpeechConfig  `koanf:"speech"`
	Mouse   MouseConfig   `koanf:"mouse"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// ServerConfig configures the recipe web server.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	StaticDir       string        `koanf:"static_dir"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"gte=0"`
	RateWindow      time.Duration `koanf:"rate_window"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DataConfig locates the SQLite database.
type DataConfig struct {
	Dir string `koanf:"dir"`
	DB  string `koanf:"db" validate:"required"`
}

// CacheConfig selects the lookup cache backend.
type CacheConfig struct {
	Backend       string        `koanf:"backend" validate:"oneof=sqlite redis none"`
	TTL           time.Duration `koanf:"ttl" validate:"gt=0"`
	RedisAddr     string        `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"gte=0"`
}

// MealDBConfig configures the public recipe database client.
type MealDBConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// GeminiConfig configures the generative fallback. An empty APIKey disables it.
type GeminiConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Model   string        `koanf:"model" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// YouTubeConfig configures video augmentation. An empty APIKey disables it.
type YouTubeConfig struct {
	APIKey     string        `koanf:"api_key"`
	Endpoint   string        `koanf:"endpoint"`
	MaxResults int64         `koanf:"max_results" validate:"gte=1,lte=50"`
	Timeout    time.Duration `koanf:"timeout" validate:"gt=0"`
}

// SpeechConfig configures microphone capture and recognition. An empty APIKey disables it.
type SpeechConfig struct {
	APIKey        string        `koanf:"api_key"`
	Endpoint      string        `koanf:"endpoint"`
	Language      string        `koanf:"language" validate:"required"`
	SampleRate    int64         `koanf:"sample_rate" validate:"gt=0"`
	ListenFor     time.Duration `koanf:"listen_for" validate:"gt=0"`
	RecordCommand []string      `koanf:"record_command"`
	Timeout       time.Duration `koanf:"timeout" validate:"gt=0"`
}

// MouseConfig configures the gesture mouse controller.
type MouseConfig struct {
	CameraID        int           `koanf:"camera_id" validate:"gte=0"`
	Mirror          bool          `koanf:"mirror"`
	IdleFPS         int           `koanf:"idle_fps" validate:"gt=0"`
	ActiveFPS       int           `koanf:"active_fps" validate:"gtefield=IdleFPS"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	MotionThreshold float64       `koanf:"motion_threshold" validate:"gte=0"`
	MaxReadFailures int           `koanf:"max_read_failures" validate:"gt=0"`

	DetectorCommand        []string `koanf:"detector_command"`
	MaxHands               int      `koanf:"max_hands" validate:"gte=1"`
	MinDetectionConfidence float64  `koanf:"min_detection_confidence" validate:"gte=0,lte=1"`
	MinTrackingConfidence  float64  `koanf:"min_tracking_confidence" validate:"gte=0,lte=1"`

	SmoothFactor  float64 `koanf:"smooth_factor" validate:"gte=1"`
	ScrollAmount  int     `koanf:"scroll_amount" validate:"gt=0"`
	ClickRate     float64 `koanf:"click_rate" validate:"gte=0"`
	ScrollRate    float64 `koanf:"scroll_rate" validate:"gte=0"`
	ScreenWidth   int     `koanf:"screen_width" validate:"gte=0"`
	ScreenHeight  int     `koanf:"screen_height" validate:"gte=0"`
	LegacyOverlap bool    `koanf:"legacy_overlap"`

	PluginDir     string `koanf:"plugin_dir"`
	PreviewAddr   string `koanf:"preview_addr"`
	PreviewWindow bool   `koanf:"preview_window"`
	Tray          bool   `koanf:"tray"`
}

// Default returns the built-in configuration. No credentials are set.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			StaticDir:       "",
			CORSOrigins:     []string{},
			RateLimit:       60,
			RateWindow:      time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			Dir: "",
			DB:  "rasoi.db",
		},
		Cache: CacheConfig{
			Backend: "sqlite",
			TTL:     6 * time.Hour,
		},
		MealDB: MealDBConfig{
			BaseURL: "https://www.themealdb.com/api/json/v1/1",
			Timeout: 10 * time.Second,
		},
		Gemini: GeminiConfig{
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-1.5-pro-latest",
			Timeout: 60 * time.Second,
		},
		YouTube: YouTubeConfig{
			MaxResults: 2,
			Timeout:    10 * time.Second,
		},
		Speech: SpeechConfig{
			Language:      "en-US",
			SampleRate:    16000,
			ListenFor:     5 * time.Second,
			RecordCommand: []string{"rec", "-q", "-c", "1", "-r", "16000", "-b", "16", "-e", "signed-integer", "-t", "raw", "-"},
			Timeout:       15 * time.Second,
		},
		Mouse: MouseConfig{
			CameraID:               0,
			Mirror:                 true,
			IdleFPS:                5,
			ActiveFPS:              30,
			IdleTimeout:            2 * time.Second,
			MotionThreshold:        1.0,
			MaxReadFailures:        30,
			DetectorCommand:        []string{"python3", "scripts/hand_landmarks.py"},
			MaxHands:               2,
			MinDetectionConfidence: 0.7,
			MinTrackingConfidence:  0.7,
			SmoothFactor:           3,
			ScrollAmount:           40,
			ClickRate:              2,
			ScrollRate:             10,
			PluginDir:              "plugins",
			PreviewAddr:            "127.0.0.1:8081",
			PreviewWindow:          false,
			Tray:                   false,
		},
	}
}
