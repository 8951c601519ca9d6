package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     Server     `yaml:"server"`
	Log        Log        `yaml:"log"`
	Factiverse Factiverse `yaml:"factiverse"`
	WhatsApp   WhatsApp   `yaml:"whatsapp"`
	Telegram   Telegram   `yaml:"telegram"`
	Dispatch   Dispatch   `yaml:"dispatch"`
	Store      Store      `yaml:"store"`
	OCR        OCR        `yaml:"ocr"`
}

type Server struct {
	// Address to bind the webhook server to
	Addr string `yaml:"addr" example:":8080"`
}

type Factiverse struct {
	// Base URL of the fact-checking API
	BaseURL string `yaml:"base_url" example:"https://dev.factiverse.ai/v1" validate:"required"`
	// Bearer token for the fact-checking API
	Token string `yaml:"token" validate:"required"`
	// Per-request timeout
	Timeout time.Duration `yaml:"timeout" example:"30s"`
	// Minimum confidence for detected claims
	ClaimScoreThreshold float64 `yaml:"claim_score_threshold" example:"0.75"`
}

type WhatsApp struct {
	// Access token for the Cloud API
	Token string `yaml:"token" validate:"required"`
	// Business phone number id
	PhoneNumberID string `yaml:"phone_number_id" example:"106540352242922" validate:"required"`
	// Static token for the webhook verification handshake
	VerifyToken string `yaml:"verify_token" example:"change-me" validate:"required"`
	// Graph API version
	APIVersion string `yaml:"api_version" example:"v22.0"`
}

type Telegram struct {
	// Bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789" validate:"required"`
}

type Dispatch struct {
	// Messages with at least this many words skip intent classification
	WordThreshold int `yaml:"word_threshold" example:"100"`
	// Maximum number of claim suggestion buttons
	MaxSuggestions int `yaml:"max_suggestions" example:"3"`
}

type Store struct {
	// Maximum retained conversation lines per user
	MaxContextLines int `yaml:"max_context_lines" example:"50"`
	// Time before routing entries are evicted
	RoutingTTL time.Duration `yaml:"routing_ttl" example:"24h"`
}

type OCR struct {
	// Path to the tesseract binary
	TesseractPath string `yaml:"tesseract_path" example:"tesseract"`
	// Maximum concurrent OCR subprocesses
	MaxWorkers int `yaml:"max_workers" example:"2"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

func LoadFrom(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Server.Addr == "" {
		result.Server.Addr = ":8080"
	}
	if result.Factiverse.Timeout == 0 {
		result.Factiverse.Timeout = 30 * time.Second
	}
	if result.Factiverse.ClaimScoreThreshold == 0 {
		result.Factiverse.ClaimScoreThreshold = 0.75
	}
	if result.WhatsApp.APIVersion == "" {
		result.WhatsApp.APIVersion = "v22.0"
	}
	if result.Dispatch.WordThreshold == 0 {
		result.Dispatch.WordThreshold = 100
	}
	if result.Dispatch.MaxSuggestions == 0 {
		result.Dispatch.MaxSuggestions = 3
	}
	if result.Store.MaxContextLines == 0 {
		result.Store.MaxContextLines = 50
	}
	if result.Store.RoutingTTL == 0 {
		result.Store.RoutingTTL = 24 * time.Hour
	}
	if result.OCR.TesseractPath == "" {
		result.OCR.TesseractPath = "tesseract"
	}
	if result.OCR.MaxWorkers == 0 {
		result.OCR.MaxWorkers = 2
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
