package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ProviderGroq     = "groq"
	ProviderGigaChat = "gigachat"
	ProviderGemini   = "gemini"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Chat      ChatConfig
	Extractor ExtractorConfig
	GigaChat  GigaChatConfig
	Upload    UploadConfig
	Seed      SeedConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DatabaseConfig struct {
	Driver   string
	Path     string // sqlite file
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
}

type AdminConfig struct {
	Secret string
}

// ChatConfig drives the chat responder. APIURL and Model apply to the
// OpenAI-compatible (Groq) backend; the GigaChat backend reads GigaChatConfig.
type ChatConfig struct {
	Provider  string
	APIKey    string
	APIURL    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type ExtractorConfig struct {
	Provider      string
	GoogleAPIKey  string
	GeminiModel   string
	GeminiBaseURL string // empty means the SDK default
	Timeout       time.Duration
}

// GigaChatConfig is shared by the GigaChat chat and extraction backends.
// Empty OAuthURL and BaseURL select the public Sber endpoints.
type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	OAuthURL           string
	BaseURL            string
	InsecureSkipVerify bool
}

type UploadConfig struct {
	TempDir string
}

type SeedConfig struct {
	DemoUsers bool
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for containers
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout := getEnvInt("SERVER_READ_TIMEOUT", 30)
	writeTimeout := getEnvInt("SERVER_WRITE_TIMEOUT", 60)
	bodyLimitMB := getEnvInt("SERVER_BODY_LIMIT_MB", 20)
	jwtExp := getEnvInt("JWT_EXPIRATION_MINUTES", 60)
	chatTimeout := getEnvInt("CHAT_TIMEOUT_SECONDS", 30)
	extractionTimeout := getEnvInt("EXTRACTION_TIMEOUT_SECONDS", 120)

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			BodyLimit:    bodyLimitMB * 1024 * 1024,
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			Path:     getEnv("DB_PATH", "invoices.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "invoices"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "supersecretkey"),
			Expiration: time.Duration(jwtExp) * time.Minute,
		},
		Admin: AdminConfig{
			Secret: os.Getenv("ADMIN_SECRET"),
		},
		Chat: ChatConfig{
			Provider:  strings.ToLower(getEnv("CHAT_PROVIDER", ProviderGroq)),
			APIKey:    getEnv("GROQ_API_KEY", ""),
			APIURL:    getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
			Model:     getEnv("GROQ_MODEL_ID", "llama-3.3-70b-versatile"),
			MaxTokens: getEnvInt("CHAT_MAX_TOKENS", 800),
			Timeout:   time.Duration(chatTimeout) * time.Second,
		},
		Extractor: ExtractorConfig{
			Provider:      strings.ToLower(getEnv("EXTRACTOR_PROVIDER", ProviderGemini)),
			GoogleAPIKey:  getEnv("GOOGLE_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash-lite"),
			GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),
			Timeout:       time.Duration(extractionTimeout) * time.Second,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL_ID", "GigaChat"),
			OAuthURL:           getEnv("GIGACHAT_OAUTH_URL", ""),
			BaseURL:            getEnv("GIGACHAT_BASE_URL", ""),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true",
		},
		Upload: UploadConfig{
			TempDir: getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
		},
		Seed: SeedConfig{
			DemoUsers: getEnv("SEED_DEMO_USERS", "true") == "true",
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
