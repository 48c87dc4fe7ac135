package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// SyncConfig holds the settings of the synchronization engine.
// It is passed into the service explicitly; nothing here is process-wide.
type SyncConfig struct {
	// ContentModel is attached to every newly created object.
	ContentModel             string
	Collections              []string
	IdentifierNamespace      string
	IdentifierDatastream     string
	CompositeModelDatastream string
	ExtensionName            string
	IgnoredContentModels     []string
	// LogMessage prefixes the audit message sent with every repository write.
	LogMessage string
	// ClearLabelOnMissingTitle sets an empty label when a representation has no title.
	// By default the existing label is left untouched.
	ClearLabelOnMissingTitle bool
}

// MinIOConfig holds object storage settings used to presign content URLs.
type MinIOConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Region           string
	UseSSL           bool
	PresignExpirySec int
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level      string
	Writer     string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
}

// TracingConfig controls the OpenTelemetry tracer provider.
type TracingConfig struct {
	Disabled    bool
	ServiceName string
	// Protocol is the OTLP protocol: "grpc" or "http/protobuf".
	Protocol   string
	Sampler    string
	SamplerArg string
}

// AppConfig is the centralized configuration struct.
type AppConfig struct {
	Sync    SyncConfig
	MinIO   MinIOConfig
	Log     LogConfig
	Tracing TracingConfig
}

// Load reads configuration from environment variables.
func Load() *AppConfig {
	return &AppConfig{
		Sync: SyncConfig{
			ContentModel:             getEnv("DOMSYNC_CONTENT_MODEL", ""),
			Collections:              getEnvList("DOMSYNC_COLLECTIONS", nil),
			IdentifierNamespace:      getEnv("DOMSYNC_IDENTIFIER_NAMESPACE", "scape"),
			IdentifierDatastream:     getEnv("DOMSYNC_IDENTIFIER_DATASTREAM", "DC"),
			CompositeModelDatastream: getEnv("DOMSYNC_COMPOSITE_MODEL_DATASTREAM", "DS-COMPOSITE-MODEL"),
			ExtensionName:            getEnv("DOMSYNC_EXTENSION_NAME", "SCAPE"),
			IgnoredContentModels:     getEnvList("DOMSYNC_IGNORED_CONTENT_MODELS", []string{"fedora-system:FedoraObject-3.0"}),
			LogMessage:               getEnv("DOMSYNC_LOG_MESSAGE", "domsync"),
			ClearLabelOnMissingTitle: getEnvBool("DOMSYNC_CLEAR_LABEL_ON_MISSING_TITLE", false),
		},
		MinIO: MinIOConfig{
			Endpoint:         getEnv("MINIO_ENDPOINT", ""),
			AccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:        getEnv("MINIO_SECRET_KEY", ""),
			Region:           getEnv("MINIO_REGION", "us-east-1"),
			UseSSL:           getEnvBool("MINIO_USE_SSL", false),
			PresignExpirySec: getEnvInt("MINIO_PRESIGN_EXPIRY_SEC", 7*24*3600),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Writer:     getEnv("LOG_WRITER", "stdout"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		},
		Tracing: TracingConfig{
			Disabled:    getEnvBool("OTEL_SDK_DISABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "domsync"),
			Protocol:    getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			Sampler:     getEnv("OTEL_TRACES_SAMPLER", "parentbased_traceidratio"),
			SamplerArg:  getEnv("OTEL_TRACES_SAMPLER_ARG", "1.0"),
		},
	}
}

// LoadFiles loads the given dotenv files (".env" when none given) and then calls Load.
// Variables already set in the environment take precedence; missing files are skipped.
func LoadFiles(paths ...string) (*AppConfig, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return nil, err
		}
	}
	return Load(), nil
}

// Validate reports missing required settings.
func (c SyncConfig) Validate() error {
	var errs []error
	if c.ContentModel == "" {
		errs = append(errs, errors.New("content model is required"))
	}
	if c.IdentifierDatastream == "" {
		errs = append(errs, errors.New("identifier datastream is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
