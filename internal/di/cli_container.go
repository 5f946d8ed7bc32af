package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Embedding provider flags
	Provider string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// Cache flags
	CacheType  string
	SQLitePath string

	// Analysis flags
	MinPatternSize int
	MinConfidence  float64
	MaxPatterns    int
	BatchSize      int
	HourlyRate     float64

	// Input flags
	InputFile  string
	JSONOutput bool
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Embedding provider flags
	flag.StringVar(&flags.Provider, "provider", "openai", "Embedding provider (openai, bedrock, gemini)")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "text-embedding-3-small", "OpenAI embedding model")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "amazon.titan-embed-text-v2:0", "Bedrock embedding model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "text-embedding-004", "Gemini embedding model")

	// Cache flags
	flag.StringVar(&flags.CacheType, "cache", "sqlite", "Embedding cache backend (memory, sqlite, mysql, noop)")
	flag.StringVar(&flags.SQLitePath, "cache-path", "./embedding_cache.db", "Path to the SQLite cache file")

	// Analysis flags
	flag.IntVar(&flags.MinPatternSize, "min-pattern-size", 3, "Minimum emails per pattern")
	flag.Float64Var(&flags.MinConfidence, "min-confidence", 0.6, "Minimum pattern confidence")
	flag.IntVar(&flags.MaxPatterns, "max-patterns", 20, "Maximum patterns returned")
	flag.IntVar(&flags.BatchSize, "batch-size", 50, "Records per processing chunk")
	flag.Float64Var(&flags.HourlyRate, "hourly-rate", 25.0, "Hourly rate for ROI estimation")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input JSON snapshot file (use stdin if not specified)")
	flag.BoolVar(&flags.JSONOutput, "json", false, "Emit the full analysis result as JSON")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	return registerPipeline(container)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set embedding provider
	v.Set("embedding.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
	}

	// Set cache configuration
	v.Set("cache.type", flags.CacheType)
	v.Set("cache.sqlite_path", flags.SQLitePath)

	// Set analysis configuration
	v.Set("analysis.min_pattern_size", flags.MinPatternSize)
	v.Set("analysis.min_confidence", flags.MinConfidence)
	v.Set("analysis.max_patterns", flags.MaxPatterns)
	v.Set("batch.size", flags.BatchSize)
	v.Set("roi.hourly_rate", flags.HourlyRate)

	return config.NewFromViper(v)
}
