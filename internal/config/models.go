package config

import "time"

// EmbeddingConfig represents the configuration for the embedding provider
type EmbeddingConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI embeddings
type OpenAIConfig struct {
	APIKey    string
	ModelName string
	Dimension int
}

// BedrockConfig represents the configuration for Amazon Bedrock embeddings
type BedrockConfig struct {
	Region    string
	ModelID   string
	Dimension int
}

// GeminiConfig represents the configuration for Google Gemini embeddings
type GeminiConfig struct {
	APIKey    string
	ModelName string
	Dimension int
}

// AnalysisConfig represents the pattern-analysis tuning knobs
type AnalysisConfig struct {
	MinPatternSize int
	MinConfidence  float64
	MaxPatterns    int
	ExcludedLabels []string
}

// BatchConfig represents the batch-processing configuration
type BatchConfig struct {
	Size        int
	MaxItems    int
	MaxDuration time.Duration
}

// ROIConfig represents the impact-estimation configuration
type ROIConfig struct {
	HourlyRate      float64
	SecondsPerEmail float64
}

// GetEmbedding returns the embedding provider configuration
func (c *Config) GetEmbedding() EmbeddingConfig {
	return EmbeddingConfig{
		Provider: c.GetString("embedding.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:    c.GetString("openai.api_key"),
		ModelName: c.GetString("openai.model_name"),
		Dimension: c.GetInt("openai.dimension"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:    c.GetString("bedrock.region"),
		ModelID:   c.GetString("bedrock.model_id"),
		Dimension: c.GetInt("bedrock.dimension"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:    c.GetString("gemini.api_key"),
		ModelName: c.GetString("gemini.model_name"),
		Dimension: c.GetInt("gemini.dimension"),
	}
}

// GetAnalysis returns the analysis configuration
func (c *Config) GetAnalysis() AnalysisConfig {
	return AnalysisConfig{
		MinPatternSize: c.GetInt("analysis.min_pattern_size"),
		MinConfidence:  c.GetFloat64("analysis.min_confidence"),
		MaxPatterns:    c.GetInt("analysis.max_patterns"),
		ExcludedLabels: c.GetStringSlice("analysis.excluded_labels"),
	}
}

// GetBatch returns the batch configuration
func (c *Config) GetBatch() (BatchConfig, error) {
	maxDuration, err := c.GetDuration("batch.max_duration")
	if err != nil {
		return BatchConfig{}, err
	}
	return BatchConfig{
		Size:        c.GetInt("batch.size"),
		MaxItems:    c.GetInt("batch.max_items"),
		MaxDuration: maxDuration,
	}, nil
}

// GetROI returns the ROI configuration
func (c *Config) GetROI() ROIConfig {
	return ROIConfig{
		HourlyRate:      c.GetFloat64("roi.hourly_rate"),
		SecondsPerEmail: c.GetFloat64("roi.seconds_per_email"),
	}
}
