package config

// ClassifierModels defines which Gemini models to use for each input kind
type ClassifierModels struct {
	// Vision is for per-image surface classification (needs to be fast)
	Vision string `json:"vision"`

	// Text is for free-text damage description analysis
	Text string `json:"text"`
}

// AIConfig holds the upstream classifier configuration
type AIConfig struct {
	APIKey    string           `json:"-"` // Never serialize
	BaseURL   string           `json:"baseUrl"`
	Models    ClassifierModels `json:"models"`
	TimeoutMS int              `json:"timeoutMs"`
}

// DefaultAIConfig returns the default classifier configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  getEnvOrDefault("GEMINI_API_KEY", ""),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: ClassifierModels{
			Vision: getEnvOrDefault("GEMINI_MODEL_VISION", "gemini-2.0-flash"),
			Text:   getEnvOrDefault("GEMINI_MODEL_TEXT", "gemini-2.0-flash"),
		},
		TimeoutMS: 10000, // per classification call
	}
}

// IsEnabled returns true if the classifier API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}
