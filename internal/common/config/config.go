// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	APIs     APIsConfig     `mapstructure:"apis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		BaseURL     string  `mapstructure:"base_url"` // optional OpenAI-compatible endpoint override
		APIKey      string  `mapstructure:"api_key"`
		Model       string  `mapstructure:"model"`
		Timeout     int     `mapstructure:"timeout"` // milliseconds
		MaxRetries  int     `mapstructure:"max_retries"`
		Temperature float64 `mapstructure:"temperature"`
		MaxTokens   int     `mapstructure:"max_tokens"`
	} `mapstructure:"genai"`

	WebSearch struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxResults int    `mapstructure:"max_results"`
	} `mapstructure:"web_search"`

	Enrichment struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"enrichment"`
}

// CacheConfig holds settings for the raw profile cache.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // minutes
}

// PipelineConfig holds settings for the icebreaker pipeline itself.
type PipelineConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds, outer bound per request

	// RequesterFixture serves the requester side from the embedded canned
	// profile instead of a live resolve+fetch, saving enrichment quota.
	RequesterFixture bool `mapstructure:"requester_fixture"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
