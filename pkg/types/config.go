package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "recruit-engine/0.1"). Forum APIs throttle generic agents.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Community pairs a source community name with its category.
type Community struct {
	// Name is the community identifier (e.g. "Fibromyalgia").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Category classifies the community: health or money.
	Category CommunityCategory `json:"category" yaml:"category" mapstructure:"category"`
}

// ScrapeConfig holds settings for the scraping stage.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Communities lists the communities to scrape.
	Communities []Community `json:"communities" yaml:"communities" mapstructure:"communities"`

	// PostLimit is the number of hot posts fetched per community (default 10).
	PostLimit int `json:"post_limit" yaml:"post_limit" mapstructure:"post_limit"`

	// MaxDepth caps how deep comment trees are followed (default 3).
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`

	// RequestDelay is the pause between consecutive API calls (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// RawDataDir is the directory raw batch files are written to.
	RawDataDir string `json:"raw_data_dir" yaml:"raw_data_dir" mapstructure:"raw_data_dir"`

	// ClientID and ClientSecret enable authenticated API access when set;
	// otherwise the public endpoints are used.
	ClientID     string `json:"client_id,omitempty" yaml:"client_id,omitempty" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty" mapstructure:"client_secret"`
}

// OracleProvider identifies the language-model service backing the oracle.
type OracleProvider string

const (
	ProviderOpenAI    OracleProvider = "openai"
	ProviderAnthropic OracleProvider = "anthropic"
)

// OracleConfig holds shared settings for stages that call a language-model oracle.
type OracleConfig struct {
	// Provider selects the oracle backend: openai or anthropic.
	Provider OracleProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the oracle API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxRetries is the number of retry attempts for failed oracle calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ProcessConfig holds settings for the processing stage.
type ProcessConfig struct {
	OracleConfig `yaml:",inline" mapstructure:",squash"`

	// RawDataDir is the directory containing raw batch files.
	RawDataDir string `json:"raw_data_dir" yaml:"raw_data_dir" mapstructure:"raw_data_dir"`

	// ProcessedDir is the directory holding per-batch completion markers.
	ProcessedDir string `json:"processed_dir" yaml:"processed_dir" mapstructure:"processed_dir"`

	// DBPath is the user store database file.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// RankingConfig holds settings for the ranking stage.
type RankingConfig struct {
	// TopN is the shortlist size per profile (default 10).
	TopN int `json:"top_n" yaml:"top_n" mapstructure:"top_n"`

	// ReportDir is the directory ranking reports are written to.
	ReportDir string `json:"report_dir" yaml:"report_dir" mapstructure:"report_dir"`

	// Profiles maps profile names to column-to-weight vectors. When empty the
	// builtin money_motivated and treatment_seeking profiles are used.
	Profiles map[string]map[string]float64 `json:"profiles" yaml:"profiles" mapstructure:"profiles"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Scrape  ScrapeConfig  `json:"scrape" yaml:"scrape" mapstructure:"scrape"`
	Process ProcessConfig `json:"process" yaml:"process" mapstructure:"process"`
	Ranking RankingConfig `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
}
