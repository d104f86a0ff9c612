package model

import "time"

// Config is the complete run configuration. It is built from defaults,
// the config file, FOLDSWITCH_* env vars and CLI flags, in that order.
type Config struct {
	WorkDir     string            `yaml:"work_dir" mapstructure:"work_dir"`
	Predictor   PredictorConfig   `yaml:"predictor" mapstructure:"predictor"`
	Aligner     AlignerConfig     `yaml:"aligner" mapstructure:"aligner"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// PredictorConfig configures the secondary-structure predictor.
type PredictorConfig struct {
	Provider      string        `yaml:"provider" mapstructure:"provider"` // jpred, archive
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	Email         string        `yaml:"email,omitempty" mapstructure:"email"`
	DownloadsDir  string        `yaml:"downloads_dir" mapstructure:"downloads_dir"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`         // Per HTTP request
	JobTimeout    time.Duration `yaml:"job_timeout" mapstructure:"job_timeout"` // Submit to download
	PollInterval  time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// AlignerConfig configures the multiple sequence aligner.
type AlignerConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"` // clustalo, file
	Binary        string `yaml:"binary" mapstructure:"binary"`
	AlignmentFile string `yaml:"alignment_file,omitempty" mapstructure:"alignment_file"`
	Threads       int    `yaml:"threads" mapstructure:"threads"`
}

// CacheConfig configures the prediction cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds the worker pools.
type ConcurrencyConfig struct {
	PredictWorkers    int     `yaml:"predict_workers" mapstructure:"predict_workers"`
	CompareWorkers    int     `yaml:"compare_workers" mapstructure:"compare_workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ScoringConfig controls projection and comparison.
type ScoringConfig struct {
	Threshold  float64 `yaml:"threshold" mapstructure:"threshold"`     // Candidate cut-off on the cross average
	Trim       int     `yaml:"trim" mapstructure:"trim"`               // Slice applied before prediction
	ZeroPolicy string  `yaml:"zero_policy" mapstructure:"zero_policy"` // skip, fail
}

// OutputConfig selects report destinations.
type OutputConfig struct {
	CSV      string `yaml:"csv" mapstructure:"csv"`
	JSON     string `yaml:"json,omitempty" mapstructure:"json"`
	Markdown string `yaml:"markdown,omitempty" mapstructure:"markdown"`
	DB       string `yaml:"db,omitempty" mapstructure:"db"`
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkDir: "foldswitch_temp",
		Predictor: PredictorConfig{
			Provider:      "jpred",
			BaseURL:       "https://www.compbio.dundee.ac.uk/jpred4",
			DownloadsDir:  "foldswitch_temp/downloads",
			UserAgent:     "foldswitch/0.3 (+https://github.com/ppiankov/foldswitch)",
			Timeout:       60 * time.Second,
			JobTimeout:    2 * time.Hour,
			PollInterval:  60 * time.Second,
			MaxAttempts:   3,
			RespectRobots: true,
		},
		Aligner: AlignerConfig{
			Provider: "clustalo",
			Binary:   "clustalo",
			Threads:  1,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir(),
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			PredictWorkers:    4,
			CompareWorkers:    4,
			RequestsPerSecond: 0.5,
			BurstSize:         2,
		},
		Scoring: ScoringConfig{
			Threshold:  0.1,
			ZeroPolicy: "skip",
		},
		Output: OutputConfig{
			CSV: "summary.txt",
		},
	}
}
