package predict

import (
	"fmt"
	"strings"

	"github.com/ppiankov/foldswitch/internal/cache"
	"github.com/ppiankov/foldswitch/internal/model"
	"github.com/ppiankov/foldswitch/internal/worker"
)

// NewProvider creates the configured predictor, wrapped in the prediction
// cache when caching is enabled
func NewProvider(cfg *model.Config) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch strings.ToLower(cfg.Predictor.Provider) {
	case "jpred":
		limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.BurstSize)
		provider, err = NewJPredProvider(JPredConfigFromModel(cfg.Predictor), limiter)

	case "archive":
		provider, err = NewArchiveProvider(cfg.Predictor.DownloadsDir)

	default:
		return nil, fmt.Errorf("unknown predictor: %s (supported: jpred, archive)", cfg.Predictor.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		provider = NewCached(provider, layered, 0)
	}
	return provider, nil
}

// JPredConfigFromModel converts model.PredictorConfig to JPredConfig
func JPredConfigFromModel(pc model.PredictorConfig) JPredConfig {
	return JPredConfig{
		BaseURL:       pc.BaseURL,
		Email:         pc.Email,
		UserAgent:     pc.UserAgent,
		DownloadsDir:  pc.DownloadsDir,
		Timeout:       pc.Timeout,
		JobTimeout:    pc.JobTimeout,
		PollInterval:  pc.PollInterval,
		MaxAttempts:   pc.MaxAttempts,
		RespectRobots: pc.RespectRobots,
		HTTPProxy:     pc.HTTPProxy,
		HTTPSProxy:    pc.HTTPSProxy,
		NoProxy:       pc.NoProxy,
	}
}
