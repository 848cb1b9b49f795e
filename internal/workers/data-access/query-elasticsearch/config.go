// internal/workers/data-access/query-elasticsearch/config.go
package queryelasticsearch

import (
	"time"

	"fractional-quest/internal/common/config"
	"fractional-quest/internal/jobfilter"
)

type Config struct {
	Timeout   time.Duration
	IndexName string
	Codec     jobfilter.Codec
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:   config.GetDuration(wcfg.Timeout),
		IndexName: cfg.Search.Index,
		Codec:     jobfilter.CodecFor(cfg.Filters),
	}
}
