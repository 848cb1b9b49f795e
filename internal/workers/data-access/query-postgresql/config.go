// internal/workers/data-access/query-postgresql/config.go
package querypostgresql

import (
	"time"

	"fractional-quest/internal/common/config"
	"fractional-quest/internal/jobfilter"
)

type Config struct {
	Timeout time.Duration
	Codec   jobfilter.Codec
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout: config.GetDuration(wcfg.Timeout),
		Codec:   jobfilter.CodecFor(cfg.Filters),
	}
}
