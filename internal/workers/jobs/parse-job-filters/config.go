// internal/workers/jobs/parse-job-filters/config.go
package parsejobfilters

import (
	"time"

	"fractional-quest/internal/common/config"
	"fractional-quest/internal/jobfilter"
)

type Config struct {
	Codec   jobfilter.Codec
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Codec:   jobfilter.CodecFor(cfg.Filters),
		Timeout: config.GetDuration(wcfg.Timeout),
	}
}
