package jobfilter

import "fractional-quest/internal/common/config"

// CodecFor builds the codec described by the filters section of the
// application config.
func CodecFor(cfg config.FiltersConfig) Codec {
	return NewCodec(cfg.DefaultMinRate, cfg.DefaultMaxRate,
		WithRateStep(cfg.RateStep),
		WithSearchPath(cfg.SearchPath),
	)
}
