// internal/workers/communication/send-job-alert/config.go
package sendjobalert

import (
	"strings"
	"time"

	"fractional-quest/internal/common/config"
	"fractional-quest/internal/jobfilter"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AWSRegion    string
	SMSSenderID  string
	SiteURL      string
	// MaxListed caps the jobs listed in the email body.
	MaxListed int
	Codec     jobfilter.Codec
	Timeout   time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	aws := cfg.Integrations.AWS
	return &Config{
		EmailEnabled: aws.SES.Enabled,
		SMSEnabled:   aws.SNS.Enabled,
		FromEmail:    aws.SES.FromEmail,
		AWSRegion:    aws.Region,
		SMSSenderID:  aws.SNS.DefaultSMSSenderID,
		SiteURL:      strings.TrimRight(cfg.App.SiteURL, "/"),
		MaxListed:    5,
		Codec:        jobfilter.CodecFor(cfg.Filters),
		Timeout:      config.GetDuration(wcfg.Timeout),
	}
}
