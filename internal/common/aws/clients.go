package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Clients holds the AWS messaging clients used for job alerts. Either may
// be nil when its channel is disabled.
type Clients struct {
	SES *ses.Client
	SNS *sns.Client
}

// NewClients loads the default credential chain once for region and builds
// the requested clients.
func NewClients(ctx context.Context, region string, withSES, withSNS bool) (*Clients, error) {
	if !withSES && !withSNS {
		return &Clients{}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clients := &Clients{}
	if withSES {
		clients.SES = ses.NewFromConfig(cfg)
	}
	if withSNS {
		clients.SNS = sns.NewFromConfig(cfg)
	}
	return clients, nil
}
