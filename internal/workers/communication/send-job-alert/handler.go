// internal/workers/communication/send-job-alert/handler.go
package sendjobalert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/metrics"
	"fractional-quest/internal/common/validation"
	"fractional-quest/internal/jobs"
	"fractional-quest/internal/models"
)

const (
	TaskType = "send-job-alert"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config       *Config
	searcher     jobs.Searcher
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	sesClient    SESService
	snsClient    SNSService
	now          func() time.Time
}

type Option func(*Handler)

func WithSES(svc SESService) Option {
	return func(h *Handler) { h.sesClient = svc }
}

func WithSNS(svc SNSService) Option {
	return func(h *Handler) { h.snsClient = svc }
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(config *Config, searcher jobs.Searcher, log logger.Logger, opts ...Option) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:       config,
		searcher:     searcher,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err))
		metrics.ObserveJob(TaskType, started, string(stdErr.Code))
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.ObserveJob(TaskType, started, string(apperrors.AsStandardError(err).Code))
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.ObserveJob(TaskType, started, "")
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}
	if res := validation.JobAlertInput.ValidateValue(input); !res.Valid {
		return nil, apperrors.NewInvalidRequestError(res.Summary())
	}

	state := h.config.Codec.ParseQuery(input.FilterQuery)
	page, err := h.searcher.Search(ctx, jobs.NewQuery(h.config.Codec, state))
	if err != nil {
		return nil, err
	}

	notificationID := uuid.New().String()
	sentAt := h.now().UTC().Format(time.RFC3339)
	output := &Output{
		NotificationID: notificationID,
		MatchCount:     page.Total,
		SentAt:         sentAt,
	}

	if page.Total == 0 || len(page.Jobs) == 0 {
		h.logger.Info("no matching jobs, alert skipped", map[string]interface{}{
			"filterQuery": input.FilterQuery,
		})
		output.Status = StatusSkipped
		return output, nil
	}

	msg := h.buildMessage(state, page)

	// Send email if enabled and email exists
	if h.config.EmailEnabled && h.sesClient != nil && input.Email != "" {
		d := models.Notification{ID: notificationID, Channel: models.ChannelEmail, Recipient: input.Email, MatchCount: page.Total, SentAt: sentAt}
		if err := h.sendEmail(ctx, input.Email, msg); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": input.Email,
			})
			d.Status, d.Error = StatusFailed, err.Error()
		} else {
			d.Status = StatusSent
		}
		output.Deliveries = append(output.Deliveries, d)
	}

	// Send SMS only if: enabled AND phone exists AND priority is high
	if h.config.SMSEnabled && h.snsClient != nil && input.Phone != "" && input.Priority == PriorityHigh {
		d := models.Notification{ID: notificationID, Channel: models.ChannelSMS, Recipient: input.Phone, MatchCount: page.Total, SentAt: sentAt}
		if err := h.sendSMS(ctx, input.Phone, msg.SMS()); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": input.Phone,
			})
			d.Status, d.Error = StatusFailed, err.Error()
		} else {
			d.Status = StatusSent
		}
		output.Deliveries = append(output.Deliveries, d)
	}

	output.Status = deliveryStatus(output.Deliveries)
	if output.Status == StatusFailed {
		var errs []error
		for _, d := range output.Deliveries {
			errs = append(errs, fmt.Errorf("%s: %s", d.Channel, d.Error))
		}
		return nil, apperrors.NewNotificationSendFailedError(TaskType, errors.Join(errs...))
	}
	return output, nil
}

// deliveryStatus is sent when any channel delivered, failed when every
// attempted channel failed and disabled when none was attempted.
func deliveryStatus(deliveries []models.Notification) string {
	if len(deliveries) == 0 {
		return StatusDisabled
	}
	for _, d := range deliveries {
		if d.Status == StatusSent {
			return StatusSent
		}
	}
	return StatusFailed
}

func (h *Handler) sendEmail(ctx context.Context, to string, msg alertMessage) error {
	html, err := msg.HTML()
	if err != nil {
		return err
	}
	_, err = h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Text())},
				Html: &types.Content{Data: aws.String(html)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	in := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if h.config.SMSSenderID != "" {
		in.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {DataType: aws.String("String"), StringValue: aws.String(h.config.SMSSenderID)},
		}
	}
	_, err := h.snsClient.Publish(ctx, in)
	return err
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(ctx)
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
