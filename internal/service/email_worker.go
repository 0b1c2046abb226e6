package service

import (
	"context"
	"errors"
	"time"

	"github.com/romeolab/agenda-notify/internal/domain"
	"github.com/romeolab/agenda-notify/internal/provider"
	"github.com/romeolab/agenda-notify/internal/repository"
	"github.com/romeolab/agenda-notify/internal/template"
	"go.uber.org/zap"
)

const (
	defaultBatchSize = 50
	defaultSendDelay = 100 * time.Millisecond
)

// EmailWorker drains one bounded batch of the email queue and exits. It is
// meant for cron: overlap protection is the pending -> processing claim,
// not a lock.
type EmailWorker struct {
	queue    repository.QueueRepository
	provider provider.EmailProvider
	senders  *SenderTable
	logger   *zap.Logger

	batchSize int
	sendDelay time.Duration
	dryRun    bool

	now   func() time.Time
	sleep func(time.Duration)
}

func NewEmailWorker(
	queue repository.QueueRepository,
	emailProvider provider.EmailProvider,
	senders *SenderTable,
	batchSize int,
	sendDelay time.Duration,
	dryRun bool,
	logger *zap.Logger,
) *EmailWorker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if sendDelay < 0 {
		sendDelay = defaultSendDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EmailWorker{
		queue:     queue,
		provider:  emailProvider,
		senders:   senders,
		logger:    logger,
		batchSize: batchSize,
		sendDelay: sendDelay,
		dryRun:    dryRun,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Run processes one batch. Item failures are recorded on the row and
// tallied; only fetch-level errors propagate.
func (w *EmailWorker) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	items, err := w.queue.FetchDispatchable(ctx, w.now(), w.batchSize)
	if err != nil {
		return summary, err
	}

	w.logger.Info("email batch fetched",
		zap.Int("count", len(items)),
		zap.Bool("dryRun", w.dryRun),
	)

	for i := range items {
		result := w.processItem(ctx, &items[i])
		summary.record(result)

		if result.Outcome == OutcomeFailed {
			w.logger.Warn("email dispatch failed",
				zap.Int64("queueId", items[i].ID),
				zap.String("reason", result.Reason),
			)
		}

		// Advisory pacing between sends to stay under free-tier limits.
		if i < len(items)-1 && w.sendDelay > 0 {
			w.sleep(w.sendDelay)
		}
	}

	w.logger.Info("email batch done",
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)

	return summary, nil
}

func (w *EmailWorker) processItem(ctx context.Context, item *domain.QueueItem) ItemResult {
	// Claim before any network call so an overlapping invocation cannot
	// double-send.
	if err := w.queue.MarkProcessing(ctx, item.ID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return skipped("already claimed")
		}
		return failed(err.Error())
	}

	payload, err := domain.DecodeQueuePayload(item.Payload)
	if err != nil {
		return w.fail(ctx, item.ID, "malformed payload: "+err.Error())
	}

	channel, err := domain.ParseChannelFromString(payload.Template)
	if err != nil {
		return w.fail(ctx, item.ID, "unknown template: "+payload.Template)
	}

	tmpl, err := template.Lookup(channel, payload.Locale, payload.WithLocation)
	if err != nil {
		return w.fail(ctx, item.ID, err.Error())
	}

	variables := payload.Variables
	if variables["client_name"] == "" {
		variables["client_name"] = template.GenericClientName(payload.Locale)
	}

	sender := w.senders.Resolve(item.Channel, variables["business_name"], variables["location_email"], variables["business_email"])

	msg := provider.Message{
		To:       item.RecipientEmail,
		ToName:   item.RecipientName,
		From:     sender.From,
		FromName: sender.FromName,
		ReplyTo:  sender.ReplyTo,
		Subject:  template.Render(tmpl.Subject, variables),
		HTML:     template.Render(tmpl.HTML, variables),
		Text:     template.Render(tmpl.Text, variables),
	}

	if !w.dryRun {
		if err := w.provider.Send(ctx, msg); err != nil {
			// Classification is diagnostic only: the email queue has no
			// retry lane, so transient and permanent alike finalize the
			// row. An operator re-enqueues after fixing the cause.
			w.logger.Warn("provider send failed",
				zap.Int64("queueId", item.ID),
				zap.Bool("transient", provider.IsTransient(err)),
				zap.Error(err),
			)
			return w.fail(ctx, item.ID, err.Error())
		}
	}

	if err := w.queue.MarkSent(ctx, item.ID, w.now()); err != nil {
		return failed("failed to mark sent: " + err.Error())
	}

	return sent()
}

func (w *EmailWorker) fail(ctx context.Context, id int64, reason string) ItemResult {
	if err := w.queue.MarkFailed(ctx, id, w.now(), reason); err != nil {
		w.logger.Error("failed to record dispatch failure",
			zap.Int64("queueId", id),
			zap.Error(err),
		)
	}
	return failed(reason)
}
