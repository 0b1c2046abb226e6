package service

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"github.com/romeolab/agenda-notify/internal/domain"
	"github.com/romeolab/agenda-notify/internal/ratelimit"
	"github.com/romeolab/agenda-notify/internal/repository"
	"github.com/romeolab/agenda-notify/internal/whatsapp"
	"go.uber.org/zap"
)

var nonDigits = regexp.MustCompile(`\D`)

// TemplateSender is the outbound WhatsApp boundary the worker calls.
type TemplateSender interface {
	SendTemplate(ctx context.Context, phoneNumberID, accessToken string, msg whatsapp.TemplateMessage) (*whatsapp.SendResult, error)
}

// TokenDecryptor recovers a channel access token stored as ciphertext.
type TokenDecryptor interface {
	Decrypt(payload string) (string, error)
}

// WhatsAppWorker drains one bounded batch of the WhatsApp outbox. Every
// item runs the gate sequence before any network call; the first failing
// gate records its reason and stops.
type WhatsAppWorker struct {
	outbox    repository.OutboxRepository
	clients   repository.ClientRepository
	budget    ratelimit.SendBudget
	decryptor TokenDecryptor
	sender    TemplateSender
	logger    *zap.Logger

	batchSize int
	sendDelay time.Duration
	dryRun    bool

	now   func() time.Time
	sleep func(time.Duration)
}

func NewWhatsAppWorker(
	outbox repository.OutboxRepository,
	clients repository.ClientRepository,
	budget ratelimit.SendBudget,
	decryptor TokenDecryptor,
	sender TemplateSender,
	batchSize int,
	sendDelay time.Duration,
	dryRun bool,
	logger *zap.Logger,
) *WhatsAppWorker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if sendDelay < 0 {
		sendDelay = defaultSendDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WhatsAppWorker{
		outbox:    outbox,
		clients:   clients,
		budget:    budget,
		decryptor: decryptor,
		sender:    sender,
		logger:    logger,
		batchSize: batchSize,
		sendDelay: sendDelay,
		dryRun:    dryRun,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

func (w *WhatsAppWorker) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	items, err := w.outbox.FetchDispatchable(ctx, w.now(), w.batchSize)
	if err != nil {
		return summary, err
	}

	w.logger.Info("whatsapp batch fetched",
		zap.Int("count", len(items)),
		zap.Bool("dryRun", w.dryRun),
	)

	for i := range items {
		result := w.processItem(ctx, &items[i])
		summary.record(result)

		if result.Outcome == OutcomeFailed {
			w.logger.Warn("whatsapp dispatch failed",
				zap.String("outboxId", items[i].ID),
				zap.String("reason", result.Reason),
			)
		}

		if i < len(items)-1 && w.sendDelay > 0 {
			w.sleep(w.sendDelay)
		}
	}

	w.logger.Info("whatsapp batch done",
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)

	return summary, nil
}

func (w *WhatsAppWorker) processItem(ctx context.Context, item *domain.OutboxItem) ItemResult {
	allowed, err := w.budget.Allow(ctx, item.BusinessID)
	if err != nil {
		return w.fail(ctx, item, domain.ReasonProviderError, err.Error())
	}
	if !allowed {
		return w.fail(ctx, item, domain.ReasonRateLimited, "")
	}

	cfg, err := w.outbox.GetConfig(ctx, item.BusinessID)
	if err != nil || !cfg.Active() {
		return w.fail(ctx, item, domain.ReasonBusinessNotConnected, "")
	}

	var payload domain.TemplatePayload
	if err := json.Unmarshal([]byte(item.PayloadJSON), &payload); err != nil {
		return w.fail(ctx, item, domain.ReasonProviderError, "malformed payload: "+err.Error())
	}

	approved, err := w.outbox.HasApprovedTemplate(ctx, item.BusinessID, item.TemplateName, payload.LanguageCode)
	if err != nil {
		return w.fail(ctx, item, domain.ReasonProviderError, err.Error())
	}
	if !approved {
		return w.fail(ctx, item, domain.ReasonTemplateRejected, "")
	}

	consented, err := w.outbox.HasValidConsent(ctx, item.BusinessID, item.CustomerID)
	if err != nil {
		return w.fail(ctx, item, domain.ReasonProviderError, err.Error())
	}
	if !consented {
		return w.fail(ctx, item, domain.ReasonConsentMissing, "")
	}

	client, err := w.clients.FindByID(ctx, item.CustomerID)
	if err != nil {
		return w.fail(ctx, item, domain.ReasonInvalidPhone, "")
	}
	phone := nonDigits.ReplaceAllString(client.Phone, "")
	if phone == "" {
		return w.fail(ctx, item, domain.ReasonInvalidPhone, "")
	}

	if w.dryRun {
		if err := w.outbox.MarkSent(ctx, item.ID, "dry-run", w.now()); err != nil {
			return failed("failed to mark sent: " + err.Error())
		}
		return sent()
	}

	// Token stays in memory only; never logged, never persisted plain.
	token, err := w.decryptor.Decrypt(cfg.AccessTokenEncrypted)
	if err != nil {
		return w.fail(ctx, item, domain.ReasonBusinessNotConnected, "token decrypt failed")
	}

	result, err := w.sender.SendTemplate(ctx, cfg.PhoneNumberID, token, whatsapp.TemplateMessage{
		To:           phone,
		TemplateName: item.TemplateName,
		LanguageCode: payload.LanguageCode,
		Components:   payload.Components,
	})
	if err != nil {
		return w.fail(ctx, item, whatsapp.Classify(err), err.Error())
	}

	if err := w.outbox.MarkSent(ctx, item.ID, result.MessageID, w.now()); err != nil {
		return failed("failed to mark sent: " + err.Error())
	}

	if err := w.outbox.LogMessage(ctx, &domain.MessageLog{
		BusinessID:        item.BusinessID,
		CustomerID:        item.CustomerID,
		Direction:         "outbound",
		MessageType:       "template",
		ContentSnapshot:   item.TemplateName,
		ProviderMessageID: result.MessageID,
		DeliveryStatus:    string(domain.OutboxSent),
	}); err != nil {
		w.logger.Error("failed to append message log",
			zap.String("outboxId", item.ID),
			zap.Error(err),
		)
	}

	return sent()
}

func (w *WhatsAppWorker) fail(ctx context.Context, item *domain.OutboxItem, reason domain.FailureReason, detail string) ItemResult {
	if err := w.outbox.MarkFailedWithRetry(ctx, item.ID, reason, detail, w.now()); err != nil {
		w.logger.Error("failed to record dispatch failure",
			zap.String("outboxId", item.ID),
			zap.Error(err),
		)
	}
	return failed(string(reason))
}
