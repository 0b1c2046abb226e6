package service

import (
	"context"
	"time"

	"github.com/romeolab/agenda-notify/internal/domain"
	"github.com/romeolab/agenda-notify/internal/provider"
	"github.com/romeolab/agenda-notify/internal/whatsapp"
)

type fakeQueueRepo struct {
	createFn            func(ctx context.Context, item *domain.QueueItem) error
	hasEffectiveFn      func(ctx context.Context, channel domain.Channel, bookingID int64) (bool, error)
	fetchDispatchableFn func(ctx context.Context, now time.Time, limit int) ([]domain.QueueItem, error)
	markProcessingFn    func(ctx context.Context, id int64) error
	markSentFn          func(ctx context.Context, id int64, processedAt time.Time) error
	markFailedFn        func(ctx context.Context, id int64, processedAt time.Time, reason string) error
}

func (f *fakeQueueRepo) Create(ctx context.Context, item *domain.QueueItem) error {
	return f.createFn(ctx, item)
}

func (f *fakeQueueRepo) HasEffective(ctx context.Context, channel domain.Channel, bookingID int64) (bool, error) {
	return f.hasEffectiveFn(ctx, channel, bookingID)
}

func (f *fakeQueueRepo) FetchDispatchable(ctx context.Context, now time.Time, limit int) ([]domain.QueueItem, error) {
	return f.fetchDispatchableFn(ctx, now, limit)
}

func (f *fakeQueueRepo) MarkProcessing(ctx context.Context, id int64) error {
	return f.markProcessingFn(ctx, id)
}

func (f *fakeQueueRepo) MarkSent(ctx context.Context, id int64, processedAt time.Time) error {
	return f.markSentFn(ctx, id, processedAt)
}

func (f *fakeQueueRepo) MarkFailed(ctx context.Context, id int64, processedAt time.Time, reason string) error {
	return f.markFailedFn(ctx, id, processedAt, reason)
}

type fakeSettingsRepo struct {
	getFn                  func(ctx context.Context, businessID int64) (*domain.NotificationSettings, error)
	countActiveLocationsFn func(ctx context.Context, businessID int64) (int64, error)
}

func (f *fakeSettingsRepo) Get(ctx context.Context, businessID int64) (*domain.NotificationSettings, error) {
	return f.getFn(ctx, businessID)
}

func (f *fakeSettingsRepo) CountActiveLocations(ctx context.Context, businessID int64) (int64, error) {
	return f.countActiveLocationsFn(ctx, businessID)
}

type fakeClientRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*domain.Client, error)
}

func (f *fakeClientRepo) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	return f.findByIDFn(ctx, id)
}

type fakeEmailProvider struct {
	sendFn func(ctx context.Context, msg provider.Message) error
	sends  []provider.Message
}

func (f *fakeEmailProvider) Send(ctx context.Context, msg provider.Message) error {
	f.sends = append(f.sends, msg)
	if f.sendFn != nil {
		return f.sendFn(ctx, msg)
	}
	return nil
}

func (f *fakeEmailProvider) Name() string { return "fake" }

type fakeOutboxRepo struct {
	enqueueFn             func(ctx context.Context, item *domain.OutboxItem) error
	fetchDispatchableFn   func(ctx context.Context, now time.Time, limit int) ([]domain.OutboxItem, error)
	markSentFn            func(ctx context.Context, id string, providerMessageID string, now time.Time) error
	markFailedWithRetryFn func(ctx context.Context, id string, reason domain.FailureReason, detail string, now time.Time) error
	getConfigFn           func(ctx context.Context, businessID int64) (*domain.ChannelConfig, error)
	hasApprovedTemplateFn func(ctx context.Context, businessID int64, name, language string) (bool, error)
	hasValidConsentFn     func(ctx context.Context, businessID, customerID int64) (bool, error)
	countRecentSendsFn    func(ctx context.Context, businessID int64, since time.Time) (int64, error)
	countDailySendsFn     func(ctx context.Context, businessID int64, dayStart time.Time) (int64, error)
	logMessageFn          func(ctx context.Context, log *domain.MessageLog) error
}

func (f *fakeOutboxRepo) Enqueue(ctx context.Context, item *domain.OutboxItem) error {
	return f.enqueueFn(ctx, item)
}

func (f *fakeOutboxRepo) FetchDispatchable(ctx context.Context, now time.Time, limit int) ([]domain.OutboxItem, error) {
	return f.fetchDispatchableFn(ctx, now, limit)
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string, providerMessageID string, now time.Time) error {
	return f.markSentFn(ctx, id, providerMessageID, now)
}

func (f *fakeOutboxRepo) MarkFailedWithRetry(ctx context.Context, id string, reason domain.FailureReason, detail string, now time.Time) error {
	return f.markFailedWithRetryFn(ctx, id, reason, detail, now)
}

func (f *fakeOutboxRepo) GetConfig(ctx context.Context, businessID int64) (*domain.ChannelConfig, error) {
	return f.getConfigFn(ctx, businessID)
}

func (f *fakeOutboxRepo) HasApprovedTemplate(ctx context.Context, businessID int64, name, language string) (bool, error) {
	return f.hasApprovedTemplateFn(ctx, businessID, name, language)
}

func (f *fakeOutboxRepo) HasValidConsent(ctx context.Context, businessID, customerID int64) (bool, error) {
	return f.hasValidConsentFn(ctx, businessID, customerID)
}

func (f *fakeOutboxRepo) CountRecentSends(ctx context.Context, businessID int64, since time.Time) (int64, error) {
	return f.countRecentSendsFn(ctx, businessID, since)
}

func (f *fakeOutboxRepo) CountDailySends(ctx context.Context, businessID int64, dayStart time.Time) (int64, error) {
	return f.countDailySendsFn(ctx, businessID, dayStart)
}

func (f *fakeOutboxRepo) LogMessage(ctx context.Context, log *domain.MessageLog) error {
	if f.logMessageFn != nil {
		return f.logMessageFn(ctx, log)
	}
	return nil
}

type fakeBudget struct {
	allowFn func(ctx context.Context, businessID int64) (bool, error)
}

func (f *fakeBudget) Allow(ctx context.Context, businessID int64) (bool, error) {
	return f.allowFn(ctx, businessID)
}

type fakeDecryptor struct {
	decryptFn func(payload string) (string, error)
}

func (f *fakeDecryptor) Decrypt(payload string) (string, error) {
	if f.decryptFn != nil {
		return f.decryptFn(payload)
	}
	return payload, nil
}

type fakeTemplateSender struct {
	sendTemplateFn func(ctx context.Context, phoneNumberID, accessToken string, msg whatsapp.TemplateMessage) (*whatsapp.SendResult, error)
	calls          int
}

func (f *fakeTemplateSender) SendTemplate(ctx context.Context, phoneNumberID, accessToken string, msg whatsapp.TemplateMessage) (*whatsapp.SendResult, error) {
	f.calls++
	return f.sendTemplateFn(ctx, phoneNumberID, accessToken, msg)
}

type fakeBookingRepo struct {
	findReminderCandidatesFn func(ctx context.Context, from, to time.Time) ([]domain.BookingContext, error)
}

func (f *fakeBookingRepo) FindReminderCandidates(ctx context.Context, from, to time.Time) ([]domain.BookingContext, error) {
	return f.findReminderCandidatesFn(ctx, from, to)
}
