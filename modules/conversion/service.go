package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/distribuia/distribuia/pkg/auth"
	"github.com/distribuia/distribuia/pkg/entitlements"
	"github.com/distribuia/distribuia/pkg/metrics"
	"github.com/distribuia/distribuia/pkg/usagecache"
)

// QuotaNotifier is told when a user consumes the last conversion of their
// billing cycle. The email integration implements it.
type QuotaNotifier interface {
	QuotaReached(ctx context.Context, user auth.User) error
}

// Service coordinates entitlement checks, generation, and persistence.
type Service struct {
	storage   Storage
	generator Generator
	cache     *usagecache.Cache
	collector *metrics.Collector
	notifier  QuotaNotifier
	log       *slog.Logger

	now func() time.Time
}

// Option customizes the service.
type Option func(*Service)

// WithQuotaNotifier enables the quota-reached notification.
func WithQuotaNotifier(n QuotaNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService wires the conversion service. collector may be nil when metrics
// are disabled.
func NewService(storage Storage, generator Generator, cache *usagecache.Cache, collector *metrics.Collector, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		storage:   storage,
		generator: generator,
		cache:     cache,
		collector: collector,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is the payload for a new conversion.
type CreateInput struct {
	Source    SourceType          `json:"source"`
	SourceRef string              `json:"source_ref"`
	Format    entitlements.Format `json:"format"`
}

// Validate checks the payload shape before any quota is consumed.
func (in CreateInput) Validate() error {
	switch in.Source {
	case SourceYouTube, SourceArticle, SourceText:
	default:
		return fmt.Errorf("%w: source %q", ErrInvalidInput, in.Source)
	}
	switch in.Format {
	case entitlements.FormatXThread, entitlements.FormatLinkedInPost, entitlements.FormatLinkedInArticle:
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidInput, in.Format)
	}
	if in.SourceRef == "" {
		return fmt.Errorf("%w: empty source_ref", ErrInvalidInput)
	}
	return nil
}

// effectiveUsage applies the billing-cycle rollover at read time: a counter
// from a previous cycle reads as zero, and the cycle restarts at now.
func (s *Service) effectiveUsage(counter UsageCounter) (used int, cycleStart time.Time) {
	now := s.now()
	cycleEnd := counter.BillingCycleStart.AddDate(0, 1, 0)
	if counter.BillingCycleStart.IsZero() || !now.Before(cycleEnd) {
		return 0, now
	}
	return counter.ConversionsUsed, counter.BillingCycleStart
}

// Create runs the full conversion pipeline for an authenticated user:
// quota check, generation, free-tier watermark, transactional persistence,
// cache invalidation.
func (s *Service) Create(ctx context.Context, user auth.User, in CreateInput) (Conversion, OutputVersion, error) {
	if err := in.Validate(); err != nil {
		return Conversion{}, OutputVersion{}, err
	}

	counter, err := s.storage.GetUsage(ctx, user.ID)
	if err != nil {
		return Conversion{}, OutputVersion{}, err
	}
	used, cycleStart := s.effectiveUsage(counter)

	ok, err := entitlements.CanCreateConversion(user.Plan, used)
	if err != nil {
		return Conversion{}, OutputVersion{}, err
	}
	if !ok {
		return Conversion{}, OutputVersion{}, ErrQuotaExceeded
	}

	title, content, err := s.generator.Generate(ctx, GenerateRequest{
		Source:    in.Source,
		SourceRef: in.SourceRef,
		Format:    in.Format,
	})
	if err != nil {
		return Conversion{}, OutputVersion{}, errors.Join(ErrGenerationFailed, err)
	}
	content = entitlements.ApplyWatermarkIfNeeded(content, in.Format, user.Plan)

	now := s.now()
	conv := Conversion{
		ID:        uuid.New(),
		UserID:    user.ID,
		Source:    in.Source,
		SourceRef: in.SourceRef,
		Title:     title,
		Format:    in.Format,
		CreatedAt: now,
	}
	original := OutputVersion{
		ID:           uuid.New(),
		ConversionID: conv.ID,
		Format:       in.Format,
		Version:      1,
		Content:      content,
		CreatedAt:    now,
	}

	if err := s.storage.CreateConversion(ctx, conv, original, cycleStart); err != nil {
		return Conversion{}, OutputVersion{}, err
	}

	s.cache.Invalidate(ctx, user.ID.String())
	if s.collector != nil {
		s.collector.RecordConversion()
	}
	s.notifyIfQuotaReached(ctx, user, used+1)
	s.log.InfoContext(ctx, "conversion created",
		slog.String("user_id", user.ID.String()),
		slog.String("conversion_id", conv.ID.String()),
		slog.String("format", string(in.Format)),
	)

	return conv, original, nil
}

// notifyIfQuotaReached fires the quota notification in the background once
// the cycle's last conversion is consumed. Best effort: delivery failures are
// logged, never surfaced to the request.
func (s *Service) notifyIfQuotaReached(ctx context.Context, user auth.User, used int) {
	if s.notifier == nil {
		return
	}
	remaining, err := entitlements.RemainingConversions(user.Plan, used)
	if err != nil || remaining > 0 {
		return
	}

	nctx := context.WithoutCancel(ctx)
	go func() {
		nctx, cancel := context.WithTimeout(nctx, 5*time.Second)
		defer cancel()
		if err := s.notifier.QuotaReached(nctx, user); err != nil {
			s.log.WarnContext(nctx, "quota notification failed",
				slog.String("user_id", user.ID.String()),
				slog.Any("error", err),
			)
		}
	}()
}

// Regenerate produces the next output version for a conversion/format pair.
// The plan limit is enforced twice: a fast check on the current count for a
// clean error, then the conditional insert that holds under concurrency.
func (s *Service) Regenerate(ctx context.Context, user auth.User, conversionID uuid.UUID, format entitlements.Format) (OutputVersion, error) {
	conv, err := s.storage.GetConversion(ctx, user.ID, conversionID)
	if err != nil {
		return OutputVersion{}, err
	}

	count, err := s.storage.CountVersions(ctx, conv.ID, format)
	if err != nil {
		return OutputVersion{}, err
	}

	ok, err := entitlements.CanRegenerate(user.Plan, count)
	if err != nil {
		return OutputVersion{}, err
	}
	if !ok {
		return OutputVersion{}, ErrRegenerateLimit
	}

	_, content, err := s.generator.Generate(ctx, GenerateRequest{
		Source:     conv.Source,
		SourceRef:  conv.SourceRef,
		Format:     format,
		Regenerate: true,
	})
	if err != nil {
		return OutputVersion{}, errors.Join(ErrGenerationFailed, err)
	}
	content = entitlements.ApplyWatermarkIfNeeded(content, format, user.Plan)

	limits, err := entitlements.LimitsFor(user.Plan)
	if err != nil {
		return OutputVersion{}, err
	}
	version, err := s.storage.InsertVersionIfBelow(ctx, conv.ID, format, content, limits.RegeneratesPerConversion+1)
	if err != nil {
		return OutputVersion{}, err
	}

	s.cache.Invalidate(ctx, user.ID.String())
	if s.collector != nil {
		s.collector.RecordRegeneration()
	}
	s.log.InfoContext(ctx, "output regenerated",
		slog.String("user_id", user.ID.String()),
		slog.String("conversion_id", conv.ID.String()),
		slog.Int("version", version.Version),
	)

	return version, nil
}

// GetUsage returns the user's usage snapshot through the cache.
func (s *Service) GetUsage(ctx context.Context, user auth.User) (Usage, error) {
	return usagecache.GetOrSet(ctx, s.cache, usagecache.UsageKey(user.ID.String()), usagecache.TTLMedium,
		func(ctx context.Context) (Usage, error) {
			counter, err := s.storage.GetUsage(ctx, user.ID)
			if err != nil {
				return Usage{}, err
			}
			used, cycleStart := s.effectiveUsage(counter)

			limits, err := entitlements.LimitsFor(user.Plan)
			if err != nil {
				return Usage{}, err
			}
			remaining, err := entitlements.RemainingConversions(user.Plan, used)
			if err != nil {
				return Usage{}, err
			}

			return Usage{
				ConversionsUsed:   used,
				ConversionsLimit:  limits.ConversionsPerMonth,
				Remaining:         remaining,
				BillingCycleStart: cycleStart,
			}, nil
		})
}

// List returns the user's conversions through the cache, newest first.
func (s *Service) List(ctx context.Context, user auth.User) ([]Conversion, error) {
	return usagecache.GetOrSet(ctx, s.cache, usagecache.ConversionsKey(user.ID.String()), usagecache.TTLShort,
		func(ctx context.Context) ([]Conversion, error) {
			return s.storage.ListConversions(ctx, user.ID)
		})
}

// DeleteUserData removes everything stored for the user and drops their
// cache entries. Called by the account deletion flow.
func (s *Service) DeleteUserData(ctx context.Context, userID uuid.UUID) error {
	if err := s.storage.DeleteUserData(ctx, userID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID.String())
	return nil
}
