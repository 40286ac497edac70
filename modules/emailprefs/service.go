package emailprefs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/distribuia/distribuia/pkg/unsubscribe"
	"github.com/distribuia/distribuia/pkg/usagecache"
)

// Service manages email consent: authenticated preference updates and the
// public token-based unsubscribe link.
type Service struct {
	storage Storage
	tokens  *unsubscribe.Tokenizer
	cache   *usagecache.Cache
	log     *slog.Logger

	now func() time.Time
}

// NewService wires the email preferences service.
func NewService(storage Storage, tokens *unsubscribe.Tokenizer, cache *usagecache.Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		storage: storage,
		tokens:  tokens,
		cache:   cache,
		log:     log,
		now:     time.Now,
	}
}

// Get returns the user's preferences through the cache. Consent state changes
// rarely, so it carries the longest TTL.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (Preferences, error) {
	return usagecache.GetOrSet(ctx, s.cache, usagecache.PreferencesKey(userID.String()), usagecache.TTLVeryLong,
		func(ctx context.Context) (Preferences, error) {
			return s.storage.GetPreferences(ctx, userID)
		})
}

// Update applies an authenticated consent change and drops the user's cache
// entries.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (Preferences, error) {
	prefs, err := s.storage.SetPreferences(ctx, userID, in)
	if err != nil {
		return Preferences{}, err
	}
	s.cache.Invalidate(ctx, userID.String())
	return prefs, nil
}

// Unsubscribe handles the one-click link from an email footer. The token is
// verified before anything touches storage, so the endpoint does not leak
// whether a user id exists. Any failure surfaces as ErrInvalidToken.
func (s *Service) Unsubscribe(ctx context.Context, rawUserID, token string) error {
	if !s.tokens.Validate(rawUserID, token) {
		return ErrInvalidToken
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if err := s.storage.Unsubscribe(ctx, userID, s.now()); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, rawUserID)
	s.log.InfoContext(ctx, "user unsubscribed", slog.String("user_id", rawUserID))
	return nil
}

// DeleteUserData removes the user's preferences row and cache entries.
func (s *Service) DeleteUserData(ctx context.Context, userID uuid.UUID) error {
	if err := s.storage.DeletePreferences(ctx, userID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID.String())
	return nil
}
