package conversion_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/distribuia/distribuia/modules/conversion"
	"github.com/distribuia/distribuia/pkg/auth"
	"github.com/distribuia/distribuia/pkg/entitlements"
	"github.com/distribuia/distribuia/pkg/usagecache"
)

type fakeStorage struct {
	mu       sync.Mutex
	counters map[uuid.UUID]conversion.UsageCounter
	convs    map[uuid.UUID]conversion.Conversion
	versions map[uuid.UUID][]conversion.OutputVersion

	usageCalls int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		counters: make(map[uuid.UUID]conversion.UsageCounter),
		convs:    make(map[uuid.UUID]conversion.Conversion),
		versions: make(map[uuid.UUID][]conversion.OutputVersion),
	}
}

func (s *fakeStorage) GetUsage(_ context.Context, userID uuid.UUID) (conversion.UsageCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usageCalls++
	return s.counters[userID], nil
}

func (s *fakeStorage) usageCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usageCalls
}

func (s *fakeStorage) CreateConversion(_ context.Context, conv conversion.Conversion, original conversion.OutputVersion, cycleStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[conv.ID] = conv
	s.versions[conv.ID] = append(s.versions[conv.ID], original)

	counter := s.counters[conv.UserID]
	if counter.BillingCycleStart.Equal(cycleStart) {
		counter.ConversionsUsed++
	} else {
		counter = conversion.UsageCounter{ConversionsUsed: 1, BillingCycleStart: cycleStart}
	}
	s.counters[conv.UserID] = counter
	return nil
}

func (s *fakeStorage) GetConversion(_ context.Context, userID, conversionID uuid.UUID) (conversion.Conversion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[conversionID]
	if !ok || conv.UserID != userID {
		return conversion.Conversion{}, conversion.ErrConversionNotFound
	}
	return conv, nil
}

func (s *fakeStorage) ListConversions(_ context.Context, userID uuid.UUID) ([]conversion.Conversion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []conversion.Conversion
	for _, conv := range s.convs {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (s *fakeStorage) CountVersions(_ context.Context, conversionID uuid.UUID, format entitlements.Format) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(conversionID, format), nil
}

func (s *fakeStorage) countLocked(conversionID uuid.UUID, format entitlements.Format) int {
	n := 0
	for _, v := range s.versions[conversionID] {
		if v.Format == format {
			n++
		}
	}
	return n
}

func (s *fakeStorage) InsertVersionIfBelow(_ context.Context, conversionID uuid.UUID, format entitlements.Format, content string, maxVersions int) (conversion.OutputVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := s.countLocked(conversionID, format)
	if count >= maxVersions {
		return conversion.OutputVersion{}, conversion.ErrRegenerateLimit
	}
	version := conversion.OutputVersion{
		ID:           uuid.New(),
		ConversionID: conversionID,
		Format:       format,
		Version:      count + 1,
		Content:      content,
		CreatedAt:    time.Now(),
	}
	s.versions[conversionID] = append(s.versions[conversionID], version)
	return version, nil
}

func (s *fakeStorage) DeleteUserData(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conv := range s.convs {
		if conv.UserID == userID {
			delete(s.convs, id)
			delete(s.versions, id)
		}
	}
	delete(s.counters, userID)
	return nil
}

type fakeGenerator struct {
	err   error
	calls int
}

func (g *fakeGenerator) Generate(_ context.Context, req conversion.GenerateRequest) (string, string, error) {
	g.calls++
	if g.err != nil {
		return "", "", g.err
	}
	if req.Regenerate {
		return "Título", "contenido regenerado", nil
	}
	return "Título", "contenido generado", nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *fakeNotifier) QuotaReached(context.Context, auth.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func newService(t *testing.T, storage conversion.Storage, gen conversion.Generator, cache *usagecache.Cache) *conversion.Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cache == nil {
		cache = usagecache.New(nil, log)
	}
	return conversion.NewService(storage, gen, cache, nil, log)
}

// waitForCacheFill blocks until the asynchronous write-back after a cache
// miss has landed, so later assertions see a settled cache.
func waitForCacheFill(t *testing.T, store usagecache.Store, key string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok, err := store.Get(context.Background(), key)
		return err == nil && ok
	}, time.Second, 10*time.Millisecond)
}

func validInput() conversion.CreateInput {
	return conversion.CreateInput{
		Source:    conversion.SourceYouTube,
		SourceRef: "https://youtube.com/watch?v=abc123",
		Format:    entitlements.FormatXThread,
	}
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("persists conversion with original version", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc := newService(t, storage, &fakeGenerator{}, nil)
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierStarter}

		conv, original, err := svc.Create(context.Background(), user, validInput())
		require.NoError(t, err)
		require.Equal(t, user.ID, conv.UserID)
		require.Equal(t, 1, original.Version)
		require.Equal(t, conv.ID, original.ConversionID)
		require.Equal(t, "contenido generado", original.Content)
		require.Equal(t, 1, storage.counters[user.ID].ConversionsUsed)
	})

	t.Run("free tier output is watermarked", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, newFakeStorage(), &fakeGenerator{}, nil)
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierFree}

		_, original, err := svc.Create(context.Background(), user, validInput())
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(original.Content, "distribuia.com"))
		require.Contains(t, original.Content, "contenido generado")
	})

	t.Run("paid tiers are not watermarked", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, newFakeStorage(), &fakeGenerator{}, nil)
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierPro}

		_, original, err := svc.Create(context.Background(), user, validInput())
		require.NoError(t, err)
		require.Equal(t, "contenido generado", original.Content)
	})

	t.Run("denies at exactly the plan limit", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierFree}
		storage.counters[user.ID] = conversion.UsageCounter{
			ConversionsUsed:   2,
			BillingCycleStart: time.Now().Add(-24 * time.Hour),
		}
		gen := &fakeGenerator{}
		svc := newService(t, storage, gen, nil)

		_, _, err := svc.Create(context.Background(), user, validInput())
		require.ErrorIs(t, err, conversion.ErrQuotaExceeded)
		require.Zero(t, gen.calls, "quota denial must not call the generator")
	})

	t.Run("stale billing cycle reads as zero usage", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierFree}
		storage.counters[user.ID] = conversion.UsageCounter{
			ConversionsUsed:   2,
			BillingCycleStart: time.Now().AddDate(0, -2, 0),
		}
		svc := newService(t, storage, &fakeGenerator{}, nil)

		_, _, err := svc.Create(context.Background(), user, validInput())
		require.NoError(t, err)
		counter := storage.counters[user.ID]
		require.Equal(t, 1, counter.ConversionsUsed, "rolled-over cycle restarts the counter")
	})

	t.Run("rejects invalid input before consuming quota", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc := newService(t, storage, &fakeGenerator{}, nil)
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierPro}

		in := validInput()
		in.Source = "podcast"
		_, _, err := svc.Create(context.Background(), user, in)
		require.ErrorIs(t, err, conversion.ErrInvalidInput)

		in = validInput()
		in.SourceRef = ""
		_, _, err = svc.Create(context.Background(), user, in)
		require.ErrorIs(t, err, conversion.ErrInvalidInput)

		require.Zero(t, storage.counters[user.ID].ConversionsUsed)
	})

	t.Run("notifies once the last conversion is consumed", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		notifier := &fakeNotifier{}
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc := conversion.NewService(storage, &fakeGenerator{}, usagecache.New(nil, log), nil, log,
			conversion.WithQuotaNotifier(notifier))
		user := auth.User{ID: uuid.New(), Email: "ana@example.com", Plan: entitlements.TierFree}

		_, _, err := svc.Create(context.Background(), user, validInput())
		require.NoError(t, err)
		require.Zero(t, notifier.count(), "first of two conversions must not notify")

		_, _, err = svc.Create(context.Background(), user, validInput())
		require.NoError(t, err)
		require.Eventually(t, func() bool { return notifier.count() == 1 },
			time.Second, 10*time.Millisecond)
	})

	t.Run("generator failure leaves usage untouched", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc := newService(t, storage, &fakeGenerator{err: errors.New("upstream timeout")}, nil)
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierStarter}

		_, _, err := svc.Create(context.Background(), user, validInput())
		require.ErrorIs(t, err, conversion.ErrGenerationFailed)
		require.Zero(t, storage.counters[user.ID].ConversionsUsed)
		require.Empty(t, storage.convs)
	})
}

func TestServiceRegenerate(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, storage *fakeStorage, user auth.User) conversion.Conversion {
		t.Helper()
		svc := newService(t, storage, &fakeGenerator{}, nil)
		conv, _, err := svc.Create(context.Background(), user, validInput())
		require.NoError(t, err)
		return conv
	}

	t.Run("appends the next version", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierStarter}
		conv := seed(t, storage, user)
		svc := newService(t, storage, &fakeGenerator{}, nil)

		version, err := svc.Regenerate(context.Background(), user, conv.ID, entitlements.FormatXThread)
		require.NoError(t, err)
		require.Equal(t, 2, version.Version)
		require.Equal(t, "contenido regenerado", version.Content)
	})

	t.Run("free tier stops after one regeneration", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierFree}
		conv := seed(t, storage, user)
		svc := newService(t, storage, &fakeGenerator{}, nil)

		_, err := svc.Regenerate(context.Background(), user, conv.ID, entitlements.FormatXThread)
		require.NoError(t, err)

		_, err = svc.Regenerate(context.Background(), user, conv.ID, entitlements.FormatXThread)
		require.ErrorIs(t, err, conversion.ErrRegenerateLimit)
	})

	t.Run("each format has its own version chain", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierFree}
		conv := seed(t, storage, user)
		svc := newService(t, storage, &fakeGenerator{}, nil)

		version, err := svc.Regenerate(context.Background(), user, conv.ID, entitlements.FormatLinkedInPost)
		require.NoError(t, err)
		require.Equal(t, 1, version.Version, "a format without an original starts its own chain")
	})

	t.Run("rejects conversions owned by another user", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		owner := auth.User{ID: uuid.New(), Plan: entitlements.TierPro}
		conv := seed(t, storage, owner)
		svc := newService(t, storage, &fakeGenerator{}, nil)

		other := auth.User{ID: uuid.New(), Plan: entitlements.TierPro}
		_, err := svc.Regenerate(context.Background(), other, conv.ID, entitlements.FormatXThread)
		require.ErrorIs(t, err, conversion.ErrConversionNotFound)
	})
}

func TestServiceGetUsage(t *testing.T) {
	t.Parallel()

	t.Run("reports plan limits with remaining", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierStarter}
		storage.counters[user.ID] = conversion.UsageCounter{
			ConversionsUsed:   3,
			BillingCycleStart: time.Now().Add(-24 * time.Hour),
		}
		svc := newService(t, storage, &fakeGenerator{}, nil)

		usage, err := svc.GetUsage(context.Background(), user)
		require.NoError(t, err)
		require.Equal(t, 3, usage.ConversionsUsed)
		require.Equal(t, 10, usage.ConversionsLimit)
		require.Equal(t, 7, usage.Remaining)
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierFree}
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		store := usagecache.NewMemoryStore()
		cache := usagecache.New(store, log)
		svc := newService(t, storage, &fakeGenerator{}, cache)

		_, err := svc.GetUsage(context.Background(), user)
		require.NoError(t, err)
		waitForCacheFill(t, store, usagecache.UsageKey(user.ID.String()))

		calls := storage.usageCallCount()
		_, err = svc.GetUsage(context.Background(), user)
		require.NoError(t, err)
		require.Equal(t, calls, storage.usageCallCount(), "cached read must not touch storage")
	})

	t.Run("create invalidates the cached snapshot", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierFree}
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		store := usagecache.NewMemoryStore()
		cache := usagecache.New(store, log)
		svc := newService(t, storage, &fakeGenerator{}, cache)

		usage, err := svc.GetUsage(context.Background(), user)
		require.NoError(t, err)
		require.Zero(t, usage.ConversionsUsed)
		waitForCacheFill(t, store, usagecache.UsageKey(user.ID.String()))

		_, _, err = svc.Create(context.Background(), user, validInput())
		require.NoError(t, err)

		usage, err = svc.GetUsage(context.Background(), user)
		require.NoError(t, err)
		require.Equal(t, 1, usage.ConversionsUsed)
	})
}

func TestServiceDeleteUserData(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	user := auth.User{ID: uuid.New(), Plan: entitlements.TierPro}
	svc := newService(t, storage, &fakeGenerator{}, nil)

	conv, _, err := svc.Create(context.Background(), user, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUserData(context.Background(), user.ID))

	_, err = svc.Regenerate(context.Background(), user, conv.ID, entitlements.FormatXThread)
	require.ErrorIs(t, err, conversion.ErrConversionNotFound)

	usage, err := svc.GetUsage(context.Background(), user)
	require.NoError(t, err)
	require.Zero(t, usage.ConversionsUsed)
}
