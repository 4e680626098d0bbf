package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/glucobot/internal/domain/i18n"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

func TestServiceEnsureCreatesWithDefaults(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := &stubRepository{
		createFn: func(_ context.Context, seed Profile) (Profile, bool, error) {
			return seed, true, nil
		},
	}
	svc := newTestService(repo, now)

	p, created, err := svc.Ensure(context.Background(), Profile{Phone: " 919800000001 ", TrackReadings: true})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "919800000001", p.Phone)
	require.Equal(t, i18n.English, p.Language)
	require.True(t, p.TrackReadings)
	require.False(t, p.Onboarded)
	require.Equal(t, now, p.CreatedAt)
}

func TestServiceEnsureRejectsEmptyPhone(t *testing.T) {
	svc := newTestService(&stubRepository{}, time.Now())
	_, _, err := svc.Ensure(context.Background(), Profile{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServiceSaveStampsActivity(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var saved Profile
	repo := &stubRepository{
		upsertFn: func(_ context.Context, p Profile) (Profile, error) {
			saved = p
			return p, nil
		},
	}
	svc := newTestService(repo, now)

	_, err := svc.Save(context.Background(), Profile{Phone: "1", Name: "Asha", Language: "fr", Onboarded: true})
	require.NoError(t, err)
	require.Equal(t, now, saved.LastActive)
	require.Equal(t, now, saved.CreatedAt)
	require.Equal(t, i18n.English, saved.Language)
}

func TestServiceSaveWrapsStorageErrors(t *testing.T) {
	repo := &stubRepository{
		upsertFn: func(context.Context, Profile) (Profile, error) {
			return Profile{}, errors.New("connection reset")
		},
	}
	_, err := newTestService(repo, time.Now()).Save(context.Background(), Profile{Phone: "1"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))
}

func TestServiceSetLanguageEnsuresRow(t *testing.T) {
	var createdFor, updatedLang string
	repo := &stubRepository{
		createFn: func(_ context.Context, seed Profile) (Profile, bool, error) {
			createdFor = seed.Phone
			return seed, false, nil
		},
		updateLanguageFn: func(_ context.Context, phone string, lang i18n.Lang) error {
			updatedLang = string(lang)
			return nil
		},
	}
	require.NoError(t, newTestService(repo, time.Now()).SetLanguage(context.Background(), "42", i18n.Hindi))
	require.Equal(t, "42", createdFor)
	require.Equal(t, "hi", updatedLang)
}

func newTestService(repo Repository, now time.Time) *service {
	return &service{
		repo:   repo,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    func() time.Time { return now },
	}
}

type stubRepository struct {
	getFn            func(ctx context.Context, phone string) (Profile, bool, error)
	createFn         func(ctx context.Context, seed Profile) (Profile, bool, error)
	upsertFn         func(ctx context.Context, p Profile) (Profile, error)
	updateLanguageFn func(ctx context.Context, phone string, lang i18n.Lang) error
}

func (s *stubRepository) Get(ctx context.Context, phone string) (Profile, bool, error) {
	if s.getFn != nil {
		return s.getFn(ctx, phone)
	}
	return Profile{}, false, nil
}

func (s *stubRepository) Create(ctx context.Context, seed Profile) (Profile, bool, error) {
	if s.createFn != nil {
		return s.createFn(ctx, seed)
	}
	return seed, true, nil
}

func (s *stubRepository) Upsert(ctx context.Context, p Profile) (Profile, error) {
	if s.upsertFn != nil {
		return s.upsertFn(ctx, p)
	}
	return p, nil
}

func (s *stubRepository) UpdateLanguage(ctx context.Context, phone string, lang i18n.Lang) error {
	if s.updateLanguageFn != nil {
		return s.updateLanguageFn(ctx, phone, lang)
	}
	return nil
}

func (s *stubRepository) Touch(context.Context, string, time.Time) error {
	return nil
}
