package userrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/profile"
)

func TestMemoryRepositoryCreateIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first, created, err := repo.Create(ctx, profile.Profile{Phone: "1", Name: "Asha"})
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := repo.Create(ctx, profile.Profile{Phone: "1", Name: "Other"})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first, again)
}

func TestMemoryRepositoryUpsertKeepsCreatedAt(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := repo.Create(ctx, profile.Profile{Phone: "1", CreatedAt: created})
	require.NoError(t, err)

	saved, err := repo.Upsert(ctx, profile.Profile{Phone: "1", Onboarded: true, CreatedAt: created.Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, created, saved.CreatedAt)

	require.NoError(t, repo.UpdateLanguage(ctx, "1", i18n.Hindi))
	got, found, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, i18n.Hindi, got.Language)
	require.True(t, got.Onboarded)
}
