package photostore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	stored, err := store.Put(ctx, "meals/1/a.jpg", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, int64(10), stored.Size)
	require.NotEmpty(t, stored.ETag)

	rc, err := store.Get(ctx, "meals/1/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "meals/1/a.jpg"))
	_, err = store.Get(ctx, "meals/1/a.jpg")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestSanitizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"https://acct.r2.cloudflarestorage.com/bucket": "acct.r2.cloudflarestorage.com",
		"http://localhost:9000":                        "localhost:9000",
		" s3.amazonaws.com ":                           "s3.amazonaws.com",
		"":                                             "",
	}
	for in, want := range cases {
		require.Equal(t, want, sanitizeEndpoint(in), in)
	}
}

type stubBuckets struct {
	existsErr error
	makeErr   error
	calls     int
}

func (s *stubBuckets) BucketExists(context.Context, string) (bool, error) {
	s.calls++
	return false, s.existsErr
}

func (s *stubBuckets) MakeBucket(context.Context, string, minio.MakeBucketOptions) error {
	return s.makeErr
}

func TestEnsureBucketRetriesAfterFailure(t *testing.T) {
	buckets := &stubBuckets{existsErr: errors.New("dial tcp: timeout"), makeErr: errors.New("dial tcp: timeout")}
	store := &R2Storage{buckets: buckets, bucket: "meals", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	ctx := context.Background()

	require.Error(t, store.ensureBucket(ctx))

	buckets.existsErr, buckets.makeErr = nil, nil
	require.NoError(t, store.ensureBucket(ctx))
	require.Equal(t, 2, buckets.calls)

	require.NoError(t, store.ensureBucket(ctx))
	require.Equal(t, 2, buckets.calls)
}
