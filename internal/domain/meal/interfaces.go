package meal

import (
	"context"
	"io"
	"time"

	"github.com/yanqian/glucobot/internal/domain/summary"
	"github.com/yanqian/glucobot/internal/infra/llm/chatgpt"
)

// ChatClient is the subset of the chat completion API used for analysis.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Repository persists food entries and their daily rollups.
type Repository interface {
	InsertEntry(ctx context.Context, entry Entry) (Entry, error)
	// IncrementRollup folds one meal into the (phone, date) rollup atomically.
	IncrementRollup(ctx context.Context, phone string, date time.Time, calories int, recommended bool) (summary.DailyRollup, error)
}

// PhotoStorage abstracts blob storage for meal photos.
type PhotoStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredPhoto, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
