package meal

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

type promptCounter interface {
	Count(texts ...string) int
}

// tokenCounter estimates prompt tokens. The encoding is loaded lazily and a
// load failure disables counting instead of failing the analysis.
type tokenCounter struct {
	model  string
	logger *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

func newTokenCounter(model string, logger *slog.Logger) *tokenCounter {
	return &tokenCounter{model: model, logger: logger}
}

func (c *tokenCounter) Count(texts ...string) int {
	if c == nil {
		return 0
	}
	c.once.Do(c.load)
	if c.enc == nil {
		return 0
	}
	total := 0
	for _, text := range texts {
		total += len(c.enc.Encode(text, nil, nil))
	}
	return total
}

func (c *tokenCounter) load() {
	enc, err := tiktoken.EncodingForModel(c.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		c.logger.Warn("token encoding unavailable", "model", c.model, "error", err)
		return
	}
	c.enc = enc
}
