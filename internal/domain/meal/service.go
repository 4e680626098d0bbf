package meal

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/profile"
	"github.com/yanqian/glucobot/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
	"github.com/yanqian/glucobot/pkg/metrics"
	"github.com/yanqian/glucobot/pkg/util"
)

const (
	defaultModel    = "gpt-4o-mini"
	defaultMimeType = "image/jpeg"
	maxPhotoBytes   = 16 << 20
)

// Service analyses meal photos and records the results.
type Service interface {
	StorePhoto(ctx context.Context, phone string, data []byte, mimeType string) (StoredPhoto, error)
	Analyze(ctx context.Context, req AnalysisRequest) (Analysis, error)
	Record(ctx context.Context, phone, photoKey, details string, analysis Analysis) (RecordResult, error)
	// AnalyzePhoto loads a stored photo, analyses it with the user's
	// details and profile, and records the outcome.
	AnalyzePhoto(ctx context.Context, phone, photoKey, details string) (Outcome, error)
}

type profileStore interface {
	Get(ctx context.Context, phone string) (profile.Profile, bool, error)
	Ensure(ctx context.Context, seed profile.Profile) (profile.Profile, bool, error)
	Touch(ctx context.Context, phone string) error
}

type service struct {
	cfg      Config
	client   ChatClient
	repo     Repository
	photos   PhotoStorage
	profiles profileStore
	tokens   promptCounter
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the meal analysis domain.
func NewService(cfg Config, client ChatClient, repo Repository, photos PhotoStorage, profiles profile.Service, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	logger = logger.With("component", "meal.service")
	return &service{
		cfg:      cfg,
		client:   client,
		repo:     repo,
		photos:   photos,
		profiles: profiles,
		tokens:   newTokenCounter(cfg.Model, logger),
		logger:   logger,
		now:      util.NowUTC,
		newID:    uuid.NewString,
	}
}

func (s *service) StorePhoto(ctx context.Context, phone string, data []byte, mimeType string) (StoredPhoto, error) {
	if len(data) == 0 {
		return StoredPhoto{}, apperrors.Wrap(apperrors.CodeInvalidInput, "photo is empty", nil)
	}
	if mimeType = strings.TrimSpace(mimeType); mimeType == "" {
		mimeType = defaultMimeType
	}
	key := fmt.Sprintf("meals/%s/%s%s", strings.TrimSpace(phone), s.newID(), extensionFor(mimeType))
	stored, err := s.photos.Put(ctx, key, data, mimeType)
	if err != nil {
		return StoredPhoto{}, apperrors.Wrap(apperrors.CodeStorage, "store meal photo failed", err)
	}
	s.logger.Info("meal photo stored", "phone", phone, "key", key, "bytes", len(data))
	return stored, nil
}

func (s *service) Analyze(ctx context.Context, req AnalysisRequest) (Analysis, error) {
	if len(req.Image) == 0 {
		return Analysis{}, apperrors.Wrap(apperrors.CodeInvalidInput, "image cannot be empty", nil)
	}
	lang := i18n.English
	if req.Profile != nil {
		lang = req.Profile.Lang()
	}
	mimeType := strings.TrimSpace(req.MimeType)
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	prompt := buildPrompt(lang, strings.TrimSpace(req.Description), req.Profile)
	estimated := s.estimatePrompt(systemPrompt, prompt)
	usage := metrics.TokenUsage{PromptTokens: estimated, TotalTokens: estimated, EstimatedPromptTokens: estimated}

	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(req.Image)
	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		Messages: []chatgpt.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Parts: []chatgpt.ContentPart{
				chatgpt.TextPart(prompt),
				chatgpt.ImagePart(dataURL),
			}},
		},
	})
	if err != nil {
		s.logger.Error("meal analysis request failed", "error", err)
		out := unavailableAnalysis(lang)
		out.Usage = usage
		return out, nil
	}
	if completion.Usage.TotalTokens > 0 {
		usage.PromptTokens = completion.Usage.PromptTokens
		usage.CompletionTokens = completion.Usage.CompletionTokens
		usage.TotalTokens = completion.Usage.TotalTokens
	} else {
		s.logger.Warn("meal analysis reported no usage, keeping estimate", "estimatedPromptTokens", estimated)
	}
	if len(completion.Choices) == 0 {
		s.logger.Warn("meal analysis returned no choices")
		out := malformedAnalysis(lang)
		out.Usage = usage
		return out, nil
	}

	content := completion.Choices[0].Message.Content
	analysis, err := parseAnalysis(content)
	if err != nil {
		s.logger.Warn("meal analysis response malformed", "error", err, "content", content)
		analysis = malformedAnalysis(lang)
	}
	analysis.Usage = usage
	s.logger.Info("meal analysed",
		"calories", analysis.Calories,
		"recommended", analysis.Recommended,
		"failed", analysis.Failed,
		"promptTokens", usage.PromptTokens,
		"estimatedPromptTokens", usage.EstimatedPromptTokens,
		"totalTokens", usage.TotalTokens,
	)
	return analysis, nil
}

// estimatePrompt counts the text prompt only; image tokens are not included.
func (s *service) estimatePrompt(texts ...string) int {
	if s.tokens == nil {
		return 0
	}
	return s.tokens.Count(texts...)
}

func (s *service) Record(ctx context.Context, phone, photoKey, details string, analysis Analysis) (RecordResult, error) {
	phone = strings.TrimSpace(phone)
	p, created, err := s.profiles.Ensure(ctx, profile.Profile{Phone: phone})
	if err != nil {
		return RecordResult{}, err
	}
	if !created {
		if err := s.profiles.Touch(ctx, phone); err != nil {
			s.logger.Warn("touch profile failed", "phone", phone, "error", err)
		}
	}

	now := s.now()
	entry, err := s.repo.InsertEntry(ctx, Entry{
		OwnerPhone:  phone,
		CapturedAt:  now,
		Calories:    analysis.Calories,
		Details:     strings.TrimSpace(details),
		Analysis:    analysis.Detail,
		Recommended: analysis.Recommended,
		Reason:      analysis.Reason,
		Advice:      analysis.Tips,
		PhotoKey:    photoKey,
	})
	if err != nil {
		return RecordResult{}, apperrors.Wrap(apperrors.CodeStorage, "store food entry failed", err)
	}
	rollup, err := s.repo.IncrementRollup(ctx, phone, util.StartOfDay(now), analysis.Calories, analysis.Recommended)
	if err != nil {
		return RecordResult{}, apperrors.Wrap(apperrors.CodeStorage, "update daily summary failed", err)
	}
	s.logger.Info("meal recorded", "phone", phone, "entryID", entry.ID, "mealCount", rollup.MealCount)
	return RecordResult{Entry: entry, Onboarded: p.Onboarded, Today: &rollup}, nil
}

func (s *service) AnalyzePhoto(ctx context.Context, phone, photoKey, details string) (Outcome, error) {
	image, err := s.loadPhoto(ctx, photoKey)
	if err != nil {
		return Outcome{}, err
	}
	p, found, err := s.profiles.Get(ctx, phone)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		p = profile.Profile{Phone: phone, Language: i18n.English}
	}

	analysis, err := s.Analyze(ctx, AnalysisRequest{
		Image:       image,
		MimeType:    mimeFor(photoKey),
		Description: details,
		Profile:     &p,
	})
	if err != nil {
		return Outcome{}, err
	}
	record, err := s.Record(ctx, phone, photoKey, details, analysis)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Analysis: analysis, Record: record, Profile: p}, nil
}

func (s *service) loadPhoto(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "no photo pending analysis", nil)
	}
	rc, err := s.photos.Get(ctx, key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "meal photo not found", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxPhotoBytes))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "read meal photo failed", err)
	}
	if len(data) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "meal photo is empty", nil)
	}
	return data, nil
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func mimeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return defaultMimeType
	}
}
