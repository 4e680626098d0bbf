package profile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/glucobot/internal/domain/i18n"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
	"github.com/yanqian/glucobot/pkg/util"
)

// Service manages user profiles.
type Service interface {
	Get(ctx context.Context, phone string) (Profile, bool, error)
	// Ensure returns the stored profile, creating it from seed when missing.
	Ensure(ctx context.Context, seed Profile) (Profile, bool, error)
	Save(ctx context.Context, p Profile) (Profile, error)
	SetLanguage(ctx context.Context, phone string, lang i18n.Lang) error
	Touch(ctx context.Context, phone string) error
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the profile domain.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("component", "profile.service"),
		now:    util.NowUTC,
	}
}

func (s *service) Get(ctx context.Context, phone string) (Profile, bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return Profile{}, false, apperrors.Wrap(apperrors.CodeInvalidInput, "phone cannot be empty", nil)
	}
	p, found, err := s.repo.Get(ctx, phone)
	if err != nil {
		return Profile{}, false, apperrors.Wrap(apperrors.CodeStorage, "load profile failed", err)
	}
	return p, found, nil
}

func (s *service) Ensure(ctx context.Context, seed Profile) (Profile, bool, error) {
	seed.Phone = strings.TrimSpace(seed.Phone)
	if seed.Phone == "" {
		return Profile{}, false, apperrors.Wrap(apperrors.CodeInvalidInput, "phone cannot be empty", nil)
	}
	now := s.now()
	seed.Language = i18n.Normalize(seed.Language)
	seed.CreatedAt = now
	seed.LastActive = now
	p, created, err := s.repo.Create(ctx, seed)
	if err != nil {
		return Profile{}, false, apperrors.Wrap(apperrors.CodeStorage, "create profile failed", err)
	}
	if created {
		s.logger.Info("profile created", "phone", seed.Phone)
	}
	return p, created, nil
}

func (s *service) Save(ctx context.Context, p Profile) (Profile, error) {
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Phone == "" {
		return Profile{}, apperrors.Wrap(apperrors.CodeInvalidInput, "phone cannot be empty", nil)
	}
	if p.DailyLimit < 0 {
		return Profile{}, apperrors.Wrap(apperrors.CodeInvalidInput, "daily calorie limit cannot be negative", nil)
	}
	p.Language = i18n.Normalize(p.Language)
	p.LastActive = s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.LastActive
	}
	saved, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return Profile{}, apperrors.Wrap(apperrors.CodeStorage, "save profile failed", err)
	}
	s.logger.Info("profile saved", "phone", p.Phone, "onboarded", p.Onboarded)
	return saved, nil
}

func (s *service) SetLanguage(ctx context.Context, phone string, lang i18n.Lang) error {
	if _, _, err := s.Ensure(ctx, Profile{Phone: phone, Language: lang}); err != nil {
		return err
	}
	if err := s.repo.UpdateLanguage(ctx, strings.TrimSpace(phone), i18n.Normalize(lang)); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "update language failed", err)
	}
	return nil
}

func (s *service) Touch(ctx context.Context, phone string) error {
	if err := s.repo.Touch(ctx, strings.TrimSpace(phone), s.now()); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "touch profile failed", err)
	}
	return nil
}
