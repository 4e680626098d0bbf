package glucose

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/profile"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
	"github.com/yanqian/glucobot/pkg/util"
)

const defaultWindowDays = 7

// Service records readings and derives trends from them.
type Service interface {
	LogReading(ctx context.Context, req LogRequest) (LogResult, error)
	Readings(ctx context.Context, phone string, days int, category *analytics.Category) ([]analytics.Reading, error)
	Trends(ctx context.Context, phone string, days int) (analytics.TrendReport, error)
	Correlate(ctx context.Context, phone string, days int) ([]analytics.MealCorrelation, error)
	WindowDays() int
}

type profileEnsurer interface {
	Ensure(ctx context.Context, seed profile.Profile) (profile.Profile, bool, error)
}

type service struct {
	cfg         Config
	repo        Repository
	provisioner Provisioner
	meals       MealSource
	profiles    profileEnsurer
	logger      *slog.Logger
	now         func() time.Time
}

// NewService wires the reading domain.
func NewService(cfg Config, repo Repository, provisioner Provisioner, meals MealSource, profiles profile.Service, logger *slog.Logger) Service {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = defaultWindowDays
	}
	return &service{
		cfg:         cfg,
		repo:        repo,
		provisioner: provisioner,
		meals:       meals,
		profiles:    profiles,
		logger:      logger.With("component", "glucose.service"),
		now:         util.NowUTC,
	}
}

// ValidateValue enforces the accepted mg/dL range.
func ValidateValue(value float64) error {
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		return apperrors.Wrap(apperrors.CodeInvalidInput, "Blood sugar value must be a number", nil)
	case value < analytics.MinReadingValue:
		return apperrors.Wrap(apperrors.CodeInvalidInput, "Blood sugar value too low (below 10 mg/dL).", nil)
	case value > analytics.MaxReadingValue:
		return apperrors.Wrap(apperrors.CodeInvalidInput, "Blood sugar value too high (above 600 mg/dL). Please seek medical attention if this reading is correct.", nil)
	}
	return nil
}

func (s *service) WindowDays() int {
	return s.cfg.WindowDays
}

func (s *service) LogReading(ctx context.Context, req LogRequest) (LogResult, error) {
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return LogResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "phone cannot be empty", nil)
	}
	if err := ValidateValue(req.Value); err != nil {
		return LogResult{}, err
	}
	if !req.Category.Valid() {
		return LogResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("invalid blood sugar type %q", req.Category), nil)
	}
	result := LogResult{}
	owner := profile.Profile{Phone: phone, TrackReadings: true}
	_, _, err := s.profiles.Ensure(ctx, owner)
	if apperrors.IsCode(err, apperrors.CodeSchemaMissing) {
		s.logger.Warn("users schema outdated, provisioning", "phone", phone, "error", err)
		if perr := s.provisioner.Provision(ctx); perr != nil {
			return LogResult{}, apperrors.Wrap(apperrors.CodeSchemaMissing, "provision readings schema failed", perr)
		}
		result.Provisioned = true
		_, _, err = s.profiles.Ensure(ctx, owner)
	}
	if err != nil {
		return LogResult{}, err
	}

	reading := analytics.Reading{
		OwnerPhone:    phone,
		Value:         req.Value,
		Category:      req.Category,
		CapturedAt:    s.now(),
		Note:          strings.TrimSpace(req.Note),
		RelatedMealID: req.RelatedMealID,
	}

	stored, err := s.repo.Insert(ctx, reading)
	if !result.Provisioned && apperrors.IsCode(err, apperrors.CodeSchemaMissing) {
		s.logger.Warn("readings table missing, provisioning", "phone", phone)
		if perr := s.provisioner.Provision(ctx); perr != nil {
			return LogResult{}, apperrors.Wrap(apperrors.CodeSchemaMissing, "provision readings table failed", perr)
		}
		result.Provisioned = true
		stored, err = s.repo.Insert(ctx, reading)
	}
	if err != nil {
		if code := apperrors.CodeOf(err); code != "" {
			return result, err
		}
		return result, apperrors.Wrap(apperrors.CodeStorage, "store reading failed", err)
	}

	result.Reading = stored
	if latest, found, ferr := s.repo.Latest(ctx, phone); ferr != nil {
		s.logger.Warn("re-fetch of stored reading failed", "phone", phone, "error", ferr)
	} else if found {
		result.Reading = latest
	}
	s.logger.Info("reading logged", "phone", phone, "category", req.Category, "provisioned", result.Provisioned)
	return result, nil
}

func (s *service) Readings(ctx context.Context, phone string, days int, category *analytics.Category) ([]analytics.Reading, error) {
	to := s.now()
	from := to.Add(-time.Duration(s.days(days)) * 24 * time.Hour)
	readings, err := s.repo.ListBetween(ctx, strings.TrimSpace(phone), from, to, category)
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeStorage, "list readings failed", err)
	}
	return readings, nil
}

func (s *service) Trends(ctx context.Context, phone string, days int) (analytics.TrendReport, error) {
	readings, err := s.Readings(ctx, phone, days, nil)
	if err != nil {
		return analytics.TrendReport{}, err
	}
	return analytics.Trends(readings), nil
}

func (s *service) Correlate(ctx context.Context, phone string, days int) ([]analytics.MealCorrelation, error) {
	since := s.now().Add(-time.Duration(s.days(days)) * 24 * time.Hour)
	meals, err := s.meals.MealsSince(ctx, strings.TrimSpace(phone), since)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "list meals failed", err)
	}
	readings, err := s.Readings(ctx, phone, days, nil)
	if err != nil {
		return nil, err
	}
	return analytics.CorrelateWithMeals(readings, meals), nil
}

func (s *service) days(days int) int {
	if days <= 0 {
		return s.cfg.WindowDays
	}
	return days
}
