package summary

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
	"github.com/yanqian/glucobot/pkg/util"
)

const (
	weeklyLimit = 7
	monthlyDays = 30
)

// Service assembles summary views from stored rollups and readings.
type Service interface {
	Daily(ctx context.Context, phone string) (DailyView, bool, error)
	Weekly(ctx context.Context, phone string) ([]DailyRollup, error)
	Monthly(ctx context.Context, phone string) ([]DailyRollup, error)
	// Summary loads the view for kind and renders it.
	Summary(ctx context.Context, phone string, kind Kind) (string, error)
}

type service struct {
	repo     Repository
	readings ReadingLister
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the summary aggregator.
func NewService(repo Repository, readings ReadingLister, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		readings: readings,
		logger:   logger.With("component", "summary.service"),
		now:      util.NowUTC,
	}
}

func (s *service) Daily(ctx context.Context, phone string) (DailyView, bool, error) {
	phone = strings.TrimSpace(phone)
	today := util.StartOfDay(s.now())

	var (
		rollup   DailyRollup
		found    bool
		readings []analytics.Reading
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rollup, found, err = s.repo.RollupFor(gctx, phone, today)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeStorage, "load daily rollup failed", err)
		}
		return nil
	})
	g.Go(func() error {
		list, err := s.readings.ListBetween(gctx, phone, today, today.Add(24*time.Hour-time.Nanosecond), nil)
		if err != nil {
			// Readings are optional in the daily view; the table may not exist yet.
			s.logger.Warn("load today's readings failed", "phone", phone, "error", err)
			return nil
		}
		readings = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return DailyView{}, false, err
	}
	if !found {
		return DailyView{}, false, nil
	}
	return DailyView{Rollup: rollup, Readings: readings}, true, nil
}

func (s *service) Weekly(ctx context.Context, phone string) ([]DailyRollup, error) {
	rollups, err := s.repo.RecentRollups(ctx, strings.TrimSpace(phone), weeklyLimit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "load weekly rollups failed", err)
	}
	return rollups, nil
}

func (s *service) Monthly(ctx context.Context, phone string) ([]DailyRollup, error) {
	since := util.StartOfDay(s.now()).AddDate(0, 0, -monthlyDays)
	rollups, err := s.repo.RollupsSince(ctx, strings.TrimSpace(phone), since)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "load monthly rollups failed", err)
	}
	return rollups, nil
}

func (s *service) Summary(ctx context.Context, phone string, kind Kind) (string, error) {
	var view View
	switch kind {
	case KindDaily:
		daily, found, err := s.Daily(ctx, phone)
		if err != nil {
			return "", err
		}
		if found {
			view.Daily = &daily
		}
	case KindWeekly:
		rollups, err := s.Weekly(ctx, phone)
		if err != nil {
			return "", err
		}
		view.Rollups = rollups
	case KindMonthly:
		rollups, err := s.Monthly(ctx, phone)
		if err != nil {
			return "", err
		}
		view.Rollups = rollups
	default:
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "unknown summary kind", nil)
	}
	return Format(kind, view), nil
}
