package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/glucose"
	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/meal"
	"github.com/yanqian/glucobot/internal/domain/profile"
	"github.com/yanqian/glucobot/internal/domain/reply"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
	"github.com/yanqian/glucobot/pkg/util"
)

const defaultTTL = 30 * time.Minute

const (
	phraseMealDetails   = "Do you want to add details for the recipe? Please provide any additional information about ingredients, cooking method, or portion size."
	phraseMealFailed    = "Sorry, there was an error processing your food entry. Please try again later."
	phraseProfileFailed = "Sorry, there was an error processing your information. Please try again later."
)

// Config tunes session lifetime.
type Config struct {
	TTL time.Duration
}

// Service runs the per-user dialogues. Callers hold Lock for the phone
// while invoking any other method.
type Service interface {
	Lock(ctx context.Context, phone string) (func(), error)
	Current(ctx context.Context, phone string) (Session, bool, error)
	// Continue feeds in to the open dialogue of sess.
	Continue(ctx context.Context, sess Session, in Input) ([]reply.Reply, error)

	StartOnboarding(ctx context.Context, phone string, existing *profile.Profile) ([]reply.Reply, error)
	HandleOnboardingInput(ctx context.Context, sess Session, in Input) ([]reply.Reply, error)
	StartReadingLog(ctx context.Context, phone string) ([]reply.Reply, error)
	SelectReadingCategory(ctx context.Context, phone string, in Input) ([]reply.Reply, error)
	HandleReadingValue(ctx context.Context, sess Session, in Input) ([]reply.Reply, error)
	StartMealDetails(ctx context.Context, phone, photoKey string) ([]reply.Reply, error)
	HandleMealDetails(ctx context.Context, sess Session, in Input) ([]reply.Reply, error)
}

type profileSaver interface {
	Save(ctx context.Context, p profile.Profile) (profile.Profile, error)
}

type readingLogger interface {
	LogReading(ctx context.Context, req glucose.LogRequest) (glucose.LogResult, error)
}

type mealAnalyzer interface {
	AnalyzePhoto(ctx context.Context, phone, photoKey, details string) (meal.Outcome, error)
}

type service struct {
	cfg      Config
	store    Store
	profiles profileSaver
	readings readingLogger
	meals    mealAnalyzer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the conversation state machine.
func NewService(cfg Config, store Store, profiles profile.Service, readings glucose.Service, meals meal.Service, logger *slog.Logger) Service {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	return &service{
		cfg:      cfg,
		store:    store,
		profiles: profiles,
		readings: readings,
		meals:    meals,
		logger:   logger.With("component", "conversation.service"),
		now:      util.NowUTC,
	}
}

func (s *service) Lock(ctx context.Context, phone string) (func(), error) {
	return s.store.Lock(ctx, phone)
}

func (s *service) Current(ctx context.Context, phone string) (Session, bool, error) {
	sess, found, err := s.store.Get(ctx, phone)
	if err != nil {
		return Session{}, false, apperrors.Wrap(apperrors.CodeStorage, "load session failed", err)
	}
	if !found || !sess.Open() {
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *service) Continue(ctx context.Context, sess Session, in Input) ([]reply.Reply, error) {
	switch sess.Mode {
	case ModeOnboarding:
		return s.HandleOnboardingInput(ctx, sess, in)
	case ModeAwaitingReadingCategory:
		return s.SelectReadingCategory(ctx, sess.Phone, in)
	case ModeAwaitingReadingValue:
		return s.HandleReadingValue(ctx, sess, in)
	case ModeAwaitingMealDetails:
		return s.HandleMealDetails(ctx, sess, in)
	case ModeNone, "":
		return nil, nil
	default:
		s.logger.Warn("dropping session with unknown mode", "phone", sess.Phone, "mode", sess.Mode)
		return nil, s.clear(ctx, sess.Phone)
	}
}

func (s *service) StartOnboarding(ctx context.Context, phone string, existing *profile.Profile) ([]reply.Reply, error) {
	draft := Draft{Language: i18n.English}
	if existing != nil {
		draft = DraftFrom(*existing)
	}
	sess := Session{Phone: phone, Mode: ModeOnboarding, Step: StepName, Draft: draft}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("onboarding started", "phone", phone)
	return []reply.Reply{namePrompt.In(draft.Language)}, nil
}

func (s *service) HandleOnboardingInput(ctx context.Context, sess Session, in Input) ([]reply.Reply, error) {
	def, ok := onboardingFlow[sess.Step]
	if !ok || !sess.Step.Valid() {
		s.logger.Warn("onboarding session has unknown step", "phone", sess.Phone, "step", sess.Step)
		return nil, s.clear(ctx, sess.Phone)
	}
	lang := sess.Draft.Language

	apply, err := def.validate(in)
	if err != nil {
		var rejected *inputError
		if !errors.As(err, &rejected) {
			return nil, err
		}
		replies := make([]reply.Reply, 0, 2)
		if !rejected.msg.IsZero() {
			replies = append(replies, reply.Text(rejected.msg).In(lang))
		} else {
			replies = append(replies, def.prompt.In(lang))
		}
		return replies, s.save(ctx, sess)
	}
	apply(&sess.Draft)

	if def.terminal {
		saved, err := s.profiles.Save(ctx, sess.Draft.Profile(sess.Phone))
		if err != nil {
			s.logger.Error("save onboarded profile failed", "phone", sess.Phone, "error", err)
			return []reply.Reply{
				reply.Text(i18n.Key(phraseProfileFailed)).In(lang),
				def.prompt.In(lang),
			}, s.save(ctx, sess)
		}
		if err := s.clear(ctx, sess.Phone); err != nil {
			return nil, err
		}
		s.logger.Info("onboarding completed", "phone", sess.Phone, "language", saved.Language)
		return []reply.Reply{reply.Text(onboardingComplete).In(saved.Language)}, nil
	}

	next := onboardingFlow[def.next]
	sess.Step = def.next
	sess.ExpectButton = next.buttons
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return []reply.Reply{next.prompt.In(lang)}, nil
}

func (s *service) StartReadingLog(ctx context.Context, phone string) ([]reply.Reply, error) {
	if err := s.save(ctx, Session{Phone: phone, Mode: ModeAwaitingReadingCategory}); err != nil {
		return nil, err
	}
	return []reply.Reply{readingTypePrompt}, nil
}

func (s *service) SelectReadingCategory(ctx context.Context, phone string, in Input) ([]reply.Reply, error) {
	category, ok := analytics.ParseCategory(in.Value())
	if !ok {
		return []reply.Reply{reply.Text(i18n.Key(phraseInvalidSelection))}, nil
	}
	sess := Session{Phone: phone, Mode: ModeAwaitingReadingValue, Category: category}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return []reply.Reply{reply.Text(i18n.Key(phraseEnterValue))}, nil
}

func (s *service) HandleReadingValue(ctx context.Context, sess Session, in Input) ([]reply.Reply, error) {
	input := in.Value()
	if input == "" {
		return []reply.Reply{reply.Text(i18n.Key(phraseNoValue))}, s.save(ctx, sess)
	}
	value, ok := parseReadingValue(input)
	if !ok {
		return []reply.Reply{reply.Text(notANumber(input))}, s.save(ctx, sess)
	}

	// Every outcome past this point ends the dialogue.
	if err := s.clear(ctx, sess.Phone); err != nil {
		return nil, err
	}
	if value < analytics.MinReadingValue || value > analytics.MaxReadingValue {
		return []reply.Reply{reply.Text(outOfRange(value))}, nil
	}

	result, err := s.readings.LogReading(ctx, glucose.LogRequest{
		Phone:    sess.Phone,
		Value:    value,
		Category: sess.Category,
	})
	if err != nil {
		s.logger.Error("log reading failed", "phone", sess.Phone, "error", err)
		return readingFailure(err), nil
	}

	parts := []i18n.Message{loggedSuccessfully(value)}
	if result.Provisioned {
		parts = append(parts, i18n.Key(phraseSetupDone))
	}
	parts = append(parts, interpretation(sess.Category, value), i18n.Key(phraseTrendsHint))

	replies := make([]reply.Reply, 0, 2)
	if result.Provisioned {
		replies = append(replies, reply.Text(i18n.Key(phraseSettingUp)))
	}
	return append(replies, reply.Text(i18n.Join("\n\n", parts...))), nil
}

func readingFailure(err error) []reply.Reply {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeSchemaMissing:
		return []reply.Reply{
			reply.Text(i18n.Key(phraseSettingUp)),
			reply.Text(i18n.Key(phraseSetupFailed)),
		}
	case apperrors.CodeInvalidInput:
		msg := apperrors.MessageOf(err)
		detail := i18n.Raw("⚠️ " + msg)
		if strings.Contains(msg, "too low") {
			detail = i18n.Raw("⚠️ " + msg + " Please check your reading and try again.")
		}
		return []reply.Reply{reply.Text(i18n.Join("\n\n", detail, i18n.Key(phraseTryAgain)))}
	default:
		return []reply.Reply{reply.Text(i18n.Join("\n\n", i18n.Key(phraseLogFailed), i18n.Key(phraseTryAgain)))}
	}
}

func (s *service) StartMealDetails(ctx context.Context, phone, photoKey string) ([]reply.Reply, error) {
	if err := s.save(ctx, Session{Phone: phone, Mode: ModeAwaitingMealDetails, PhotoKey: photoKey}); err != nil {
		return nil, err
	}
	return []reply.Reply{reply.Text(i18n.Key(phraseMealDetails))}, nil
}

func (s *service) HandleMealDetails(ctx context.Context, sess Session, in Input) ([]reply.Reply, error) {
	if err := s.clear(ctx, sess.Phone); err != nil {
		return nil, err
	}
	outcome, err := s.meals.AnalyzePhoto(ctx, sess.Phone, sess.PhotoKey, in.Value())
	if err != nil {
		s.logger.Error("meal analysis failed", "phone", sess.Phone, "photoKey", sess.PhotoKey, "error", err)
		return []reply.Reply{reply.Text(i18n.Key(phraseMealFailed))}, nil
	}
	return []reply.Reply{reply.Text(meal.FormatResult(outcome.Analysis, outcome.Record.Onboarded, outcome.Record.Today))}, nil
}

func (s *service) save(ctx context.Context, sess Session) error {
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess, s.cfg.TTL); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "save session failed", err)
	}
	return nil
}

func (s *service) clear(ctx context.Context, phone string) error {
	if err := s.store.Delete(ctx, phone); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "delete session failed", err)
	}
	return nil
}
