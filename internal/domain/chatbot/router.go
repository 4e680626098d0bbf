// Package chatbot routes inbound chat events to the dialogue and
// reporting services and sends the replies back.
package chatbot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/conversation"
	"github.com/yanqian/glucobot/internal/domain/glucose"
	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/meal"
	"github.com/yanqian/glucobot/internal/domain/profile"
	"github.com/yanqian/glucobot/internal/domain/reply"
	"github.com/yanqian/glucobot/internal/domain/summary"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

// Router handles one inbound event end to end.
type Router interface {
	Dispatch(ctx context.Context, ev Event) error
}

type dialogues interface {
	Lock(ctx context.Context, phone string) (func(), error)
	Current(ctx context.Context, phone string) (conversation.Session, bool, error)
	Continue(ctx context.Context, sess conversation.Session, in conversation.Input) ([]reply.Reply, error)
	StartOnboarding(ctx context.Context, phone string, existing *profile.Profile) ([]reply.Reply, error)
	StartReadingLog(ctx context.Context, phone string) ([]reply.Reply, error)
	SelectReadingCategory(ctx context.Context, phone string, in conversation.Input) ([]reply.Reply, error)
	StartMealDetails(ctx context.Context, phone, photoKey string) ([]reply.Reply, error)
}

type profileReader interface {
	Get(ctx context.Context, phone string) (profile.Profile, bool, error)
	SetLanguage(ctx context.Context, phone string, lang i18n.Lang) error
}

type trendReporter interface {
	Trends(ctx context.Context, phone string, days int) (analytics.TrendReport, error)
	WindowDays() int
}

type summarizer interface {
	Summary(ctx context.Context, phone string, kind summary.Kind) (string, error)
}

type photoStore interface {
	StorePhoto(ctx context.Context, phone string, data []byte, mimeType string) (meal.StoredPhoto, error)
}

type router struct {
	dialogues dialogues
	profiles  profileReader
	readings  trendReporter
	summaries summarizer
	photos    photoStore
	messenger Messenger
	logger    *slog.Logger
}

// NewRouter wires the dispatch router.
func NewRouter(
	conversations conversation.Service,
	profiles profile.Service,
	readings glucose.Service,
	summaries summary.Service,
	meals meal.Service,
	messenger Messenger,
	logger *slog.Logger,
) Router {
	return &router{
		dialogues: conversations,
		profiles:  profiles,
		readings:  readings,
		summaries: summaries,
		photos:    meals,
		messenger: messenger,
		logger:    logger.With("component", "chatbot.router"),
	}
}

// user is what the router knows about the sender of an event.
type user struct {
	phone     string
	profile   profile.Profile
	found     bool
	onboarded bool
}

func (r *router) Dispatch(ctx context.Context, ev Event) error {
	phone := strings.TrimSpace(ev.From)
	if phone == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "event has no sender", nil)
	}
	unlock, err := r.dialogues.Lock(ctx, phone)
	if err != nil {
		return err
	}
	defer unlock()

	u := user{phone: phone}
	p, found, err := r.profiles.Get(ctx, phone)
	if err != nil {
		r.logger.Warn("load profile failed, using defaults", "phone", phone, "error", err)
	} else if found {
		u.profile, u.found, u.onboarded = p, true, p.Onboarded
	}
	dst := Destination{
		PhoneNumberID: ev.PhoneNumberID,
		To:            phone,
		ReplyTo:       ev.MessageID,
		Lang:          u.profile.Lang(),
	}

	// Route failures end in an apology; only an undeliverable reply is returned.
	replies, routeErr := r.route(ctx, ev, u)
	if routeErr != nil {
		r.logger.Error("dispatch failed", "phone", phone, "kind", ev.Kind, "error", routeErr)
		if len(replies) == 0 {
			replies = []reply.Reply{apology(phraseGeneric)}
		}
	}
	var sendErr error
	for _, out := range replies {
		if err := r.send(ctx, dst, out); err != nil && sendErr == nil {
			sendErr = err
		}
	}
	if ev.MessageID != "" && ev.Kind != EventUnsupported {
		if err := r.messenger.MarkRead(ctx, ev.PhoneNumberID, ev.MessageID); err != nil {
			r.logger.Warn("mark read failed", "phone", phone, "messageId", ev.MessageID, "error", err)
		}
	}
	return sendErr
}

func (r *router) send(ctx context.Context, dst Destination, out reply.Reply) error {
	dst.Lang = out.LangOr(dst.Lang)
	if err := r.messenger.Send(ctx, dst, out); err != nil {
		r.logger.Error("send reply failed", "phone", dst.To, "error", err)
		return err
	}
	return nil
}

func (r *router) route(ctx context.Context, ev Event, u user) ([]reply.Reply, error) {
	switch ev.Kind {
	case EventImage:
		return r.handleImage(ctx, ev, u)
	case EventUnsupported:
		r.logger.Debug("ignoring unsupported message", "phone", u.phone)
		return nil, nil
	}

	in := ev.input()
	if in.Kind == conversation.InputText && restartPhrases[normalizeCommand(in.Text)] {
		return r.startOnboarding(ctx, u)
	}

	sess, open, err := r.dialogues.Current(ctx, u.phone)
	if err != nil {
		return nil, err
	}
	if open && sess.Accepts(in) {
		return r.dialogues.Continue(ctx, sess, in)
	}

	if in.Kind == conversation.InputSelection {
		return r.handleCommand(ctx, u, in.Value())
	}
	if cmd, ok := keywords[normalizeCommand(in.Text)]; ok {
		return r.handleCommand(ctx, u, cmd)
	}
	if !u.onboarded {
		return []reply.Reply{welcomeMenu}, nil
	}
	return []reply.Reply{echo(in.Text)}, nil
}

func (r *router) handleCommand(ctx context.Context, u user, id string) ([]reply.Reply, error) {
	switch id {
	case cmdStartOnboarding:
		return r.startOnboarding(ctx, u)
	case cmdHelp:
		return []reply.Reply{helpMenu}, nil
	case cmdSummary:
		return []reply.Reply{summaryMenu}, nil
	case cmdLanguage:
		return []reply.Reply{languageMenu}, nil
	case cmdSendFood:
		return []reply.Reply{reply.Text(i18n.Key(phraseSendFood))}, nil
	case cmdLogBloodSugar:
		return r.dialogues.StartReadingLog(ctx, u.phone)
	case cmdBloodSugarTrends:
		return r.trends(ctx, u)
	case cmdLangEnglish, cmdLangHindi:
		return r.changeLanguage(ctx, u, i18n.ParseLang(id))
	}
	if kind, ok := summary.ParseKind(id); ok {
		return r.summary(ctx, u, kind)
	}
	if category, ok := analytics.ParseCategory(id); ok {
		return r.dialogues.SelectReadingCategory(ctx, u.phone, conversation.SelectionInput(string(category)))
	}
	r.logger.Debug("ignoring unknown selection", "phone", u.phone, "id", id)
	return nil, nil
}

func (r *router) startOnboarding(ctx context.Context, u user) ([]reply.Reply, error) {
	var existing *profile.Profile
	if u.found {
		p := u.profile
		existing = &p
	}
	out, err := r.dialogues.StartOnboarding(ctx, u.phone, existing)
	if err != nil {
		return []reply.Reply{apology(phraseOnboardFailed)}, err
	}
	return out, nil
}

func (r *router) trends(ctx context.Context, u user) ([]reply.Reply, error) {
	days := r.readings.WindowDays()
	report, err := r.readings.Trends(ctx, u.phone, days)
	if err != nil {
		return []reply.Reply{apology(phraseTrendsFailed)}, err
	}
	return []reply.Reply{reply.Text(analytics.FormatTrends(report, days))}, nil
}

func (r *router) summary(ctx context.Context, u user, kind summary.Kind) ([]reply.Reply, error) {
	text, err := r.summaries.Summary(ctx, u.phone, kind)
	if err != nil {
		return []reply.Reply{apology(phraseSummaryFailed)}, err
	}
	return []reply.Reply{reply.Text(i18n.Key(text))}, nil
}

func (r *router) changeLanguage(ctx context.Context, u user, lang i18n.Lang) ([]reply.Reply, error) {
	if err := r.profiles.SetLanguage(ctx, u.phone, lang); err != nil {
		return []reply.Reply{apology(phraseLanguageFailed)}, err
	}
	r.logger.Info("language updated", "phone", u.phone, "language", lang)
	return []reply.Reply{reply.Text(languageUpdated[lang]).In(lang)}, nil
}

func (r *router) handleImage(ctx context.Context, ev Event, u user) ([]reply.Reply, error) {
	data, mimeType, err := r.messenger.DownloadMedia(ctx, ev.MediaID)
	if err != nil {
		return []reply.Reply{apology(phraseImageFailed)}, err
	}
	if mimeType == "" {
		mimeType = ev.MimeType
	}
	photo, err := r.photos.StorePhoto(ctx, u.phone, data, mimeType)
	if err != nil {
		return []reply.Reply{apology(phraseImageFailed)}, err
	}
	r.logger.Info("meal photo stored", "phone", u.phone, "key", photo.Key, "size", photo.Size)
	return r.dialogues.StartMealDetails(ctx, u.phone, photo.Key)
}
