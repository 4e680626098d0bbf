package chatbot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/conversation"
	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/meal"
	"github.com/yanqian/glucobot/internal/domain/profile"
	"github.com/yanqian/glucobot/internal/domain/reply"
	"github.com/yanqian/glucobot/internal/domain/summary"
)

const phone = "919800000001"

func TestDispatchWelcomesUnknownUser(t *testing.T) {
	h := newHarness()
	err := h.router.Dispatch(context.Background(), textEvent("hello"))
	require.NoError(t, err)
	require.Len(t, h.messenger.sent, 1)
	require.Equal(t, reply.KindButtons, h.messenger.sent[0].reply.Kind)
	require.Equal(t, "Welcome!", i18n.Resolve(h.messenger.sent[0].reply.Header, i18n.English))
	require.Equal(t, []string{"wamid.1"}, h.messenger.read)
	require.Equal(t, 1, h.dialogues.unlocks)
}

func TestDispatchEchoesForOnboardedUser(t *testing.T) {
	h := newHarness()
	h.profiles.profile = &profile.Profile{Phone: phone, Onboarded: true, Language: i18n.Hindi}

	require.NoError(t, h.router.Dispatch(context.Background(), textEvent("namaste")))
	sent := h.messenger.sent[0]
	require.Equal(t, i18n.Hindi, sent.dst.Lang)
	require.Equal(t, "प्रतिध्वनि: namaste", i18n.Resolve(sent.reply.Body, sent.dst.Lang))
}

func TestDispatchRestartPhraseWinsOverOpenDialogue(t *testing.T) {
	h := newHarness()
	h.dialogues.session = &conversation.Session{Phone: phone, Mode: conversation.ModeAwaitingReadingValue}
	var started bool
	h.dialogues.startOnboardingFn = func(_ context.Context, _ string, existing *profile.Profile) ([]reply.Reply, error) {
		started = true
		require.Nil(t, existing)
		return []reply.Reply{reply.Text(i18n.Raw("name?"))}, nil
	}

	require.NoError(t, h.router.Dispatch(context.Background(), textEvent("  Update Profile ")))
	require.True(t, started)
	require.Zero(t, h.dialogues.continued)
}

func TestDispatchOpenDialogueConsumesText(t *testing.T) {
	h := newHarness()
	h.dialogues.session = &conversation.Session{Phone: phone, Mode: conversation.ModeAwaitingReadingValue}

	require.NoError(t, h.router.Dispatch(context.Background(), textEvent("help")))
	require.Equal(t, 1, h.dialogues.continued)
}

func TestDispatchSelectionOutsideDialogueIsACommand(t *testing.T) {
	h := newHarness()
	h.dialogues.session = &conversation.Session{Phone: phone, Mode: conversation.ModeAwaitingMealDetails}

	require.NoError(t, h.router.Dispatch(context.Background(), selectionEvent(EventList, "help")))
	require.Zero(t, h.dialogues.continued)
	require.Equal(t, reply.KindList, h.messenger.sent[0].reply.Kind)
	require.Len(t, h.messenger.sent[0].reply.Sections[0].Rows, 6)
}

func TestDispatchKeywords(t *testing.T) {
	cases := map[string]reply.Kind{
		"SUMMARY":         reply.KindList,
		"change language": reply.KindButtons,
		"help":            reply.KindList,
	}
	for text, kind := range cases {
		h := newHarness()
		require.NoError(t, h.router.Dispatch(context.Background(), textEvent(text)))
		require.Equal(t, kind, h.messenger.sent[0].reply.Kind, text)
	}
}

func TestDispatchLogBloodSugarStartsDialogue(t *testing.T) {
	h := newHarness()
	var started bool
	h.dialogues.startReadingLogFn = func(context.Context, string) ([]reply.Reply, error) {
		started = true
		return nil, nil
	}
	require.NoError(t, h.router.Dispatch(context.Background(), textEvent("blood sugar")))
	require.True(t, started)
}

func TestDispatchReadingCategorySelection(t *testing.T) {
	h := newHarness()
	var got conversation.Input
	h.dialogues.selectCategoryFn = func(_ context.Context, _ string, in conversation.Input) ([]reply.Reply, error) {
		got = in
		return nil, nil
	}
	require.NoError(t, h.router.Dispatch(context.Background(), selectionEvent(EventButton, "post_meal")))
	require.Equal(t, conversation.SelectionInput("post_meal"), got)
}

func TestDispatchTrends(t *testing.T) {
	h := newHarness()
	h.readings.trendsFn = func(_ context.Context, _ string, days int) (analytics.TrendReport, error) {
		require.Equal(t, 7, days)
		return analytics.TrendReport{Trend: analytics.TrendNoData}, nil
	}
	require.NoError(t, h.router.Dispatch(context.Background(), textEvent("trends")))
	require.Contains(t, i18n.Resolve(h.messenger.sent[0].reply.Body, i18n.English), "No blood sugar data available")
}

func TestDispatchTrendsFailureApologises(t *testing.T) {
	h := newHarness()
	h.readings.trendsFn = func(context.Context, string, int) (analytics.TrendReport, error) {
		return analytics.TrendReport{}, errors.New("db down")
	}
	err := h.router.Dispatch(context.Background(), selectionEvent(EventList, "blood_sugar_trends"))
	require.NoError(t, err)
	require.Equal(t, phraseTrendsFailed, i18n.Resolve(h.messenger.sent[0].reply.Body, i18n.English))
	require.Len(t, h.messenger.read, 1)
}

func TestDispatchSummarySelection(t *testing.T) {
	h := newHarness()
	h.summaries.summaryFn = func(_ context.Context, _ string, kind summary.Kind) (string, error) {
		require.Equal(t, summary.KindWeekly, kind)
		return "📊 Your weekly Summary", nil
	}
	require.NoError(t, h.router.Dispatch(context.Background(), selectionEvent(EventList, "weekly_summary")))
	require.Equal(t, "📊 Your weekly Summary", i18n.Resolve(h.messenger.sent[0].reply.Body, i18n.English))
}

func TestDispatchLanguageChangePinsNewLanguage(t *testing.T) {
	h := newHarness()
	h.profiles.profile = &profile.Profile{Phone: phone, Onboarded: true, Language: i18n.English}

	require.NoError(t, h.router.Dispatch(context.Background(), selectionEvent(EventButton, "lang_hi")))
	require.Equal(t, i18n.Hindi, h.profiles.language)
	sent := h.messenger.sent[0]
	require.Equal(t, i18n.Hindi, sent.dst.Lang)
	require.Equal(t, "आपकी भाषा प्राथमिकता हिंदी में अपडेट कर दी गई है।", i18n.Resolve(sent.reply.Body, sent.dst.Lang))
}

func TestDispatchImageStartsMealDetails(t *testing.T) {
	h := newHarness()
	h.dialogues.session = &conversation.Session{Phone: phone, Mode: conversation.ModeOnboarding, Step: conversation.StepName}
	h.messenger.media = []byte("jpeg")
	var photoKey string
	h.dialogues.startMealDetailsFn = func(_ context.Context, _ string, key string) ([]reply.Reply, error) {
		photoKey = key
		return []reply.Reply{reply.Text(i18n.Raw("details?"))}, nil
	}

	ev := Event{Kind: EventImage, From: phone, MessageID: "wamid.1", MediaID: "media-1", MimeType: "image/jpeg"}
	require.NoError(t, h.router.Dispatch(context.Background(), ev))
	require.Equal(t, "meals/"+phone+"/photo.jpg", photoKey)
	require.Equal(t, "image/jpeg", h.photos.mime)
	require.Zero(t, h.dialogues.continued)
}

func TestDispatchImageDownloadFailure(t *testing.T) {
	h := newHarness()
	h.messenger.mediaErr = errors.New("gone")

	err := h.router.Dispatch(context.Background(), Event{Kind: EventImage, From: phone, MediaID: "m"})
	require.NoError(t, err)
	require.Equal(t, phraseImageFailed, i18n.Resolve(h.messenger.sent[0].reply.Body, i18n.English))
}

func TestDispatchReturnsErrorWhenApologyUndelivered(t *testing.T) {
	h := newHarness()
	h.readings.trendsFn = func(context.Context, string, int) (analytics.TrendReport, error) {
		return analytics.TrendReport{}, errors.New("db down")
	}
	h.messenger.sendErr = errors.New("graph down")

	err := h.router.Dispatch(context.Background(), textEvent("trends"))
	require.ErrorIs(t, err, h.messenger.sendErr)
	require.Len(t, h.messenger.sent, 1)
}

func TestDispatchReturnsLockTimeout(t *testing.T) {
	h := newHarness()
	h.dialogues.lockErr = conversation.ErrLockTimeout

	err := h.router.Dispatch(context.Background(), textEvent("help"))
	require.ErrorIs(t, err, conversation.ErrLockTimeout)
	require.Empty(t, h.messenger.sent)
}

func TestDispatchRejectsEventWithoutSender(t *testing.T) {
	h := newHarness()
	require.Error(t, h.router.Dispatch(context.Background(), Event{Kind: EventText, Text: "hi"}))
	require.Empty(t, h.messenger.sent)
}

type harness struct {
	router    *router
	dialogues *stubDialogues
	profiles  *stubProfiles
	readings  *stubReadings
	summaries *stubSummaries
	photos    *stubPhotos
	messenger *stubMessenger
}

func newHarness() *harness {
	h := &harness{
		dialogues: &stubDialogues{},
		profiles:  &stubProfiles{},
		readings:  &stubReadings{},
		summaries: &stubSummaries{},
		photos:    &stubPhotos{},
		messenger: &stubMessenger{},
	}
	h.router = &router{
		dialogues: h.dialogues,
		profiles:  h.profiles,
		readings:  h.readings,
		summaries: h.summaries,
		photos:    h.photos,
		messenger: h.messenger,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h
}

func textEvent(text string) Event {
	return Event{Kind: EventText, From: phone, MessageID: "wamid.1", PhoneNumberID: "pn-1", Text: text}
}

func selectionEvent(kind EventKind, id string) Event {
	return Event{Kind: kind, From: phone, MessageID: "wamid.1", PhoneNumberID: "pn-1", SelectionID: id}
}

type stubDialogues struct {
	session            *conversation.Session
	continued          int
	unlocks            int
	lockErr            error
	startOnboardingFn  func(ctx context.Context, phone string, existing *profile.Profile) ([]reply.Reply, error)
	startReadingLogFn  func(ctx context.Context, phone string) ([]reply.Reply, error)
	selectCategoryFn   func(ctx context.Context, phone string, in conversation.Input) ([]reply.Reply, error)
	startMealDetailsFn func(ctx context.Context, phone, photoKey string) ([]reply.Reply, error)
}

func (s *stubDialogues) Lock(context.Context, string) (func(), error) {
	if s.lockErr != nil {
		return nil, s.lockErr
	}
	return func() { s.unlocks++ }, nil
}

func (s *stubDialogues) Current(context.Context, string) (conversation.Session, bool, error) {
	if s.session == nil {
		return conversation.Session{}, false, nil
	}
	return *s.session, true, nil
}

func (s *stubDialogues) Continue(context.Context, conversation.Session, conversation.Input) ([]reply.Reply, error) {
	s.continued++
	return nil, nil
}

func (s *stubDialogues) StartOnboarding(ctx context.Context, phone string, existing *profile.Profile) ([]reply.Reply, error) {
	if s.startOnboardingFn == nil {
		return nil, nil
	}
	return s.startOnboardingFn(ctx, phone, existing)
}

func (s *stubDialogues) StartReadingLog(ctx context.Context, phone string) ([]reply.Reply, error) {
	if s.startReadingLogFn == nil {
		return nil, nil
	}
	return s.startReadingLogFn(ctx, phone)
}

func (s *stubDialogues) SelectReadingCategory(ctx context.Context, phone string, in conversation.Input) ([]reply.Reply, error) {
	if s.selectCategoryFn == nil {
		return nil, nil
	}
	return s.selectCategoryFn(ctx, phone, in)
}

func (s *stubDialogues) StartMealDetails(ctx context.Context, phone, photoKey string) ([]reply.Reply, error) {
	if s.startMealDetailsFn == nil {
		return nil, nil
	}
	return s.startMealDetailsFn(ctx, phone, photoKey)
}

type stubProfiles struct {
	profile  *profile.Profile
	language i18n.Lang
}

func (s *stubProfiles) Get(context.Context, string) (profile.Profile, bool, error) {
	if s.profile == nil {
		return profile.Profile{}, false, nil
	}
	return *s.profile, true, nil
}

func (s *stubProfiles) SetLanguage(_ context.Context, _ string, lang i18n.Lang) error {
	s.language = lang
	return nil
}

type stubReadings struct {
	trendsFn func(ctx context.Context, phone string, days int) (analytics.TrendReport, error)
}

func (s *stubReadings) Trends(ctx context.Context, phone string, days int) (analytics.TrendReport, error) {
	if s.trendsFn == nil {
		return analytics.TrendReport{}, nil
	}
	return s.trendsFn(ctx, phone, days)
}

func (s *stubReadings) WindowDays() int { return 7 }

type stubSummaries struct {
	summaryFn func(ctx context.Context, phone string, kind summary.Kind) (string, error)
}

func (s *stubSummaries) Summary(ctx context.Context, phone string, kind summary.Kind) (string, error) {
	return s.summaryFn(ctx, phone, kind)
}

type stubPhotos struct {
	mime string
}

func (s *stubPhotos) StorePhoto(_ context.Context, phone string, data []byte, mimeType string) (meal.StoredPhoto, error) {
	s.mime = mimeType
	return meal.StoredPhoto{Key: "meals/" + phone + "/photo.jpg", Size: int64(len(data)), MimeType: mimeType}, nil
}

type sentReply struct {
	dst   Destination
	reply reply.Reply
}

type stubMessenger struct {
	sent     []sentReply
	read     []string
	media    []byte
	mediaErr error
	sendErr  error
}

func (s *stubMessenger) Send(_ context.Context, dst Destination, r reply.Reply) error {
	s.sent = append(s.sent, sentReply{dst: dst, reply: r})
	return s.sendErr
}

func (s *stubMessenger) MarkRead(_ context.Context, _, messageID string) error {
	s.read = append(s.read, messageID)
	return nil
}

func (s *stubMessenger) DownloadMedia(context.Context, string) ([]byte, string, error) {
	if s.mediaErr != nil {
		return nil, "", s.mediaErr
	}
	return s.media, "", nil
}
