//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/glucobot/internal/bootstrap"
	"github.com/yanqian/glucobot/internal/domain/chatbot"
	"github.com/yanqian/glucobot/internal/domain/conversation"
	"github.com/yanqian/glucobot/internal/domain/glucose"
	"github.com/yanqian/glucobot/internal/domain/meal"
	"github.com/yanqian/glucobot/internal/domain/profile"
	"github.com/yanqian/glucobot/internal/domain/summary"
	"github.com/yanqian/glucobot/internal/infra/config"
	"github.com/yanqian/glucobot/internal/infra/llm/chatgpt"
	"github.com/yanqian/glucobot/internal/infra/whatsapp"
	httpiface "github.com/yanqian/glucobot/internal/interface/http"
	"github.com/yanqian/glucobot/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideMealConfig,
		provideGlucoseConfig,
		provideConversationConfig,
		provideWhatsAppConfig,
		provideChatGPTClient,
		provideGraphClient,
		providePostgresPool,
		provideProfileRepository,
		provideMealStore,
		provideMealRepository,
		provideMealSource,
		provideSummaryRepository,
		provideReadingStore,
		provideReadingRepository,
		provideProvisioner,
		provideReadingLister,
		provideValkeyClient,
		provideSessionStore,
		providePhotoStorage,
		provideQueue,
		provideEnqueuer,
		profile.NewService,
		glucose.NewService,
		summary.NewService,
		meal.NewService,
		conversation.NewService,
		chatbot.NewRouter,
		whatsapp.NewMessenger,
		wire.Bind(new(meal.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(whatsapp.Graph), new(*whatsapp.Client)),
		wire.Bind(new(chatbot.Messenger), new(*whatsapp.Messenger)),
		httpiface.NewWebhookHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
