package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/internal/providers/embed"
	"github.com/sandevgo/chatgate/internal/providers/llm"
	"github.com/sandevgo/chatgate/internal/service/command"
	"github.com/sandevgo/chatgate/internal/service/gate"
	"github.com/sandevgo/chatgate/internal/service/janitor"
	"github.com/sandevgo/chatgate/internal/service/memory"
	"github.com/sandevgo/chatgate/internal/service/responder"
	"github.com/sandevgo/chatgate/internal/storage/jsonfile"
	"github.com/sandevgo/chatgate/internal/storage/sqlite"
	"github.com/sandevgo/chatgate/internal/transport/health"
	"github.com/sandevgo/chatgate/internal/transport/telegram"
	"github.com/sandevgo/chatgate/pkg/log"
	"github.com/sandevgo/chatgate/pkg/srv"
	"github.com/sandevgo/chatgate/pkg/tokens"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	gateCfg := config.NewGateConfig(ctx)
	memCfg := config.NewMemoryConfig(ctx)
	botCfg := config.NewBotConfig(ctx)

	// 2. Storage
	repo, closeRepo, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup("storage", closeRepo))

	store := memory.NewStore(repo)
	if err := store.Init(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load user state")
	}
	// Registered before the transports so the final save runs after they stop.
	services = append(services, store.Autosave(memCfg.AutosaveInterval))

	// 3. AI Providers
	generator, err := llm.NewGenerator(ctx, config.NewLLMConfig(ctx))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	embedder, err := embed.NewEmbedder(ctx, config.NewEmbeddingConfig(ctx))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	// 4. Admission
	g := gate.New(gate.Config{
		Cooldown:     gateCfg.Cooldown,
		DedupTTL:     gateCfg.DedupTTL,
		RespondedTTL: gateCfg.RespondedTTL,
	})
	quota := gate.NewDailyQuota(gateCfg.DailyLimit)

	// 5. Memory. Profile synthesis shares the daily budget with replies.
	conv := memory.NewConversation(store, quota.Metered(generator), embedder, memCfg,
		memory.WithAgentName(botCfg.PersonaName))
	services = append(services, conv)

	jan := janitor.New(g, store, gateCfg)
	services = append(services,
		jan.Service(gateCfg.SweepInterval),
		janitor.UsageReporter(quota),
	)

	// 6. Responder
	resp := responder.New(
		botCfg,
		g,
		quota,
		conv,
		generator,
		responder.NewPersona(appCfg.GetPersonaPath(), botCfg.PersonaName),
		tokens.NewBudget(botCfg.ContextTokenBudget),
	).WithCommands(command.NewRouter(botCfg.PersonaName, conv, quota))

	// 7. Transports
	transports, err := initTransports(ctx, appCfg, resp)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

// initStorage opens the configured state backend. The memory backend
// returns a nil repository, which keeps state volatile.
func initStorage(ctx context.Context, cfg *config.AppConfig) (core.StateRepository, func() error, error) {
	logger := log.FromCtx(ctx)
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.StoreFile:
		repo := jsonfile.NewRepo(cfg.GetSnapshotPath())
		logger.Info().Str("path", repo.Path()).Msg("using file state store")
		return repo, noop, nil
	case config.StoreMemory:
		logger.Warn().Msg("using volatile state store, nothing survives a restart")
		return nil, noop, nil
	default:
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.GetDatabasePath()).Msg("using sqlite state store")
		return sqlite.NewUserStateRepo(db), db.Close, nil
	}
}

func initTransports(ctx context.Context, cfg *config.AppConfig, handler telegram.Handler) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableHealth {
		services = append(services, health.NewServer(config.NewHealthConfig(ctx)))
	}

	// Telegram Bot
	if cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, handler)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if len(services) == 0 {
		log.FromCtx(ctx).Warn().Msg("no transports enabled")
	}
	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
