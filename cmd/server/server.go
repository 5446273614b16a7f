package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/caarlos0/env/v11"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/veramon/reunited-api/internal/engine"
	"github.com/veramon/reunited-api/internal/orchestrators/battle"
	"github.com/veramon/reunited-api/internal/orchestrators/explore"
	"github.com/veramon/reunited-api/internal/orchestrators/faction"
	"github.com/veramon/reunited-api/internal/orchestrators/tournament"
	"github.com/veramon/reunited-api/internal/orchestrators/trade"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	"github.com/veramon/reunited-api/internal/pkg/idgen"
	"github.com/veramon/reunited-api/internal/redis"
	"github.com/veramon/reunited-api/internal/repositories/battles"
	"github.com/veramon/reunited-api/internal/repositories/captures"
	"github.com/veramon/reunited-api/internal/repositories/factions"
	"github.com/veramon/reunited-api/internal/repositories/tournaments"
	"github.com/veramon/reunited-api/internal/repositories/trades"
	"github.com/veramon/reunited-api/internal/repositories/trainers"
	"github.com/veramon/reunited-api/internal/rules"
)

// serverConfig is loaded from the environment, with .env as a fallback for
// local development
type serverConfig struct {
	RedisAddress        string        `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	GRPCPort            int           `env:"GRPC_PORT" envDefault:"50051"`
	RuleDataDir         string        `env:"RULE_DATA_DIR" envDefault:"data/rules"`
	BattleTurnTimeout   time.Duration `env:"BATTLE_TURN_TIMEOUT" envDefault:"5m"`
	TradeTimeout        time.Duration `env:"TRADE_TIMEOUT" envDefault:"30m"`
	RegistrationTimeout time.Duration `env:"TOURNAMENT_REGISTRATION_TIMEOUT" envDefault:"24h"`
	SweepInterval       time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server",
	Long:  `Start the Veramon Reunited gRPC server and the stale-entity sweeper.`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := serverConfig{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	services, err := buildServices(&cfg)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	scheduler, err := startSweeper(ctx, services, cfg.SweepInterval)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("gRPC server starting", "port", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gRPC server")

		if err := scheduler.Shutdown(); err != nil {
			slog.Error("sweeper shutdown failed", "error", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			slog.Warn("graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			slog.Info("server stopped gracefully")
		}

		return nil
	case err := <-errChan:
		return err
	}
}

// services bundles the orchestrators the server hosts
type services struct {
	battle     battle.Service
	trade      trade.Service
	tournament tournament.Service
	faction    faction.Service
	explore    explore.Service
}

// buildServices wires redis, the repositories, the rule registry, the battle
// engine, and the orchestrators
func buildServices(cfg *serverConfig) (*services, error) {
	client, err := redis.NewClient(cfg.RedisAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	c := clock.New()

	captureRepo, err := captures.NewRedis(&captures.RedisConfig{Client: client, Clock: c})
	if err != nil {
		return nil, fmt.Errorf("failed to create capture repository: %w", err)
	}
	trainerRepo, err := trainers.NewRedis(&trainers.RedisConfig{Client: client, Clock: c})
	if err != nil {
		return nil, fmt.Errorf("failed to create trainer repository: %w", err)
	}
	battleRepo, err := battles.NewRedis(&battles.RedisConfig{Client: client, Clock: c})
	if err != nil {
		return nil, fmt.Errorf("failed to create battle repository: %w", err)
	}
	tradeRepo, err := trades.NewRedis(&trades.RedisConfig{Client: client, Clock: c})
	if err != nil {
		return nil, fmt.Errorf("failed to create trade repository: %w", err)
	}
	tournamentRepo, err := tournaments.NewRedis(&tournaments.RedisConfig{Client: client, Clock: c})
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament repository: %w", err)
	}
	factionRepo, err := factions.NewRedis(&factions.RedisConfig{Client: client, Clock: c})
	if err != nil {
		return nil, fmt.Errorf("failed to create faction repository: %w", err)
	}

	data, err := rules.LoadDirectory(cfg.RuleDataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule data from %s: %w", cfg.RuleDataDir, err)
	}
	registry, err := rules.NewRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule registry: %w", err)
	}

	eng, err := engine.New(&engine.Config{
		Registry: registry,
		Roller:   dice.DefaultRoller,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create battle engine: %w", err)
	}

	battleSvc, err := battle.NewOrchestrator(&battle.Config{
		BattleRepo:  battleRepo,
		CaptureRepo: captureRepo,
		Registry:    registry,
		Engine:      eng,
		Roller:      dice.DefaultRoller,
		IDGenerator: idgen.NewPrefixed("battle"),
		Clock:       c,
		TurnTimeout: cfg.BattleTurnTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create battle orchestrator: %w", err)
	}

	tradeSvc, err := trade.NewOrchestrator(&trade.Config{
		TradeRepo:    tradeRepo,
		CaptureRepo:  captureRepo,
		IDGenerator:  idgen.NewPrefixed("trade"),
		Clock:        c,
		TradeTimeout: cfg.TradeTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create trade orchestrator: %w", err)
	}

	tournamentSvc, err := tournament.NewOrchestrator(&tournament.Config{
		TournamentRepo:      tournamentRepo,
		TrainerRepo:         trainerRepo,
		Registry:            registry,
		Roller:              dice.DefaultRoller,
		IDGenerator:         idgen.NewPrefixed("tournament"),
		Clock:               c,
		RegistrationTimeout: cfg.RegistrationTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament orchestrator: %w", err)
	}

	factionSvc, err := faction.NewOrchestrator(&faction.Config{
		FactionRepo: factionRepo,
		TrainerRepo: trainerRepo,
		IDGenerator: idgen.NewPrefixed("faction"),
		Clock:       c,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create faction orchestrator: %w", err)
	}

	exploreSvc, err := explore.NewOrchestrator(&explore.Config{
		CaptureRepo: captureRepo,
		TrainerRepo: trainerRepo,
		Registry:    registry,
		Roller:      dice.DefaultRoller,
		IDGenerator: idgen.NewPrefixed("capture"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create explore orchestrator: %w", err)
	}

	return &services{
		battle:     battleSvc,
		trade:      tradeSvc,
		tournament: tournamentSvc,
		faction:    factionSvc,
		explore:    exploreSvc,
	}, nil
}

// startSweeper schedules the stale-entity sweeps: battles past their turn
// deadline forfeit, open trades past their deadline cancel, and registration
// tournaments past their deadline refund
func startSweeper(ctx context.Context, svcs *services, interval time.Duration) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	sweeps := []struct {
		name string
		run  func(context.Context) (int, error)
	}{
		{"battles", func(ctx context.Context) (int, error) {
			output, err := svcs.battle.ExpireStale(ctx, &battle.ExpireStaleInput{})
			if err != nil {
				return 0, err
			}
			return len(output.ExpiredIDs), nil
		}},
		{"trades", func(ctx context.Context) (int, error) {
			output, err := svcs.trade.ExpireStale(ctx, &trade.ExpireStaleInput{})
			if err != nil {
				return 0, err
			}
			return len(output.ExpiredIDs), nil
		}},
		{"tournaments", func(ctx context.Context) (int, error) {
			output, err := svcs.tournament.ExpireStale(ctx, &tournament.ExpireStaleInput{})
			if err != nil {
				return 0, err
			}
			return len(output.ExpiredIDs), nil
		}},
	}

	for _, sweep := range sweeps {
		_, err := scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() {
				expired, err := sweep.run(ctx)
				if err != nil {
					slog.Error("sweep failed", "sweep", sweep.name, "error", err)
					return
				}
				if expired > 0 {
					slog.Info("sweep expired entities", "sweep", sweep.name, "count", expired)
				}
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to schedule %s sweep: %w", sweep.name, err)
		}
	}

	scheduler.Start()
	slog.Info("sweeper started", "interval", interval)

	return scheduler, nil
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	args := append([]any{}, fields...)
	switch level {
	case grpc_logging.LevelDebug:
		slog.DebugContext(ctx, msg, args...)
	case grpc_logging.LevelWarn:
		slog.WarnContext(ctx, msg, args...)
	case grpc_logging.LevelError:
		slog.ErrorContext(ctx, msg, args...)
	default:
		slog.InfoContext(ctx, msg, args...)
	}
}
