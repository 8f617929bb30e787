// Command onice reads game-job files, reconstructs each game's on-ice
// timeline concurrently, and persists the results. It is the reference
// caller for the pipeline library: acquisition of shift data and roster
// positions happens upstream of the job files it consumes.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/onice/internal/adapters/repository"
	"github.com/okian/onice/internal/adapters/roster"
	app "github.com/okian/onice/internal/app"
	"github.com/okian/onice/internal/config"
	"github.com/okian/onice/internal/domain/model"
	"github.com/okian/onice/internal/domain/shift"
	"github.com/okian/onice/pkg/logger"
	"github.com/okian/onice/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// gameJobFile is the on-disk shape of one game's inputs.
type gameJobFile struct {
	GameID            string            `json:"game_id"`
	HomeTeamID        int64             `json:"home_team_id"`
	RoadTeamID        int64             `json:"road_team_id"`
	RegulationPeriods int               `json:"regulation_periods"`
	MinFinalSecond    int               `json:"min_final_second"`
	Shifts            []shift.Record    `json:"shifts"`
	Positions         map[string]string `json:"positions"`
}

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Pick the timeline store.
	var store repository.Store
	if cfg.DBPath != "" {
		sqlStore, err := repository.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Error(ctx, "failed to open timeline store", logger.Error(err))
			return
		}
		defer sqlStore.Close()
		store = sqlStore
		log.Info(ctx, "using sqlite store", logger.String("path", cfg.DBPath))
	} else {
		store = repository.NewMemoryStore()
		log.Info(ctx, "using in-memory store; results will not be persisted")
	}

	phase := shift.PhaseRegularSeason
	if cfg.Phase == "playoffs" {
		phase = shift.PhasePlayoffs
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithStore(store),
		app.WithPhase(phase),
		app.WithMinTimelineSeconds(cfg.MinTimelineSeconds),
		app.WithGateThreshold(cfg.GateThreshold),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Metrics and health endpoints for the duration of the run.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()

	submitted := submitJobs(ctx, log, svc, cfg)
	log.Info(ctx, "all jobs submitted", logger.Int("games", submitted))

	if err := svc.Drain(ctx); err != nil {
		log.Warn(ctx, "drain did not finish cleanly", logger.Error(err))
	}
	log.Info(ctx, "run finished",
		logger.Int("submitted", submitted),
		logger.Int("processed", svc.Processed(ctx)),
	)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// submitJobs loads every *.json job file from the configured directory and
// submits it. Bad files are skipped with a log line; a broken game must not
// block the rest of the batch.
func submitJobs(ctx context.Context, log logger.Logger, svc *app.Service, cfg *config.Config) int {
	paths, err := filepath.Glob(filepath.Join(cfg.JobDir, "*.json"))
	if err != nil {
		log.Error(ctx, "failed to list job files", logger.Error(err))
		return 0
	}

	submitted := 0
	for _, path := range paths {
		job, err := readJobFile(path, cfg)
		if err != nil {
			log.Warn(ctx, "skipping job file",
				logger.String("path", path),
				logger.Error(err),
			)
			continue
		}
		if !svc.Submit(ctx, job) {
			log.Warn(ctx, "queue rejected job", logger.String("path", path))
			continue
		}
		submitted++
	}
	return submitted
}

// readJobFile decodes one game-job file into a GameJob.
func readJobFile(path string, cfg *config.Config) (model.GameJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.GameJob{}, err
	}

	var jf gameJobFile
	if err := json.Unmarshal(data, &jf); err != nil {
		return model.GameJob{}, err
	}

	positions, err := roster.ParsePositions(jf.Positions)
	if err != nil {
		return model.GameJob{}, err
	}

	periods := jf.RegulationPeriods
	if periods == 0 {
		periods = cfg.RegulationPeriods
	}

	return model.GameJob{
		GameID: jf.GameID,
		Context: shift.GameContext{
			HomeTeamID:        jf.HomeTeamID,
			RoadTeamID:        jf.RoadTeamID,
			RegulationPeriods: periods,
			MinFinalSecond:    jf.MinFinalSecond,
		},
		Records:   jf.Shifts,
		Positions: positions,
	}, nil
}
