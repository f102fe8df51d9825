package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	httpadapter "github.com/stillonearth/gymbridge/internal/adapter/http"
	metricsinmem "github.com/stillonearth/gymbridge/internal/adapter/metrics/inmemory"
	gormrepo "github.com/stillonearth/gymbridge/internal/adapter/repo/gorm"
	memrepo "github.com/stillonearth/gymbridge/internal/adapter/repo/memory"
	sqliterepo "github.com/stillonearth/gymbridge/internal/adapter/repo/sqlite"
	"github.com/stillonearth/gymbridge/internal/app/frames"
	"github.com/stillonearth/gymbridge/internal/app/observe"
	"github.com/stillonearth/gymbridge/internal/app/ports"
	"github.com/stillonearth/gymbridge/internal/app/replay"
	"github.com/stillonearth/gymbridge/internal/app/reset"
	"github.com/stillonearth/gymbridge/internal/app/session"
	"github.com/stillonearth/gymbridge/internal/app/step"
	"github.com/stillonearth/gymbridge/internal/domain/gym"
	"github.com/stillonearth/gymbridge/internal/engine"
	"github.com/stillonearth/gymbridge/internal/gridworld"
	"github.com/stillonearth/gymbridge/internal/gymloop"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridworld",
		Short: "Grid-world simulation served as a turn-based RL environment",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tick loop and the environment API server",
		RunE:  serve,
	}

	_ = godotenv.Load()

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	settings := settingsFromEnv()

	state := gym.NewState[gridworld.Action, gridworld.WorldState](settings)
	recorder := metricsinmem.NewRecorder()

	plugin := gymloop.New(state)
	plugin.Metrics = recorder

	world := gridworld.New(state, plugin)
	app := engine.NewApp()
	world.Attach(app)

	episodes, err := buildEpisodeRepo(cmd.Context())
	if err != nil {
		return err
	}

	tracker := session.NewTracker()
	stepTimeout := durationEnv("GYMBRIDGE_STEP_TIMEOUT", 30*time.Second)

	h := httpadapter.Handler{
		StepUC: step.UseCase{
			Env:      state,
			Episodes: episodes,
			Sessions: tracker,
			Metrics:  recorder,
			Timeout:  stepTimeout,
			Now:      time.Now,
		},
		ResetUC: reset.UseCase{
			Env:      state,
			Sessions: tracker,
			Metrics:  recorder,
			Timeout:  stepTimeout,
		},
		ObserveUC: observe.UseCase{Env: state},
		FramesUC: frames.UseCase{
			Env:         state,
			FrameWidth:  settings.FrameWidth,
			FrameHeight: settings.FrameHeight,
		},
		ReplayUC: replay.UseCase{Episodes: episodes, Sessions: tracker},
		KPI:      recorder,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	go app.Run(ctx, durationEnv("GYMBRIDGE_FRAME_INTERVAL", 16*time.Millisecond))

	addr := strings.TrimSpace(os.Getenv("GYMBRIDGE_ADDR"))
	if addr == "" {
		addr = ":7878"
	}
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	log.Printf("gridworld environment listening on %s (%d agents, cadence %s)",
		addr, settings.NumAgents, settings.ControlCadence)
	s.Spin()
	return nil
}

func settingsFromEnv() gym.Settings {
	def := gym.DefaultSettings()
	return gym.Settings{
		NumAgents:      intEnv("GYMBRIDGE_NUM_AGENTS", 5),
		ControlCadence: durationEnv("GYMBRIDGE_CONTROL_CADENCE", def.ControlCadence),
		RenderToBuffer: boolEnv("GYMBRIDGE_RENDER", false),
		FrameWidth:     intEnv("GYMBRIDGE_FRAME_WIDTH", def.FrameWidth),
		FrameHeight:    intEnv("GYMBRIDGE_FRAME_HEIGHT", def.FrameHeight),
	}
}

// buildEpisodeRepo picks the step log backend: Postgres when a DSN is set,
// SQLite when a path is set, otherwise in-process memory.
func buildEpisodeRepo(ctx context.Context) (ports.EpisodeRepository, error) {
	if dsn := strings.TrimSpace(os.Getenv("GYMBRIDGE_DB_DSN")); dsn != "" {
		db, err := gormrepo.OpenPostgres(dsn)
		if err != nil {
			return nil, err
		}
		repo := gormrepo.NewEpisodeRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		log.Println("episode log: postgres")
		return repo, nil
	}
	if path := strings.TrimSpace(os.Getenv("GYMBRIDGE_SQLITE_PATH")); path != "" {
		repo, err := sqliterepo.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		log.Printf("episode log: sqlite at %s", path)
		return repo, nil
	}
	log.Println("episode log: in-memory")
	return memrepo.NewEpisodeRepo(), nil
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func boolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
