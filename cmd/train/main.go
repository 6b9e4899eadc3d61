package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	"go.uber.org/zap"

	"rl-callbacks/internal/agent"
	"rl-callbacks/internal/callbacks"
	"rl-callbacks/internal/cartpole"
	"rl-callbacks/internal/monitor"
	"rl-callbacks/internal/trainer"
	"rl-callbacks/internal/trajectory"
)

func main() {
	args := struct {
		Steps          int    `arg:"help:total training step budget"`
		Interval       int    `arg:"help:report progress per interval of this many steps instead of per episode"`
		LogFile        string `arg:"--log-file,help:write per-episode metrics to this JSON file"`
		ContinuousSave bool   `arg:"--continuous-save,help:rewrite the JSON file after every episode"`
		Visualize      bool   `arg:"help:render the environment after every step"`
		Monitor        string `arg:"help:serve live training stats over HTTP on this address"`
		Buffer         int    `arg:"help:trajectory buffer capacity"`
		Seed           int64  `arg:"help:RNG seed"`
	}{
		Steps:   50000,
		LogFile: "training.json",
		Buffer:  256,
		Seed:    time.Now().UnixNano(),
	}
	arg.MustParse(&args)

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rng := rand.New(rand.NewSource(args.Seed))
	env := cartpole.NewEnv(rng)
	policy := agent.New(agent.DefaultWeights(), rng)

	cbs := callbacks.NewCallbackList()
	if args.Interval > 0 {
		cbs.Append(callbacks.NewTrainIntervalLogger(args.Interval))
	} else {
		cbs.Append(callbacks.NewTrainEpisodeLogger())
	}

	var fileLogger *callbacks.FileLogger
	if args.LogFile != "" {
		fileLogger = callbacks.NewFileLogger(args.LogFile, args.ContinuousSave)
		fileLogger.Log = logger
		cbs.Append(fileLogger)
	}

	buffer, err := trajectory.NewBuffer(args.Buffer, trajectory.PolicyFIFO)
	if err != nil {
		logger.Fatal("trajectory buffer", zap.Error(err))
	}
	cbs.Append(callbacks.NewTrajectoryRecorder(buffer))

	if args.Visualize {
		visualizer := callbacks.NewVisualizer()
		visualizer.Log = logger
		cbs.Append(visualizer)
	}

	if args.Monitor != "" {
		var source monitor.DataSource
		if fileLogger != nil {
			source = fileLogger
		}
		mon := monitor.New(source, buffer)
		cbs.Append(mon)
		server := &http.Server{
			Addr:              args.Monitor,
			Handler:           mon.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("monitor server", zap.Error(err))
			}
		}()
		logger.Info("monitor listening", zap.String("addr", args.Monitor))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting training",
		zap.Int("steps", args.Steps),
		zap.Int64("seed", args.Seed),
		zap.String("log_file", args.LogFile))

	run := &trainer.Trainer{
		Env:       env,
		Agent:     policy,
		Callbacks: cbs,
		Steps:     args.Steps,
	}
	if err := run.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("training failed", zap.Error(err))
	}
	logger.Info("training finished", zap.Int("trajectories_buffered", buffer.Len()))
}
