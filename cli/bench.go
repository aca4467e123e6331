package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"go.viam.com/ecubench/board/genericlinux"
	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/canbus/slcan"
	"go.viam.com/ecubench/canbus/socketcan"
	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/config"
	"go.viam.com/ecubench/logging"
	"go.viam.com/ecubench/report"
	"go.viam.com/ecubench/rig"
	"go.viam.com/ecubench/sim"
	"go.viam.com/ecubench/verify"
)

// errBenchFailed is returned when the last run of a bounded session failed.
var errBenchFailed = cli.Exit("SOMETHING BAD SEE ABOVE", 1)

// BenchAction runs the verification loop on the configured bench.
func BenchAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, closeLogs, err := newLogger(cfg.Log, c.Bool(debugFlag))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLogs.Close(); err != nil {
			logger.Warnw("failed to close log file", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	runConf := cfg.Run.Coordinator()
	if c.IsSet(runsFlag) {
		runConf.Runs = c.Int(runsFlag)
	}
	b, err := openBench(ctx, cfg, &runConf, cat, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(context.Background()); err != nil {
			logger.Warnw("failed to close bench", "error", err)
		}
	}()

	rc := verify.NewRunContext(cat)
	receiver := verify.NewReceiver(rc, b.bus, logger.Sublogger("can"))
	receiver.DisplayCANReceive = cfg.Run.DisplayCANReceive || c.Bool(canReceiveFlag)
	coord := verify.NewCoordinator(rc, b.bus, b.rig, nil, runConf, logger)

	progress := newRunProgress(c.Bool(quietFlag))
	coord.OnProgress = progress.Update

	if cfg.ConfigFilePath != "" {
		watcher, err := config.NewWatcher(ctx, cfg.ConfigFilePath, 0, logger.Sublogger("config"))
		if err != nil {
			logger.Warnw("not watching config for catalog changes", "error", err)
		} else {
			defer func() {
				if err := watcher.Close(); err != nil {
					logger.Warnw("failed to close config watcher", "error", err)
				}
			}()
			defer startCatalogWatch(ctx, watcher, coord.SetCatalog, logger)()
		}
	}

	var last verify.Verdict
	if c.Bool(traceFlag) {
		ctx = logging.EnableDebugMode(ctx, "trace")
	}
	g, gctx := errgroup.WithContext(ctx)
	recvCtx, stopReceiving := context.WithCancel(gctx)
	g.Go(func() error {
		return receiver.Run(recvCtx, b.bus)
	})
	g.Go(func() error {
		defer stopReceiving()
		err := coord.Loop(gctx, func(v verify.Verdict) {
			progress.Done(v)
			last = v
			if err := report.Write(c.App.Writer, v); err != nil {
				logger.Warnw("cannot write report", "error", err)
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if runConf.Runs > 0 && !last.Pass {
		return errBenchFailed
	}
	return nil
}

// startCatalogWatch hands every catalog the watcher delivers to apply until the returned stop
// func is called. stop returns once the watching goroutine is gone.
func startCatalogWatch(
	ctx context.Context,
	watcher config.Watcher,
	apply func(*catalog.Catalog),
	logger logging.Logger,
) (stop func()) {
	watchCtx, cancel := context.WithCancel(ctx)
	var watching sync.WaitGroup
	watching.Add(1)
	utils.ManagedGo(func() { watchCatalog(watchCtx, watcher, apply, logger) }, watching.Done)
	return func() {
		cancel()
		watching.Wait()
	}
}

func watchCatalog(ctx context.Context, watcher config.Watcher, apply func(*catalog.Catalog), logger logging.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-watcher.Config():
			if !ok {
				return
			}
			cat, err := cfg.Catalog()
			if err != nil {
				logger.Errorw("ignoring new board catalog", "error", err)
				continue
			}
			logger.Infof("board catalog reloaded with %d boards, applied from the next run", cat.Len())
			apply(cat)
		}
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if path := c.String(configFlag); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, errors.Wrapf(err, "cannot read config %s", path)
		}
	} else if !c.Bool(simulateFlag) {
		return nil, errors.Errorf("either --%s or --%s is required", configFlag, simulateFlag)
	}
	if c.Bool(simulateFlag) {
		cfg.Bus = config.BusConfig{Type: config.BusSim}
	}
	return cfg, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLogger(conf config.LogConfig, debug bool) (logging.Logger, io.Closer, error) {
	logger := logging.NewLogger("benchtest")
	if conf.Level != "" {
		level, err := logging.LevelFromString(conf.Level)
		if err != nil {
			return nil, nil, err
		}
		logger.SetLevel(level)
	}
	if debug {
		logger.SetLevel(logging.DEBUG)
	}
	var closer io.Closer = nopCloser{}
	if conf.File != "" {
		maxSize := conf.MaxSizeMB
		if maxSize == 0 {
			maxSize = 100
		}
		appender, fileCloser := logging.NewFileAppender(conf.File, maxSize, conf.MaxBackups)
		logger.AddAppender(appender)
		closer = fileCloser
	}
	logging.ReplaceGlobal(logger)
	return logger, closer, nil
}

// bench is the CAN bus and rig a session runs against.
type bench struct {
	bus    canbus.Bus
	rig    rig.Rig
	closer func(ctx context.Context) error
}

func (b *bench) Close(ctx context.Context) error {
	err := b.bus.Close()
	if b.closer != nil {
		err = multierr.Combine(err, b.closer(ctx))
	}
	return err
}

func openBench(
	ctx context.Context,
	cfg *config.Config,
	runConf *verify.Config,
	cat *catalog.Catalog,
	logger logging.Logger,
) (*bench, error) {
	switch cfg.Bus.Type {
	case config.BusSim:
		return openSimBench(cfg, runConf, cat, logger)
	case config.BusSocketCAN, config.BusSLCAN:
	default:
		return nil, errors.Errorf("unknown bus type %q", cfg.Bus.Type)
	}

	board, err := genericlinux.NewBoard(cfg.Rig.Board, logger.Sublogger("board"))
	if err != nil {
		return nil, err
	}
	r, err := rig.NewBoardRig(board, cfg.Rig.Lines, logger.Sublogger("rig"))
	if err != nil {
		return nil, multierr.Combine(err, board.Close(ctx))
	}

	var bus canbus.Bus
	if cfg.Bus.Type == config.BusSocketCAN {
		bus, err = socketcan.Open(ctx, cfg.Bus.Interface, logger.Sublogger("socketcan"))
	} else {
		bus, err = slcan.Open(cfg.Bus.SLCAN(), logger.Sublogger("slcan"))
	}
	if err != nil {
		return nil, multierr.Combine(err, board.Close(ctx))
	}
	return &bench{bus: bus, rig: r, closer: board.Close}, nil
}

// openSimBench starts a simulated ECU. Without a sim section the first catalog board is
// simulated, healthy.
func openSimBench(cfg *config.Config, runConf *verify.Config, cat *catalog.Catalog, logger logging.Logger) (*bench, error) {
	var simConf sim.Config
	if cfg.Sim != nil {
		simConf = *cfg.Sim
	} else {
		simConf = sim.FromProfile(cat.Profiles()[0], 0)
	}
	simConf.OutputChannelBase = runConf.OutputChannelBase
	simConf.InputChannelBase = runConf.InputChannelBase
	simConf.DCChannelBase = runConf.DCChannelBase
	if simConf.BanksOverlap(runConf.InputLines) {
		simConf.LayOutBanks(runConf.InputLines)
		logger.Infow("simulated proxy banks overlap, laid out consecutively",
			"output_channel_base", simConf.OutputChannelBase,
			"dc_channel_base", simConf.DCChannelBase,
			"input_channel_base", simConf.InputChannelBase)
		runConf.OutputChannelBase = simConf.OutputChannelBase
		runConf.InputChannelBase = simConf.InputChannelBase
		runConf.DCChannelBase = simConf.DCChannelBase
	}

	dut, err := sim.New(simConf, nil, logger.Sublogger("sim"))
	if err != nil {
		return nil, err
	}
	return &bench{bus: dut, rig: dut}, nil
}
