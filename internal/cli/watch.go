package cli

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bibliotech/mlol/internal/config"
	"github.com/bibliotech/mlol/internal/runner"
)

var watchSchedule string

var watchCmd = &cobra.Command{
	Use:   "watch <config>",
	Short: "Run the wishlist pass on a cron schedule",
	Long: `Run the wishlist pass repeatedly on a cron schedule until interrupted.
Each tick opens a fresh browser session, so a failed pass never poisons
the next one. Ticks that overlap a still-running pass are skipped, and
edits to the configuration file are picked up before the next tick.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "0 8 * * *", "cron expression (minute hour dom month dow)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Validate the expression before any config or browser work.
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(watchSchedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", watchSchedule, err)
	}

	cfg, lg, err := loadConfig(args[0])
	if err != nil {
		return err
	}
	defer lg.Close()

	ctx := cmd.Context()

	// Ticks read the configuration through this pointer so a hot reload
	// lands between passes, never in the middle of one.
	var current atomic.Pointer[config.Config]
	current.Store(cfg)

	reloader, err := config.NewWatcher(args[0], 0, func(next *config.Config) {
		lg.AddSecret(next.Password)
		current.Store(next)
	})
	if err != nil {
		log.Warn().Err(err).Msg("configuration hot reload unavailable")
	} else if err := reloader.Start(); err != nil {
		log.Warn().Err(err).Msg("configuration hot reload unavailable")
		reloader.Stop()
	} else {
		defer reloader.Stop()
	}

	scheduler := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := scheduler.AddFunc(watchSchedule, func() {
		watchTick(ctx, current.Load())
	}); err != nil {
		return fmt.Errorf("cannot schedule wishlist pass: %w", err)
	}

	log.Info().
		Str("schedule", watchSchedule).
		Time("nextRun", schedule.Next(time.Now())).
		Msg("watch started")

	scheduler.Start()
	<-ctx.Done()

	log.Info().Msg("watch stopping, waiting for running pass")
	<-scheduler.Stop().Done()
	return nil
}

// watchTick runs one wishlist pass. Failures are logged and swallowed so the
// schedule keeps going.
func watchTick(ctx context.Context, cfg *config.Config) {
	sess, err := openSession(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("watch tick could not open a session")
		return
	}
	defer sess.Close()

	result, err := runner.NewRunner(sess.client, cfg).Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("watch tick failed")
		return
	}

	var borrowed, reserved, skipped int
	for _, outcome := range result.Outcomes {
		switch outcome.Action {
		case runner.ActionBorrow:
			borrowed++
		case runner.ActionReserve:
			reserved++
		default:
			skipped++
		}
	}

	log.Info().
		Str("runId", result.RunID).
		Int("borrowed", borrowed).
		Int("reserved", reserved).
		Int("skipped", skipped).
		Msg("watch tick finished")
}
