package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bibliotech/mlol/pkg/ical"
	"github.com/bibliotech/mlol/pkg/mlol"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <config>",
	Short: "Export loans and reservation forecasts as an iCalendar file",
	Long: `Export the account's lending schedule as an iCalendar feed: an event for
every active loan's expiry and one for every reservation's estimated
availability window. Use "-" as the output path to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "mlol.ics", "path of the calendar file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, lg, err := loadConfig(args[0])
	if err != nil {
		return err
	}
	defer lg.Close()

	ctx := cmd.Context()
	sess, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	loans, err := sess.client.ActiveLoans(ctx)
	if err != nil {
		return err
	}

	reservations, err := sess.client.Reservations(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	windows := make([]ical.ReservationWindow, 0, len(reservations))
	for _, r := range reservations {
		window, ok := mlol.EstimateAvailability(r, now, cfg.LoanDurationDays)
		if !ok {
			continue
		}
		windows = append(windows, ical.ReservationWindow{Reservation: r, Window: window})
	}

	cal := ical.BuildCalendar(loans, windows, now)

	if exportOutput == "-" {
		return cal.SerializeTo(cmd.OutOrStdout())
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("cannot create calendar file: %w", err)
	}
	defer f.Close()

	if err := cal.SerializeTo(f); err != nil {
		return fmt.Errorf("cannot write calendar file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d events to %s\n", len(loans)+len(windows), exportOutput)
	return nil
}
