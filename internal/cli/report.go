package cli

import (
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/bibliotech/mlol/pkg/mlol"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report <config>",
	Short: "Show monthly usage and reservation forecasts",
	Long: `Show how much of the monthly loan cap and the concurrent reservation cap
is used, the loans of the current month, and for every queued reservation
an estimate of when it should become available.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(reportCmd)
}

// reservationForecast pairs a queued reservation with its estimated
// availability window; Window is nil when no estimate is possible.
type reservationForecast struct {
	Reservation mlol.Reservation         `json:"reservation"`
	Window      *mlol.AvailabilityWindow `json:"window,omitempty"`
}

func runReport(cmd *cobra.Command, args []string) error {
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

	history, err := sess.client.LoanHistory(ctx)
	if err != nil {
		return err
	}

	reservations, err := sess.client.Reservations(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	report := mlol.BuildReport(history, reservations, now,
		cfg.MaxMonthlyLoans, cfg.MaxConcurrentReservations)
	forecasts := buildForecasts(reservations, now, cfg.LoanDurationDays)

	if reportJSON {
		return printReportJSON(cmd.OutOrStdout(), report, forecasts)
	}

	printReport(cmd.OutOrStdout(), report, forecasts)
	return nil
}

func buildForecasts(reservations []mlol.Reservation, now time.Time, loanDurationDays int) []reservationForecast {
	forecasts := make([]reservationForecast, 0, len(reservations))
	for _, r := range reservations {
		forecast := reservationForecast{Reservation: r}
		if window, ok := mlol.EstimateAvailability(r, now, loanDurationDays); ok {
			forecast.Window = &window
		}
		forecasts = append(forecasts, forecast)
	}
	return forecasts
}

func printReportJSON(w io.Writer, report mlol.Report, forecasts []reservationForecast) error {
	doc := struct {
		Report    mlol.Report           `json:"report"`
		Forecasts []reservationForecast `json:"forecasts"`
	}{report, forecasts}

	out, err := jsoniter.ConfigFastest.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot render report: %w", err)
	}

	fmt.Fprintln(w, string(out))
	return nil
}

func printReport(w io.Writer, report mlol.Report, forecasts []reservationForecast) {
	fmt.Fprintf(w, "Usage for %s %d\n", report.Month, report.Year)
	fmt.Fprintf(w, "  Loans:        %d/%d used, %d left\n",
		report.Loans.Used, report.Loans.Limit, report.Loans.Available)
	fmt.Fprintf(w, "  Reservations: %d/%d used, %d left\n",
		report.Reservations.Used, report.Reservations.Limit, report.Reservations.Available)

	if len(report.LoanList) > 0 {
		fmt.Fprintln(w, "\nLoans this month:")
		for _, loan := range report.LoanList {
			fmt.Fprintf(w, "  %s - %s  %s (%s)\n",
				loan.Start.Format("2006-01-02"), loan.End.Format("2006-01-02"),
				loan.Title, loan.Authors)
		}
	}

	if len(forecasts) > 0 {
		fmt.Fprintln(w, "\nReservations:")
		for _, f := range forecasts {
			r := f.Reservation
			fmt.Fprintf(w, "  %s (%s), position %d, %d copies",
				r.Title, r.Authors, r.QueuePosition, r.AvailableCopies)
			if f.Window != nil {
				fmt.Fprintf(w, ", expected %s - %s",
					f.Window.Best.Format("2006-01-02"), f.Window.Worst.Format("2006-01-02"))
			}
			fmt.Fprintln(w)
		}
	}
}
