package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bibliotech/mlol/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run <config>",
	Short: "Run one lending session",
	Long: `Run one lending session: log in, load the account's loan history and
reservation queue, then walk the configured wishlist borrowing available
books and reserving occupied ones, skipping whatever the monthly loan cap
or the concurrent reservation cap leaves no room for.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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

	result, err := runner.NewRunner(sess.client, cfg).Run(ctx)
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

func printResult(w io.Writer, result *runner.Result) {
	report := result.Report
	fmt.Fprintf(w, "Run %s (%s)\n", result.RunID, result.Started.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Loans %s %d: %d/%d used, %d left\n",
		report.Month, report.Year, report.Loans.Used, report.Loans.Limit, report.Loans.Available)
	fmt.Fprintf(w, "Reservations: %d/%d used, %d left\n",
		report.Reservations.Used, report.Reservations.Limit, report.Reservations.Available)

	if len(result.Outcomes) == 0 {
		fmt.Fprintln(w, "Wishlist is empty, nothing to do.")
		return
	}

	fmt.Fprintln(w)
	for _, o := range result.Outcomes {
		fmt.Fprintf(w, "  %-8s %-10d %s (%s)\n", o.Action, o.BookID, o.Title, o.Reason)
	}
}
