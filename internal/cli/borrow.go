package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bibliotech/mlol/internal/runner"
)

var borrowCmd = &cobra.Command{
	Use:   "borrow <config> <id>",
	Short: "Borrow a single book if the monthly cap allows it",
	Args:  cobra.ExactArgs(2),
	RunE:  runBorrow,
}

func init() {
	rootCmd.AddCommand(borrowCmd)
}

func runBorrow(cmd *cobra.Command, args []string) error {
	id, err := parseBookID(args[1])
	if err != nil {
		return err
	}

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

	outcome, err := runner.NewRunner(sess.client, cfg).BorrowBook(ctx, id)
	if err != nil {
		return err
	}

	printOutcome(cmd.OutOrStdout(), outcome)
	return nil
}

func printOutcome(w io.Writer, outcome *runner.Outcome) {
	fmt.Fprintf(w, "%-8s %-10d %s (%s)\n", outcome.Action, outcome.BookID, outcome.Title, outcome.Reason)
}
