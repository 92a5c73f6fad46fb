package cli

import (
	"github.com/spf13/cobra"

	"github.com/bibliotech/mlol/internal/runner"
)

var reserveCmd = &cobra.Command{
	Use:   "reserve <config> <id>",
	Short: "Reserve a single book if the concurrent cap allows it",
	Args:  cobra.ExactArgs(2),
	RunE:  runReserve,
}

func init() {
	rootCmd.AddCommand(reserveCmd)
}

func runReserve(cmd *cobra.Command, args []string) error {
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

	outcome, err := runner.NewRunner(sess.client, cfg).ReserveBook(ctx, id)
	if err != nil {
		return err
	}

	printOutcome(cmd.OutOrStdout(), outcome)
	return nil
}
