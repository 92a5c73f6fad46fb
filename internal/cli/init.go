package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibliotech/mlol/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter configuration file",
	Long: `Write a starter configuration file to the given path (default mlol.json).
Fill in your library's MLOL address and your credentials, or leave the
credentials empty and export ` + config.EnvUsername + ` and ` + config.EnvPassword + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "mlol.json"
	if len(args) == 1 {
		path = args[0]
	}

	if err := config.WriteStarter(path); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Wrote %s\n", path)
	fmt.Fprintf(w, "Edit it with your library's address and credentials, or export %s and %s.\n",
		config.EnvUsername, config.EnvPassword)
	return nil
}
