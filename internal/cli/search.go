package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <config> <query>...",
	Short: "Search the catalogue",
	Long: `Search the library catalogue for ebooks matching the query and print
the matches of the first result page with their catalogue ids.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args[1:], " ")

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

	total, books, err := sess.client.SearchBooks(ctx, query)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d results for %q\n", total, query)
	for i := range books {
		book := &books[i]
		fmt.Fprintf(w, "  %-10d %s (%s)\n", book.ID, book.Title, book.AuthorNames())
	}
	return nil
}
