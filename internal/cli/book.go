package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bibliotech/mlol/pkg/mlol"
)

var bookCmd = &cobra.Command{
	Use:   "book <config> <id>",
	Short: "Show the details of a catalogue entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runBook,
}

func init() {
	rootCmd.AddCommand(bookCmd)
}

// parseBookID validates a catalogue id argument before any browser work
// starts, so a typo fails in milliseconds instead of after a login.
func parseBookID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id %q: must be a positive integer", arg)
	}
	return id, nil
}

func runBook(cmd *cobra.Command, args []string) error {
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

	book, err := sess.client.BookDetails(ctx, id)
	if err != nil {
		return err
	}

	printBook(cmd.OutOrStdout(), book)
	return nil
}

func printBook(w io.Writer, book *mlol.Book) {
	fmt.Fprintf(w, "%s\n", book.Title)
	if names := book.AuthorNames(); names != "" {
		fmt.Fprintf(w, "  Authors:    %s\n", names)
	}
	if book.Publisher != nil {
		fmt.Fprintf(w, "  Publisher:  %s\n", book.Publisher.Name)
	}
	if !book.PublicationDate.IsZero() {
		fmt.Fprintf(w, "  Published:  %s\n", book.PublicationDate.Format("2006-01-02"))
	}
	if book.Format != "" {
		fmt.Fprintf(w, "  Format:     %s\n", book.Format)
	}
	if book.Language != "" {
		fmt.Fprintf(w, "  Language:   %s\n", book.Language)
	}
	if len(book.ISBN) > 0 {
		fmt.Fprintf(w, "  ISBN:       %s\n", strings.Join(book.ISBN, ", "))
	}
	if len(book.Topics) > 0 {
		fmt.Fprintf(w, "  Topics:    ")
		for _, topic := range book.Topics {
			fmt.Fprintf(w, " %s", topic.Name)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  Status:     %s\n", book.Status)
	if book.Description != "" {
		fmt.Fprintf(w, "\n%s\n", book.Description)
	}
}
