package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var booksSubject string

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List ingested books",
	RunE:  runBooks,
}

var booksRmCmd = &cobra.Command{
	Use:   "rm <book-id>",
	Short: "Delete a book and everything derived from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runBooksRm,
}

func init() {
	rootCmd.AddCommand(booksCmd)
	booksCmd.AddCommand(booksRmCmd)
	booksCmd.Flags().StringVarP(&booksSubject, "subject", "s", "", "filter by subject")
}

func runBooks(cmd *cobra.Command, args []string) error {
	a, err := newApp(GetConfig(), GetDataDir())
	if err != nil {
		return err
	}
	defer a.close()

	books, err := a.library.ListBooks(booksSubject)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if len(books) == 0 {
		fmt.Println("No books ingested yet.")
		return nil
	}

	for _, book := range books {
		fmt.Printf("%s  %-30s  %-12s  %4d pages  %s\n",
			book.ID, book.Title, book.Subject, book.PageCount, book.Status)
	}
	return nil
}

func runBooksRm(cmd *cobra.Command, args []string) error {
	a, err := newApp(GetConfig(), GetDataDir())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.library.DeleteBook(args[0]); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
