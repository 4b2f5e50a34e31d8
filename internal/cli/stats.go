package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library and index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(GetConfig(), GetDataDir())
	if err != nil {
		return err
	}
	defer a.close()

	stats, err := a.library.Stats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("Library:\n")
	fmt.Printf("  Books:      %d\n", stats.Store.Books)
	fmt.Printf("  Chunks:     %d\n", stats.Store.Chunks)
	fmt.Printf("  Embeddings: %d\n", stats.Store.Embeddings)
	fmt.Printf("  Sessions:   %d\n", stats.Store.Sessions)
	fmt.Printf("Index:\n")
	fmt.Printf("  Vectors:    %d\n", stats.Index.Count)
	fmt.Printf("  Subjects:   %d\n", stats.Index.DistinctSubjects)
	fmt.Printf("  Books:      %d\n", stats.Index.DistinctBooks)
	return nil
}
