package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askQuestion string
	askSubject  string
	askTopK     int
	askJSON     bool
	askSession  string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question against the ingested library",
	Long: `Ask a question. The question is embedded, the most similar chunks are
retrieved (optionally restricted to one subject), and an answer grounded
in those chunks is synthesized with cited sources.

Examples:
  studyrag ask -q "What is osmosis?"
  studyrag ask -q "Define entropy" --subject physics --top-k 3
  studyrag ask -q "And in liquids?" --session 6f1c...`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (required)")
	askCmd.Flags().StringVarP(&askSubject, "subject", "s", "", "restrict retrieval to one subject")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.Flags().StringVar(&askSession, "session", "", "append the turn to this chat session (empty creates one)")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(GetConfig(), GetDataDir())
	if err != nil {
		return err
	}
	defer a.close()

	topK := GetConfig().Query.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	result, sessionID, err := a.query.AskInSession(cmd.Context(), askSession, askQuestion, askSubject, topK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(result.Answer)

	if len(result.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for i, src := range result.Sources {
			fmt.Printf("  [%d] %s, pages %d-%d (score %.2f)\n", i+1, src.BookTitle, src.PageStart, src.PageEnd, src.Score)
		}
	}
	if result.Model != "" {
		fmt.Printf("\nModel: %s, tokens: %d prompt / %d completion\n",
			result.Model, result.Usage.PromptTokens, result.Usage.CompletionTokens)
	}
	fmt.Printf("Session: %s\n", sessionID)

	return nil
}
