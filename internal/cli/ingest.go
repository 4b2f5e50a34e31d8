package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"studyrag/internal/adapter/fs"
	"studyrag/internal/domain"
	"studyrag/internal/usecase"
)

var (
	ingestTitle   string
	ingestSubject string
	ingestDir     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the library",
	Long: `Ingest a PDF or plain-text document: parse, chunk, embed and store it
so it can be queried. With --from-dir, every matching document in the
directory is ingested, titled by its file name.

Examples:
  studyrag ingest biology.pdf --title "Biology 101" --subject biology
  studyrag ingest --from-dir ./textbooks --subject chemistry`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "book title (defaults to the file name)")
	ingestCmd.Flags().StringVarP(&ingestSubject, "subject", "s", "", "subject tag (required)")
	ingestCmd.Flags().StringVar(&ingestDir, "from-dir", "", "ingest every matching document under this directory")
	ingestCmd.MarkFlagRequired("subject")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestDir == "" && len(args) == 0 {
		return fmt.Errorf("provide a file to ingest or --from-dir")
	}

	a, err := newApp(GetConfig(), GetDataDir())
	if err != nil {
		return err
	}
	defer a.close()

	var files []fs.FileInfo
	if ingestDir != "" {
		cfg := GetConfig()
		walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
		files, err = walker.Walk(ingestDir)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", ingestDir, err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no ingestable documents under %s", ingestDir)
		}
	} else {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		files = []fs.FileInfo{{Path: path, Size: info.Size()}}
	}

	for _, file := range files {
		title := ingestTitle
		if title == "" || len(files) > 1 {
			title = strings.TrimSuffix(filepath.Base(file.Path), filepath.Ext(file.Path))
		}

		if err := ingestOne(cmd.Context(), a, file, title); err != nil {
			if len(files) == 1 {
				return err
			}
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", file.Path, err)
		}
	}

	// Remember the embedding scheme so a config change is caught next run.
	// a.scheme is the same value newApp checked at startup.
	if err := a.store.RecordScheme(a.scheme); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record embedding scheme: %v\n", err)
	}

	return nil
}

func ingestOne(ctx context.Context, a *app, file fs.FileInfo, title string) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", file.Path, err)
	}
	defer f.Close()

	fmt.Printf("Ingesting %s...\n", file.Path)

	var bar *progressbar.ProgressBar
	var barStage domain.Stage

	onProgress := func(ev domain.ProgressEvent) {
		if ev.Stage != domain.StageEmbedding {
			return
		}
		if bar == nil || barStage != ev.Stage {
			barStage = ev.Stage
			bar = progressbar.NewOptions(ev.Total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(ev.Current)
	}

	result, err := a.ingest.ProcessTextbook(ctx, usecase.IngestInput{
		Reader:  f,
		Size:    file.Size,
		Title:   title,
		Subject: ingestSubject,
	}, onProgress)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("\nIngest complete:\n")
	fmt.Printf("  Book:       %s (%s)\n", result.Book.Title, result.Book.ID)
	fmt.Printf("  Pages:      %d\n", result.Book.PageCount)
	fmt.Printf("  Chunks:     %d\n", result.TotalChunks)
	fmt.Printf("  Embeddings: %d\n", result.TotalEmbeddings)
	fmt.Printf("  Took:       %s\n", result.ProcessingTime.Round(time.Millisecond))
	return nil
}
