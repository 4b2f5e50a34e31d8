package synthesis

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

const systemPrompt = `You are a study assistant helping a student prepare for exams.
Answer from the provided textbook excerpts only. Be concise and accurate.`

// Synthesizer builds a grounding prompt from retrieved chunks and forwards
// it to the LLM.
type Synthesizer struct {
	llm  port.LLM
	tmpl *template.Template
}

func New(llm port.LLM) (*Synthesizer, error) {
	content, err := promptTemplates.ReadFile("templates/grounding_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("prompt template missing: %w", err)
	}

	tmpl, err := template.New("grounding").Funcs(templateFuncs()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}

	return &Synthesizer{llm: llm, tmpl: tmpl}, nil
}

type promptData struct {
	Question string
	Chunks   []domain.ScoredChunk
}

func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []domain.ScoredChunk) (domain.Answer, error) {
	if len(chunks) == 0 {
		return domain.Answer{}, &domain.SynthesisError{Reason: "no chunks to ground the answer on"}
	}

	var prompt bytes.Buffer
	if err := s.tmpl.Execute(&prompt, promptData{Question: question, Chunks: chunks}); err != nil {
		return domain.Answer{}, &domain.SynthesisError{Reason: "failed to render prompt", Err: err}
	}

	completion, err := s.llm.Complete(ctx, systemPrompt, prompt.String())
	if err != nil {
		return domain.Answer{}, err
	}

	if strings.TrimSpace(completion.Text) == "" {
		return domain.Answer{}, &domain.SynthesisError{Reason: "provider returned an empty completion"}
	}

	return domain.Answer{
		Text:  completion.Text,
		Model: completion.Model,
		Usage: completion.Usage,
	}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatExcerpts": func(chunks []domain.ScoredChunk) string {
			var sb strings.Builder
			for i, c := range chunks {
				sb.WriteString(fmt.Sprintf("### [%d] %s (pages %d-%d)\n", i+1, c.BookTitle, c.Chunk.PageStart, c.Chunk.PageEnd))
				if c.Chunk.Section != "" {
					sb.WriteString(fmt.Sprintf("Section: %s\n", c.Chunk.Section))
				}
				sb.WriteString(c.Chunk.Text)
				sb.WriteString("\n\n")
			}
			return sb.String()
		},
	}
}

var _ port.Synthesizer = (*Synthesizer)(nil)
