package analyzer

import "testing"

func TestCountTokens(t *testing.T) {
	tok := NewTokenizer()

	if got := tok.CountTokens(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}

	if got := tok.CountTokens("hello"); got < 1 {
		t.Errorf("expected at least 1 token for a single word, got %d", got)
	}

	short := tok.CountTokens("one two three")
	long := tok.CountTokens("one two three four five six seven eight nine ten")
	if long <= short {
		t.Errorf("expected more tokens for longer text: short=%d long=%d", short, long)
	}
}

func TestCountTokensPunctuationOnly(t *testing.T) {
	tok := NewTokenizer()
	if got := tok.CountTokens("... --- !!!"); got != 0 {
		t.Errorf("expected 0 tokens for punctuation-only text, got %d", got)
	}
}

func TestSplitSentences(t *testing.T) {
	tok := NewTokenizer()

	sentences := tok.SplitSentences("First sentence. Second one! Third?")
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "First sentence." {
		t.Errorf("unexpected first sentence: %q", sentences[0])
	}
}

func TestSplitSentencesNoTerminator(t *testing.T) {
	tok := NewTokenizer()

	sentences := tok.SplitSentences("no terminator here")
	if len(sentences) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(sentences))
	}
}
