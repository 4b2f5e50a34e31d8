package cli

import (
	"path/filepath"
	"testing"

	"studyrag/config"
	"studyrag/internal/adapter/store"
)

// The scheme checked at startup and the scheme recorded after an ingest
// must be the same value, derived from the constructed embedder. Deriving
// the recorded side from raw config fields used to force a spurious
// re-ingest whenever the embedder applied a default (mock model name,
// defaulted dimension).
func TestSchemeRoundTripAcrossRuns(t *testing.T) {
	cases := []struct {
		name  string
		tweak func(*config.Config)
	}{
		{"mock provider", func(cfg *config.Config) {
			cfg.Embedding.Provider = "mock"
		}},
		{"openai with defaulted dimension", func(cfg *config.Config) {
			cfg.Embedding.Provider = "openai"
			cfg.Embedding.Dimension = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tc.tweak(cfg)

			st, err := store.NewBoltStore(filepath.Join(t.TempDir(), "library.db"))
			if err != nil {
				t.Fatal(err)
			}
			defer st.Close()

			// First run: ingest records the scheme.
			embedder, err := newEmbedder(cfg)
			if err != nil {
				t.Fatal(err)
			}
			if err := st.RecordScheme(embedderScheme(cfg, embedder)); err != nil {
				t.Fatal(err)
			}

			// Second run: startup check against the same config.
			embedder, err = newEmbedder(cfg)
			if err != nil {
				t.Fatal(err)
			}
			result, err := st.CheckScheme(embedderScheme(cfg, embedder))
			if err != nil {
				t.Fatal(err)
			}
			if result.NeedsReingest {
				t.Errorf("unchanged config must not force a re-ingest: %s", result.Reason)
			}
		})
	}
}
