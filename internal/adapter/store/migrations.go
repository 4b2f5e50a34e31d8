package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the storage format version. Increment on
// breaking changes to the bucket layout.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keyScheme        = []byte("embedding_scheme")
)

// SchemeInfo records the embedding scheme the stored vectors were produced
// with. Vectors from different schemes cannot be searched together.
type SchemeInfo struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

func (i SchemeInfo) String() string {
	return fmt.Sprintf("%s/%s/%d", i.Provider, i.Model, i.Dimension)
}

// MigrationResult reports whether the store can serve the configured scheme.
type MigrationResult struct {
	NeedsReingest bool
	Reason        string
}

// CheckScheme compares the stored embedding scheme against the configured
// one. A mismatch means every book must be re-ingested; mixing dimensions
// in one index is never allowed.
func (s *BoltStore) CheckScheme(want SchemeInfo) (*MigrationResult, error) {
	var stored *SchemeInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyScheme)
		if data == nil {
			return nil
		}
		stored = &SchemeInfo{}
		return json.Unmarshal(data, stored)
	})
	if err != nil {
		return nil, err
	}

	if stored == nil {
		return &MigrationResult{}, nil
	}
	if *stored != want {
		return &MigrationResult{
			NeedsReingest: true,
			Reason:        fmt.Sprintf("embedding scheme changed from %s to %s", stored, want),
		}, nil
	}
	return &MigrationResult{}, nil
}

// RecordScheme persists the scheme and schema version after an ingest.
func (s *BoltStore) RecordScheme(info SchemeInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		schemeData, err := json.Marshal(info)
		if err != nil {
			return err
		}
		if err := b.Put(keyScheme, schemeData); err != nil {
			return err
		}

		versionData, err := json.Marshal(CurrentSchemaVersion)
		if err != nil {
			return err
		}
		return b.Put(keySchemaVersion, versionData)
	})
}

// SchemaVersion returns the stored schema version, 0 when unset.
func (s *BoltStore) SchemaVersion() (int, error) {
	version := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &version)
	})
	return version, err
}
