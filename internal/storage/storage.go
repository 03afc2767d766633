// Package storage provides persistent storage for the match predictor.
// It uses BoltDB as the underlying engine to keep aggregated innings
// summaries from training runs and an audit log of served predictions.
//
// The package provides thread-safe operations; record ordering inside the
// predictions bucket follows timestamp for efficient range queries.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"ipl-predictor/internal/features"
)

const (
	summariesBucket   = "innings_summaries" // Aggregated training features
	predictionsBucket = "predictions"       // Served prediction audit log
)

// Store provides persistent storage backed by BoltDB.
type Store struct {
	db *bbolt.DB
}

// New creates a storage instance under dataPath, initializing the
// database file and its buckets.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "ipl-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(summariesBucket)); err != nil {
			return fmt.Errorf("create summaries bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket)); err != nil {
			return fmt.Errorf("create predictions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// PredictionRecord is one served prediction with its validated input,
// kept for data-quality monitoring and model drift analysis.
type PredictionRecord struct {
	Timestamp       time.Time      `json:"timestamp"`
	Input           map[string]any `json:"input"`
	Label           int            `json:"label"`
	WinProbability  float64        `json:"win_probability"`
	LossProbability float64        `json:"loss_probability"`
	ModelPath       string         `json:"model_path"`
}

// StoreSummary persists one aggregated innings summary. The key is the
// grouping key, so re-running aggregation overwrites rather than
// duplicates.
func (s *Store) StoreSummary(sum features.InningsSummary) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(summariesBucket))

		data, err := json.Marshal(sum)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}

		key := fmt.Sprintf("%s_%d_%s", sum.MatchID, sum.Innings, sum.BattingTeam)
		return b.Put([]byte(key), data)
	})
}

// StoreSummaries persists a batch of summaries in one transaction.
func (s *Store) StoreSummaries(sums []features.InningsSummary) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(summariesBucket))
		for _, sum := range sums {
			data, err := json.Marshal(sum)
			if err != nil {
				return fmt.Errorf("marshal summary: %w", err)
			}
			key := fmt.Sprintf("%s_%d_%s", sum.MatchID, sum.Innings, sum.BattingTeam)
			if err := b.Put([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMatchSummaries retrieves every stored summary for one match.
func (s *Store) GetMatchSummaries(matchID string) ([]features.InningsSummary, error) {
	var sums []features.InningsSummary

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(summariesBucket))
		c := b.Cursor()
		prefix := []byte(matchID + "_")

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var sum features.InningsSummary
			if err := json.Unmarshal(v, &sum); err != nil {
				continue // Skip malformed records
			}
			sums = append(sums, sum)
		}
		return nil
	})

	return sums, err
}

// AllSummaries retrieves every stored innings summary.
func (s *Store) AllSummaries() ([]features.InningsSummary, error) {
	var sums []features.InningsSummary

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(summariesBucket))
		return b.ForEach(func(_, v []byte) error {
			var sum features.InningsSummary
			if err := json.Unmarshal(v, &sum); err != nil {
				return nil
			}
			sums = append(sums, sum)
			return nil
		})
	})

	return sums, err
}

// StorePrediction appends a served prediction to the audit log.
func (s *Store) StorePrediction(rec PredictionRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal prediction: %w", err)
		}

		// Zero-padded so lexicographic key order matches time order.
		key := fmt.Sprintf("%020d", rec.Timestamp.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// GetPredictionsInRange retrieves audit records within [start, end].
func (s *Store) GetPredictionsInRange(start, end time.Time) ([]PredictionRecord, error) {
	var recs []PredictionRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))
		c := b.Cursor()

		startKey := []byte(fmt.Sprintf("%020d", start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%020d", end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			var rec PredictionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			recs = append(recs, rec)
		}
		return nil
	})

	return recs, err
}
