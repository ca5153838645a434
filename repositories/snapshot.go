package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"dating-lab/domain"
)

const snapshotPrefix = "rot:"

// SnapshotRepository persists per-event rotation snapshots in BadgerDB.
// One value per event, key "rot:{event_id}", JSON-encoded: the snapshot is an
// internal format read back only by this process and the operator viewer.
type SnapshotRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSnapshotRepository(db *badger.DB, log *slog.Logger) SnapshotRepository {
	return SnapshotRepository{db: db, log: log}
}

func (r SnapshotRepository) Save(eventID domain.EventID, snapshot domain.Snapshot) error {
	bytes, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot for event %s: %w", eventID, err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(eventID), bytes)
	})
}

// Load returns nil without error when no snapshot exists for the event.
func (r SnapshotRepository) Load(eventID domain.EventID) (*domain.Snapshot, error) {
	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(eventID))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot domain.Snapshot
	if err = json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot for event %s: %w", eventID, err)
	}
	return &snapshot, nil
}

// ListEvents scans the snapshot keyspace, for the operator viewer.
func (r SnapshotRepository) ListEvents() ([]domain.Snapshot, error) {
	var snapshots []domain.Snapshot
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(snapshotPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var snapshot domain.Snapshot
				if err := json.Unmarshal(value, &snapshot); err != nil {
					r.log.Warn("Skipping undecodable snapshot", "key", string(it.Item().Key()), "error", err)
					return nil
				}
				snapshots = append(snapshots, snapshot)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return snapshots, err
}

func snapshotKey(eventID domain.EventID) []byte {
	return []byte(snapshotPrefix + string(eventID))
}
