package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"dating-lab/domain"
	"dating-lab/domain/event"
)

// JournalEntry is the persisted form of one notification, typed by name so
// redelivery consumers can dispatch without reflection.
type JournalEntry struct {
	ID      uuid.UUID       `json:"id"`
	Event   domain.EventID  `json:"event"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// NotificationJournal appends every published notification to BadgerDB.
// The key is formatted as "ntf:{event_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     notifications are appended at the same nanosecond.
//
// This is what makes delivery at-least-once: the fanout itself is best-effort,
// but a consumer can always replay the journal.
type NotificationJournal struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNotificationJournal(db *badger.DB, log *slog.Logger) NotificationJournal {
	return NotificationJournal{db: db, log: log}
}

func (j NotificationJournal) Append(e event.DomainEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	entry := JournalEntry{
		ID:      uuid.New(),
		Event:   e.EventID(),
		Kind:    kindOf(e),
		Payload: payload,
		At:      time.Now().UTC(),
	}
	bytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("ntf:%s:%019d:%s", entry.Event, entry.At.UnixNano(), entry.ID)
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Replay returns the journal of one event in chronological order.
func (j NotificationJournal) Replay(eventID domain.EventID) ([]JournalEntry, error) {
	var entries []JournalEntry
	err := j.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(fmt.Sprintf("ntf:%s:", eventID))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var entry JournalEntry
				if err := json.Unmarshal(value, &entry); err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

func kindOf(e event.DomainEvent) string {
	switch e.(type) {
	case event.RoundStarted:
		return "RoundStarted"
	case event.RoundClosed:
		return "RoundClosed"
	case event.RoomClosed:
		return "RoomClosed"
	case event.ParticipantCompleted:
		return "ParticipantCompleted"
	case event.ParticipantDisconnected:
		return "ParticipantDisconnected"
	case event.EventCompleted:
		return "EventCompleted"
	default:
		return "Unknown"
	}
}
