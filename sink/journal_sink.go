package sink

import (
	"context"

	"dating-lab/domain/event"
	"dating-lab/repositories"
)

// JournalSink persists notifications through the badger journal, backing the
// at-least-once delivery contract.
type JournalSink struct {
	journal repositories.NotificationJournal
}

func NewJournalSink(journal repositories.NotificationJournal) JournalSink {
	return JournalSink{journal: journal}
}

func (s JournalSink) Consume(_ context.Context, e event.DomainEvent) error {
	return s.journal.Append(e)
}
