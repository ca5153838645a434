package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dating-lab/errors"
)

func TestHistory_RecordAndLookup(t *testing.T) {
	req := require.New(t)
	history := NewHistory()

	req.False(history.HasMet("alice", "bob"))
	req.Equal(-1, history.LastMetRound("alice", "bob"))

	req.NoError(history.Record("alice", "bob", 1))

	req.True(history.HasMet("alice", "bob"))
	req.True(history.HasMet("bob", "alice"), "lookups are order-independent")
	req.Equal(1, history.LastMetRound("bob", "alice"))
}

func TestHistory_DuplicateRecordIsRejected(t *testing.T) {
	req := require.New(t)
	history := NewHistory()

	req.NoError(history.Record("alice", "bob", 3))
	req.ErrorIs(history.Record("alice", "bob", 3), errors.ErrAlreadyRecorded)
	req.ErrorIs(history.Record("bob", "alice", 3), errors.ErrAlreadyRecorded,
		"order-independent duplicate detection")

	// The log keeps a single entry
	req.Len(history.Records(), 1)
}

func TestHistory_SamePairDifferentRounds(t *testing.T) {
	req := require.New(t)
	history := NewHistory()

	req.NoError(history.Record("alice", "bob", 1))
	req.NoError(history.Record("alice", "bob", 4))

	req.Equal(4, history.LastMetRound("alice", "bob"))
	req.Len(history.Records(), 2)
}

func TestHistory_LastMetNeverRegresses(t *testing.T) {
	req := require.New(t)
	history := NewHistory()

	// Replay after a restore may feed rounds out of order
	req.NoError(history.Record("alice", "bob", 5))
	req.NoError(history.Record("alice", "bob", 2))

	req.Equal(5, history.LastMetRound("alice", "bob"))
}

func TestHistory_PartnersOf(t *testing.T) {
	req := require.New(t)
	history := NewHistory()

	req.NoError(history.Record("m1", "w2", 1))
	req.NoError(history.Record("m1", "w1", 2))
	req.NoError(history.Record("m2", "w1", 1))

	req.Equal([]ParticipantID{"w1", "w2"}, history.PartnersOf("m1"))
	req.Equal([]ParticipantID{"m1", "m2"}, history.PartnersOf("w1"))
	req.Empty(history.PartnersOf("m3"))
}

func TestHistory_KeyOfCanonicalizes(t *testing.T) {
	req := require.New(t)

	req.Equal(KeyOf("a", "b"), KeyOf("b", "a"))
	req.Equal(PairKey{A: "a", B: "b"}, KeyOf("b", "a"))
}
