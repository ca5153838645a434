package domain

// RoomID is the opaque handle returned by the external video-room provider.
type RoomID string

type RoomState int

const (
	RoomOpen RoomState = iota
	RoomClosed
)

func (s RoomState) String() string {
	if s == RoomOpen {
		return "Open"
	}
	return "Closed"
}

// Room tracks the lifecycle of one provisioned video room during a round.
// Occupants are weak references: a room may close independently of the
// participants' own state.
type Room struct {
	ID        RoomID
	Occupants [2]ParticipantID
	State     RoomState
	Round     int
}

func NewRoom(id RoomID, a, b ParticipantID, round int) *Room {
	return &Room{ID: id, Occupants: [2]ParticipantID{a, b}, State: RoomOpen, Round: round}
}

func (r *Room) Holds(id ParticipantID) bool {
	return r.Occupants[0] == id || r.Occupants[1] == id
}

// PartnerOf returns the other occupant, or "" if id is not in the room.
func (r *Room) PartnerOf(id ParticipantID) ParticipantID {
	switch id {
	case r.Occupants[0]:
		return r.Occupants[1]
	case r.Occupants[1]:
		return r.Occupants[0]
	}
	return ""
}
