// Package matching computes round assignments for a speed-dating event.
// The scheduler is a pure function of its inputs: same waiting set, same
// history, same policy, same output. All side effects live in the caller.
package matching

import (
	"sort"

	"github.com/samber/lo"

	"dating-lab/domain"
)

// Candidate is the scheduler's view of a participant.
type Candidate struct {
	ID        domain.ParticipantID
	Category  domain.Category
	JoinedSeq int
}

// HistoryView is the read-only surface the scheduler needs from the
// pairing history.
type HistoryView interface {
	HasMet(a, b domain.ParticipantID) bool
	LastMetRound(a, b domain.ParticipantID) int
}

// Policy decides which candidates may ever be paired together.
// The matching algorithm itself never looks at categories, only at the
// policy, so non-binary pairing rules plug in without touching it.
type Policy interface {
	Compatible(a, b Candidate) bool
	// Partition splits the waiting set into the two sides of the
	// bipartite eligibility graph.
	Partition(waiting []Candidate) (left, right []Candidate)
}

// TwoCategoryPolicy pairs participants of two distinct categories,
// the classic opposite-gender rule.
type TwoCategoryPolicy struct {
	Left  domain.Category
	Right domain.Category
}

func (p TwoCategoryPolicy) Compatible(a, b Candidate) bool {
	return (a.Category == p.Left && b.Category == p.Right) ||
		(a.Category == p.Right && b.Category == p.Left)
}

func (p TwoCategoryPolicy) Partition(waiting []Candidate) ([]Candidate, []Candidate) {
	left := lo.Filter(waiting, func(c Candidate, _ int) bool { return c.Category == p.Left })
	right := lo.Filter(waiting, func(c Candidate, _ int) bool { return c.Category == p.Right })
	return left, right
}

// Pair is one proposed room assignment.
type Pair struct {
	Left  domain.ParticipantID
	Right domain.ParticipantID
}

// Schedule is the outcome of one scheduling pass.
// Pairs, Unmatched, and Exhausted are disjoint:
// 2*len(Pairs) + len(Unmatched) + len(Exhausted) == len(waiting).
type Schedule struct {
	Round     int
	Pairs     []Pair
	Unmatched []domain.ParticipantID // stay Waiting for the next pass
	Exhausted []domain.ParticipantID // no eligible partner left anywhere, flag Completed
}

// Scheduler computes a maximal set of disjoint, never-met pairs.
// With AllowRepeats the never-met constraint relaxes to least-recently-met
// once a participant has met everyone.
type Scheduler struct {
	Policy       Policy
	AllowRepeats bool
}

func NewScheduler(policy Policy, allowRepeats bool) Scheduler {
	return Scheduler{Policy: policy, AllowRepeats: allowRepeats}
}

// Compute builds the eligibility graph over the waiting set and returns a
// maximum bipartite matching, found with augmenting paths. Candidates are
// processed in insertion order so earlier joiners are matched first and the
// result is deterministic. The active set (everyone not disconnected or
// completed, including participants currently in rooms) is needed to tell
// "unlucky this round" apart from "exhausted for the rest of the event".
func (s Scheduler) Compute(round int, waiting, active []Candidate, history HistoryView) Schedule {
	left, right := s.Policy.Partition(waiting)
	byJoin := func(cs []Candidate) {
		sort.Slice(cs, func(i, j int) bool { return cs[i].JoinedSeq < cs[j].JoinedSeq })
	}
	byJoin(left)
	byJoin(right)

	adjacency := s.buildAdjacency(left, right, history)

	// Kuhn's augmenting-path matching. matchOfRight[j] is the left index
	// currently holding right j, or -1.
	matchOfRight := make([]int, len(right))
	for j := range matchOfRight {
		matchOfRight[j] = -1
	}
	var augment func(i int, visited []bool) bool
	augment = func(i int, visited []bool) bool {
		for _, j := range adjacency[i] {
			if visited[j] {
				continue
			}
			visited[j] = true
			if matchOfRight[j] == -1 || augment(matchOfRight[j], visited) {
				matchOfRight[j] = i
				return true
			}
		}
		return false
	}
	for i := range left {
		augment(i, make([]bool, len(right)))
	}

	matchOfLeft := make([]int, len(left))
	for i := range matchOfLeft {
		matchOfLeft[i] = -1
	}
	for j, i := range matchOfRight {
		if i != -1 {
			matchOfLeft[i] = j
		}
	}

	schedule := Schedule{Round: round}
	for i, j := range matchOfLeft {
		if j != -1 {
			schedule.Pairs = append(schedule.Pairs, Pair{Left: left[i].ID, Right: right[j].ID})
		}
	}

	leftover := collectUnmatched(left, matchOfLeft)
	leftover = append(leftover, collectUnmatched(right, matchOfRight)...)
	leftover = append(leftover, outsidePartition(waiting, left, right)...)
	for _, c := range leftover {
		if !s.AllowRepeats && s.exhausted(c, active, history) {
			schedule.Exhausted = append(schedule.Exhausted, c.ID)
		} else {
			schedule.Unmatched = append(schedule.Unmatched, c.ID)
		}
	}
	return schedule
}

// buildAdjacency lists, for each left candidate, the right candidates it may
// meet this round. Strict mode only admits never-met edges. Repeat mode
// admits every compatible edge but orders them least-recently-met first, so
// the oldest reunion is preferred when no fresh partner remains.
func (s Scheduler) buildAdjacency(left, right []Candidate, history HistoryView) [][]int {
	adjacency := make([][]int, len(left))
	for i, l := range left {
		for j, r := range right {
			if !s.Policy.Compatible(l, r) {
				continue
			}
			met := history.HasMet(l.ID, r.ID)
			if met && !s.AllowRepeats {
				continue
			}
			adjacency[i] = append(adjacency[i], j)
		}
		if s.AllowRepeats {
			edges := adjacency[i]
			sort.SliceStable(edges, func(x, y int) bool {
				return history.LastMetRound(l.ID, right[edges[x]].ID) <
					history.LastMetRound(l.ID, right[edges[y]].ID)
			})
		}
	}
	return adjacency
}

// outsidePartition returns the waiting candidates the policy placed on
// neither side of the graph. They cannot be paired under this policy but
// still count: every waiting participant lands in Pairs, Unmatched, or
// Exhausted.
func outsidePartition(waiting, left, right []Candidate) []Candidate {
	sides := make(map[domain.ParticipantID]struct{}, len(left)+len(right))
	for _, c := range left {
		sides[c.ID] = struct{}{}
	}
	for _, c := range right {
		sides[c.ID] = struct{}{}
	}
	return lo.Filter(waiting, func(c Candidate, _ int) bool {
		_, ok := sides[c.ID]
		return !ok
	})
}

func collectUnmatched(side []Candidate, match []int) []Candidate {
	var out []Candidate
	for i, c := range side {
		if match[i] == -1 {
			out = append(out, c)
		}
	}
	return out
}

// exhausted reports whether c has already met every compatible participant
// still active in the event. A candidate with no compatible active peer at
// all is not exhausted: late joiners may yet give them a partner.
func (s Scheduler) exhausted(c Candidate, active []Candidate, history HistoryView) bool {
	anyCompatible := false
	for _, other := range active {
		if other.ID == c.ID || !s.Policy.Compatible(c, other) {
			continue
		}
		anyCompatible = true
		if !history.HasMet(c.ID, other.ID) {
			return false
		}
	}
	return anyCompatible
}

// FromParticipants adapts registry snapshots to scheduler candidates.
func FromParticipants(participants []domain.Participant) []Candidate {
	return lo.Map(participants, func(p domain.Participant, _ int) Candidate {
		return Candidate{ID: p.ID, Category: p.Category, JoinedSeq: p.JoinedSeq}
	})
}
