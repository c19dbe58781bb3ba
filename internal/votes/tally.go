// Package votes accumulates and resolves one round of votes.
package votes

import "sort"

// Outcome is the resolution of a round. Eliminated is empty on a tie.
type Outcome struct {
	Counts     map[string]int
	Eliminated string
	Tie        bool
}

// Tally holds the votes of the current round, keyed voter -> target.
// It is owned by a single room and not safe for concurrent use.
type Tally struct {
	votes map[string]string
}

func NewTally() *Tally {
	return &Tally{votes: make(map[string]string)}
}

// Cast records a vote, replacing the voter's earlier choice.
func (t *Tally) Cast(voterID, targetID string) {
	t.votes[voterID] = targetID
}

func (t *Tally) VoteOf(voterID string) (string, bool) {
	target, ok := t.votes[voterID]
	return target, ok
}

func (t *Tally) Len() int {
	return len(t.votes)
}

// Votes returns a copy of the cast votes.
func (t *Tally) Votes() map[string]string {
	out := make(map[string]string, len(t.votes))
	for k, v := range t.votes {
		out[k] = v
	}
	return out
}

// Pending returns the eligible voters that have not voted yet.
func (t *Tally) Pending(eligible []string) []string {
	var out []string
	for _, id := range eligible {
		if _, ok := t.votes[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Complete reports whether every eligible voter has cast a vote. A tally
// without any vote is never complete.
func (t *Tally) Complete(eligible []string) bool {
	if len(t.votes) == 0 {
		return false
	}
	return len(t.Pending(eligible)) == 0
}

func (t *Tally) Resolve() Outcome {
	return Resolve(t.votes)
}

func (t *Tally) Clear() {
	clear(t.votes)
}

// Resolve counts votes per target. A single target holding the maximum is
// eliminated; a shared maximum (or no votes) eliminates nobody.
func Resolve(votes map[string]string) Outcome {
	counts := make(map[string]int)
	for _, target := range votes {
		counts[target]++
	}

	out := Outcome{Counts: counts}
	best := 0
	var leaders []string
	for target, n := range counts {
		switch {
		case n > best:
			best = n
			leaders = []string{target}
		case n == best:
			leaders = append(leaders, target)
		}
	}
	if len(leaders) != 1 {
		out.Tie = true
		return out
	}
	out.Eliminated = leaders[0]
	return out
}

// Ranked returns targets ordered by vote count, highest first, ties broken
// by id so the order is stable.
func (o Outcome) Ranked() []string {
	ids := make([]string, 0, len(o.Counts))
	for id := range o.Counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if o.Counts[ids[i]] != o.Counts[ids[j]] {
			return o.Counts[ids[i]] > o.Counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}
