package votes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		votes      map[string]string
		eliminated string
		tie        bool
	}{
		{"no votes", map[string]string{}, "", true},
		{"single vote", map[string]string{"a": "b"}, "b", false},
		{"plurality", map[string]string{"a": "c", "b": "c", "c": "a"}, "c", false},
		{"two way tie", map[string]string{"a": "b", "b": "a"}, "", true},
		{"three way tie", map[string]string{"a": "b", "b": "c", "c": "a"}, "", true},
		{"plurality among spread", map[string]string{"a": "d", "b": "d", "c": "a", "d": "b", "e": "d"}, "d", false},
		{"tie at top with lower votes", map[string]string{"a": "c", "b": "c", "c": "a", "d": "a", "e": "b"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resolve(tt.votes)
			assert.Equal(t, tt.eliminated, out.Eliminated)
			assert.Equal(t, tt.tie, out.Tie)
		})
	}
}

func TestTally_CastOverwrites(t *testing.T) {
	tl := NewTally()
	tl.Cast("a", "b")
	tl.Cast("a", "c")

	got, ok := tl.VoteOf("a")
	assert.True(t, ok)
	assert.Equal(t, "c", got)
	assert.Equal(t, 1, tl.Len())
	assert.Equal(t, map[string]int{"c": 1}, tl.Resolve().Counts)
}

func TestTally_Complete(t *testing.T) {
	tl := NewTally()
	eligible := []string{"a", "b", "c"}

	assert.False(t, tl.Complete(eligible), "empty tally is never complete")
	assert.False(t, tl.Complete(nil), "empty tally is never complete, even with no voters")

	tl.Cast("a", "b")
	tl.Cast("b", "a")
	assert.False(t, tl.Complete(eligible))
	assert.Equal(t, []string{"c"}, tl.Pending(eligible))

	tl.Cast("c", "a")
	assert.True(t, tl.Complete(eligible))
	assert.Empty(t, tl.Pending(eligible))
}

func TestTally_VotesFromOutsideEligibleStillCount(t *testing.T) {
	tl := NewTally()
	tl.Cast("gone", "c")
	tl.Cast("a", "c")
	tl.Cast("b", "a")

	assert.True(t, tl.Complete([]string{"a", "b"}))
	assert.Equal(t, "c", tl.Resolve().Eliminated)
}

func TestTally_VotesReturnsCopy(t *testing.T) {
	tl := NewTally()
	tl.Cast("a", "b")
	v := tl.Votes()
	v["a"] = "z"

	got, _ := tl.VoteOf("a")
	assert.Equal(t, "b", got)
}

func TestTally_Clear(t *testing.T) {
	tl := NewTally()
	tl.Cast("a", "b")
	tl.Clear()
	assert.Equal(t, 0, tl.Len())
}

func TestOutcome_Ranked(t *testing.T) {
	out := Resolve(map[string]string{"a": "c", "b": "c", "c": "b", "d": "a"})
	assert.Equal(t, []string{"c", "a", "b"}, out.Ranked())
}
