package posts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func votesFor(t *testing.T, state VoteState, user string) Votes {
	t.Helper()
	v := EmptyVotes()
	switch state {
	case StateUpvoted:
		v.UpVotes = NewLedger(user, "bystander-up")
		v.DownVotes = NewLedger("bystander-down")
	case StateDownvoted:
		v.UpVotes = NewLedger("bystander-up")
		v.DownVotes = NewLedger(user, "bystander-down")
	default:
		v.UpVotes = NewLedger("bystander-up")
		v.DownVotes = NewLedger("bystander-down")
	}
	require.True(t, v.Consistent())
	return v
}

// TestApplyVote_Transitions covers every (state, direction) pair
func TestApplyVote_Transitions(t *testing.T) {
	const user = "user-2"

	tests := []struct {
		name      string
		from      VoteState
		dir       Direction
		want      VoteState
		deltaUp   int
		deltaDown int
	}{
		{"neutral up", StateNeutral, DirectionUp, StateUpvoted, +1, 0},
		{"neutral down", StateNeutral, DirectionDown, StateDownvoted, 0, +1},
		{"upvoted up is idempotent", StateUpvoted, DirectionUp, StateUpvoted, 0, 0},
		{"upvoted down toggles", StateUpvoted, DirectionDown, StateDownvoted, -1, +1},
		{"downvoted up toggles", StateDownvoted, DirectionUp, StateUpvoted, +1, -1},
		{"downvoted down is idempotent", StateDownvoted, DirectionDown, StateDownvoted, 0, 0},
		{"neutral invalid direction", StateNeutral, Direction("sideways"), StateNeutral, 0, 0},
		{"upvoted invalid direction", StateUpvoted, Direction(""), StateUpvoted, 0, 0},
		{"downvoted invalid direction", StateDownvoted, Direction("UP"), StateDownvoted, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := votesFor(t, tt.from, user)
			after := ApplyVote(before, user, tt.dir)

			assert.Equal(t, tt.want, VoteStateOf(after, user))
			assert.Equal(t, before.UpVotes.Count+tt.deltaUp, after.UpVotes.Count)
			assert.Equal(t, before.DownVotes.Count+tt.deltaDown, after.DownVotes.Count)
			assert.True(t, after.Consistent(), "ledgers must stay consistent")

			// other voters are untouched
			assert.True(t, after.UpVotes.Has("bystander-up"))
			assert.True(t, after.DownVotes.Has("bystander-down"))
		})
	}
}

func TestApplyVote_DoesNotMutateInput(t *testing.T) {
	before := Votes{UpVotes: NewLedger("a", "b"), DownVotes: NewLedger("c")}
	snapshot := Votes{UpVotes: before.UpVotes.clone(), DownVotes: before.DownVotes.clone()}

	after := ApplyVote(before, "a", DirectionDown)
	assert.Equal(t, snapshot, before)

	// no shared backing arrays
	after.UpVotes.Users = append(after.UpVotes.Users[:0], "zzz")
	assert.Equal(t, snapshot, before)
}

func TestApplyVote_ToggleLaw(t *testing.T) {
	start := Votes{UpVotes: NewLedger("x"), DownVotes: NewLedger("y")}

	up := ApplyVote(start, "u", DirectionUp)
	down := ApplyVote(up, "u", DirectionDown)

	assert.Equal(t, up.UpVotes.Count-1, down.UpVotes.Count)
	assert.Equal(t, up.DownVotes.Count+1, down.DownVotes.Count)
	assert.False(t, down.UpVotes.Has("u"))
	assert.True(t, down.DownVotes.Has("u"))
}

func TestApplyVote_EmptyUserIsIgnored(t *testing.T) {
	start := EmptyVotes()
	assert.Equal(t, start, ApplyVote(start, "", DirectionUp))
}

func TestNewLedger(t *testing.T) {
	l := NewLedger("b", "a", "", "b")
	assert.Equal(t, []string{"a", "b"}, l.Users)
	assert.Equal(t, 2, l.Count)
	assert.True(t, l.Has("a"))
	assert.False(t, l.Has("c"))

	empty := NewLedger()
	assert.NotNil(t, empty.Users)
	assert.Equal(t, 0, empty.Count)
}

func TestVotes_ConsistentAndNormalize(t *testing.T) {
	broken := Votes{
		UpVotes:   Ledger{Users: []string{"a", "b"}, Count: 5},
		DownVotes: Ledger{Users: []string{"b", "c"}, Count: 2},
	}
	assert.False(t, broken.Consistent())

	fixed := broken.Normalize()
	assert.True(t, fixed.Consistent())
	assert.Equal(t, []string{"a", "b"}, fixed.UpVotes.Users)
	assert.Equal(t, []string{"c"}, fixed.DownVotes.Users)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, DirectionUp, d)

	d, err = ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, DirectionDown, d)

	_, err = ParseDirection("left")
	assert.True(t, errors.Is(err, ErrInvalidDirection))
}

func TestVoteState_String(t *testing.T) {
	assert.Equal(t, "neutral", StateNeutral.String())
	assert.Equal(t, "upvoted", StateUpvoted.String())
	assert.Equal(t, "downvoted", StateDownvoted.String())
}
