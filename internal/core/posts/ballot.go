package posts

import "fmt"

// Direction is the requested vote direction
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is "up" or "down"
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// ParseDirection validates a raw direction string
func ParseDirection(raw string) (Direction, error) {
	d := Direction(raw)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, raw)
	}
	return d, nil
}

// VoteState is a single user's standing on a single post
type VoteState int

const (
	StateNeutral VoteState = iota
	StateUpvoted
	StateDownvoted
)

func (s VoteState) String() string {
	switch s {
	case StateUpvoted:
		return "upvoted"
	case StateDownvoted:
		return "downvoted"
	default:
		return "neutral"
	}
}

// VoteStateOf returns userID's current state on the given ledgers
func VoteStateOf(v Votes, userID string) VoteState {
	switch {
	case v.UpVotes.Has(userID):
		return StateUpvoted
	case v.DownVotes.Has(userID):
		return StateDownvoted
	default:
		return StateNeutral
	}
}

// ApplyVote computes the ledgers that result from userID voting in direction dir.
//
//	Neutral   + up   -> Upvoted
//	Upvoted   + up   -> unchanged
//	Downvoted + up   -> leaves downVotes, joins upVotes
//
// and symmetrically for down. The input is never modified; the returned ledgers
// always share no memory with it. Callers validate dir beforehand; an invalid
// direction leaves the state unchanged.
func ApplyVote(v Votes, userID string, dir Direction) Votes {
	next := Votes{UpVotes: v.UpVotes.clone(), DownVotes: v.DownVotes.clone()}
	if userID == "" {
		return next
	}

	switch dir {
	case DirectionUp:
		next.DownVotes = next.DownVotes.without(userID)
		next.UpVotes = next.UpVotes.with(userID)
	case DirectionDown:
		next.UpVotes = next.UpVotes.without(userID)
		next.DownVotes = next.DownVotes.with(userID)
	}
	return next
}
