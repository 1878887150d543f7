package posts

import (
	"sort"
	"time"
)

// Ledger tracks the users who cast one vote direction on a post.
// Count always equals len(Users); Users is kept sorted and free of duplicates.
type Ledger struct {
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// NewLedger builds a ledger from the given user ids, dropping duplicates and empty ids
func NewLedger(users ...string) Ledger {
	seen := make(map[string]struct{}, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	sort.Strings(out)
	return Ledger{Users: out, Count: len(out)}
}

// Has reports whether userID is a member of the ledger
func (l Ledger) Has(userID string) bool {
	i := sort.SearchStrings(l.Users, userID)
	return i < len(l.Users) && l.Users[i] == userID
}

// with returns a copy of the ledger that includes userID
func (l Ledger) with(userID string) Ledger {
	if l.Has(userID) {
		return l.clone()
	}
	out := make([]string, 0, len(l.Users)+1)
	out = append(out, l.Users...)
	out = append(out, userID)
	sort.Strings(out)
	return Ledger{Users: out, Count: len(out)}
}

// without returns a copy of the ledger that excludes userID
func (l Ledger) without(userID string) Ledger {
	out := make([]string, 0, len(l.Users))
	for _, u := range l.Users {
		if u != userID {
			out = append(out, u)
		}
	}
	return Ledger{Users: out, Count: len(out)}
}

func (l Ledger) clone() Ledger {
	out := make([]string, len(l.Users))
	copy(out, l.Users)
	return Ledger{Users: out, Count: len(out)}
}

// Votes holds both vote ledgers of a post
type Votes struct {
	UpVotes   Ledger `json:"upVotes"`
	DownVotes Ledger `json:"downVotes"`
}

// EmptyVotes returns the ledgers of a freshly created post
func EmptyVotes() Votes {
	return Votes{UpVotes: NewLedger(), DownVotes: NewLedger()}
}

// Consistent reports whether both ledgers satisfy the count and mutual exclusivity invariants
func (v Votes) Consistent() bool {
	if v.UpVotes.Count != len(v.UpVotes.Users) || v.DownVotes.Count != len(v.DownVotes.Users) {
		return false
	}
	for _, u := range v.UpVotes.Users {
		if v.DownVotes.Has(u) {
			return false
		}
	}
	return true
}

// Normalize rebuilds both ledgers from their user sets. A user found in both
// ledgers keeps the upvote.
func (v Votes) Normalize() Votes {
	up := NewLedger(v.UpVotes.Users...)
	down := NewLedger(v.DownVotes.Users...)
	for _, u := range up.Users {
		if down.Has(u) {
			down = down.without(u)
		}
	}
	return Votes{UpVotes: up, DownVotes: down}
}

// Post is a user-authored post together with its vote ledgers.
// ID and AuthorID never change once the post is created.
type Post struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	ID        string    `json:"_id" db:"id"`
	Content   string    `json:"content" db:"content"`
	AuthorID  string    `json:"userId" db:"author_id"`
	Votes     Votes     `json:"votes"`
	Version   int64     `json:"-" db:"version"`
}

// IsOwnedBy reports whether userID authored the post
func (p *Post) IsOwnedBy(userID string) bool {
	return userID != "" && p.AuthorID == userID
}

// Clone returns a deep copy of the post
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Votes = Votes{UpVotes: p.Votes.UpVotes.clone(), DownVotes: p.Votes.DownVotes.clone()}
	return &cp
}

// CreatePostRequest is the validated input for creating a post
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// UpdatePostRequest is the validated input for replacing a post's content
type UpdatePostRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}
