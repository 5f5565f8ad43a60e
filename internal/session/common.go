package session

import (
	"time"

	"github.com/speedrunhq/quiz-client/internal/transport"
	"github.com/speedrunhq/quiz-client/pkg/protocol"
)

// Role is fixed per session from the credential and never reverts except
// on full reset.
type Role string

const (
	RoleUnknown     Role = "unknown"
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// Common is the state partition shared by host and participant sessions.
// All transitions are pure: current value in, next value out, never fatal.
type Common struct {
	Role            Role
	ConnectionState transport.State
	Leaderboard     []protocol.LeaderboardItem
	TotalFinished   int
	RoomID          string
	Credential      string
	StartedAt       time.Time
}

// NewCommon returns the declared initial value of the partition.
func NewCommon() Common {
	return Common{
		Role:            RoleUnknown,
		ConnectionState: transport.StateUninitialized,
	}
}

// WithRole sets the role once. Attempts to change an already-set role are
// ignored; only Reset reverts it.
func (c Common) WithRole(role Role) Common {
	if c.Role != RoleUnknown {
		return c
	}
	if role != RoleHost && role != RoleParticipant {
		return c
	}
	c.Role = role
	return c
}

// WithConnectionState mirrors the channel state for display.
func (c Common) WithConnectionState(state transport.State) Common {
	c.ConnectionState = state
	return c
}

// WithRoom records the room id and credential from sign-on.
func (c Common) WithRoom(roomID, credential string) Common {
	c.RoomID = roomID
	c.Credential = credential
	return c
}

// WithStartedAt records the session start time, once.
func (c Common) WithStartedAt(t time.Time) Common {
	if !c.StartedAt.IsZero() {
		return c
	}
	c.StartedAt = t
	return c
}

// WithLeaderboard replaces the leaderboard wholesale (never merged) and
// recomputes the finished-participant count from the broadcast.
func (c Common) WithLeaderboard(items []protocol.LeaderboardItem) Common {
	c.Leaderboard = items
	finished := 0
	for _, item := range items {
		if item.Finished {
			finished++
		}
	}
	c.TotalFinished = finished
	return c
}

// WithAnnouncedParticipant merges a single participant announcement into
// the leaderboard: updates the name if the id is known, otherwise appends
// a zero-score entry.
func (c Common) WithAnnouncedParticipant(userID, name string) Common {
	if userID == "" {
		return c
	}
	updated := make([]protocol.LeaderboardItem, len(c.Leaderboard))
	copy(updated, c.Leaderboard)
	for i := range updated {
		if updated[i].UserID == userID {
			updated[i].Name = name
			c.Leaderboard = updated
			return c
		}
	}
	c.Leaderboard = append(updated, protocol.LeaderboardItem{UserID: userID, Name: name})
	return c
}

// Reset restores the initial value. Idempotent.
func (c Common) Reset() Common {
	return NewCommon()
}
