package leaderboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedrunhq/quiz-client/pkg/protocol"
)

func rankedEntries(n int) []protocol.LeaderboardItem {
	// Scores descend with rank so the list is already in ranked order.
	entries := make([]protocol.LeaderboardItem, n)
	for i := 0; i < n; i++ {
		entries[i] = protocol.LeaderboardItem{
			UserID: fmt.Sprintf("user-%d", i+1),
			Name:   fmt.Sprintf("player %d", i+1),
			Score:  1000 - i,
		}
	}
	return entries
}

func renderedRanks(rows []Instruction) []int {
	var ranks []int
	for _, row := range rows {
		if !row.Omission {
			ranks = append(ranks, row.Rank)
		}
	}
	return ranks
}

func TestSortByScoreStableOnTies(t *testing.T) {
	entries := []protocol.LeaderboardItem{
		{UserID: "a", Score: 50},
		{UserID: "b", Score: 80},
		{UserID: "c", Score: 50},
		{UserID: "d", Score: 20},
	}

	ranked := SortByScore(entries)

	assert.Equal(t, []string{"b", "a", "c", "d"}, []string{ranked[0].UserID, ranked[1].UserID, ranked[2].UserID, ranked[3].UserID})
	// Input order untouched.
	assert.Equal(t, "a", entries[0].UserID)
}

func TestWindowSmallRoomRendersAll(t *testing.T) {
	entries := SortByScore([]protocol.LeaderboardItem{
		{UserID: "A", Name: "A", Score: 50},
		{UserID: "B", Name: "B", Score: 80},
		{UserID: "C", Name: "C", Score: 20},
	})

	rows := Window(entries, "A")

	require.Len(t, rows, 3)
	assert.Equal(t, "B", rows[0].Entry.UserID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "A", rows[1].Entry.UserID)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, "C", rows[2].Entry.UserID)
	assert.Equal(t, 3, rows[2].Rank)
	for _, row := range rows {
		assert.False(t, row.Omission)
	}
}

func TestWindowFocalNearFront(t *testing.T) {
	rows := Window(rankedEntries(20), "user-3")

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 19, 20}, renderedRanks(rows))
	require.Len(t, rows, 9)
	assert.True(t, rows[6].Omission)
}

func TestWindowFocalInMiddle(t *testing.T) {
	rows := Window(rankedEntries(20), "user-12")

	assert.Equal(t, []int{1, 2, 11, 12, 13, 19, 20}, renderedRanks(rows))
	require.Len(t, rows, 9)
	assert.True(t, rows[2].Omission)
	assert.True(t, rows[6].Omission)
}

func TestWindowFocalNearBack(t *testing.T) {
	rows := Window(rankedEntries(20), "user-18")

	assert.Equal(t, []int{1, 2, 15, 16, 17, 18, 19, 20}, renderedRanks(rows))
	require.Len(t, rows, 9)
	assert.True(t, rows[2].Omission)
}

func TestWindowBounds(t *testing.T) {
	for n := 1; n <= 30; n++ {
		for focal := 1; focal <= n; focal++ {
			rows := Window(rankedEntries(n), fmt.Sprintf("user-%d", focal))

			if n <= WindowSize {
				assert.Len(t, rows, n, "n=%d focal=%d", n, focal)
				for _, row := range rows {
					assert.False(t, row.Omission, "n=%d focal=%d", n, focal)
				}
				continue
			}

			assert.Len(t, rows, WindowSize, "n=%d focal=%d", n, focal)

			omissions := 0
			focalSeen := false
			for i, row := range rows {
				if row.Omission {
					omissions++
					if i > 0 {
						assert.False(t, rows[i-1].Omission, "adjacent omissions n=%d focal=%d", n, focal)
					}
					continue
				}
				if row.Entry.UserID == fmt.Sprintf("user-%d", focal) {
					focalSeen = true
				}
			}
			assert.True(t, focalSeen, "focal missing n=%d focal=%d", n, focal)
			assert.GreaterOrEqual(t, omissions, 1, "n=%d focal=%d", n, focal)
			assert.LessOrEqual(t, omissions, 2, "n=%d focal=%d", n, focal)

			// Omissions only where ranks actually skip.
			ranks := renderedRanks(rows)
			for i := 1; i < len(ranks); i++ {
				assert.Greater(t, ranks[i], ranks[i-1], "order n=%d focal=%d", n, focal)
			}
		}
	}
}

func TestWindowDeterministic(t *testing.T) {
	entries := rankedEntries(25)
	first := Window(entries, "user-13")
	second := Window(entries, "user-13")
	assert.Equal(t, first, second)
}

func TestWindowUnknownFocalFallsBackToFront(t *testing.T) {
	rows := Window(rankedEntries(15), "nobody")

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 14, 15}, renderedRanks(rows))
}
