package leaderboard

import (
	"sort"

	"github.com/speedrunhq/quiz-client/pkg/protocol"
)

// WindowSize is the number of rows a windowed leaderboard occupies,
// entries and omission markers combined.
const WindowSize = 9

// Instruction is one row of a rendered leaderboard: an entry with its
// 1-indexed rank, or an omission marker standing in for a gap.
type Instruction struct {
	Entry    protocol.LeaderboardItem
	Rank     int
	Omission bool
}

// SortByScore returns a copy of the entries ordered by score descending.
// The sort is stable: ties keep their original arrival order.
func SortByScore(entries []protocol.LeaderboardItem) []protocol.LeaderboardItem {
	ranked := make([]protocol.LeaderboardItem, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Window compresses a ranked list into at most WindowSize rows while
// keeping the focal participant visible with its surrounding context.
//
// With nine or fewer entries everything is rendered. Otherwise the rows
// are chosen by where the focal participant ranks: near the front, the
// top six plus the last two; near the back, the top two plus the last
// six; in the middle, the top two, the focal entry with one neighbor on
// each side, and the last two. Omission markers appear only where
// consecutive rendered ranks actually skip entries, and are never
// adjacent. The function is pure: identical inputs give identical output.
func Window(ranked []protocol.LeaderboardItem, focalID string) []Instruction {
	n := len(ranked)
	if n <= WindowSize {
		out := make([]Instruction, 0, n)
		for i, entry := range ranked {
			out = append(out, Instruction{Entry: entry, Rank: i + 1})
		}
		return out
	}

	focal := 0
	for i, entry := range ranked {
		if entry.UserID == focalID {
			focal = i
			break
		}
	}

	var indexes []int
	switch {
	case focal <= 4:
		indexes = []int{0, 1, 2, 3, 4, 5, n - 2, n - 1}
	case focal >= n-5:
		indexes = []int{0, 1, n - 6, n - 5, n - 4, n - 3, n - 2, n - 1}
	default:
		indexes = []int{0, 1, focal - 1, focal, focal + 1, n - 2, n - 1}
	}

	out := make([]Instruction, 0, WindowSize)
	for i, cur := range indexes {
		out = append(out, Instruction{Entry: ranked[cur], Rank: cur + 1})
		if i+1 < len(indexes) && indexes[i+1]-cur > 1 {
			out = append(out, Instruction{Omission: true})
		}
	}
	return out
}
