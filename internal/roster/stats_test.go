package roster

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exampleSnapshot is the three-team roster used across the statistics
// tests: A1 has 3 members and a leader, A2 is empty, B has 5 and a leader.
func exampleSnapshot() Snapshot {
	return Snapshot{
		{Code: "A1", School: "A", Index: 1, Members: 3, HasLeader: true},
		{Code: "A2", School: "A", Index: 2, Members: 0, HasLeader: false},
		{Code: "B", School: "B", Index: 0, Members: 5, HasLeader: true},
	}
}

func TestWarningBuckets(t *testing.T) {
	snap := exampleSnapshot()

	assert.Equal(t, []string{"A2"}, snap.EmptyCodes())
	assert.Empty(t, snap.MissingLeaderCodes())
	assert.Empty(t, snap.LeaderOnlyCodes())

	t.Run("buckets are disjoint", func(t *testing.T) {
		snap := Snapshot{
			{Code: "C1", Members: 0, HasLeader: false},
			{Code: "C2", Members: 0, HasLeader: true},
			{Code: "C3", Members: 4, HasLeader: false},
			{Code: "C4", Members: 4, HasLeader: true},
		}
		seen := map[string]int{}
		for _, bucket := range [][]string{snap.EmptyCodes(), snap.MissingLeaderCodes(), snap.LeaderOnlyCodes()} {
			for _, code := range bucket {
				seen[code]++
			}
		}
		for code, count := range seen {
			assert.Equal(t, 1, count, "code %s in multiple buckets", code)
		}
		assert.NotContains(t, seen, "C4")
	})

	t.Run("primary variants filter to primary teams", func(t *testing.T) {
		snap := Snapshot{
			{Code: "A1", Index: 1, Members: 0, HasLeader: false},
			{Code: "A2", Index: 2, Members: 0, HasLeader: false},
		}
		assert.Equal(t, []string{"A1", "A2"}, snap.EmptyCodes())
		assert.Equal(t, []string{"A1"}, snap.EmptyPrimaryCodes())
	})
}

func TestSummary(t *testing.T) {
	snap := exampleSnapshot()
	out := snap.Summary()

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Members per team", lines[0])
	assert.Equal(t, fmt.Sprintf("%-30s %2d", "A1", 3), lines[1])
	assert.Equal(t, fmt.Sprintf("%-30s %2d", "A2", 0)+"  No leader", lines[2])
	assert.Equal(t, fmt.Sprintf("%-30s %2d", "B", 5), lines[3])

	t.Run("rendering is idempotent", func(t *testing.T) {
		assert.Equal(t, out, snap.Summary())
	})
}

func TestWarningsText(t *testing.T) {
	snap := exampleSnapshot()

	assert.Equal(t, strings.Join([]string{
		"Empty teams: 1",
		"Teams without leaders: 0",
		"Teams with only leaders: 0",
		"Empty primary teams: 0",
		"Primary teams without leaders: 0",
		"Primary teams with only leaders: 0",
	}, "\n"), snap.Warnings())
}

func TestStatistics(t *testing.T) {
	t.Run("example roster", func(t *testing.T) {
		snap := exampleSnapshot()
		out, err := snap.Statistics()
		require.NoError(t, err)

		lines := strings.Split(out, "\n")
		require.Len(t, lines, 8)
		assert.Equal(t, "Total teams: 3", lines[0])
		assert.Equal(t, "Total schools: 2", lines[1])
		assert.Equal(t, "Total members: 8", lines[2])
		assert.Equal(t, "Max team size: 5 (B)", lines[3])
		assert.Equal(t, "Min team size: 3 (A1)", lines[4])
		assert.Equal(t, "Average team size: 2.7", lines[5])
		assert.Equal(t, "Average school members: 4.0", lines[6])
		// school means: A = (3+0)/2 = 1.5, B = 5.0
		assert.Equal(t, "Max average school team size: 5.0 (B)", lines[7])
	})

	t.Run("total members matches the snapshot sum", func(t *testing.T) {
		snap := exampleSnapshot()
		out, err := snap.Statistics()
		require.NoError(t, err)
		assert.Contains(t, out, fmt.Sprintf("Total members: %d", snap.TotalMembers()))
	})

	t.Run("size ties go to the first team in sorted order", func(t *testing.T) {
		snap := Snapshot{
			{Code: "A1", School: "A", Index: 1, Members: 4, HasLeader: true},
			{Code: "B1", School: "B", Index: 1, Members: 4, HasLeader: true},
		}
		out, err := snap.Statistics()
		require.NoError(t, err)
		assert.Contains(t, out, "Max team size: 4 (A1)")
		assert.Contains(t, out, "Min team size: 4 (A1)")
	})

	t.Run("min ignores empty teams", func(t *testing.T) {
		snap := Snapshot{
			{Code: "A1", School: "A", Index: 1, Members: 0},
			{Code: "B1", School: "B", Index: 1, Members: 2},
		}
		out, err := snap.Statistics()
		require.NoError(t, err)
		assert.Contains(t, out, "Min team size: 2 (B1)")
	})

	t.Run("empty snapshot", func(t *testing.T) {
		_, err := Snapshot{}.Statistics()
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("no primary teams", func(t *testing.T) {
		snap := Snapshot{
			{Code: "A2", School: "A", Index: 2, Members: 3},
		}
		_, err := snap.Statistics()
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("no team has members", func(t *testing.T) {
		snap := Snapshot{
			{Code: "A1", School: "A", Index: 1, Members: 0},
		}
		_, err := snap.Statistics()
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestCompose(t *testing.T) {
	snap := exampleSnapshot()

	t.Run("sections appear in fixed order", func(t *testing.T) {
		out := Compose(snap, ReportOptions{Members: true, Warnings: true, Stats: true})

		stats, err := snap.Statistics()
		require.NoError(t, err)
		expected := "```\n" + snap.Summary() + "\n \n" + snap.Warnings() + "\n \n" + stats + "\n```"
		assert.Equal(t, expected, out)
	})

	t.Run("no options enabled falls back to the default selection", func(t *testing.T) {
		out := Compose(snap, ReportOptions{})
		assert.Equal(t, Compose(snap, DefaultReportOptions()), out)
		assert.Contains(t, out, "Members per team")
		assert.Contains(t, out, "Empty teams: 1")
		assert.NotContains(t, out, "Total teams:")
	})

	t.Run("insufficient data renders a notice", func(t *testing.T) {
		out := Compose(Snapshot{}, ReportOptions{Stats: true})
		assert.Equal(t, "```\nNot enough data to compute statistics\n```", out)
	})
}
