package roster

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientData indicates statistics were requested on an empty or
// structurally degenerate snapshot (no teams, no primary teams, or no
// team with any members).
var ErrInsufficientData = errors.New("not enough roster data for statistics")

// Summary renders one line per team in sorted order: the code padded to a
// fixed width, the member count right-aligned, and a trailing marker for
// teams without a leader.
func (s Snapshot) Summary() string {
	lines := []string{"Members per team"}
	for _, t := range s {
		line := fmt.Sprintf("%-30s %2d", t.Code, t.Members)
		if !t.HasLeader {
			line += "  No leader"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Warnings renders the six anomaly counts in fixed order.
func (s Snapshot) Warnings() string {
	lines := []string{
		fmt.Sprintf("Empty teams: %d", len(s.EmptyCodes())),
		fmt.Sprintf("Teams without leaders: %d", len(s.MissingLeaderCodes())),
		fmt.Sprintf("Teams with only leaders: %d", len(s.LeaderOnlyCodes())),
		fmt.Sprintf("Empty primary teams: %d", len(s.EmptyPrimaryCodes())),
		fmt.Sprintf("Primary teams without leaders: %d", len(s.MissingLeaderPrimaryCodes())),
		fmt.Sprintf("Primary teams with only leaders: %d", len(s.LeaderOnlyPrimaryCodes())),
	}
	return strings.Join(lines, "\n")
}

// Statistics renders aggregate roster statistics. It returns
// ErrInsufficientData instead of dividing by zero: on an empty snapshot,
// when no team is primary, or when no team has any members.
func (s Snapshot) Statistics() (string, error) {
	numTeams := len(s)
	if numTeams == 0 {
		return "", ErrInsufficientData
	}
	numSchools := s.SchoolCount()
	if numSchools == 0 {
		return "", ErrInsufficientData
	}
	numMembers := s.TotalMembers()

	// Ties on size go to the first team in sorted order.
	maxTeam, minTeam := Team{}, Team{}
	for _, t := range s {
		if t.Members > maxTeam.Members {
			maxTeam = t
		}
		if t.Members > 0 && (minTeam.Code == "" || t.Members < minTeam.Members) {
			minTeam = t
		}
	}
	if minTeam.Code == "" {
		return "", ErrInsufficientData
	}

	// Group by school in first-encounter order; ties on the average go to
	// the earliest school.
	schools := []string{}
	sizes := map[string][]int{}
	for _, t := range s {
		if _, seen := sizes[t.School]; !seen {
			schools = append(schools, t.School)
		}
		sizes[t.School] = append(sizes[t.School], t.Members)
	}
	bestSchool, bestAvg := "", -1.0
	for _, school := range schools {
		total := 0
		for _, n := range sizes[school] {
			total += n
		}
		avg := float64(total) / float64(len(sizes[school]))
		if avg > bestAvg {
			bestSchool, bestAvg = school, avg
		}
	}

	lines := []string{
		fmt.Sprintf("Total teams: %d", numTeams),
		fmt.Sprintf("Total schools: %d", numSchools),
		fmt.Sprintf("Total members: %d", numMembers),
		fmt.Sprintf("Max team size: %d (%s)", maxTeam.Members, maxTeam.Code),
		fmt.Sprintf("Min team size: %d (%s)", minTeam.Members, minTeam.Code),
		fmt.Sprintf("Average team size: %.1f", float64(numMembers)/float64(numTeams)),
		fmt.Sprintf("Average school members: %.1f", float64(numMembers)/float64(numSchools)),
		fmt.Sprintf("Max average school team size: %.1f (%s)", bestAvg, bestSchool),
	}
	return strings.Join(lines, "\n"), nil
}
