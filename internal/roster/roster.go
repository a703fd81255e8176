// Package roster builds normalized team snapshots from a guild's role
// hierarchy and computes membership statistics over them.
package roster

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// ErrSourceUnavailable indicates the role/member source could not be
// enumerated. Callers keep their previous snapshot when they see it.
var ErrSourceUnavailable = errors.New("roster source unavailable")

// RoleMember is a single member of a team role.
type RoleMember struct {
	ID       string
	IsLeader bool
}

// RoleMembership is the builder input: one guild role and its members.
type RoleMembership struct {
	Name    string
	Members []RoleMember
}

// Team holds the code, member count and leader presence for one team.
// School and Index are parsed from the code once at build time: School is
// the leading alphabetic run, Index the trailing decimal digits (0 when
// the code has no numeric suffix).
type Team struct {
	Code      string
	School    string
	Index     int
	Members   int
	HasLeader bool
}

// Primary reports whether this team is the representative team for its
// school: the first team (index 1) or a team with no index at all.
func (t Team) Primary() bool {
	return t.Index == 0 || t.Index == 1
}

// Snapshot is an ordered sequence of teams, sorted by code. It is rebuilt
// wholesale on every roster query and never mutated in place.
type Snapshot []Team

// Build filters roles to those whose name starts with prefix and
// normalizes them into a Snapshot. Leaders are excluded from the member
// count; a team has a leader iff at least one of its members is flagged.
func Build(roles []RoleMembership, prefix string) Snapshot {
	snap := make(Snapshot, 0, len(roles))
	for _, role := range roles {
		if !strings.HasPrefix(role.Name, prefix) {
			continue
		}
		code := role.Name[len(prefix):]
		team := Team{Code: code}
		team.School, team.Index = parseCode(code)
		for _, m := range role.Members {
			if m.IsLeader {
				team.HasLeader = true
			} else {
				team.Members++
			}
		}
		snap = append(snap, team)
	}
	slices.SortFunc(snap, func(a, b Team) int {
		return strings.Compare(a.Code, b.Code)
	})
	return snap
}

// parseCode splits a team code into its school (leading letters) and team
// index (trailing digits, 0 when absent).
func parseCode(code string) (string, int) {
	cut := len(code)
	for cut > 0 && code[cut-1] >= '0' && code[cut-1] <= '9' {
		cut--
	}
	index := 0
	if cut < len(code) {
		index, _ = strconv.Atoi(code[cut:])
	}
	school := code[:cut]
	for i := 0; i < len(school); i++ {
		c := school[i]
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
			school = school[:i]
			break
		}
	}
	return school, index
}

func (s Snapshot) codesWhere(keep func(Team) bool) []string {
	var codes []string
	for _, t := range s {
		if keep(t) {
			codes = append(codes, t.Code)
		}
	}
	return codes
}

// EmptyCodes returns the codes of teams with no members and no leader.
func (s Snapshot) EmptyCodes() []string {
	return s.codesWhere(func(t Team) bool { return t.Members == 0 && !t.HasLeader })
}

// MissingLeaderCodes returns the codes of teams with members but no leader.
func (s Snapshot) MissingLeaderCodes() []string {
	return s.codesWhere(func(t Team) bool { return t.Members > 0 && !t.HasLeader })
}

// LeaderOnlyCodes returns the codes of teams with a leader but no members.
func (s Snapshot) LeaderOnlyCodes() []string {
	return s.codesWhere(func(t Team) bool { return t.Members == 0 && t.HasLeader })
}

// EmptyPrimaryCodes is EmptyCodes restricted to primary teams.
func (s Snapshot) EmptyPrimaryCodes() []string {
	return s.codesWhere(func(t Team) bool { return t.Members == 0 && !t.HasLeader && t.Primary() })
}

// MissingLeaderPrimaryCodes is MissingLeaderCodes restricted to primary teams.
func (s Snapshot) MissingLeaderPrimaryCodes() []string {
	return s.codesWhere(func(t Team) bool { return t.Members > 0 && !t.HasLeader && t.Primary() })
}

// LeaderOnlyPrimaryCodes is LeaderOnlyCodes restricted to primary teams.
func (s Snapshot) LeaderOnlyPrimaryCodes() []string {
	return s.codesWhere(func(t Team) bool { return t.Members == 0 && t.HasLeader && t.Primary() })
}

// TotalMembers returns the sum of member counts across all teams.
func (s Snapshot) TotalMembers() int {
	total := 0
	for _, t := range s {
		total += t.Members
	}
	return total
}

// SchoolCount returns the number of primary teams, one per school.
func (s Snapshot) SchoolCount() int {
	count := 0
	for _, t := range s {
		if t.Primary() {
			count++
		}
	}
	return count
}
