package venue

import (
	"sort"
	"strings"
)

// MatchKind tags the outcome of a directory match.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchSingle
	MatchGroup
)

// MatchResult is the tagged union returned by Match: None, Single(venue),
// or Group(group name, venues).
type MatchResult struct {
	Kind      MatchKind
	GroupName string
	Venues    []Venue
}

// Match resolves an (email, free-text location name) pair against a venue
// directory snapshot. Strategy, in order, first success wins:
//
//  1. Group match: every owned venue whose group name contains the location
//     name. Two or more such venues form a hospitality group and each venue
//     gets its own tag downstream.
//  2. Exact or fuzzy display-name match among owned venues.
//  3. If the email owns exactly one venue, that venue.
//  4. Token overlap between the supplied name and an owned venue's name.
//
// User-entered names and CRM labels are never guaranteed identical, so the
// tiers move from specific to lenient; anything still ambiguous resolves to
// None and is left for manual configuration.
func Match(email, locationName string, venues []Venue) MatchResult {
	loc := strings.ToLower(strings.TrimSpace(locationName))

	var owned []Venue
	for _, v := range venues {
		if v.OwnedBy(email) {
			owned = append(owned, v)
		}
	}
	if len(owned) == 0 {
		return MatchResult{Kind: MatchNone}
	}

	// Tier 1: group match
	if loc != "" {
		var grouped []Venue
		for _, v := range owned {
			if v.GroupName != "" && strings.Contains(strings.ToLower(v.GroupName), loc) {
				grouped = append(grouped, v)
			}
		}
		if len(grouped) >= 2 {
			sort.Slice(grouped, func(i, j int) bool {
				return grouped[i].DisplayName < grouped[j].DisplayName
			})
			return MatchResult{Kind: MatchGroup, GroupName: grouped[0].GroupName, Venues: grouped}
		}
	}

	// Tier 2: exact / substring / first-token match among owned venues
	if loc != "" {
		for _, v := range owned {
			name := strings.ToLower(strings.TrimSpace(v.DisplayName))
			if name == loc ||
				(name != "" && strings.Contains(name, loc)) ||
				(name != "" && strings.Contains(loc, name)) ||
				firstToken(name) == firstToken(loc) && firstToken(loc) != "" {
				return MatchResult{Kind: MatchSingle, Venues: []Venue{v}}
			}
		}
	}

	// Tier 3: single-candidate fallback
	if len(owned) == 1 {
		return MatchResult{Kind: MatchSingle, Venues: []Venue{owned[0]}}
	}

	// Tier 4: token-overlap fallback
	locTokens := longTokens(loc)
	for _, v := range owned {
		nameTokens := longTokens(strings.ToLower(v.DisplayName))
		for _, lt := range locTokens {
			for _, nt := range nameTokens {
				if strings.Contains(lt, nt) || strings.Contains(nt, lt) {
					return MatchResult{Kind: MatchSingle, Venues: []Venue{v}}
				}
			}
		}
	}

	return MatchResult{Kind: MatchNone}
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// longTokens keeps whitespace-delimited tokens longer than two characters,
// which filters out articles and stray initials.
func longTokens(s string) []string {
	var out []string
	for _, t := range strings.Fields(s) {
		if len(t) > 2 {
			out = append(out, t)
		}
	}
	return out
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
