// internal/models/profile.go
package models

import (
	"sort"
	"strings"
)

// UserProfile is the caller-supplied description of the role being analyzed.
// The engine never mutates it.
type UserProfile struct {
	Occupation  string   `json:"occupation"`
	Experience  string   `json:"experience"`
	Location    string   `json:"location"`
	Industry    string   `json:"industry"`
	SalaryRange string   `json:"salaryRange"`
	Skills      []string `json:"skills"`
}

// Normalized returns a copy with trimmed, lower-cased fields and sorted skills.
// Two profiles that differ only in casing or skill order normalize identically.
func (p UserProfile) Normalized() UserProfile {
	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			skills = append(skills, s)
		}
	}
	sort.Strings(skills)

	return UserProfile{
		Occupation:  strings.ToLower(strings.TrimSpace(p.Occupation)),
		Experience:  strings.ToLower(strings.TrimSpace(p.Experience)),
		Location:    strings.ToLower(strings.TrimSpace(p.Location)),
		Industry:    strings.ToLower(strings.TrimSpace(p.Industry)),
		SalaryRange: strings.TrimSpace(p.SalaryRange),
		Skills:      skills,
	}
}

// TopSkills returns at most n skills in their original order.
func (p UserProfile) TopSkills(n int) []string {
	if len(p.Skills) <= n {
		out := make([]string, len(p.Skills))
		copy(out, p.Skills)
		return out
	}
	out := make([]string, n)
	copy(out, p.Skills[:n])
	return out
}
