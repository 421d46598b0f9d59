package referencedata

import "strings"

type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceJunior    ExperienceLevel = "junior"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceLead      ExperienceLevel = "lead"
	ExperiencePrincipal ExperienceLevel = "principal"
	ExperienceExecutive ExperienceLevel = "executive"
)

type experienceFactors struct {
	salary     float64
	taskVolume float64
}

// Unknown bands behave as mid.
var experienceTable = map[ExperienceLevel]experienceFactors{
	ExperienceEntry:     {0.75, 0.8},
	ExperienceJunior:    {0.85, 0.9},
	ExperienceMid:       {1.0, 1.0},
	ExperienceSenior:    {1.25, 1.15},
	ExperienceLead:      {1.45, 1.25},
	ExperiencePrincipal: {1.45, 1.25},
	ExperienceExecutive: {1.7, 1.3},
}

var experienceAliases = map[string]ExperienceLevel{
	"entry level":  ExperienceEntry,
	"entry-level":  ExperienceEntry,
	"intern":       ExperienceEntry,
	"graduate":     ExperienceEntry,
	"jr":           ExperienceJunior,
	"mid level":    ExperienceMid,
	"mid-level":    ExperienceMid,
	"intermediate": ExperienceMid,
	"sr":           ExperienceSenior,
	"staff":        ExperienceLead,
	"manager":      ExperienceLead,
	"director":     ExperienceExecutive,
	"vp":           ExperienceExecutive,
	"c-level":      ExperienceExecutive,
}

// NormalizeExperience maps free text onto a band; empty or unknown input is mid.
func NormalizeExperience(s string) ExperienceLevel {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := experienceTable[ExperienceLevel(s)]; ok {
		return ExperienceLevel(s)
	}
	if lvl, ok := experienceAliases[s]; ok {
		return lvl
	}
	for _, lvl := range []ExperienceLevel{ExperienceExecutive, ExperiencePrincipal, ExperienceLead, ExperienceSenior, ExperienceJunior, ExperienceEntry} {
		if strings.Contains(s, string(lvl)) {
			return lvl
		}
	}
	return ExperienceMid
}

func ExperienceMultiplier(experience string) float64 {
	return experienceTable[NormalizeExperience(experience)].salary
}

// TaskVolumeMultiplier scales tasks per day by seniority.
func TaskVolumeMultiplier(experience string) float64 {
	return experienceTable[NormalizeExperience(experience)].taskVolume
}

// IsSenior reports senior, lead, principal and executive bands.
func IsSenior(lvl ExperienceLevel) bool {
	switch lvl {
	case ExperienceSenior, ExperienceLead, ExperiencePrincipal, ExperienceExecutive:
		return true
	}
	return false
}

// IsJunior reports entry and junior bands.
func IsJunior(lvl ExperienceLevel) bool {
	return lvl == ExperienceEntry || lvl == ExperienceJunior
}
