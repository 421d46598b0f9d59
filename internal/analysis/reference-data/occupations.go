// Package referencedata holds the static lookup tables the salary and AI
// cost providers fall back on when no live data is available.
package referencedata

import "strings"

const (
	// DefaultBaseSalary applies to occupations missing from the table.
	DefaultBaseSalary = 65000.0
	// DefaultTasksPerDay and DefaultTokensPerTask describe an unknown occupation's load.
	DefaultTasksPerDay   = 10.0
	DefaultTokensPerTask = 600
	// DefaultAutomationPotential sits between the bonus and penalty bands.
	DefaultAutomationPotential = 0.5
)

// Occupation is one row of the occupation table.
type Occupation struct {
	Key        string
	BaseSalary float64
	// SOCCode is the standard occupational classification code, e.g. "15-1252".
	SOCCode string
	// TasksPerDay and TokensPerTask estimate the automatable workload.
	TasksPerDay   float64
	TokensPerTask int
	// AutomationPotential in [0,1].
	AutomationPotential float64
	// Predictable occupations have repetitive, well-structured tasks.
	Predictable  bool
	TypicalTasks []string
}

var occupations = []Occupation{
	{"software developer", 110000, "15-1252", 12, 1500, 0.5, false,
		[]string{"writing and reviewing code", "debugging production issues", "writing tests", "documenting APIs"}},
	{"web developer", 85000, "15-1254", 14, 1200, 0.55, false,
		[]string{"building page layouts", "integrating APIs", "fixing browser issues", "optimizing page speed"}},
	{"data scientist", 120000, "15-2051", 10, 1800, 0.45, false,
		[]string{"exploratory data analysis", "feature engineering", "model evaluation", "writing analysis reports"}},
	{"database administrator", 98000, "15-1242", 15, 800, 0.6, true,
		[]string{"query tuning", "backup verification", "schema migrations", "access reviews"}},
	{"systems administrator", 90000, "15-1244", 20, 600, 0.6, true,
		[]string{"patching servers", "triaging alerts", "user account management", "writing runbooks"}},
	{"it manager", 150000, "11-3021", 8, 1000, 0.3, false,
		[]string{"vendor evaluation", "budget planning", "incident reviews", "team coordination"}},
	{"project manager", 95000, "13-1082", 15, 700, 0.45, false,
		[]string{"status reporting", "meeting summaries", "risk tracking", "schedule updates"}},
	{"graphic designer", 58000, "27-1024", 8, 900, 0.4, false,
		[]string{"creating marketing assets", "brand reviews", "layout revisions", "image editing"}},
	{"technical writer", 78000, "27-3042", 10, 2000, 0.7, true,
		[]string{"drafting documentation", "editing release notes", "maintaining style guides", "writing tutorials"}},
	{"accountant", 78000, "13-2011", 25, 700, 0.75, true,
		[]string{"reconciling accounts", "preparing financial statements", "expense review", "tax preparation"}},
	{"financial analyst", 95000, "13-2051", 12, 1200, 0.6, true,
		[]string{"building financial models", "variance analysis", "forecast updates", "investment memos"}},
	{"marketing specialist", 70000, "13-1161", 15, 900, 0.6, false,
		[]string{"writing campaign copy", "market research", "social media scheduling", "performance reporting"}},
	{"sales representative", 65000, "41-4012", 20, 500, 0.35, false,
		[]string{"prospect research", "follow-up emails", "CRM updates", "proposal drafting"}},
	{"customer service representative", 40000, "43-4051", 60, 400, 0.85, true,
		[]string{"answering customer inquiries", "processing returns", "updating tickets", "escalation routing"}},
	{"administrative assistant", 44000, "43-6014", 40, 400, 0.8, true,
		[]string{"scheduling meetings", "drafting correspondence", "data entry", "filing documents"}},
	{"bookkeeper", 47000, "43-3031", 50, 350, 0.9, true,
		[]string{"recording transactions", "invoice processing", "payroll entries", "ledger reconciliation"}},
	{"human resources specialist", 67000, "13-1071", 20, 600, 0.55, true,
		[]string{"screening resumes", "onboarding paperwork", "benefits questions", "policy updates"}},
	{"paralegal", 60000, "23-2011", 20, 1000, 0.75, true,
		[]string{"legal research", "drafting documents", "case file organization", "citation checking"}},
	{"lawyer", 145000, "23-1011", 10, 2000, 0.35, false,
		[]string{"contract review", "legal research", "drafting motions", "client advisement"}},
	{"registered nurse", 86000, "29-1141", 25, 300, 0.2, false,
		[]string{"patient charting", "care plan updates", "medication documentation", "shift handoffs"}},
	{"content writer", 70000, "27-3043", 8, 2500, 0.8, true,
		[]string{"writing blog posts", "editing drafts", "SEO optimization", "content briefs"}},
	{"data entry clerk", 38000, "43-9021", 80, 300, 0.95, true,
		[]string{"transcribing records", "verifying entries", "form processing", "spreadsheet updates"}},
}

// classificationTitles maps SOC codes to their official titles.
var classificationTitles = map[string]string{
	"15-1252": "Software Developers",
	"15-1254": "Web Developers",
	"15-2051": "Data Scientists",
	"15-1242": "Database Administrators",
	"15-1244": "Network and Computer Systems Administrators",
	"11-3021": "Computer and Information Systems Managers",
	"13-1082": "Project Management Specialists",
	"27-1024": "Graphic Designers",
	"27-3042": "Technical Writers",
	"13-2011": "Accountants and Auditors",
	"13-2051": "Financial and Investment Analysts",
	"13-1161": "Market Research Analysts and Marketing Specialists",
	"41-4012": "Sales Representatives, Wholesale and Manufacturing",
	"43-4051": "Customer Service Representatives",
	"43-6014": "Secretaries and Administrative Assistants",
	"43-3031": "Bookkeeping, Accounting, and Auditing Clerks",
	"13-1071": "Human Resources Specialists",
	"23-2011": "Paralegals and Legal Assistants",
	"23-1011": "Lawyers",
	"29-1141": "Registered Nurses",
	"27-3043": "Writers and Authors",
	"43-9021": "Data Entry Keyers",
}

// GenericTasks is used when an occupation has no typical task list.
var GenericTasks = []string{
	"drafting routine documents",
	"summarizing information",
	"answering common questions",
	"data lookup and entry",
}

var occupationIndex = func() map[string]Occupation {
	idx := make(map[string]Occupation, len(occupations))
	for _, o := range occupations {
		idx[o.Key] = o
	}
	return idx
}()

// NormalizeOccupation lowercases, trims and collapses whitespace and separators.
func NormalizeOccupation(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// LookupOccupation returns the table row for an exact (normalized) occupation.
func LookupOccupation(occupation string) (Occupation, bool) {
	o, ok := occupationIndex[NormalizeOccupation(occupation)]
	return o, ok
}

// Occupations returns a copy of the occupation table.
func Occupations() []Occupation {
	out := make([]Occupation, len(occupations))
	copy(out, occupations)
	return out
}

// BaseSalary returns the table base salary, or DefaultBaseSalary.
func BaseSalary(occupation string) float64 {
	if o, ok := resolve(occupation); ok {
		return o.BaseSalary
	}
	return DefaultBaseSalary
}

// ClassificationTitle returns the official title for a SOC code.
func ClassificationTitle(code string) (string, bool) {
	t, ok := classificationTitles[code]
	return t, ok
}

// TaskLoad returns tasks per day, tokens per task, automation potential and
// predictability for an occupation, falling back to the documented defaults.
func TaskLoad(occupation string) (tasksPerDay float64, tokensPerTask int, automation float64, predictable bool) {
	if o, ok := resolve(occupation); ok {
		return o.TasksPerDay, o.TokensPerTask, o.AutomationPotential, o.Predictable
	}
	return DefaultTasksPerDay, DefaultTokensPerTask, DefaultAutomationPotential, false
}

// TypicalTasks returns the occupation's task list or GenericTasks.
func TypicalTasks(occupation string) []string {
	if o, ok := resolve(occupation); ok && len(o.TypicalTasks) > 0 {
		return o.TypicalTasks
	}
	return GenericTasks
}

// resolve tries an exact hit and then the best fuzzy candidate.
func resolve(occupation string) (Occupation, bool) {
	if o, ok := LookupOccupation(occupation); ok {
		return o, true
	}
	if m, ok := BestMatch(occupation); ok {
		return occupationIndex[m.Occupation], true
	}
	return Occupation{}, false
}
