// Package industry classifies job postings into coarse industry profiles
// by counting profile keywords and indicator phrases.
package industry

import (
	"strings"
)

// Profile describes one industry.
type Profile struct {
	Name       string   `json:"name"`
	Keywords   []string `json:"keywords"`
	Indicators []string `json:"indicators"`
}

// DefaultName is returned when no profile scores above zero.
const DefaultName = "general"

var defaultProfile = Profile{
	Name: DefaultName,
	Keywords: []string{
		"communication", "teamwork", "leadership", "problem solving",
		"project management", "collaboration",
	},
}

// Profiles returns the built-in profiles in declaration order. Ties are
// resolved in favour of the profile declared first.
func Profiles() []Profile {
	return []Profile{
		{
			Name: "technology",
			Keywords: []string{
				"software", "api", "cloud", "microservices", "ci/cd", "agile",
				"scalable", "distributed systems", "devops", "backend", "frontend",
				"full stack", "testing", "architecture", "debugging",
			},
			Indicators: []string{
				"software engineer", "developer", "engineering team", "tech stack",
				"saas", "startup", "platform team", "code review",
			},
		},
		{
			Name: "data",
			Keywords: []string{
				"data analysis", "statistics", "machine learning", "etl",
				"data pipeline", "data warehouse", "visualization", "modeling",
				"a/b testing", "dashboards", "big data",
			},
			Indicators: []string{
				"data scientist", "data engineer", "data analyst", "analytics team",
				"insights", "experimentation",
			},
		},
		{
			Name: "healthcare",
			Keywords: []string{
				"patient care", "hipaa", "clinical", "ehr", "emr", "medical",
				"healthcare", "compliance", "nursing", "diagnosis",
			},
			Indicators: []string{
				"hospital", "clinic", "patients", "health system", "physician",
				"care team",
			},
		},
		{
			Name: "finance",
			Keywords: []string{
				"financial analysis", "risk management", "compliance", "trading",
				"portfolio", "accounting", "forecasting", "budgeting", "audit",
				"regulatory", "valuation",
			},
			Indicators: []string{
				"bank", "fintech", "investment", "financial services", "payments",
				"capital markets",
			},
		},
		{
			Name: "marketing",
			Keywords: []string{
				"seo", "sem", "content marketing", "social media", "campaigns",
				"brand", "google analytics", "conversion", "crm", "email marketing",
			},
			Indicators: []string{
				"marketing team", "growth", "audience", "agency", "go-to-market",
			},
		},
		{
			Name: "education",
			Keywords: []string{
				"curriculum", "instruction", "lesson planning", "assessment",
				"learning outcomes", "classroom", "e-learning", "lms",
			},
			Indicators: []string{
				"school", "university", "students", "teaching", "district",
			},
		},
	}
}

// Classifier picks the best matching profile for a text.
type Classifier struct {
	profiles []Profile
	fallback Profile
}

// NewClassifier creates a classifier over the given profiles. A nil or
// empty list uses the built-in profiles.
func NewClassifier(profiles []Profile) *Classifier {
	if len(profiles) == 0 {
		profiles = Profiles()
	}
	lowered := make([]Profile, len(profiles))
	for i, p := range profiles {
		lowered[i] = Profile{
			Name:       p.Name,
			Keywords:   lowerAll(p.Keywords),
			Indicators: lowerAll(p.Indicators),
		}
	}
	return &Classifier{profiles: lowered, fallback: defaultProfile}
}

// Classify returns the profile with the strictly highest score, the first
// declared one on ties, or the general profile when nothing matches.
func (c *Classifier) Classify(text string) Profile {
	lower := strings.ToLower(text)
	best := -1
	bestScore := 0
	for i, p := range c.profiles {
		if s := score(lower, p); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return c.fallback
	}
	return c.profiles[best]
}

// Scores returns the raw score of every profile, keyed by name.
func (c *Classifier) Scores(text string) map[string]int {
	lower := strings.ToLower(text)
	out := make(map[string]int, len(c.profiles))
	for _, p := range c.profiles {
		out[p.Name] = score(lower, p)
	}
	return out
}

// Lookup returns a profile by name, including the general profile.
func (c *Classifier) Lookup(name string) (Profile, bool) {
	if name == c.fallback.Name {
		return c.fallback, true
	}
	for _, p := range c.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

func score(lower string, p Profile) int {
	n := 0
	for _, k := range p.Keywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	for _, ind := range p.Indicators {
		if strings.Contains(lower, ind) {
			n++
		}
	}
	return n
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
