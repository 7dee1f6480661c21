// Package domain – report value types.
//
// These shapes are the contract shared with the display layer
// and with the generation backend's output format: the prompt instructs the
// model to emit exactly this nesting, and the parser rejects anything else.
package domain

// ReportDescription is the narrative portion of a pairwise report. All text
// is Japanese prose produced by the generation backend.
type ReportDescription struct {
	DiagnosisReasons     string `json:"diagnosis_reasons"`
	Strengths            string `json:"strengths"`
	Weaknesses           string `json:"weaknesses"`
	NegativePerspectives string `json:"negative_perspectives"`
	PositivePerspectives string `json:"positive_perspectives"`
}

// ReportAdvice is the actionable portion of a pairwise report.
type ReportAdvice struct {
	ActionPlan string   `json:"action_plan"`
	Steps      []string `json:"steps"`
}

// PairReport is the typed form of the generation backend's output for one
// pair: a 0–100 score plus nested description and advice.
type PairReport struct {
	Degree      int               `json:"degree"`
	Description ReportDescription `json:"description"`
	Advice      ReportAdvice      `json:"advice"`
}

// PairStat identifies a scored pair inside a group aggregate (best or worst
// pair), with display names resolved from profiles.
type PairStat struct {
	UserIDs []string `json:"user_ids"`
	Names   []string `json:"names"`
	Degree  int      `json:"degree"`
}

// GroupAnalysis is the narrative portion of a group-level report, produced
// by a second-order generation pass over the aggregate statistics and member
// data.
type GroupAnalysis struct {
	OverallAssessment    string   `json:"overall_assessment"`
	GroupStrengths       string   `json:"group_strengths"`
	GroupChallenges      string   `json:"group_challenges"`
	RelationshipDynamics string   `json:"relationship_dynamics"`
	GrowthOpportunities  string   `json:"growth_opportunities"`
	ActionPlan           string   `json:"action_plan"`
	Recommendations      []string `json:"recommendations"`
}

// MemberData aggregates everything known about one user for report
// generation. SurveyResponse and PersonalityComment may be zero-valued
// (empty responses / empty comment) when the user has not completed those
// steps; Profile is always present.
type MemberData struct {
	Profile            Profile            `json:"profile"`
	SurveyResponse     SurveyResponse     `json:"survey_response"`
	PersonalityComment PersonalityComment `json:"personality_comment"`
}
