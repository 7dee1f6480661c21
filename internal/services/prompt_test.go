package services

import (
	"strings"
	"testing"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
)

func memberFixture(id, name string, responses map[string]int) *domain.MemberData {
	return &domain.MemberData{
		Profile:        domain.Profile{ID: id, Name: name, MBTI: "INFP"},
		SurveyResponse: domain.SurveyResponse{UserID: id, Responses: responses},
		PersonalityComment: domain.PersonalityComment{
			UserID:        id,
			DesiredTraits: "誠実な人",
		},
	}
}

func TestAnswerMeaning(t *testing.T) {
	// Standard agreement scale.
	if got := answerMeaning("q1", 5); got != "かなり当てはまる" {
		t.Fatalf("q1=5: %q", got)
	}
	// Listener/speaker axis overrides the standard labels.
	if got := answerMeaning("q16", 1); got != "常に聞き手を好む" {
		t.Fatalf("q16=1: %q", got)
	}
	// Conflict-style axis.
	if got := answerMeaning("q17", 5); got != "自分の意見を主張する" {
		t.Fatalf("q17=5: %q", got)
	}
	// Out-of-range values get the placeholder on both scale kinds.
	if got := answerMeaning("q1", 9); got != "不明な回答" {
		t.Fatalf("q1=9: %q", got)
	}
	if got := answerMeaning("q16", 0); got != "不明な回答" {
		t.Fatalf("q16=0: %q", got)
	}
}

func TestBuildPairPrompt_ContainsCriteriaAndEnrichedData(t *testing.T) {
	a := memberFixture("u1", "太郎", map[string]int{"q1": 4, "q16": 2})
	b := memberFixture("u2", "花子", map[string]int{"q17": 3})

	p := BuildPairPrompt(a, b)

	for _, want := range []string{
		"太郎", "花子",
		"Communication styles: 25%",
		"Values, interests, and hobbies: 25%",
		"Emotional expression and conflict resolution: 20%",
		"Interpersonal roles: 15%",
		"Stress tolerance: 15%",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}

	// Survey answers are enriched with question text and labels.
	if !strings.Contains(p, questionText["q1"]) {
		t.Fatalf("prompt missing q1 question text")
	}
	if !strings.Contains(p, "どちらかといえば聞き手を好む") {
		t.Fatalf("prompt missing q16=2 label")
	}
	if !strings.Contains(p, "妥協点を探る") {
		t.Fatalf("prompt missing q17=3 label")
	}

	// The output contract must name every parsed field.
	for _, field := range []string{
		`"degree"`, `"diagnosis_reasons"`, `"strengths"`, `"weaknesses"`,
		`"negative_perspectives"`, `"positive_perspectives"`,
		`"action_plan"`, `"steps"`,
	} {
		if !strings.Contains(p, field) {
			t.Fatalf("output contract missing %s", field)
		}
	}
}

func TestBuildPairPrompt_UnknownQuestionPlaceholder(t *testing.T) {
	a := memberFixture("u1", "太郎", map[string]int{"q99": 3})
	b := memberFixture("u2", "花子", nil)

	p := BuildPairPrompt(a, b)
	if !strings.Contains(p, "不明な質問") {
		t.Fatalf("unknown question id should get a placeholder")
	}
}

func TestBuildGroupPrompt_StatsAndNameFallback(t *testing.T) {
	members := []domain.MemberData{
		*memberFixture("u1", "太郎", map[string]int{"q1": 4}),
		*memberFixture("u2", "花子", map[string]int{"q1": 2}),
	}
	best := domain.PairStat{UserIDs: []string{"u1", "u2"}, Names: []string{"太郎", "花子"}, Degree: 82}
	worst := domain.PairStat{UserIDs: []string{"u1", "u3"}, Names: []string{"太郎", ""}, Degree: 31}

	p := BuildGroupPrompt("開発チーム", len(members), 57, best, worst, members)

	for _, want := range []string{
		"グループ名: 開発チーム",
		"メンバー数: 2人",
		"平均相性度: 57%",
		"太郎と花子 (82%)",
		"太郎と不明なユーザー (31%)",
		`"overall_assessment"`,
		`"recommendations"`,
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("group prompt missing %q", want)
		}
	}
}
