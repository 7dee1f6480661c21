// Package services – ReportService
//
// This file implements the generation step of the report pipeline: build a
// prompt, call the generation backend, strip any markdown code fences the
// model wrapped its output in despite instructions, and decode the result
// into the typed report shapes.
//
// Failure classification matters to callers: a backend call that errors is
// ErrGenerationFailed, while a response that arrives but does not decode or
// validate is ErrParseFailed. Both are treated as "no result" by the
// pipeline; the distinction exists for logs and operators.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/llm"
)

// codeFenceRE matches the opening ```json fence (with optional trailing
// newline) and the closing ``` fence (with optional leading newline).
var codeFenceRE = regexp.MustCompile("```json\n?|\n?```")

// stripCodeFence removes markdown code fences and surrounding whitespace
// from raw model output. Models occasionally fence their JSON even when the
// prompt forbids it.
func stripCodeFence(s string) string {
	return strings.TrimSpace(codeFenceRE.ReplaceAllString(s, ""))
}

// ReportService turns member data into typed reports via the generation
// backend.
type ReportService struct {
	// Gen is the text-generation backend.
	Gen llm.Generator
}

// NewReportService constructs a ReportService around the given backend.
func NewReportService(gen llm.Generator) *ReportService {
	return &ReportService{Gen: gen}
}

// GeneratePairReport produces a compatibility report for the pair (a, b).
// The score is clamped to 0..100; a response missing any narrative section
// is rejected as ErrParseFailed.
func (s *ReportService) GeneratePairReport(ctx context.Context, a, b *domain.MemberData) (*domain.PairReport, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "GeneratePairReport",
		trace.WithAttributes(
			attribute.String("pair.user_a", a.Profile.ID),
			attribute.String("pair.user_b", b.Profile.ID),
		),
	)
	defer span.End()

	raw, err := s.Gen.Generate(ctx, BuildPairPrompt(a, b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var rep domain.PairReport
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &rep); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if err := validatePairReport(&rep); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if rep.Degree < 0 {
		rep.Degree = 0
	}
	if rep.Degree > 100 {
		rep.Degree = 100
	}
	return &rep, nil
}

// GenerateGroupAnalysis produces the group-level narrative from aggregate
// statistics and all members' data.
func (s *ReportService) GenerateGroupAnalysis(ctx context.Context, groupName string, averageDegree int, best, worst domain.PairStat, members []domain.MemberData) (*domain.GroupAnalysis, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "GenerateGroupAnalysis",
		trace.WithAttributes(
			attribute.String("group.name", groupName),
			attribute.Int("group.member_count", len(members)),
		),
	)
	defer span.End()

	prompt := BuildGroupPrompt(groupName, len(members), averageDegree, best, worst, members)
	raw, err := s.Gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var an domain.GroupAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &an); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if strings.TrimSpace(an.OverallAssessment) == "" {
		return nil, fmt.Errorf("%w: missing overall_assessment", ErrParseFailed)
	}
	return &an, nil
}

// validatePairReport checks that every narrative section the display layer
// depends on is present and non-blank.
func validatePairReport(r *domain.PairReport) error {
	checks := []struct {
		field string
		value string
	}{
		{"description.diagnosis_reasons", r.Description.DiagnosisReasons},
		{"description.strengths", r.Description.Strengths},
		{"description.weaknesses", r.Description.Weaknesses},
		{"description.negative_perspectives", r.Description.NegativePerspectives},
		{"description.positive_perspectives", r.Description.PositivePerspectives},
		{"advice.action_plan", r.Advice.ActionPlan},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return fmt.Errorf("missing %s", c.field)
		}
	}
	if r.Advice.Steps == nil {
		r.Advice.Steps = []string{}
	}
	return nil
}
