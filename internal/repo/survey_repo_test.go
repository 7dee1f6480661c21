package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
)

func TestUpsertSurveyResponse_OneRowPerUser(t *testing.T) {
	db := newTestDB(t, "surveyrepo1")
	ctx := context.Background()

	if _, err := UpsertSurveyResponse(ctx, db, "u1", map[string]int{"q1": 3, "q2": 5}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := UpsertSurveyResponse(ctx, db, "u1", map[string]int{"q1": 1}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&domain.SurveyResponse{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 survey row per user, got %d", count)
	}

	got, err := GetSurveyResponse(ctx, db, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Responses["q1"] != 1 || len(got.Responses) != 1 {
		t.Fatalf("latest answers must win: %v", got.Responses)
	}
}

func TestGetSurveyResponse_NotFound(t *testing.T) {
	db := newTestDB(t, "surveyrepo2")
	if _, err := GetSurveyResponse(context.Background(), db, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertPersonalityComment_OneRowPerUser(t *testing.T) {
	db := newTestDB(t, "surveyrepo3")
	ctx := context.Background()

	if err := UpsertPersonalityComment(ctx, db, &domain.PersonalityComment{
		UserID:        "u1",
		DesiredTraits: "正直な人",
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := UpsertPersonalityComment(ctx, db, &domain.PersonalityComment{
		UserID:            "u1",
		DesiredTraits:     "優しい人",
		AvoidTraits:       "短気な人",
		IdealRelationship: "お互いを尊重する関係",
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&domain.PersonalityComment{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 comment row per user, got %d", count)
	}

	got, err := GetPersonalityComment(ctx, db, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DesiredTraits != "優しい人" || got.AvoidTraits != "短気な人" {
		t.Fatalf("latest comment must win: %+v", got)
	}
}
