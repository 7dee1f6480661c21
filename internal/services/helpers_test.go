package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/repo"
)

// newTestDB opens an isolated in-memory SQLite database with the schema
// migrated. Connections are capped at one so the pairwise fan-out goroutines
// never contend for the write lock.
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeGen is a Generator whose behavior is supplied per test.
type fakeGen struct {
	fn func(prompt string) (string, error)
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	return f.fn(prompt)
}

// validPairJSON renders a complete pairwise report payload with the given
// score.
func validPairJSON(degree int) string {
	return fmt.Sprintf(`{
		"degree": %d,
		"description": {
			"diagnosis_reasons": "価値観が近い",
			"strengths": "協調性",
			"weaknesses": "決断の遅さ",
			"negative_perspectives": "衝突の回避傾向",
			"positive_perspectives": "相互理解の素地"
		},
		"advice": {
			"action_plan": "週次で意見交換を行う",
			"steps": ["週次ミーティングを設定する", "役割分担を明確にする"]
		}
	}`, degree)
}

// validGroupJSON is a complete group analysis payload.
const validGroupJSON = `{
	"overall_assessment": "バランスの取れたグループ",
	"group_strengths": "多様な視点",
	"group_challenges": "意思決定の速度",
	"relationship_dynamics": "穏やかな協調関係",
	"growth_opportunities": "役割の明確化",
	"action_plan": "定期的な振り返りを行う",
	"recommendations": ["振り返り会を設ける", "役割を明文化する"]
}`

// seedMember creates a profile plus survey and comment rows for one user.
func seedMember(t *testing.T, db *gorm.DB, userID, name string) {
	t.Helper()
	ctx := context.Background()
	if err := repo.UpsertProfile(ctx, db, &domain.Profile{ID: userID, Name: name, MBTI: "INFP"}); err != nil {
		t.Fatalf("seed profile %s: %v", userID, err)
	}
	if _, err := repo.UpsertSurveyResponse(ctx, db, userID, map[string]int{"q1": 3, "q16": 2, "q17": 4}); err != nil {
		t.Fatalf("seed survey %s: %v", userID, err)
	}
	if err := repo.UpsertPersonalityComment(ctx, db, &domain.PersonalityComment{
		UserID:        userID,
		DesiredTraits: "正直な人",
	}); err != nil {
		t.Fatalf("seed comment %s: %v", userID, err)
	}
}
