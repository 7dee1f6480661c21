package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/repo"
)

// fakeRefresher records aggregate-refresh requests.
type fakeRefresher struct {
	mu     sync.Mutex
	groups []string
}

func (f *fakeRefresher) GenerateAndSave(_ context.Context, groupID string) (*domain.GroupCompatibilityResult, error) {
	f.mu.Lock()
	f.groups = append(f.groups, groupID)
	f.mu.Unlock()
	return &domain.GroupCompatibilityResult{GroupID: groupID}, nil
}

func (f *fakeRefresher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.groups...)
}

func newCompatFixture(t *testing.T, name string, gen *fakeGen) (*CompatibilityService, *fakeRefresher) {
	t.Helper()
	db := newTestDB(t, name)
	refresher := &fakeRefresher{}
	svc := NewCompatibilityService(db, &MemberService{DB: db}, NewReportService(gen), refresher)
	return svc, refresher
}

func TestGenerateForNewMember_ScoresAllPairsAndRefreshes(t *testing.T) {
	gen := &fakeGen{fn: func(string) (string, error) { return validPairJSON(70), nil }}
	svc, refresher := newCompatFixture(t, "compatsvc1", gen)
	ctx := context.Background()

	if _, err := repo.CreateGroup(ctx, svc.DB, "g1", "G", "uA"); err != nil {
		t.Fatalf("create group: %v", err)
	}
	for _, u := range []string{"uA", "uB", "uC"} {
		seedMember(t, svc.DB, u, "member "+u)
	}
	if err := repo.AddMember(ctx, svc.DB, "g1", "uB", domain.RoleMember); err != nil {
		t.Fatalf("add uB: %v", err)
	}
	if err := repo.AddMember(ctx, svc.DB, "g1", "uC", domain.RoleMember); err != nil {
		t.Fatalf("add uC: %v", err)
	}

	svc.GenerateForNewMember(ctx, "g1", "uC")

	results, err := repo.ListCompatibilityResults(ctx, svc.DB, "g1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 pair rows for the new member, got %d", len(results))
	}
	for _, r := range results {
		if r.UserAID != "uC" && r.UserBID != "uC" {
			t.Fatalf("row does not involve the new member: %+v", r)
		}
	}
	if calls := refresher.calls(); len(calls) != 1 || calls[0] != "g1" {
		t.Fatalf("aggregate refresh calls = %v", calls)
	}
}

func TestGenerateForNewMember_OneFailureDoesNotBlockOthers(t *testing.T) {
	// Generation fails only for the pair whose prompt mentions uB.
	gen := &fakeGen{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "member uB") {
			return "", errors.New("backend hiccup")
		}
		return validPairJSON(65), nil
	}}
	svc, refresher := newCompatFixture(t, "compatsvc2", gen)
	ctx := context.Background()

	if _, err := repo.CreateGroup(ctx, svc.DB, "g1", "G", "uA"); err != nil {
		t.Fatalf("create group: %v", err)
	}
	for _, u := range []string{"uA", "uB", "uC"} {
		seedMember(t, svc.DB, u, "member "+u)
	}
	for _, u := range []string{"uB", "uC"} {
		if err := repo.AddMember(ctx, svc.DB, "g1", u, domain.RoleMember); err != nil {
			t.Fatalf("add %s: %v", u, err)
		}
	}

	svc.GenerateForNewMember(ctx, "g1", "uC")

	results, err := repo.ListCompatibilityResults(ctx, svc.DB, "g1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("the surviving pair should still be stored, got %d rows", len(results))
	}
	if len(refresher.calls()) != 1 {
		t.Fatalf("aggregate refresh should still run after a partial failure")
	}
}

func TestGenerateForNewMember_AllPairsFailingStillRefreshes(t *testing.T) {
	gen := &fakeGen{fn: func(string) (string, error) { return "", errors.New("down") }}
	svc, refresher := newCompatFixture(t, "compatsvc3", gen)
	ctx := context.Background()

	if _, err := repo.CreateGroup(ctx, svc.DB, "g1", "G", "uA"); err != nil {
		t.Fatalf("create group: %v", err)
	}
	seedMember(t, svc.DB, "uA", "A")
	seedMember(t, svc.DB, "uB", "B")
	if err := repo.AddMember(ctx, svc.DB, "g1", "uB", domain.RoleMember); err != nil {
		t.Fatalf("add: %v", err)
	}

	svc.GenerateForNewMember(ctx, "g1", "uB")

	results, err := repo.ListCompatibilityResults(ctx, svc.DB, "g1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("failed pairs must not be stored, got %d rows", len(results))
	}
	// The aggregate refresh still runs once: older stored rows may exist.
	if calls := refresher.calls(); len(calls) != 1 || calls[0] != "g1" {
		t.Fatalf("aggregate refresh calls = %v, want one for g1", calls)
	}
}

func TestGenerateForNewMember_NoOtherMembersSkipsRefresh(t *testing.T) {
	gen := &fakeGen{fn: func(string) (string, error) {
		t.Fatalf("a lone member has nobody to pair against")
		return "", nil
	}}
	svc, refresher := newCompatFixture(t, "compatsvc8", gen)
	ctx := context.Background()

	if _, err := repo.CreateGroup(ctx, svc.DB, "g1", "G", "uA"); err != nil {
		t.Fatalf("create group: %v", err)
	}
	seedMember(t, svc.DB, "uA", "A")

	svc.GenerateForNewMember(ctx, "g1", "uA")

	if len(refresher.calls()) != 0 {
		t.Fatalf("no pairs to attempt, refresh should be skipped")
	}
}

func TestOnPersonalityCommentChanged_RescoresEveryGroup(t *testing.T) {
	gen := &fakeGen{fn: func(string) (string, error) { return validPairJSON(58), nil }}
	svc, refresher := newCompatFixture(t, "compatsvc4", gen)
	ctx := context.Background()

	// uA shares g1 with uB and g2 with uC.
	if _, err := repo.CreateGroup(ctx, svc.DB, "g1", "G1", "uA"); err != nil {
		t.Fatalf("create g1: %v", err)
	}
	if _, err := repo.CreateGroup(ctx, svc.DB, "g2", "G2", "uA"); err != nil {
		t.Fatalf("create g2: %v", err)
	}
	for _, u := range []string{"uA", "uB", "uC"} {
		seedMember(t, svc.DB, u, "member "+u)
	}
	if err := repo.AddMember(ctx, svc.DB, "g1", "uB", domain.RoleMember); err != nil {
		t.Fatalf("add uB: %v", err)
	}
	if err := repo.AddMember(ctx, svc.DB, "g2", "uC", domain.RoleMember); err != nil {
		t.Fatalf("add uC: %v", err)
	}

	svc.OnPersonalityCommentChanged(ctx, "uA")

	for _, gid := range []string{"g1", "g2"} {
		results, err := repo.ListCompatibilityResults(ctx, svc.DB, gid)
		if err != nil {
			t.Fatalf("list %s: %v", gid, err)
		}
		if len(results) != 1 {
			t.Fatalf("%s: expected 1 rescored pair, got %d", gid, len(results))
		}
	}
	if len(refresher.calls()) != 2 {
		t.Fatalf("both groups should refresh, got %v", refresher.calls())
	}
}

func TestOnPersonalityCommentChanged_FailuresStillRefresh(t *testing.T) {
	gen := &fakeGen{fn: func(string) (string, error) { return "", errors.New("down") }}
	svc, refresher := newCompatFixture(t, "compatsvc9", gen)
	ctx := context.Background()

	if _, err := repo.CreateGroup(ctx, svc.DB, "g1", "G", "uA"); err != nil {
		t.Fatalf("create group: %v", err)
	}
	seedMember(t, svc.DB, "uA", "A")
	seedMember(t, svc.DB, "uB", "B")
	if err := repo.AddMember(ctx, svc.DB, "g1", "uB", domain.RoleMember); err != nil {
		t.Fatalf("add: %v", err)
	}

	svc.OnPersonalityCommentChanged(ctx, "uA")

	if calls := refresher.calls(); len(calls) != 1 || calls[0] != "g1" {
		t.Fatalf("aggregate refresh calls = %v, want one for g1", calls)
	}
}

func TestPairResult_StoredRowWins(t *testing.T) {
	gen := &fakeGen{fn: func(string) (string, error) {
		t.Fatalf("stored result must not trigger generation")
		return "", nil
	}}
	svc, _ := newCompatFixture(t, "compatsvc5", gen)
	ctx := context.Background()

	seedMember(t, svc.DB, "uA", "A")
	seedMember(t, svc.DB, "uB", "B")
	if err := repo.SaveCompatibilityResult(ctx, svc.DB, "g1", "uA", "uB", &domain.PairReport{Degree: 91}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.PairResult(ctx, "g1", "uB", "uA")
	if err != nil {
		t.Fatalf("pair result: %v", err)
	}
	if got.Degree != 91 {
		t.Fatalf("degree = %d", got.Degree)
	}
}

func TestPairResult_GeneratesOnDemandAndPersists(t *testing.T) {
	gen := &fakeGen{fn: func(string) (string, error) { return validPairJSON(44), nil }}
	svc, _ := newCompatFixture(t, "compatsvc6", gen)
	ctx := context.Background()

	seedMember(t, svc.DB, "uA", "A")
	seedMember(t, svc.DB, "uB", "B")

	got, err := svc.PairResult(ctx, "g1", "uA", "uB")
	if err != nil {
		t.Fatalf("pair result: %v", err)
	}
	if got.Degree != 44 || got.UserAID != "uA" || got.UserBID != "uB" {
		t.Fatalf("on-demand result: %+v", got)
	}
	// The persisted row is returned, not a synthetic projection.
	if got.ID == "" || got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("result should carry the stored id and timestamps: %+v", got)
	}

	// The generated report was persisted for the next read.
	stored, err := repo.GetCompatibilityResult(ctx, svc.DB, "g1", "uA", "uB")
	if err != nil {
		t.Fatalf("stored lookup: %v", err)
	}
	if stored.Degree != 44 {
		t.Fatalf("stored degree = %d", stored.Degree)
	}
	if stored.ID != got.ID {
		t.Fatalf("returned id %q does not match stored id %q", got.ID, stored.ID)
	}
}

func TestPairResult_MissingProfileSurfaces(t *testing.T) {
	gen := &fakeGen{fn: func(string) (string, error) { return validPairJSON(50), nil }}
	svc, _ := newCompatFixture(t, "compatsvc7", gen)

	seedMember(t, svc.DB, "uA", "A")

	_, err := svc.PairResult(context.Background(), "g1", "uA", "ghost")
	if !errors.Is(err, ErrMissingProfile) {
		t.Fatalf("expected ErrMissingProfile, got %v", err)
	}
}
