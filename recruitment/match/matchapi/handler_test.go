package matchapi

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
	"github.com/Abraxas-365/talentmatch/pkg/iam/auth"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/recruitment/match"
	"github.com/gofiber/fiber/v2"
)

type fakeRanker struct {
	got         match.RankRequest
	invalidated kernel.JobID
}

func (f *fakeRanker) Rank(ctx context.Context, req match.RankRequest) (*match.RankResponse, error) {
	f.got = req
	score := 0.9
	return &match.RankResponse{
		Items:      []match.RankedItem{{CandidateID: "a", Score: &score}},
		TotalItems: 1,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: 1,
	}, nil
}

func (f *fakeRanker) Invalidate(ctx context.Context, jobID kernel.JobID) error {
	f.invalidated = jobID
	return nil
}

func setup(t *testing.T, scopes ...string) (*fiber.App, *fakeRanker, string) {
	t.Helper()
	tokens := auth.NewJWTTokenService("secret", "")
	ranker := &fakeRanker{}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := errx.As(err); ok {
				return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	RegisterRoutes(app, NewHandlers(ranker), auth.NewUnifiedAuthMiddleware(tokens))

	token, err := tokens.GenerateAccessToken("recruiter-1", scopes, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return app, ranker, token
}

func TestRankCandidatesParsesQuery(t *testing.T) {
	app, ranker, token := setup(t, auth.ScopeMatchesAll)

	req := httptest.NewRequest("GET",
		"/api/jobs/job-1/candidates?page=2&page_size=5&force=true&q=golang&location=Lima&skills=go,%20sql,&title=engineer&company=acme", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	got := ranker.got
	if got.JobID != "job-1" || got.Page != 2 || got.PageSize != 5 || !got.ForceRecompute || got.Query != "golang" {
		t.Errorf("request = %+v", got)
	}
	f := got.Filters
	if f.Location != "Lima" || f.ExperienceTitle != "engineer" || f.ExperienceCompany != "acme" {
		t.Errorf("filters = %+v", f)
	}
	if len(f.SkillIDs) != 2 || f.SkillIDs[0] != "go" || f.SkillIDs[1] != "sql" {
		t.Errorf("skills = %v", f.SkillIDs)
	}

	var body match.RankResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Items) != 1 || body.Items[0].Score == nil || *body.Items[0].Score != 0.9 {
		t.Errorf("body = %+v", body)
	}
}

func TestRankCandidatesDefaults(t *testing.T) {
	app, ranker, token := setup(t, auth.ScopeMatchesRead)

	req := httptest.NewRequest("GET", "/api/jobs/job-1/candidates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, err := app.Test(req); err != nil {
		t.Fatal(err)
	}

	if ranker.got.Page != 1 || ranker.got.PageSize != 10 || ranker.got.ForceRecompute {
		t.Errorf("request = %+v", ranker.got)
	}
	if !ranker.got.Filters.IsEmpty() {
		t.Errorf("filters = %+v", ranker.got.Filters)
	}
}

func TestInvalidateRequiresWriteScope(t *testing.T) {
	app, ranker, token := setup(t, auth.ScopeMatchesRead)

	req := httptest.NewRequest("DELETE", "/api/jobs/job-1/matches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if ranker.invalidated != "" {
		t.Fatal("invalidate called without scope")
	}
}

func TestInvalidate(t *testing.T) {
	app, ranker, token := setup(t, auth.ScopeMatchesWrite)

	req := httptest.NewRequest("DELETE", "/api/jobs/job-1/matches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNoContent || ranker.invalidated != "job-1" {
		t.Fatalf("status = %d invalidated = %q", resp.StatusCode, ranker.invalidated)
	}
}
