package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/errx"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTTokenService("secret", "talentmatch")

	token, err := svc.GenerateAccessToken("user-1", []string{ScopeMatchesRead}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user = %q", claims.UserID)
	}
	if len(claims.Scopes) != 1 || claims.Scopes[0] != ScopeMatchesRead {
		t.Errorf("scopes = %v", claims.Scopes)
	}
}

func TestValidateRejects(t *testing.T) {
	good := NewJWTTokenService("secret", "talentmatch")

	expired, _ := good.GenerateAccessToken("user-1", nil, -time.Minute)
	otherKey, _ := NewJWTTokenService("other", "talentmatch").GenerateAccessToken("user-1", nil, time.Hour)
	otherIssuer, _ := NewJWTTokenService("secret", "someone-else").GenerateAccessToken("user-1", nil, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong key", otherKey},
		{"wrong issuer", otherIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := good.ValidateAccessToken(tt.token)
			if !errx.IsCode(err, CodeInvalidToken) {
				t.Fatalf("error = %v, want %s", err, CodeInvalidToken)
			}
		})
	}
}

func TestHasScope(t *testing.T) {
	tests := []struct {
		granted  []string
		required string
		want     bool
	}{
		{[]string{ScopeMatchesRead}, ScopeMatchesRead, true},
		{[]string{ScopeMatchesAll}, ScopeMatchesWrite, true},
		{[]string{ScopeAnalysisAll}, ScopeMatchesRead, false},
		{nil, ScopeMatchesRead, false},
	}
	for _, tt := range tests {
		if got := HasScope(tt.granted, tt.required); got != tt.want {
			t.Errorf("HasScope(%v, %q) = %v, want %v", tt.granted, tt.required, got, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	svc := NewJWTTokenService("secret", "")
	mw := NewUnifiedAuthMiddleware(svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := errx.As(err); ok {
				return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Get("/me", mw.Authenticate(), mw.RequireScope(ScopeAnalysisRead), func(c *fiber.Ctx) error {
		authCtx, _ := GetAuthContext(c)
		return c.SendString(authCtx.UserID.String())
	})

	reader, _ := svc.GenerateAccessToken(kernel.UserID("user-7"), DomainScopeGroups["candidate"], time.Hour)
	noScope, _ := svc.GenerateAccessToken(kernel.UserID("user-8"), []string{ScopeMatchesRead}, time.Hour)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"bad scheme", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "Bearer abc", fiber.StatusUnauthorized},
		{"missing scope", "Bearer " + noScope, fiber.StatusForbidden},
		{"ok", "Bearer " + reader, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
