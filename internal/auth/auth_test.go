package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-console/internal/domain"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

type stubResolver struct {
	admins map[string]*domain.AdminUser
	err    error
}

func (s stubResolver) ResolveAdmin(_ context.Context, uid string) (*domain.AdminUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.admins[uid], nil
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken(&domain.AdminUser{UID: "a1", Role: domain.AdminRoleModerator})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry in the past")
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.AdminID != "a1" || claims.Role != domain.AdminRoleModerator {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := NewTokenManager("other", 5).ParseToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	claims := &Claims{AdminID: "a1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestGenerateTokenRequiresAdmin(t *testing.T) {
	if _, _, err := NewTokenManager("s", 1).GenerateToken(nil); err == nil {
		t.Fatal("expected error for nil admin")
	}
}

func TestHashPassword(t *testing.T) {
	if _, err := HashPassword("short", bcrypt.MinCost); err == nil {
		t.Fatal("short password accepted")
	}
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ComparePassword(hash, "correct horse") != nil {
		t.Fatal("matching password rejected")
	}
	if ComparePassword(hash, "wrong horse") == nil {
		t.Fatal("wrong password accepted")
	}
}

func newTestApp(resolver AdminResolver, tm *TokenManager, feature string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.SendStatus(fe.Code)
		}
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	mw := NewAuthMiddleware(tm, resolver)
	app.Get("/x", mw.Handle, RequireFeature(feature), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Admin.UID)
	})
	return app
}

func TestMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	resolver := stubResolver{admins: map[string]*domain.AdminUser{
		"a1": {UID: "a1", Role: domain.AdminRoleAdmin, Permissions: []string{"support"}, Active: true},
		"a2": {UID: "a2", Role: domain.AdminRoleAdmin, Permissions: []string{"kyc"}, Active: true},
	}}
	tokenFor := func(uid string) string {
		token, _, err := tm.GenerateToken(&domain.AdminUser{UID: uid})
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		return token
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"permitted", "Bearer " + tokenFor("a1"), http.StatusOK},
		{"lacks feature", "Bearer " + tokenFor("a2"), http.StatusForbidden},
		{"no longer admin", "Bearer " + tokenFor("gone"), http.StatusForbidden},
	}
	app := newTestApp(resolver, tm, domain.PermissionSupport)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestAuthenticateResolverFailure(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, _, _ := tm.GenerateToken(&domain.AdminUser{UID: "a1"})
	mw := NewAuthMiddleware(tm, stubResolver{err: errors.New("store down")})
	_, err := mw.Authenticate(context.Background(), token)
	if apperrors.ToDomainError(err).HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal error, got %v", err)
	}
}
