package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/config"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
)

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}}
}

func newTestGate(admins *fakeAdminRepo, creds *fakeCredentialRepo) *AccessGate {
	return NewAccessGate(testConfig(), AccessGateDependencies{AdminRepo: admins, CredentialRepo: creds})
}

func TestVerify(t *testing.T) {
	alice := domain.AdminUser{UID: "a1", Email: "alice@bank.test", Role: domain.AdminRoleAdmin, Permissions: []string{"support"}, Active: true}
	carol := domain.AdminUser{UID: "c1", Email: "carol@bank.test", Role: domain.AdminRoleModerator, Active: false}
	dave := domain.AdminUser{UID: "d-legacy", Email: "dave@bank.test", Role: domain.AdminRoleAdmin, Active: true}

	cases := []struct {
		name     string
		identity domain.Identity
		setup    func(*fakeAdminRepo)
		wantUID  string
		wantErr  bool
	}{
		{name: "active admin by uid", identity: domain.Identity{UID: "a1"}, wantUID: "a1"},
		{name: "unknown identity", identity: domain.Identity{UID: "eve", Email: "eve@bank.test"}},
		{name: "deactivated admin", identity: domain.Identity{UID: "c1", Email: "carol@bank.test"}},
		{name: "uid miss falls back to email", identity: domain.Identity{UID: "d-new", Email: "dave@bank.test"}, wantUID: "d-legacy"},
		{
			name:     "permission denied falls back to email",
			identity: domain.Identity{UID: "x9", Email: "dave@bank.test"},
			setup:    func(r *fakeAdminRepo) { r.uidErrs["x9"] = repository.ErrPermissionDenied },
			wantUID:  "d-legacy",
		},
		{
			name:     "permission denied without email",
			identity: domain.Identity{UID: "x9"},
			setup:    func(r *fakeAdminRepo) { r.uidErrs["x9"] = repository.ErrPermissionDenied },
		},
		{
			name:     "store failure",
			identity: domain.Identity{UID: "a1"},
			setup:    func(r *fakeAdminRepo) { r.uidErrs["a1"] = errors.New("connection reset") },
			wantErr:  true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeAdminRepo(alice, carol, dave)
			if tc.setup != nil {
				tc.setup(repo)
			}
			admin, err := newTestGate(repo, newFakeCredentialRepo()).Verify(context.Background(), tc.identity)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v", err)
			}
			if tc.wantUID == "" {
				if admin != nil {
					t.Fatalf("expected denial, got %s", admin.UID)
				}
				if len(repo.touched) != 0 {
					t.Fatal("denied identity touched last login")
				}
				return
			}
			if admin == nil || admin.UID != tc.wantUID {
				t.Fatalf("admin = %+v", admin)
			}
			if admin.LastLogin == nil || len(repo.touched) != 1 {
				t.Fatal("last login not recorded")
			}
		})
	}
}

func TestVerifyToleratesLastLoginFailure(t *testing.T) {
	repo := newFakeAdminRepo(domain.AdminUser{UID: "a1", Active: true})
	repo.touchErr = errors.New("read only")
	admin, err := newTestGate(repo, newFakeCredentialRepo()).Verify(context.Background(), domain.Identity{UID: "a1"})
	if err != nil || admin == nil {
		t.Fatalf("verify: %v %v", admin, err)
	}
	if admin.LastLogin != nil {
		t.Fatal("last login set despite failed write")
	}
}

func TestResolveAdmin(t *testing.T) {
	repo := newFakeAdminRepo(
		domain.AdminUser{UID: "a1", Active: true},
		domain.AdminUser{UID: "c1", Active: false},
	)
	gate := newTestGate(repo, newFakeCredentialRepo())
	ctx := context.Background()

	if admin, err := gate.ResolveAdmin(ctx, "a1"); err != nil || admin == nil {
		t.Fatalf("active admin: %v %v", admin, err)
	}
	for _, uid := range []string{"c1", "ghost"} {
		if admin, err := gate.ResolveAdmin(ctx, uid); err != nil || admin != nil {
			t.Fatalf("%s: %v %v", uid, admin, err)
		}
	}
	if len(repo.touched) != 0 {
		t.Fatal("resolve must not touch last login")
	}
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	admins := newFakeAdminRepo()
	creds := newFakeCredentialRepo()
	gate := newTestGate(admins, creds)

	admin, err := gate.SeedFirstAdmin(ctx, SeedAdminInput{Email: "Root@Bank.test", Password: "correct-horse", Name: "Root"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if admin.Role != domain.AdminRoleSuperAdmin || !admin.Active || len(admin.Permissions) != len(domain.AllPermissions) {
		t.Fatalf("seeded admin = %+v", admin)
	}

	res, err := gate.SignIn(ctx, "root@bank.test", "correct-horse")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	claims, err := gate.TokenManager().ParseToken(res.Token)
	if err != nil || claims.AdminID != admin.UID {
		t.Fatalf("token claims = %+v, %v", claims, err)
	}

	if _, err := gate.SignIn(ctx, "root@bank.test", "wrong-password"); errorCode(err) != "UNAUTHORIZED" {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := gate.SignIn(ctx, "nobody@bank.test", "whatever1"); errorCode(err) != "UNAUTHORIZED" {
		t.Fatalf("unknown email: %v", err)
	}

	hash, _ := auth.HashPassword("customer-pass", bcrypt.MinCost)
	_ = creds.Create(ctx, &domain.Credential{UID: "eve", Email: "eve@bank.test", PasswordHash: hash})
	_, err = gate.SignIn(ctx, "eve@bank.test", "customer-pass")
	if errorCode(err) != "FORBIDDEN" {
		t.Fatalf("non-admin sign in: %v", err)
	}

	if err := admins.SetActive(ctx, admin.UID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := gate.SignIn(ctx, "root@bank.test", "correct-horse"); errorCode(err) != "FORBIDDEN" {
		t.Fatalf("deactivated sign in: %v", err)
	}
}

func TestSeedFirstAdminRefusesWhenAdminsExist(t *testing.T) {
	gate := newTestGate(newFakeAdminRepo(domain.AdminUser{UID: "a1", Active: true}), newFakeCredentialRepo())
	_, err := gate.SeedFirstAdmin(context.Background(), SeedAdminInput{Email: "x@bank.test", Password: "long-enough", Name: "X"})
	if errorCode(err) != "CONFLICT" {
		t.Fatalf("expected conflict, got %v", err)
	}

	empty := newTestGate(newFakeAdminRepo(), newFakeCredentialRepo())
	if _, err := empty.SeedFirstAdmin(context.Background(), SeedAdminInput{Email: "x@bank.test", Password: "short", Name: "X"}); errorCode(err) != "VALIDATION_FAILED" {
		t.Fatalf("short password: %v", err)
	}
}

func TestListAdminsOrdersByRole(t *testing.T) {
	gate := newTestGate(newFakeAdminRepo(
		domain.AdminUser{UID: "m", Email: "a-mod@bank.test", Role: domain.AdminRoleModerator},
		domain.AdminUser{UID: "s", Email: "z-super@bank.test", Role: domain.AdminRoleSuperAdmin},
		domain.AdminUser{UID: "a", Email: "b-admin@bank.test", Role: domain.AdminRoleAdmin},
	), newFakeCredentialRepo())

	admins, err := gate.ListAdmins(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{admins[0].UID, admins[1].UID, admins[2].UID}
	if got[0] != "s" || got[1] != "a" || got[2] != "m" {
		t.Fatalf("order = %v", got)
	}
}

func TestSetAdminActive(t *testing.T) {
	repo := newFakeAdminRepo(
		domain.AdminUser{UID: "s", Role: domain.AdminRoleSuperAdmin, Active: true},
		domain.AdminUser{UID: "m", Role: domain.AdminRoleModerator, Active: true},
	)
	gate := newTestGate(repo, newFakeCredentialRepo())
	ctx := context.Background()
	actor := &domain.AdminUser{UID: "s", Role: domain.AdminRoleSuperAdmin}

	if _, err := gate.SetAdminActive(ctx, actor, "s", false); errorCode(err) != "CONFLICT" {
		t.Fatalf("self deactivation: %v", err)
	}
	updated, err := gate.SetAdminActive(ctx, actor, "m", false)
	if err != nil || updated.Active {
		t.Fatalf("deactivate: %+v %v", updated, err)
	}
	if _, err := gate.SetAdminActive(ctx, actor, "ghost", true); errorCode(err) != "NOT_FOUND" {
		t.Fatalf("unknown admin: %v", err)
	}
}

func TestCreateAdmin(t *testing.T) {
	super := &domain.AdminUser{UID: "s", Role: domain.AdminRoleSuperAdmin}
	plain := &domain.AdminUser{UID: "a", Role: domain.AdminRoleAdmin, Permissions: []string{domain.PermissionAdminManagement}}

	cases := []struct {
		name     string
		actor    *domain.AdminUser
		input    CreateAdminInput
		wantCode string
	}{
		{name: "missing name", actor: super, input: CreateAdminInput{Email: "m@bank.test", Password: "long-enough"}, wantCode: "VALIDATION_FAILED"},
		{name: "unknown role", actor: super, input: CreateAdminInput{Email: "m@bank.test", Name: "M", Password: "long-enough", Role: "owner"}, wantCode: "VALIDATION_FAILED"},
		{name: "unknown permission", actor: super, input: CreateAdminInput{Email: "m@bank.test", Name: "M", Password: "long-enough", Permissions: []string{"root"}}, wantCode: "VALIDATION_FAILED"},
		{name: "short password", actor: super, input: CreateAdminInput{Email: "m@bank.test", Name: "M", Password: "short"}, wantCode: "VALIDATION_FAILED"},
		{name: "duplicate admin email", actor: super, input: CreateAdminInput{Email: "Alice@bank.test", Name: "A", Password: "long-enough"}, wantCode: "CONFLICT"},
		{name: "duplicate credential email", actor: super, input: CreateAdminInput{Email: "orphan@bank.test", Name: "O", Password: "long-enough"}, wantCode: "CONFLICT"},
		{name: "super admin needs super admin", actor: plain, input: CreateAdminInput{Email: "m@bank.test", Name: "M", Password: "long-enough", Role: domain.AdminRoleSuperAdmin}, wantCode: "FORBIDDEN"},
		{name: "moderator created", actor: plain, input: CreateAdminInput{Email: "Mod@bank.test", Name: " Mod ", Password: "long-enough", Role: domain.AdminRoleModerator, Permissions: []string{"support", "support", "kyc"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			admins := newFakeAdminRepo(domain.AdminUser{UID: "a1", Email: "alice@bank.test", Role: domain.AdminRoleAdmin, Active: true})
			creds := newFakeCredentialRepo()
			creds.creds["orphan@bank.test"] = &domain.Credential{UID: "o1", Email: "orphan@bank.test"}
			gate := newTestGate(admins, creds)

			admin, err := gate.CreateAdmin(context.Background(), tc.actor, tc.input)
			if tc.wantCode != "" {
				if errorCode(err) != tc.wantCode {
					t.Fatalf("expected %s, got %v", tc.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if admin.Email != "mod@bank.test" || admin.Name != "Mod" || !admin.Active || admin.Role != domain.AdminRoleModerator {
				t.Fatalf("admin = %+v", admin)
			}
			if len(admin.Permissions) != 2 || !admin.HasPermission("support") || !admin.HasPermission("kyc") {
				t.Fatalf("permissions = %v", admin.Permissions)
			}

			res, err := gate.SignIn(context.Background(), "mod@bank.test", "long-enough")
			if err != nil {
				t.Fatalf("new admin sign in: %v", err)
			}
			if res.Admin.UID != admin.UID {
				t.Fatalf("signed in as %q, want %q", res.Admin.UID, admin.UID)
			}
		})
	}
}

func TestUpdateAdmin(t *testing.T) {
	role := func(r domain.AdminRole) *domain.AdminRole { return &r }
	str := func(s string) *string { return &s }
	perms := func(p ...string) *[]string { return &p }
	super := &domain.AdminUser{UID: "s", Role: domain.AdminRoleSuperAdmin}
	plain := &domain.AdminUser{UID: "a", Role: domain.AdminRoleAdmin}

	cases := []struct {
		name     string
		actor    *domain.AdminUser
		uid      string
		input    UpdateAdminInput
		wantCode string
		check    func(*testing.T, *domain.AdminUser)
	}{
		{name: "empty update", actor: super, uid: "m", wantCode: "VALIDATION_FAILED"},
		{name: "blank name", actor: super, uid: "m", input: UpdateAdminInput{Name: str("  ")}, wantCode: "VALIDATION_FAILED"},
		{name: "unknown permission", actor: super, uid: "m", input: UpdateAdminInput{Permissions: perms("support", "root")}, wantCode: "VALIDATION_FAILED"},
		{name: "own role", actor: super, uid: "s", input: UpdateAdminInput{Role: role(domain.AdminRoleModerator)}, wantCode: "CONFLICT"},
		{name: "promotion needs super admin", actor: plain, uid: "m", input: UpdateAdminInput{Role: role(domain.AdminRoleSuperAdmin)}, wantCode: "FORBIDDEN"},
		{name: "unknown admin", actor: super, uid: "ghost", input: UpdateAdminInput{Name: str("Ghost")}, wantCode: "NOT_FOUND"},
		{
			name: "role and permissions", actor: super, uid: "m",
			input: UpdateAdminInput{Role: role(domain.AdminRoleAdmin), Permissions: perms("reports", "users")},
			check: func(t *testing.T, a *domain.AdminUser) {
				if a.Role != domain.AdminRoleAdmin || len(a.Permissions) != 2 || a.HasPermission("support") || !a.HasPermission("reports") {
					t.Fatalf("admin = %+v", a)
				}
				if a.Name != "Mod" {
					t.Fatalf("name should be unchanged, got %q", a.Name)
				}
			},
		},
		{
			name: "clear permissions", actor: super, uid: "m", input: UpdateAdminInput{Permissions: perms()},
			check: func(t *testing.T, a *domain.AdminUser) {
				if len(a.Permissions) != 0 || a.Role != domain.AdminRoleModerator {
					t.Fatalf("admin = %+v", a)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeAdminRepo(
				domain.AdminUser{UID: "s", Role: domain.AdminRoleSuperAdmin, Active: true},
				domain.AdminUser{UID: "m", Name: "Mod", Role: domain.AdminRoleModerator, Permissions: []string{"support"}, Active: true},
			)
			gate := newTestGate(repo, newFakeCredentialRepo())
			admin, err := gate.UpdateAdmin(context.Background(), tc.actor, tc.uid, tc.input)
			if tc.wantCode != "" {
				if errorCode(err) != tc.wantCode {
					t.Fatalf("expected %s, got %v", tc.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			tc.check(t, admin)
		})
	}
}
