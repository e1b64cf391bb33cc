package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/config"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

// AccessGate admits only identities registered as active admins.
type AccessGate struct {
	admins      repository.AdminRepository
	credentials repository.CredentialRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	logger      *zap.Logger
}

// AccessGateDependencies encapsulates repo requirements for the gate.
type AccessGateDependencies struct {
	AdminRepo      repository.AdminRepository
	CredentialRepo repository.CredentialRepository
	Logger         *zap.Logger
}

// SignInResult is a verified admin with a fresh session token.
type SignInResult struct {
	Admin     *domain.AdminUser
	Token     string
	ExpiresAt time.Time
}

// SeedAdminInput describes the first super admin.
type SeedAdminInput struct {
	Email    string
	Password string
	Name     string
}

// CreateAdminInput describes a new console operator. An empty role means admin.
type CreateAdminInput struct {
	Email       string
	Password    string
	Name        string
	Role        domain.AdminRole
	Permissions []string
}

// UpdateAdminInput changes an admin profile. Nil fields are left unchanged.
type UpdateAdminInput struct {
	Name        *string
	Role        *domain.AdminRole
	Permissions *[]string
}

// NewAccessGate builds the gate.
func NewAccessGate(cfg config.Config, deps AccessGateDependencies) *AccessGate {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessGate{
		admins:      deps.AdminRepo,
		credentials: deps.CredentialRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		logger:      logger,
	}
}

// TokenManager exposes the session token manager.
func (g *AccessGate) TokenManager() *auth.TokenManager {
	return g.tokenMgr
}

// Verify resolves an identity to an active admin record: by UID first, then by email when the
// UID is unknown or its lookup is rejected by the store's access control. A nil admin with a
// nil error means access is denied; callers must not distinguish why. Other lookup failures
// are returned and must be treated as a denial too. A successful verification stamps the last
// login time on a best-effort basis.
func (g *AccessGate) Verify(ctx context.Context, identity domain.Identity) (*domain.AdminUser, error) {
	admin, err := g.lookup(ctx, identity)
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.Active {
		g.logger.Info("admin access denied", zap.String("uid", identity.UID))
		return nil, nil
	}
	if admin.Email == "" {
		admin.Email = identity.Email
	}

	if err := g.admins.TouchLastLogin(ctx, admin.UID); err != nil {
		g.logger.Warn("last login update failed", zap.String("admin_id", admin.UID), zap.Error(err))
	} else {
		ts := time.Now().UTC()
		admin.LastLogin = &ts
	}
	return admin, nil
}

func (g *AccessGate) lookup(ctx context.Context, identity domain.Identity) (*domain.AdminUser, error) {
	if identity.UID != "" {
		admin, err := g.admins.GetByUID(ctx, identity.UID)
		switch {
		case err == nil:
			return admin, nil
		case apperrors.IsNotFound(err):
		case repository.IsPermissionDenied(err):
			g.logger.Debug("admin lookup by uid rejected; trying email", zap.String("uid", identity.UID), zap.Error(err))
		default:
			return nil, err
		}
	}

	email := strings.TrimSpace(identity.Email)
	if email == "" {
		return nil, nil
	}
	admin, err := g.admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return admin, nil
	case apperrors.IsNotFound(err), repository.IsPermissionDenied(err):
		return nil, nil
	default:
		return nil, err
	}
}

// ResolveAdmin reloads a session subject. Inactive or unknown admins resolve to nil.
func (g *AccessGate) ResolveAdmin(ctx context.Context, uid string) (*domain.AdminUser, error) {
	admin, err := g.admins.GetByUID(ctx, uid)
	if err != nil {
		if apperrors.IsNotFound(err) || repository.IsPermissionDenied(err) {
			return nil, nil
		}
		return nil, err
	}
	if !admin.Active {
		return nil, nil
	}
	return admin, nil
}

// HasPermission reports whether admin holds permission.
func (g *AccessGate) HasPermission(admin *domain.AdminUser, permission string) bool {
	return admin.HasPermission(permission)
}

// CanAccess reports whether admin may use a console feature.
func (g *AccessGate) CanAccess(admin *domain.AdminUser, feature string) bool {
	return admin.CanAccess(feature)
}

// SignIn checks the password against the stored credential, verifies the identity is an
// active admin and issues a session token. Wrong credentials and missing admin rights fail
// with distinct generic errors; the reason for an admin denial is never disclosed.
func (g *AccessGate) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	cred, err := g.credentials.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(cred.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	admin, err := g.Verify(ctx, domain.Identity{UID: cred.UID, Email: cred.Email, DisplayName: cred.DisplayName})
	if err != nil {
		g.logger.Error("admin verification failed", zap.String("uid", cred.UID), zap.Error(err))
		return nil, apperrors.NewForbidden(auth.AccessDeniedMessage)
	}
	if admin == nil {
		return nil, apperrors.NewForbidden(auth.AccessDeniedMessage)
	}

	token, exp, err := g.tokenMgr.GenerateToken(admin)
	if err != nil {
		return nil, err
	}
	return &SignInResult{Admin: admin, Token: token, ExpiresAt: exp}, nil
}

// ListAdmins returns every admin, super admins first, then admins, then moderators.
func (g *AccessGate) ListAdmins(ctx context.Context) ([]domain.AdminUser, error) {
	admins, err := g.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(admins, func(i, j int) bool {
		return admins[i].Role.Rank() < admins[j].Role.Rank()
	})
	return admins, nil
}

// SetAdminActive deactivates or reactivates an admin. Admins cannot deactivate themselves.
func (g *AccessGate) SetAdminActive(ctx context.Context, actor *domain.AdminUser, uid string, active bool) (*domain.AdminUser, error) {
	if actor != nil && actor.UID == uid && !active {
		return nil, apperrors.NewConflict("cannot deactivate own account", nil)
	}
	if err := g.admins.SetActive(ctx, uid, active); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("admin", map[string]any{"admin_id": uid})
		}
		return nil, err
	}
	return g.admins.GetByUID(ctx, uid)
}

// CreateAdmin registers an operator with a sign-in credential. Only super admins may create
// super admins.
func (g *AccessGate) CreateAdmin(ctx context.Context, actor *domain.AdminUser, input CreateAdminInput) (*domain.AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return nil, apperrors.NewValidationError("email and name required", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.AdminRoleAdmin
	}
	if err := checkRoleGrant(actor, role); err != nil {
		return nil, err
	}
	permissions, err := normalizePermissions(input.Permissions)
	if err != nil {
		return nil, err
	}

	if _, err := g.admins.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("admin with this email already exists", map[string]any{"email": email})
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}
	if _, err := g.credentials.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, g.bcryptCost)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
	}

	uid := uuid.NewString()
	if err := g.credentials.Create(ctx, &domain.Credential{UID: uid, Email: email, DisplayName: name, PasswordHash: hash}); err != nil {
		return nil, err
	}
	admin := &domain.AdminUser{
		UID:         uid,
		Email:       email,
		Name:        name,
		Role:        role,
		Permissions: permissions,
		Active:      true,
	}
	if err := g.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	g.logger.Info("admin created",
		zap.String("admin_id", uid), zap.String("role", string(role)), zap.String("actor_id", actorID(actor)))
	return admin, nil
}

// UpdateAdmin changes name, role or permissions. Admins cannot change their own role.
func (g *AccessGate) UpdateAdmin(ctx context.Context, actor *domain.AdminUser, uid string, input UpdateAdminInput) (*domain.AdminUser, error) {
	var update repository.AdminUpdate
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
		}
		update.Name = &name
	}
	if input.Role != nil {
		if actor != nil && actor.UID == uid && *input.Role != actor.Role {
			return nil, apperrors.NewConflict("cannot change own role", nil)
		}
		if err := checkRoleGrant(actor, *input.Role); err != nil {
			return nil, err
		}
		update.Role = input.Role
	}
	if input.Permissions != nil {
		permissions, err := normalizePermissions(*input.Permissions)
		if err != nil {
			return nil, err
		}
		update.Permissions = &permissions
	}
	if update.Name == nil && update.Role == nil && update.Permissions == nil {
		return nil, apperrors.NewValidationError("nothing to update", nil)
	}

	if err := g.admins.Update(ctx, uid, update); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("admin", map[string]any{"admin_id": uid})
		}
		return nil, err
	}
	return g.admins.GetByUID(ctx, uid)
}

func checkRoleGrant(actor *domain.AdminUser, role domain.AdminRole) error {
	if !role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if role == domain.AdminRoleSuperAdmin && (actor == nil || actor.Role != domain.AdminRoleSuperAdmin) {
		return apperrors.NewForbidden("only super admins can grant super_admin")
	}
	return nil
}

// normalizePermissions drops duplicates and rejects names outside AllPermissions.
func normalizePermissions(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, p := range in {
		p = strings.TrimSpace(p)
		if !domain.IsPermission(p) {
			return nil, apperrors.NewValidationError("unknown permission", map[string]any{"permission": p})
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func actorID(actor *domain.AdminUser) string {
	if actor == nil {
		return ""
	}
	return actor.UID
}

// SeedFirstAdmin creates the initial super admin and its credential. It refuses to run once
// any admin exists.
func (g *AccessGate) SeedFirstAdmin(ctx context.Context, input SeedAdminInput) (*domain.AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return nil, apperrors.NewValidationError("email and name required", nil)
	}

	count, err := g.admins.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.NewConflict("admins already exist", map[string]any{"count": count})
	}
	if _, err := g.credentials.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, g.bcryptCost)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	uid := uuid.NewString()
	cred := &domain.Credential{UID: uid, Email: email, DisplayName: name, PasswordHash: hash}
	if err := g.credentials.Create(ctx, cred); err != nil {
		return nil, err
	}

	admin := &domain.AdminUser{
		UID:         uid,
		Email:       email,
		Name:        name,
		Role:        domain.AdminRoleSuperAdmin,
		Permissions: append([]string{}, domain.AllPermissions...),
		Active:      true,
	}
	if err := g.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	g.logger.Info("first admin created", zap.String("admin_id", uid), zap.String("email", email))
	return admin, nil
}
