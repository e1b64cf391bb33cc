package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/support-console/internal/domain"
)

const adminsCollection = "admins"

// AdminUpdate lists the profile fields to change; nil fields are left as stored.
type AdminUpdate struct {
	Name        *string
	Role        *domain.AdminRole
	Permissions *[]string
}

// AdminRepository reads and maintains the admin registry. Documents are keyed by identity UID.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) error
	GetByUID(ctx context.Context, uid string) (*domain.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	List(ctx context.Context) ([]domain.AdminUser, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, uid string, active bool) error
	Update(ctx context.Context, uid string, update AdminUpdate) error
	TouchLastLogin(ctx context.Context, uid string) error
}

type adminRepository struct {
	coll *mongo.Collection
}

// NewAdminRepository builds repository.
func NewAdminRepository(db *mongo.Database) AdminRepository {
	return &adminRepository{coll: db.Collection(adminsCollection)}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminUser) error {
	ts := now()
	admin.CreatedAt = ts
	admin.UpdatedAt = ts
	permissions := admin.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	_, err := r.coll.InsertOne(ctx, bson.M{
		"_id":         admin.UID,
		"email":       admin.Email,
		"name":        admin.Name,
		"role":        admin.Role,
		"permissions": permissions,
		"isActive":    admin.Active,
		"createdAt":   ts,
		"updatedAt":   ts,
	})
	return err
}

func (r *adminRepository) GetByUID(ctx context.Context, uid string) (*domain.AdminUser, error) {
	return r.findOne(ctx, idFilter(uid))
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *adminRepository) findOne(ctx context.Context, filter bson.M) (*domain.AdminUser, error) {
	var m bson.M
	if err := r.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		return nil, err
	}
	admin := decodeAdmin(m)
	return &admin, nil
}

func (r *adminRepository) List(ctx context.Context) ([]domain.AdminUser, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	admins := make([]domain.AdminUser, 0, len(docs))
	for _, m := range docs {
		admins = append(admins, decodeAdmin(m))
	}
	return admins, nil
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *adminRepository) SetActive(ctx context.Context, uid string, active bool) error {
	ts := now()
	set := bson.M{"isActive": active, "updatedAt": ts}
	if active {
		set["reactivatedAt"] = ts
	} else {
		set["deactivatedAt"] = ts
	}
	return notFoundIfUnmatched(r.coll.UpdateOne(ctx, idFilter(uid), bson.M{"$set": set}))
}

func (r *adminRepository) Update(ctx context.Context, uid string, update AdminUpdate) error {
	set := bson.M{"updatedAt": now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}
	if update.Permissions != nil {
		set["permissions"] = *update.Permissions
	}
	return notFoundIfUnmatched(r.coll.UpdateOne(ctx, idFilter(uid), bson.M{"$set": set}))
}

func (r *adminRepository) TouchLastLogin(ctx context.Context, uid string) error {
	ts := now()
	return notFoundIfUnmatched(r.coll.UpdateOne(ctx, idFilter(uid), bson.M{"$set": bson.M{
		"lastLogin": ts,
		"updatedAt": ts,
	}}))
}

// decodeAdmin treats a missing isActive flag as active; only an explicit false deactivates.
func decodeAdmin(m bson.M) domain.AdminUser {
	admin := domain.AdminUser{
		UID:         docID(m),
		Email:       docString(m, "email"),
		Name:        docString(m, "name"),
		Role:        domain.AdminRole(docString(m, "role")),
		Permissions: docStrings(m, "permissions"),
		Active:      true,
		LastLogin:   docTimePtr(m, "lastLogin"),
	}
	if admin.Role == "" {
		admin.Role = domain.AdminRoleAdmin
	}
	if admin.Permissions == nil {
		admin.Permissions = []string{}
	}
	if active, ok := docBool(m, "isActive"); ok {
		admin.Active = active
	}
	if t, ok := docTime(m, "createdAt"); ok {
		admin.CreatedAt = t
	}
	if t, ok := docTime(m, "updatedAt"); ok {
		admin.UpdatedAt = t
	}
	return admin
}
