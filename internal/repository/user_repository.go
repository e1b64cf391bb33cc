package repository

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/support-console/internal/domain"
)

const usersCollection = "users"

// UserFilter captures customer search parameters.
type UserFilter struct {
	EmailPrefix string
	Status      domain.UserStatus
	KYCStatus   domain.KYCStatus
	Limit       int
	Offset      int
}

// UserRepository reads platform customers.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	SetKYCStatus(ctx context.Context, id string, status domain.KYCStatus) error
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository returns a Mongo-backed implementation.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var m bson.M
	if err := r.coll.FindOne(ctx, idFilter(id)).Decode(&m); err != nil {
		return nil, err
	}
	user := decodeUser(m)
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := bson.M{}
	if prefix := strings.TrimSpace(filter.EmailPrefix); prefix != "" {
		query["email"] = bson.M{"$gte": prefix, "$lte": prefix + "\uf8ff"}
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.KYCStatus != "" {
		query["kycStatus"] = filter.KYCStatus
	}

	skip, limit := skipLimit(filter.Offset, filter.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(docs))
	for _, m := range docs {
		users = append(users, decodeUser(m))
	}
	return users, nil
}

// SetKYCStatus records the outcome of a KYC review on the customer.
func (r *userRepository) SetKYCStatus(ctx context.Context, id string, status domain.KYCStatus) error {
	set := bson.M{"kycStatus": status}
	switch status {
	case domain.KYCStatusVerified:
		set["kycVerifiedAt"] = now()
	case domain.KYCStatusRejected:
		set["kycRejectedAt"] = now()
	}
	return notFoundIfUnmatched(r.coll.UpdateOne(ctx, idFilter(id), bson.M{"$set": set}))
}

func decodeUser(m bson.M) domain.User {
	user := domain.User{
		ID:          docID(m),
		UID:         docString(m, "uid"),
		Email:       docString(m, "email"),
		DisplayName: docString(m, "displayName"),
		FirstName:   docString(m, "firstName"),
		LastName:    docString(m, "lastName"),
		Phone:       docString(m, "phone", "phoneNumber"),
		Country:     docString(m, "country"),
		City:        docString(m, "city"),
		KYCStatus:   domain.KYCStatus(docString(m, "kycStatus")),
		Status:      domain.UserStatus(docString(m, "status")),
		LastLogin:   docTimePtr(m, "lastLogin"),
	}
	if user.UID == "" {
		user.UID = user.ID
	}
	if user.KYCStatus == "" {
		user.KYCStatus = domain.KYCStatusPending
	}
	if user.Status == "" {
		user.Status = domain.UserStatusPending
	}
	user.IsEmailVerified, _ = docBool(m, "isEmailVerified")
	user.IsPhoneVerified, _ = docBool(m, "isPhoneVerified")
	if t, ok := docTime(m, "createdAt"); ok {
		user.CreatedAt = t
	}
	for _, a := range docMaps(m, "accounts") {
		account := decodeAccount(a)
		if account.UserID == "" {
			account.UserID = user.ID
		}
		user.Accounts = append(user.Accounts, account)
	}
	for _, t := range docMaps(m, "transactions") {
		user.Transactions = append(user.Transactions, decodeTransaction(t))
	}
	return user
}
