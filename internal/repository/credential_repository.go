package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/support-console/internal/domain"
)

const credentialsCollection = "credentials"

// CredentialRepository stores password hashes for console sign-in.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) error
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
}

type credentialRepository struct {
	coll *mongo.Collection
}

// NewCredentialRepository builds repository.
func NewCredentialRepository(db *mongo.Database) CredentialRepository {
	return &credentialRepository{coll: db.Collection(credentialsCollection)}
}

func (r *credentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	cred.CreatedAt = now()
	_, err := r.coll.InsertOne(ctx, bson.M{
		"_id":          cred.UID,
		"email":        cred.Email,
		"displayName":  cred.DisplayName,
		"passwordHash": cred.PasswordHash,
		"createdAt":    cred.CreatedAt,
	})
	return err
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var m bson.M
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&m); err != nil {
		return nil, err
	}
	cred := &domain.Credential{
		UID:          docID(m),
		Email:        docString(m, "email"),
		DisplayName:  docString(m, "displayName"),
		PasswordHash: docString(m, "passwordHash"),
	}
	if t, ok := docTime(m, "createdAt"); ok {
		cred.CreatedAt = t
	}
	return cred, nil
}
