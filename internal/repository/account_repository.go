package repository

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/support-console/internal/domain"
)

const accountsCollection = "accounts"

// AccountFilter captures account search parameters.
type AccountFilter struct {
	UserID     string
	Status     domain.AccountStatus
	Type       string
	SearchTerm string
	Limit      int
	Offset     int
}

// AccountRepository reads customer bank accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
}

type accountRepository struct {
	coll *mongo.Collection
}

// NewAccountRepository builds repository.
func NewAccountRepository(db *mongo.Database) AccountRepository {
	return &accountRepository{coll: db.Collection(accountsCollection)}
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var m bson.M
	if err := r.coll.FindOne(ctx, idFilter(id)).Decode(&m); err != nil {
		return nil, err
	}
	account := decodeAccount(m)
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Type != "" {
		query["$and"] = bson.A{bson.M{"$or": bson.A{
			bson.M{"accountType": filter.Type},
			bson.M{"type": filter.Type},
		}}}
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"accountNumber": pattern},
			bson.M{"iban": pattern},
			bson.M{"userId": pattern},
		}
	}

	skip, limit := skipLimit(filter.Offset, filter.Limit)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(skip)
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
	accounts := make([]domain.Account, 0, len(docs))
	for _, m := range docs {
		accounts = append(accounts, decodeAccount(m))
	}
	return accounts, nil
}

func decodeAccount(m bson.M) domain.Account {
	account := domain.Account{
		ID:               docString(m, "id"),
		UserID:           docString(m, "userId"),
		AccountNumber:    docString(m, "accountNumber"),
		IBAN:             docString(m, "iban"),
		AccountType:      docString(m, "accountType", "type"),
		Currency:         docString(m, "currency"),
		Balance:          docFloat(m, "balance"),
		AvailableBalance: docFloat(m, "availableBalance"),
		Status:           domain.AccountStatus(docString(m, "status")),
		LastActivity:     docTimePtr(m, "lastActivity"),
	}
	if id := docID(m); id != "" {
		account.ID = id
	}
	if account.Currency == "" {
		account.Currency = "EUR"
	}
	if t, ok := docTime(m, "createdAt"); ok {
		account.CreatedAt = t
	}
	return account
}
