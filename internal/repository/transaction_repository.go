package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/support-console/internal/domain"
)

const transactionsCollection = "transactions"

// TransactionFilter captures transaction search parameters.
type TransactionFilter struct {
	UserID      string
	AccountID   string
	Status      domain.TransactionStatus
	Type        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TransactionRepository reads money movements.
type TransactionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
}

type transactionRepository struct {
	coll *mongo.Collection
}

// NewTransactionRepository builds repository.
func NewTransactionRepository(db *mongo.Database) TransactionRepository {
	return &transactionRepository{coll: db.Collection(transactionsCollection)}
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var m bson.M
	if err := r.coll.FindOne(ctx, idFilter(id)).Decode(&m); err != nil {
		return nil, err
	}
	tx := decodeTransaction(m)
	return &tx, nil
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error) {
	var and bson.A
	if filter.UserID != "" {
		and = append(and, bson.M{"$or": anyFieldEquals(filter.UserID, "userId", "fromUserId", "toUserId")})
	}
	if filter.AccountID != "" {
		and = append(and, bson.M{"$or": anyFieldEquals(filter.AccountID, "accountId", "fromAccountId", "toAccountId")})
	}
	if filter.Status != "" {
		and = append(and, bson.M{"status": filter.Status})
	}
	if filter.Type != "" {
		and = append(and, bson.M{"type": filter.Type})
	}
	if filter.CreatedFrom != nil || filter.CreatedTo != nil {
		rng := bson.M{}
		if filter.CreatedFrom != nil {
			rng["$gte"] = filter.CreatedFrom.UTC()
		}
		if filter.CreatedTo != nil {
			rng["$lte"] = filter.CreatedTo.UTC()
		}
		and = append(and, bson.M{"createdAt": rng})
	}
	query := bson.M{}
	if len(and) > 0 {
		query["$and"] = and
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
	txs := make([]domain.Transaction, 0, len(docs))
	for _, m := range docs {
		txs = append(txs, decodeTransaction(m))
	}
	return txs, nil
}

// anyFieldEquals matches documents where at least one of fields equals value.
func anyFieldEquals(value any, fields ...string) bson.A {
	out := make(bson.A, 0, len(fields))
	for _, f := range fields {
		out = append(out, bson.M{f: value})
	}
	return out
}

func decodeTransaction(m bson.M) domain.Transaction {
	tx := domain.Transaction{
		ID:            docString(m, "id"),
		TransactionID: docString(m, "transactionId"),
		FromAccountID: docString(m, "fromAccountId", "accountId"),
		ToAccountID:   docString(m, "toAccountId"),
		FromUserID:    docString(m, "fromUserId", "userId"),
		ToUserID:      docString(m, "toUserId"),
		Type:          docString(m, "type"),
		Amount:        docFloat(m, "amount"),
		Currency:      docString(m, "currency"),
		Fees:          docFloat(m, "fees"),
		Status:        domain.TransactionStatus(docString(m, "status")),
		Description:   docString(m, "description"),
		Reference:     docString(m, "reference"),
		CompletedAt:   docTimePtr(m, "completedAt"),
	}
	if id := docID(m); id != "" {
		tx.ID = id
	}
	if tx.TransactionID == "" {
		tx.TransactionID = tx.ID
	}
	if tx.Currency == "" {
		tx.Currency = "EUR"
	}
	if tx.Status == "" {
		tx.Status = domain.TransactionStatusPending
	}
	if t, ok := docTime(m, "createdAt"); ok {
		tx.CreatedAt = t
	}
	return tx
}
