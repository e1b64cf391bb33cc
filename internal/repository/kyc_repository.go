package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/support-console/internal/domain"
)

const kycCollection = "kycSubmissions"

// KYCFilter captures submission search parameters.
type KYCFilter struct {
	Status       domain.KYCSubmissionStatus
	Priority     string
	DocumentType string
	Limit        int
	Offset       int
}

// KYCReview is the outcome recorded on a submission.
type KYCReview struct {
	Status          domain.KYCSubmissionStatus
	ReviewedBy      string
	AdminNotes      string
	RejectionReason string
	InfoRequest     string
}

// KYCRepository reads and reviews identity document submissions.
type KYCRepository interface {
	GetByID(ctx context.Context, id string) (*domain.KYCSubmission, error)
	List(ctx context.Context, filter KYCFilter) ([]domain.KYCSubmission, error)
	Review(ctx context.Context, id string, review KYCReview) error
	Stats(ctx context.Context) (domain.KYCStats, error)
}

type kycRepository struct {
	coll *mongo.Collection
}

// NewKYCRepository builds repository.
func NewKYCRepository(db *mongo.Database) KYCRepository {
	return &kycRepository{coll: db.Collection(kycCollection)}
}

func (r *kycRepository) GetByID(ctx context.Context, id string) (*domain.KYCSubmission, error) {
	var m bson.M
	if err := r.coll.FindOne(ctx, idFilter(id)).Decode(&m); err != nil {
		return nil, err
	}
	sub := decodeKYC(m)
	return &sub, nil
}

func (r *kycRepository) List(ctx context.Context, filter KYCFilter) ([]domain.KYCSubmission, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.DocumentType != "" {
		query["documentType"] = filter.DocumentType
	}

	skip, limit := skipLimit(filter.Offset, filter.Limit)
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}}).SetSkip(skip)
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
	subs := make([]domain.KYCSubmission, 0, len(docs))
	for _, m := range docs {
		subs = append(subs, decodeKYC(m))
	}
	return subs, nil
}

func (r *kycRepository) Review(ctx context.Context, id string, review KYCReview) error {
	set := bson.M{
		"status":     review.Status,
		"adminNotes": review.AdminNotes,
		"reviewedAt": now(),
		"reviewedBy": review.ReviewedBy,
	}
	switch review.Status {
	case domain.KYCSubmissionRejected:
		set["rejectionReason"] = review.RejectionReason
	case domain.KYCSubmissionPendingInfo:
		set["infoRequestMessage"] = review.InfoRequest
		set["infoRequestedAt"] = set["reviewedAt"]
	}
	return notFoundIfUnmatched(r.coll.UpdateOne(ctx, idFilter(id), bson.M{"$set": set}))
}

// Stats counts submissions per status with a single aggregation.
func (r *kycRepository) Stats(ctx context.Context) (domain.KYCStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.KYCStats{}, err
	}
	var groups []bson.M
	if err := cursor.All(ctx, &groups); err != nil {
		return domain.KYCStats{}, err
	}
	return kycStatsFromGroups(groups), nil
}

func kycStatsFromGroups(groups []bson.M) domain.KYCStats {
	var stats domain.KYCStats
	for _, g := range groups {
		status, _ := g["_id"].(string)
		count := docInt(g, "count")
		stats.Total += count
		switch domain.KYCSubmissionStatus(status) {
		case domain.KYCSubmissionPending:
			stats.Pending += count
		case domain.KYCSubmissionApproved:
			stats.Approved += count
		case domain.KYCSubmissionRejected:
			stats.Rejected += count
		case domain.KYCSubmissionPendingInfo:
			stats.PendingInfo += count
		}
	}
	return stats
}

func decodeKYC(m bson.M) domain.KYCSubmission {
	sub := domain.KYCSubmission{
		ID:              docID(m),
		UserID:          docString(m, "userId"),
		DocumentType:    docString(m, "documentType"),
		FileName:        docString(m, "fileName"),
		FileSize:        int64(docFloat(m, "fileSize")),
		MimeType:        docString(m, "mimeType"),
		URL:             docString(m, "url", "cloudinaryUrl"),
		Priority:        docString(m, "priority"),
		Status:          domain.KYCSubmissionStatus(docString(m, "status")),
		AdminNotes:      docString(m, "adminNotes"),
		RejectionReason: docString(m, "rejectionReason"),
		InfoRequest:     docString(m, "infoRequestMessage"),
		InfoRequestedAt: docTimePtr(m, "infoRequestedAt"),
		ReviewedAt:      docTimePtr(m, "reviewedAt"),
		ReviewedBy:      docStringPtr(m, "reviewedBy"),
	}
	if sub.Status == "" {
		sub.Status = domain.KYCSubmissionPending
	}
	if t, ok := docTime(m, "submittedAt"); ok {
		sub.SubmittedAt = t
	}
	return sub
}
