package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/support-console/internal/domain"
)

const messagesCollection = "messages"

// MessageRepository persists chat transcripts. Messages reference their chat by chatId.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	ListByChat(ctx context.Context, chatID string, limit int) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, chatID string, ids []string) (int64, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMessageRepository builds repository.
func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{coll: db.Collection(messagesCollection)}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	msg.ID = uuid.NewString()
	msg.SentAt = now()
	msg.Status = domain.MessageStatusSent
	if msg.Type == "" {
		msg.Type = domain.MessageTypeText
	}
	_, err := r.coll.InsertOne(ctx, encodeMessage(msg))
	return err
}

// ListByChat returns messages oldest first. A non-positive limit returns the whole transcript.
func (r *messageRepository) ListByChat(ctx context.Context, chatID string, limit int) ([]domain.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, bson.M{"chatId": chatID}, opts)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	messages := make([]domain.ChatMessage, 0, len(docs))
	for _, m := range docs {
		messages = append(messages, decodeMessage(m))
	}
	return messages, nil
}

// MarkRead flags the given messages of chatID as read and returns how many changed.
func (r *messageRepository) MarkRead(ctx context.Context, chatID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in := make(bson.A, 0, len(ids))
	for _, id := range ids {
		in = append(in, idFilter(id)["_id"])
	}
	filter := bson.M{
		"chatId": chatID,
		"$or":    orEach("_id", in),
		"status": bson.M{"$ne": domain.MessageStatusRead},
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"status": domain.MessageStatusRead,
		"readAt": now(),
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func orEach(field string, values bson.A) bson.A {
	out := make(bson.A, 0, len(values))
	for _, v := range values {
		out = append(out, bson.M{field: v})
	}
	return out
}

func encodeMessage(msg *domain.ChatMessage) bson.M {
	attachments := make(bson.A, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, bson.M{
			"type":     a.Type,
			"url":      a.URL,
			"fileName": a.FileName,
			"fileSize": a.FileSize,
		})
	}
	return bson.M{
		"_id":         msg.ID,
		"chatId":      msg.ChatID,
		"senderId":    msg.SenderID,
		"senderType":  msg.SenderRole,
		"text":        msg.Body,
		"timestamp":   msg.SentAt,
		"status":      msg.Status,
		"type":        msg.Type,
		"attachments": attachments,
	}
}

// senderRole prefers the stored senderType and falls back to the shared sender markers used
// by clients that never wrote one.
func senderRole(m bson.M) domain.SenderRole {
	switch domain.SenderRole(docString(m, "senderType")) {
	case domain.SenderRoleAdmin:
		return domain.SenderRoleAdmin
	case domain.SenderRoleUser:
		return domain.SenderRoleUser
	}
	if domain.IsSupportMarker(docString(m, "senderId")) {
		return domain.SenderRoleAdmin
	}
	return domain.SenderRoleUser
}

func decodeMessage(m bson.M) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:         docID(m),
		ChatID:     docString(m, "chatId"),
		SenderID:   docString(m, "senderId"),
		SenderRole: senderRole(m),
		Body:       docString(m, "text", "content"),
		Status:     domain.MessageStatus(docString(m, "status")),
		ReadAt:     docTimePtr(m, "readAt"),
		Type:       domain.MessageType(docString(m, "type")),
	}
	if msg.Status == "" {
		msg.Status = domain.MessageStatusSent
	}
	if msg.Type == "" {
		msg.Type = domain.MessageTypeText
	}
	if t, ok := docTime(m, "timestamp"); ok {
		msg.SentAt = t
	}
	for _, a := range docMaps(m, "attachments") {
		msg.Attachments = append(msg.Attachments, domain.Attachment{
			Type:     docString(a, "type"),
			URL:      docString(a, "url"),
			FileName: docString(a, "fileName", "name"),
			FileSize: int64(docFloat(a, "fileSize")),
		})
	}
	return msg
}
