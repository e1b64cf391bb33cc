package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/support-console/internal/domain"
)

const chatsCollection = "chats"

// DefaultChatUserName is shown for chats whose document carries no user name.
const DefaultChatUserName = "User"

// ChatListFilter narrows chat listings. Zero values mean no constraint.
type ChatListFilter struct {
	Status domain.ChatStatus
	Limit  int
}

// ChatRepository persists support conversations.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	GetByID(ctx context.Context, id string) (*domain.Chat, error)
	List(ctx context.Context, filter ChatListFilter) ([]domain.Chat, error)
	ListByParticipant(ctx context.Context, participantID string) ([]domain.Chat, error)
	UpdateStatus(ctx context.Context, id string, status domain.ChatStatus, closedBy string) error
	UpdatePriority(ctx context.Context, id string, priority domain.ChatPriority) error
	UpdateNotes(ctx context.Context, id, notes string) error
	Assign(ctx context.Context, id, adminID, adminName string) error
	RecordLastMessage(ctx context.Context, id, body string, unreadCount int) error
	ResetUnread(ctx context.Context, id string) error
}

type chatRepository struct {
	coll *mongo.Collection
}

// NewChatRepository builds repository.
func NewChatRepository(db *mongo.Database) ChatRepository {
	return &chatRepository{coll: db.Collection(chatsCollection)}
}

func (r *chatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	ts := now()
	chat.ID = uuid.NewString()
	chat.CreatedAt = ts
	chat.UpdatedAt = ts
	_, err := r.coll.InsertOne(ctx, encodeChat(chat))
	return err
}

func (r *chatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	var m bson.M
	if err := r.coll.FindOne(ctx, idFilter(id)).Decode(&m); err != nil {
		return nil, err
	}
	chat := decodeChat(m)
	return &chat, nil
}

func (r *chatRepository) List(ctx context.Context, filter ChatListFilter) ([]domain.Chat, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return r.find(ctx, query, opts)
}

func (r *chatRepository) ListByParticipant(ctx context.Context, participantID string) ([]domain.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return r.find(ctx, bson.M{"participants": participantID}, opts)
}

func (r *chatRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]domain.Chat, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	chats := make([]domain.Chat, 0, len(docs))
	for _, m := range docs {
		chats = append(chats, decodeChat(m))
	}
	return chats, nil
}

func (r *chatRepository) UpdateStatus(ctx context.Context, id string, status domain.ChatStatus, closedBy string) error {
	ts := now()
	set := bson.M{"status": status, "updatedAt": ts}
	if status.IsTerminal() {
		set["closedAt"] = ts
		if closedBy != "" {
			set["closedBy"] = closedBy
		}
	}
	return r.set(ctx, id, set)
}

func (r *chatRepository) UpdatePriority(ctx context.Context, id string, priority domain.ChatPriority) error {
	return r.set(ctx, id, bson.M{"priority": priority, "updatedAt": now()})
}

func (r *chatRepository) UpdateNotes(ctx context.Context, id, notes string) error {
	return r.set(ctx, id, bson.M{"notes": notes, "updatedAt": now()})
}

func (r *chatRepository) Assign(ctx context.Context, id, adminID, adminName string) error {
	return r.set(ctx, id, bson.M{
		"assignedTo":     adminID,
		"assignedToName": adminName,
		"participants":   bson.A{adminID, domain.SupportPool},
		"updatedAt":      now(),
	})
}

func (r *chatRepository) RecordLastMessage(ctx context.Context, id, body string, unreadCount int) error {
	ts := now()
	return r.set(ctx, id, bson.M{
		"lastMessage":          body,
		"lastMessageTimestamp": ts,
		"updatedAt":            ts,
		"unreadCount":          unreadCount,
	})
}

func (r *chatRepository) ResetUnread(ctx context.Context, id string) error {
	return r.set(ctx, id, bson.M{"unreadCount": 0, "updatedAt": now()})
}

func (r *chatRepository) set(ctx context.Context, id string, fields bson.M) error {
	return notFoundIfUnmatched(r.coll.UpdateOne(ctx, idFilter(id), bson.M{"$set": fields}))
}

func encodeChat(c *domain.Chat) bson.M {
	participants := c.Participants
	if participants == nil {
		participants = []string{}
	}
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := bson.M{
		"_id":          c.ID,
		"userId":       c.UserID,
		"userName":     c.UserName,
		"userEmail":    c.UserEmail,
		"status":       c.Status,
		"priority":     c.Priority,
		"subject":      c.Subject,
		"category":     c.Category,
		"participants": participants,
		"unreadCount":  c.UnreadCount,
		"notes":        c.Notes,
		"tags":         tags,
		"createdAt":    c.CreatedAt,
		"updatedAt":    c.UpdatedAt,
	}
	if c.AssignedTo != nil {
		doc["assignedTo"] = *c.AssignedTo
	}
	if c.AssignedToName != nil {
		doc["assignedToName"] = *c.AssignedToName
	}
	return doc
}

func decodeChat(m bson.M) domain.Chat {
	chat := domain.Chat{
		ID:             docID(m),
		UserID:         docString(m, "userId"),
		UserName:       docString(m, "userName"),
		UserEmail:      docString(m, "userEmail"),
		Status:         domain.ChatStatus(docString(m, "status")),
		Priority:       domain.ChatPriority(docString(m, "priority")),
		Subject:        docString(m, "title", "subject"),
		Category:       docString(m, "topic", "category"),
		Participants:   docStrings(m, "participants"),
		AssignedTo:     docStringPtr(m, "assignedTo"),
		AssignedToName: docStringPtr(m, "assignedToName"),
		LastMessage:    docString(m, "lastMessage"),
		LastMessageAt:  docTimePtr(m, "lastMessageTimestamp"),
		UnreadCount:    docInt(m, "unreadCount"),
		Notes:          docString(m, "notes"),
		Tags:           docStrings(m, "tags"),
		ClosedAt:       docTimePtr(m, "closedAt"),
		ClosedBy:       docStringPtr(m, "closedBy"),
	}
	if chat.UserName == "" {
		chat.UserName = DefaultChatUserName
	}
	if chat.Status == "" {
		chat.Status = domain.ChatStatusActive
	}
	if chat.Priority == "" {
		chat.Priority = domain.ChatPriorityMedium
	}
	if chat.Category == "" {
		chat.Category = domain.ChatCategoryGeneral
	}
	if chat.Participants == nil {
		chat.Participants = []string{}
	}
	if chat.Tags == nil {
		chat.Tags = []string{}
	}
	if t, ok := docTime(m, "createdAt"); ok {
		chat.CreatedAt = t
	}
	if t, ok := docTime(m, "updatedAt"); ok {
		chat.UpdatedAt = t
	} else {
		chat.UpdatedAt = chat.CreatedAt
	}
	return chat
}
