package repository

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func sortDocument(t *mtest.T) bson.D {
	t.Helper()
	started := t.GetStartedEvent()
	if started == nil || started.CommandName != "find" {
		t.Fatalf("expected a find command, got %+v", started)
	}
	raw, ok := started.Command.Lookup("sort").DocumentOK()
	if !ok {
		t.Fatalf("find command has no sort: %s", started.Command)
	}
	var sortDoc bson.D
	if err := bson.Unmarshal(raw, &sortDoc); err != nil {
		t.Fatalf("decode sort: %v", err)
	}
	return sortDoc
}

func assertSort(t *mtest.T, sortDoc bson.D, key string, dir int64) {
	t.Helper()
	if len(sortDoc) != 1 || sortDoc[0].Key != key {
		t.Fatalf("sort = %v, want {%s: %d}", sortDoc, key, dir)
	}
	var got int64
	switch v := sortDoc[0].Value.(type) {
	case int32:
		got = int64(v)
	case int64:
		got = v
	default:
		t.Fatalf("sort direction has type %T", v)
	}
	if got != dir {
		t.Fatalf("sort = %v, want {%s: %d}", sortDoc, key, dir)
	}
}

func TestChatListsSortByUpdatedAtDesc(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	newer := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mt.Run("list", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + chatsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "c2"}, {Key: "updatedAt", Value: newer}},
			bson.D{{Key: "_id", Value: "c1"}, {Key: "updatedAt", Value: older}},
		))
		chats, err := NewChatRepository(mt.DB).List(context.Background(), ChatListFilter{Limit: 5})
		if err != nil {
			mt.Fatalf("list: %v", err)
		}
		assertSort(mt, sortDocument(mt), "updatedAt", -1)
		if len(chats) != 2 || chats[0].ID != "c2" || chats[1].ID != "c1" {
			mt.Fatalf("chats = %+v", chats)
		}
	})

	mt.Run("by participant", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + chatsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		if _, err := NewChatRepository(mt.DB).ListByParticipant(context.Background(), "u1"); err != nil {
			mt.Fatalf("list by participant: %v", err)
		}
		assertSort(mt, sortDocument(mt), "updatedAt", -1)
	})
}

func TestTranscriptSortsByTimestampAsc(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	first := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	mt.Run("list by chat", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + messagesCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "m1"}, {Key: "chatId", Value: "c1"}, {Key: "text", Value: "hi"}, {Key: "timestamp", Value: first}},
			bson.D{{Key: "_id", Value: "m2"}, {Key: "chatId", Value: "c1"}, {Key: "text", Value: "hello"}, {Key: "timestamp", Value: first.Add(time.Minute)}},
		))
		messages, err := NewMessageRepository(mt.DB).ListByChat(context.Background(), "c1", 0)
		if err != nil {
			mt.Fatalf("list: %v", err)
		}
		assertSort(mt, sortDocument(mt), "timestamp", 1)
		if len(messages) != 2 || messages[0].ID != "m1" || messages[1].ID != "m2" {
			mt.Fatalf("messages = %+v", messages)
		}
	})
}
