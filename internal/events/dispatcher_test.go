package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var got []string
	d.Subscribe(EventChatCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.ChatID)
		return errors.New("boom")
	})
	d.Subscribe(EventChatCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.ChatID)
		return nil
	})
	d.Subscribe(EventChatAssigned, func(context.Context, Event) error {
		t.Fatal("unrelated handler invoked")
		return nil
	})

	if err := d.Publish(context.Background(), NewEvent(EventChatCreated, "c1", "", nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 2 || got[0] != "first:c1" || got[1] != "second:c1" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestNewEventActor(t *testing.T) {
	e := NewEvent(EventChatStatusChanged, "c1", "", nil)
	if e.ActorID != nil {
		t.Fatal("empty actor should be nil")
	}
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Fatal("event id and timestamp must be set")
	}
	e = NewEvent(EventChatStatusChanged, "c1", "admin-1", nil)
	if e.ActorID == nil || *e.ActorID != "admin-1" {
		t.Fatalf("actor not recorded: %v", e.ActorID)
	}
}
