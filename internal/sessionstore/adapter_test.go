package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/agentcore/runtime/pkg/models"
)

func TestAdapter_AppendAndGetHistory(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	adapter := NewAdapter(store, "/repo")
	ctx := context.Background()

	msgs := []*models.Message{
		{Role: models.RoleUser, Content: "hi", CreatedAt: time.Now()},
		{Role: models.RoleAssistant, Content: "hello", CreatedAt: time.Now()},
	}
	for _, m := range msgs {
		if err := adapter.AppendMessage(ctx, "sess-1", m); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	history, err := adapter.GetHistory(ctx, "sess-1", 50)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Content != "hi" || history[1].Content != "hello" {
		t.Fatalf("unexpected history order: %+v", history)
	}

	tree, err := store.Tree("/repo", "sess-1")
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree.Leaves) != 1 {
		t.Fatalf("expected single linear leaf, got %d", len(tree.Leaves))
	}
}

func TestAdapter_GetHistory_RespectsLimit(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	adapter := NewAdapter(store, "/repo")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := adapter.AppendMessage(ctx, "sess-1", &models.Message{Role: models.RoleUser, Content: "msg"}); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	history, err := adapter.GetHistory(ctx, "sess-1", 2)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
}
