package sessionstore

import (
	"context"
	"fmt"

	"github.com/agentcore/runtime/pkg/models"
)

// Adapter presents a Store, pinned to one working directory, as the linear
// history interface the Agent Loop expects: GetHistory/AppendMessage against
// *models.Message. Branch-aware access (Fork, Tree, CompareBranches) stays on
// the underlying Store for callers that want it.
type Adapter struct {
	store      *Store
	workingDir string
}

// NewAdapter pins store to workingDir (typically the process cwd at startup).
func NewAdapter(store *Store, workingDir string) *Adapter {
	return &Adapter{store: store, workingDir: workingDir}
}

// GetHistory returns up to limit most recent messages for sessionID, oldest first.
func (a *Adapter) GetHistory(ctx context.Context, sessionID string, limit int) ([]*models.Message, error) {
	entries, err := a.store.Load(a.workingDir, sessionID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	history := make([]*models.Message, 0, len(entries))
	for _, e := range entries {
		if e.Message != nil {
			history = append(history, e.Message)
		}
	}
	return history, nil
}

// AppendMessage appends message as the new leaf of sessionID's history,
// parented to whatever entry is currently the tip.
func (a *Adapter) AppendMessage(ctx context.Context, sessionID string, message *models.Message) error {
	if message == nil {
		return fmt.Errorf("sessionstore: nil message")
	}
	var parentID string
	if leaf, err := a.store.Leaf(a.workingDir, sessionID); err == nil {
		parentID = leaf.ID
	}
	entry := Entry{
		ID:        a.store.NewID(),
		ParentID:  parentID,
		SessionID: sessionID,
		CreatedAt: message.CreatedAt,
		Message:   message,
	}
	return a.store.Append(a.workingDir, sessionID, entry)
}

// Update is a no-op: this store keeps no separate session metadata record
// beyond the message tree itself, so there is nothing to persist here.
func (a *Adapter) Update(ctx context.Context, session *models.Session) error {
	return nil
}
