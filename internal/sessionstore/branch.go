package sessionstore

import (
	"fmt"

	"github.com/agentcore/runtime/pkg/models"
)

// BranchTree is a read-only view of every path through a session, grouped by leaf.
// Grounded in the teacher's branch_store.go ForkBranch/GetBranchTree/CompareBranches,
// adapted to the JSONL parent-pointer model instead of a DB-backed one.
type BranchTree struct {
	SessionID string
	Leaves    []string
	Entries   map[string]Entry
}

// Tree builds a BranchTree for a session, identifying every entry that is not
// itself a parent of another entry (i.e. every leaf of the tree).
func (s *Store) Tree(workingDir, sessionID string) (*BranchTree, error) {
	entries, err := s.Load(workingDir, sessionID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Entry, len(entries))
	hasChild := make(map[string]bool, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
		if e.ParentID != "" {
			hasChild[e.ParentID] = true
		}
	}

	var leaves []string
	for _, e := range entries {
		if !hasChild[e.ID] {
			leaves = append(leaves, e.ID)
		}
	}

	return &BranchTree{SessionID: sessionID, Leaves: leaves, Entries: byID}, nil
}

// Fork starts a new leaf chain that shares ancestry with fromEntryID up to that
// point. The new entry is appended with fromEntryID as its parent; subsequent
// Append calls targeting the returned entry id extend the fork, leaving the
// original branch's entries untouched.
func (s *Store) Fork(workingDir, sessionID, fromEntryID string, message *models.Message) (*Entry, error) {
	entries, err := s.Load(workingDir, sessionID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, e := range entries {
		if e.ID == fromEntryID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, fromEntryID)
	}

	entry := Entry{
		ID:        s.NewID(),
		ParentID:  fromEntryID,
		SessionID: sessionID,
		Message:   message,
	}
	if err := s.Append(workingDir, sessionID, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CompareBranches returns the entries unique to each of two leaves, i.e. the
// portion of each branch after their common ancestor.
func (t *BranchTree) CompareBranches(leafA, leafB string) (onlyA, onlyB []Entry, err error) {
	pathA, err := t.pathTo(leafA)
	if err != nil {
		return nil, nil, err
	}
	pathB, err := t.pathTo(leafB)
	if err != nil {
		return nil, nil, err
	}

	shared := 0
	for shared < len(pathA) && shared < len(pathB) && pathA[shared].ID == pathB[shared].ID {
		shared++
	}
	return pathA[shared:], pathB[shared:], nil
}

func (t *BranchTree) pathTo(leafID string) ([]Entry, error) {
	cur, ok := t.Entries[leafID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, leafID)
	}
	var reversed []Entry
	for {
		reversed = append(reversed, cur)
		if cur.ParentID == "" {
			break
		}
		parent, ok := t.Entries[cur.ParentID]
		if !ok {
			break
		}
		cur = parent
	}
	path := make([]Entry, len(reversed))
	for i, e := range reversed {
		path[len(reversed)-1-i] = e
	}
	return path, nil
}
