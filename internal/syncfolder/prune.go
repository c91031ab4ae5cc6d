package syncfolder

import (
	"context"
	"fmt"
)

type pruneNode struct {
	FolderNode
	children  []*pruneNode
	totalSize int64
	items     int
}

// Prune aggregates folder sizes bottom-up from the root, persists them and
// removes every folder below the root whose subtree holds no items. The
// subtree is read in one call and walked in memory.
//
// Emptiness is decided by item count rather than size, so a folder holding
// only zero-byte files survives and the next run stays a no-op.
func (m *Mutator) Prune(ctx context.Context) (int, error) {
	nodes, err := m.backend.FolderTree(ctx, m.rootID)
	if err != nil {
		return 0, fmt.Errorf("load folder tree: %w", err)
	}

	arena := make(map[string]*pruneNode, len(nodes))
	for _, n := range nodes {
		arena[n.ID] = &pruneNode{FolderNode: n}
	}

	root, ok := arena[m.rootID]
	if !ok {
		return 0, &NotFoundError{Kind: "folder", Path: m.rootID}
	}
	for _, n := range arena {
		if n.ID == m.rootID {
			continue
		}
		if parent, ok := arena[n.ParentID]; ok {
			parent.children = append(parent.children, n)
		}
	}

	var order []*pruneNode
	var visit func(n *pruneNode)
	visit = func(n *pruneNode) {
		n.totalSize = n.DirectSize
		n.items = n.Items
		for _, c := range n.children {
			visit(c)
			n.totalSize += c.totalSize
			n.items += c.items
		}
		order = append(order, n)
	}
	visit(root)

	pruned := 0
	for _, n := range order {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}

		if n.ID != m.rootID && n.items == 0 {
			if err := m.backend.RemoveFolder(ctx, n.ID); err != nil {
				return pruned, fmt.Errorf("remove folder %q: %w", n.Name, err)
			}
			pruned++
			m.logger.Debug("sync prune", "folder", n.Name, "id", n.ID)
			continue
		}

		if n.totalSize != n.Size {
			if err := m.backend.UpdateFolderSize(ctx, n.ID, n.totalSize); err != nil {
				return pruned, fmt.Errorf("update folder size %q: %w", n.Name, err)
			}
		}
	}

	return pruned, nil
}
