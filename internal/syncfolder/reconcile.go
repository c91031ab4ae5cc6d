package syncfolder

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

type OpKind int

const (
	OpMove OpKind = iota
	OpCreate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpMove:
		return "move"
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is a single destination mutation. From is only set for moves and
// Checksum is empty for deletes.
type Op struct {
	Kind     OpKind
	From     string
	Path     string
	Checksum string
}

func (o Op) String() string {
	switch o.Kind {
	case OpMove:
		return fmt.Sprintf("move %s -> %s", o.From, o.Path)
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.Path)
	}
}

type Operations struct {
	Moves     []Op
	Creates   []Op
	Deletes   []Op
	Unchanged []string
}

func (o *Operations) Len() int {
	return len(o.Moves) + len(o.Creates) + len(o.Deletes)
}

func (o *Operations) IsEmpty() bool {
	return o.Len() == 0
}

// Ops returns moves, then creates, then deletes, each ordered by path.
// Moves run first so content leaving a path is relocated before that path
// is recreated with new content.
func (o *Operations) Ops() []Op {
	ops := make([]Op, 0, o.Len())
	ops = append(ops, o.Moves...)
	ops = append(ops, o.Creates...)
	ops = append(ops, o.Deletes...)
	return ops
}

// Reconcile diffs the host snapshot against the destination snapshot.
//
// Content present on both sides under a different path is a move. Content
// only on the host is a create, which also covers a path overwritten with
// new content. A destination path is deleted only when its content is gone
// and no host file sits at the same path.
func Reconcile(current, previous Snapshot) *Operations {
	ops := &Operations{}

	for _, checksum := range current.Checksums() {
		path := current[checksum]
		prevPath, ok := previous[checksum]
		switch {
		case !ok:
			ops.Creates = append(ops.Creates, Op{Kind: OpCreate, Path: path, Checksum: checksum})
		case prevPath != path:
			ops.Moves = append(ops.Moves, Op{Kind: OpMove, From: prevPath, Path: path, Checksum: checksum})
		default:
			ops.Unchanged = append(ops.Unchanged, path)
		}
	}

	currentPaths := current.Paths()
	deleted := mapset.NewThreadUnsafeSet[string]()
	for _, checksum := range previous.Checksums() {
		path := previous[checksum]
		if _, ok := current[checksum]; ok || currentPaths.Contains(path) {
			continue
		}
		// one item per path, even if it held several checksums
		if !deleted.Add(path) {
			continue
		}
		ops.Deletes = append(ops.Deletes, Op{Kind: OpDelete, Path: path})
	}

	sortOps(ops.Moves)
	sortOps(ops.Creates)
	sortOps(ops.Deletes)
	sort.Strings(ops.Unchanged)

	return ops
}

func sortOps(ops []Op) {
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].From < ops[j].From
	})
}
