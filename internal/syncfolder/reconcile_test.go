package syncfolder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile_TableDriven(t *testing.T) {
	cases := []struct {
		name      string
		current   Snapshot
		previous  Snapshot
		moves     []Op
		creates   []Op
		deletes   []Op
		unchanged []string
	}{
		{
			name:     "first run creates everything",
			current:  Snapshot{"c1": "a.txt", "c2": "dir/b.txt"},
			previous: Snapshot{},
			creates: []Op{
				{Kind: OpCreate, Path: "a.txt", Checksum: "c1"},
				{Kind: OpCreate, Path: "dir/b.txt", Checksum: "c2"},
			},
		},
		{
			name:      "no change is a no-op",
			current:   Snapshot{"c1": "a.txt", "c2": "dir/b.txt"},
			previous:  Snapshot{"c1": "a.txt", "c2": "dir/b.txt"},
			unchanged: []string{"a.txt", "dir/b.txt"},
		},
		{
			name:     "rename is a single move",
			current:  Snapshot{"c1": "b/x"},
			previous: Snapshot{"c1": "a/x"},
			moves:    []Op{{Kind: OpMove, From: "a/x", Path: "b/x", Checksum: "c1"}},
		},
		{
			name:     "overwrite creates without deleting",
			current:  Snapshot{"c2": "p"},
			previous: Snapshot{"c1": "p"},
			creates:  []Op{{Kind: OpCreate, Path: "p", Checksum: "c2"}},
		},
		{
			name:      "removed content deletes",
			current:   Snapshot{"c1": "a.txt"},
			previous:  Snapshot{"c1": "a.txt", "c2": "gone.txt"},
			deletes:   []Op{{Kind: OpDelete, Path: "gone.txt"}},
			unchanged: []string{"a.txt"},
		},
		{
			name:     "swap is two moves",
			current:  Snapshot{"c1": "b", "c2": "a"},
			previous: Snapshot{"c1": "a", "c2": "b"},
			moves: []Op{
				{Kind: OpMove, From: "b", Path: "a", Checksum: "c2"},
				{Kind: OpMove, From: "a", Path: "b", Checksum: "c1"},
			},
		},
		{
			name:     "content leaves a path that gets new content",
			current:  Snapshot{"c1": "q", "c2": "p"},
			previous: Snapshot{"c1": "p"},
			moves:    []Op{{Kind: OpMove, From: "p", Path: "q", Checksum: "c1"}},
			creates:  []Op{{Kind: OpCreate, Path: "p", Checksum: "c2"}},
		},
		{
			name:     "empty host deletes everything",
			current:  Snapshot{},
			previous: Snapshot{"c1": "a", "c2": "b/c"},
			deletes: []Op{
				{Kind: OpDelete, Path: "a"},
				{Kind: OpDelete, Path: "b/c"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ops := Reconcile(tc.current, tc.previous)
			assert.Equal(t, tc.moves, ops.Moves)
			assert.Equal(t, tc.creates, ops.Creates)
			assert.Equal(t, tc.deletes, ops.Deletes)
			assert.Equal(t, tc.unchanged, ops.Unchanged)
		})
	}
}

func TestReconcile_AcceptanceScenario(t *testing.T) {
	previous := Snapshot{
		"ala":     "ala.py",
		"ogv":     "codeswarm.ogv",
		"plugin1": "subfolder1/plugin.json",
		"license": "subfolder2/LICENSE",
	}
	current := Snapshot{
		"ala":     "ala.py",
		"txt":     "ala.txt",
		"plugin2": "subfolder1/plugin.json",
		"license": "subfolderA/LICENSE",
	}

	ops := Reconcile(current, previous)
	assert.Equal(t, []Op{
		{Kind: OpMove, From: "subfolder2/LICENSE", Path: "subfolderA/LICENSE", Checksum: "license"},
		{Kind: OpCreate, Path: "ala.txt", Checksum: "txt"},
		{Kind: OpCreate, Path: "subfolder1/plugin.json", Checksum: "plugin2"},
		{Kind: OpDelete, Path: "codeswarm.ogv"},
	}, ops.Ops())
	assert.Equal(t, []string{"ala.py"}, ops.Unchanged)
	assert.Equal(t, 4, ops.Len())
}

func TestReconcile_Deterministic(t *testing.T) {
	current := Snapshot{"c1": "x", "c2": "y", "c3": "z", "c5": "w"}
	previous := Snapshot{"c1": "y", "c2": "x", "c4": "v", "c6": "u"}

	first := Reconcile(current, previous).Ops()
	for range 20 {
		assert.Equal(t, first, Reconcile(current, previous).Ops())
	}
}

func TestReconcile_DeletesOncePerPath(t *testing.T) {
	ops := Reconcile(Snapshot{}, Snapshot{"c1": "dup", "c2": "dup"})
	assert.Equal(t, []Op{{Kind: OpDelete, Path: "dup"}}, ops.Deletes)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "move a -> b", Op{Kind: OpMove, From: "a", Path: "b"}.String())
	assert.Equal(t, "create a", Op{Kind: OpCreate, Path: "a"}.String())
	assert.Equal(t, "delete a", Op{Kind: OpDelete, Path: "a"}.String())
	assert.True(t, (&Operations{}).IsEmpty())
}
