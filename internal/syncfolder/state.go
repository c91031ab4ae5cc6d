package syncfolder

import (
	"context"
	"fmt"
	"sort"
)

// BuildDestinationSnapshot maps stored checksums to paths relative to rootID
// for every file the user can read. Files without a checksum were not
// imported by a sync and are left out.
func BuildDestinationSnapshot(ctx context.Context, backend Backend, rootID, user string) (Snapshot, error) {
	files, err := backend.ListFilesRecursive(ctx, rootID, user)
	if err != nil {
		return nil, fmt.Errorf("list destination files: %w", err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})

	snapshot := make(Snapshot, len(files))
	for _, f := range files {
		if f.Checksum == "" {
			continue
		}
		snapshot[f.Checksum] = f.RelPath
	}
	return snapshot, nil
}
