package assetstore

import (
	"context"
	"testing"

	"github.com/openmined/syncfolders/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetstoreService_EnsureDefault(t *testing.T) {
	sqlDB, err := db.NewSqliteDB()
	require.NoError(t, err)
	defer sqlDB.Close()

	svc, err := NewAssetstoreService(sqlDB)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := svc.EnsureDefault(ctx, "/srv/data")
	require.NoError(t, err)
	assert.Equal(t, TypeFilesystem, first.Type)
	assert.Equal(t, "/srv/data", first.Root)

	second, err := svc.EnsureDefault(ctx, "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "/srv/data", second.Root)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, got.Name)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrAssetstoreNotFound)
}
