package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetplanner/internal/config"
	"budgetplanner/internal/storage"
	"budgetplanner/internal/storage/jsonfile"
	"budgetplanner/internal/storage/memory"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataDir: "/tmp/x", SQLiteDBPath: "/tmp/x.db"})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: FileBackend, DataDirectory: "/tmp/x", SQLiteDBPath: "/tmp/x.db"}, cfg)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"file", Config{Type: FileBackend, DataDirectory: "data"}, false},
		{"file without directory", Config{Type: FileBackend}, true},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "error: %v", err)
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"memory", "file", "sqlite"}, GetBackendTypeStrings())
}

func TestFactory_CreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)
	dir := t.TempDir()

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, res.Slots)
		assert.NoError(t, res.Close())
	})

	t.Run("file", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "slots")})
		require.NoError(t, err)
		assert.IsType(t, &jsonfile.Store{}, res.Slots)
		assertRoundTrip(t, res.Slots)
		assert.NoError(t, res.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "planner.db")})
		require.NoError(t, err)
		assert.IsType(t, &storage.SQLiteRepository{}, res.Slots)
		assertRoundTrip(t, res.Slots)
		assert.NoError(t, res.Close())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := f.CreateBackend(ctx, Config{Type: "sheets"})
		assert.Error(t, err)
	})
}

func assertRoundTrip(t *testing.T, slots storage.SlotStore) {
	t.Helper()
	ctx := context.Background()

	_, err := slots.Load(ctx, storage.ExpensesSlot)
	assert.ErrorIs(t, err, storage.ErrSlotNotFound)

	require.NoError(t, slots.Save(ctx, storage.ExpensesSlot, []byte(`[]`)))
	data, err := slots.Load(ctx, storage.ExpensesSlot)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
