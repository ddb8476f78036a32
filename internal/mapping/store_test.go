package mapping

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSafeNameRejectsTraversalAndReservedChars(t *testing.T) {
	assert.True(t, IsSafeName("layout-1.json"))
	assert.False(t, IsSafeName("../escape.json"))
	assert.False(t, IsSafeName("a/b.json"))
	assert.False(t, IsSafeName("a\\b.json"))
	assert.False(t, IsSafeName("bad:name.json"))
	assert.False(t, IsSafeName("bad*name.json"))
	assert.False(t, IsSafeName(""))
}

func sampleConfig() Config {
	return Config{
		Version:      "1",
		OriginalSize: Size{Width: 1920, Height: 1080},
		Mappings: []Item{
			{Kind: KindSingleTap, SingleTap: &SingleTap{
				Position: Position{X: 100, Y: 200}, PointerID: 1, Duration: 50, Sync: true,
				Bind: Bind{"KeyQ"},
			}},
		},
	}
}

func TestStoreCreateReadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := sampleConfig()
	require.NoError(t, store.Create("layout.json", cfg, nil))

	got, err := store.Read("layout.json")
	require.NoError(t, err)
	assert.Equal(t, cfg.Version, got.Version)
	assert.Equal(t, cfg.OriginalSize, got.OriginalSize)
	require.Len(t, got.Mappings, 1)
	assert.Equal(t, KindSingleTap, got.Mappings[0].Kind)
	assert.Equal(t, cfg.Mappings[0].SingleTap.Position, got.Mappings[0].SingleTap.Position)
}

func TestStoreCreateRejectsDuplicateName(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := sampleConfig()
	require.NoError(t, store.Create("layout.json", cfg, nil))
	assert.Error(t, store.Create("layout.json", cfg, nil))
}

func TestStoreRejectsUnsafeName(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.Create("../escape.json", sampleConfig(), nil))
}

func TestStoreWriteRejectsInvalidConfig(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := sampleConfig()
	cfg.Mappings = append(cfg.Mappings, Item{Kind: KindMultipleTap, MultipleTap: &MultipleTap{}})
	assert.Error(t, store.Write("layout.json", cfg, nil))
}

func TestStoreRenameAndDuplicate(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	cfg := sampleConfig()
	require.NoError(t, store.Create("a.json", cfg, nil))
	require.NoError(t, store.Duplicate("a.json", "b.json"))
	require.NoError(t, store.Rename("b.json", "c.json"))

	names, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.json", "c.json"}, names)

	assert.NoFileExists(t, filepath.Join(dir, "b.json"))
}

func TestStoreDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Create("a.json", sampleConfig(), nil))
	require.NoError(t, store.Delete("a.json"))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}
