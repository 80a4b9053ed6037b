package tmpstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeLifecycle(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "work"), time.Minute, nil)
	require.NoError(t, err)

	scope, err := store.NewScope()
	require.NoError(t, err)

	info, err := os.Stat(scope.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	path := scope.Path("report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

	require.NoError(t, scope.Close())

	_, err = os.Stat(scope.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestScopesAreDistinct(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "work"), time.Minute, nil)
	require.NoError(t, err)

	a, err := store.NewScope()
	require.NoError(t, err)
	defer a.Close()

	b, err := store.NewScope()
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Dir(), b.Dir())
}

func TestPathStripsDirectoryComponents(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "work"), time.Minute, nil)
	require.NoError(t, err)

	scope, err := store.NewScope()
	require.NoError(t, err)
	defer scope.Close()

	path := scope.Path("../../etc/passwd")
	assert.Equal(t, filepath.Join(scope.Dir(), "passwd"), path)
}

func TestSweepRemovesOnlyStaleScopes(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "work"), time.Minute, nil)
	require.NoError(t, err)

	stale, err := store.NewScope()
	require.NoError(t, err)

	fresh, err := store.NewScope()
	require.NoError(t, err)
	defer fresh.Close()

	old := time.Now().Add(-10 * time.Minute)
	require.NoError(t, os.Chtimes(stale.Dir(), old, old))

	store.Sweep()

	_, err = os.Stat(stale.Dir())
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(fresh.Dir())
	assert.NoError(t, err)
}

func TestPurgeRemovesEverything(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "work"), time.Minute, nil)
	require.NoError(t, err)

	a, err := store.NewScope()
	require.NoError(t, err)

	b, err := store.NewScope()
	require.NoError(t, err)

	store.Purge()

	_, err = os.Stat(a.Dir())
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(b.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestJanitorStartStopIdempotent(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "work"), time.Minute, nil)
	require.NoError(t, err)

	store.StartJanitor(time.Hour)
	store.StartJanitor(time.Hour)

	store.Stop()
	store.Stop()
}
