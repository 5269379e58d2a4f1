package paramsprovider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStorePutAndLatest(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Latest()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Put(&VersionedParams{Version: 1, CovenantQuorum: 2}, time.Now()))
	require.NoError(t, store.Put(&VersionedParams{Version: 2, CovenantQuorum: 3}, time.Now()))

	latest, ok, err := store.Latest()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, latest.Version)
	require.Equal(t, uint32(3), latest.CovenantQuorum)
}

func TestStorePutUpserts(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(&VersionedParams{Version: 1, CovenantQuorum: 1}, time.Now()))
	require.NoError(t, store.Put(&VersionedParams{Version: 1, CovenantQuorum: 9}, time.Now()))

	latest, ok, err := store.Latest()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(9), latest.CovenantQuorum)
}
