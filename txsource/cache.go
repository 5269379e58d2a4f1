package txsource

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/neutrino/cache/lru"
)

// defaultCacheCapacity bounds how many fetched transactions Client keeps
// in memory at once.
const defaultCacheCapacity = 256

// cachedTx adapts *wire.MsgTx to the cache.Value interface the LRU
// requires. Size is a constant 1 so the cache capacity counts
// transactions rather than bytes.
type cachedTx struct {
	tx *wire.MsgTx
}

func (c *cachedTx) Size() (uint64, error) {
	return 1, nil
}

// txCache is a bounded LRU of previously fetched transactions, keyed by
// txid. Replaces a hand-rolled map-plus-manual-eviction cache with
// neutrino's generic LRU implementation.
type txCache struct {
	inner *lru.Cache[chainhash.Hash, *cachedTx]
}

func newTxCache(capacity uint64) *txCache {
	return &txCache{
		inner: lru.NewCache[chainhash.Hash, *cachedTx](capacity),
	}
}

func (c *txCache) get(txid chainhash.Hash) (*wire.MsgTx, bool) {
	entry, err := c.inner.Get(txid)
	if err != nil {
		return nil, false
	}
	return entry.tx, true
}

func (c *txCache) put(txid chainhash.Hash, tx *wire.MsgTx) {
	_, _ = c.inner.Put(txid, &cachedTx{tx: tx})
}
