package insightsclient

import (
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Cache is an in-memory response cache with a fixed TTL per entry. Entries
// expire on their own; there is no explicit invalidation because insights
// aggregates only go stale, they never become wrong.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

func NewCache(ttl time.Duration) (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) Get(key string) ([]byte, bool) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		// expired and missing keys both come back as ErrKeyNotFound
		return nil, false
	}
	return val, true
}

func (c *Cache) Set(key string, val []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), val).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}
