package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// BlobRepository keeps document bytes by filename so the local chunker can
// read back what was staged without another round trip to the bucket.
type BlobRepository struct {
	cache *cache.Cache
}

func NewBlobRepository() *BlobRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &BlobRepository{
		cache: c,
	}
}

func (r *BlobRepository) Save(fileName string, data []byte) {
	r.cache.Set(fileName, data, cache.DefaultExpiration)
}

func (r *BlobRepository) Get(fileName string) ([]byte, bool) {
	if x, found := r.cache.Get(fileName); found {
		return x.([]byte), true
	}
	return nil, false
}

func (r *BlobRepository) Delete(fileName string) {
	r.cache.Delete(fileName)
}

// Flush drops every stored blob.
func (r *BlobRepository) Flush() {
	r.cache.Flush()
}
