package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andikarachman/go-shop-events/internal/domain"
)

// memCache is an in-memory stand-in for the redis store, JSON round-tripping
// values the same way the real one does.
type memCache struct {
	entries map[string][]byte
	sets    []string
	gets    []string
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, out any) bool {
	c.gets = append(c.gets, key)
	data, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (c *memCache) Set(_ context.Context, key string, v any, _ time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.entries[key] = data
	c.sets = append(c.sets, key)
}

func (c *memCache) Del(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(c.entries, k)
	}
}

func (c *memCache) DelPrefix(context.Context, string) {}

// countingStore serves canned pages and counts repository hits so the tests
// can tell a cache hit from a refill.
type countingStore struct {
	orders []domain.Order
	calls  int
}

func (s *countingStore) page(context.Context, domain.FindAllRequest) ([]domain.Order, int, error) {
	s.calls++
	return s.orders, len(s.orders), nil
}

func (s *countingStore) FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error) {
	return s.page(ctx, req)
}
func (s *countingStore) FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error) {
	return s.page(ctx, req)
}
func (s *countingStore) FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error) {
	return s.page(ctx, req)
}
func (s *countingStore) FindByID(context.Context, int) (domain.Order, error) {
	s.calls++
	return s.orders[0], nil
}

func TestQueryServiceCacheMissThenHit(t *testing.T) {
	store := &countingStore{orders: []domain.Order{{ID: 1, UserID: 9}}}
	cache := newMemCache()
	svc := NewQueryService(store, &fakeItemStore{}, cache)

	req := domain.FindAllRequest{Page: 1, PageSize: 10}

	orders, total, err := svc.FindActive(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, store.calls, "miss goes to the repository")

	cached, total, err := svc.FindActive(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, orders, cached)
	assert.Equal(t, 1, store.calls, "hit must not touch the repository")

	require.Len(t, cache.sets, 1)
	assert.Equal(t, "order:find_active:page:1:size:10:search:", cache.sets[0])
}

func TestQueryServiceDistinctKeysPerOperation(t *testing.T) {
	store := &countingStore{orders: []domain.Order{{ID: 1}}}
	cache := newMemCache()
	svc := NewQueryService(store, &fakeItemStore{}, cache)

	req := domain.FindAllRequest{Page: 1, PageSize: 10}
	_, _, _ = svc.FindAll(context.Background(), req)
	_, _, _ = svc.FindActive(context.Background(), req)
	_, _, _ = svc.FindTrashed(context.Background(), req)

	assert.Equal(t, 3, store.calls, "each operation fills its own key")
	assert.Len(t, cache.entries, 3)
}

func TestQueryServiceFindByIDCached(t *testing.T) {
	store := &countingStore{orders: []domain.Order{{ID: 7, UserID: 9}}}
	cache := newMemCache()
	svc := NewQueryService(store, &fakeItemStore{}, cache)

	o, err := svc.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, o.ID)

	again, err := svc.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, o, again)
	assert.Equal(t, 1, store.calls)
	assert.Contains(t, cache.entries, "order:find_by_id:7")
}
