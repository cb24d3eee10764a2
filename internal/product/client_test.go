package product

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andikarachman/go-shop-events/internal/apperr"
)

func TestClientFindByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/internal/7":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"product_id":7,"name":"widget","price":250,"stock":12}`))
		case "/products/internal/404":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	t.Run("found", func(t *testing.T) {
		snap, err := c.FindByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, 7, snap.ID)
		assert.Equal(t, "widget", snap.Name)
		assert.Equal(t, 250, snap.Price)
		assert.Equal(t, 12, snap.Stock)
	})

	t.Run("missing maps to not found", func(t *testing.T) {
		_, err := c.FindByID(context.Background(), 404)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("server error surfaces", func(t *testing.T) {
		_, err := c.FindByID(context.Background(), 500)
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrNotFound)
	})
}
