package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/product"
)

type ProductHandler struct {
	Commands *product.CommandService
	Queries  *product.QueryService
}

func (h *ProductHandler) Register(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.findActive)
		r.Get("/all", h.findAll)
		r.Get("/trashed", h.findTrashed)
		r.Post("/restore", h.restoreAll)
		r.Delete("/trashed", h.deleteAll)
		// internal snapshot endpoint consumed by the order service
		r.Get("/internal/{id}", h.findSnapshot)
		r.Get("/{id}", h.findByID)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.trash)
		r.Post("/{id}/restore", h.restore)
		r.Delete("/{id}/permanent", h.delete)
	})
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("body: invalid json"))
		return
	}
	p, err := h.Commands.Create(r.Context(), &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	var req domain.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("body: invalid json"))
		return
	}
	req.ProductID = id
	p, err := h.Commands.Update(r.Context(), &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProductHandler) findAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Queries.FindAll)
}

func (h *ProductHandler) findActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Queries.FindActive)
}

func (h *ProductHandler) findTrashed(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Queries.FindTrashed)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error)) {
	req := listRequest(r)
	products, total, err := fetch(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, pageResponse{
		Items: products, Total: total, Page: req.Page, PageSize: req.PageSize,
	})
}

func (h *ProductHandler) findByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := h.Queries.FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

// findSnapshot serves the flat snapshot shape the order service's client
// decodes, without the response envelope and only for active products.
func (h *ProductHandler) findSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := h.Queries.FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if p.DeletedAt != nil {
		writeErr(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, domain.ProductSnapshot{
		ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock,
	})
}

func (h *ProductHandler) trash(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := h.Commands.Trash(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProductHandler) restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := h.Commands.Restore(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Commands.Delete(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (h *ProductHandler) restoreAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Commands.RestoreAll(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (h *ProductHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Commands.DeleteAll(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
