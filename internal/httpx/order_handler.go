package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/order"
)

type OrderHandler struct {
	Commands *order.CommandService
	Queries  *order.QueryService
}

func (h *OrderHandler) Register(r *chi.Mux) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.findActive)
		r.Get("/all", h.findAll)
		r.Get("/trashed", h.findTrashed)
		r.Post("/restore", h.restoreAll)
		r.Delete("/trashed", h.deleteAll)
		r.Get("/{id}", h.findByID)
		r.Put("/{id}", h.update)
		r.Get("/{id}/items", h.findItems)
		r.Delete("/{id}", h.trash)
		r.Post("/{id}/restore", h.restore)
		r.Delete("/{id}/permanent", h.delete)
	})
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("body: invalid json"))
		return
	}
	o, err := h.Commands.Create(r.Context(), &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, o)
}

func (h *OrderHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	var req domain.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("body: invalid json"))
		return
	}
	req.OrderID = id
	o, err := h.Commands.Update(r.Context(), &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *OrderHandler) findAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Queries.FindAll)
}

func (h *OrderHandler) findActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Queries.FindActive)
}

func (h *OrderHandler) findTrashed(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Queries.FindTrashed)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error)) {
	req := listRequest(r)
	orders, total, err := fetch(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, pageResponse{
		Items: orders, Total: total, Page: req.Page, PageSize: req.PageSize,
	})
}

func (h *OrderHandler) findByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	o, err := h.Queries.FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *OrderHandler) findItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	items, err := h.Queries.FindItems(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *OrderHandler) trash(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	o, err := h.Commands.Trash(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *OrderHandler) restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	o, err := h.Commands.Restore(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *OrderHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h *OrderHandler) restoreAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Commands.RestoreAll(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (h *OrderHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Commands.DeleteAll(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
