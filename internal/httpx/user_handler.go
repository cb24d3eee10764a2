package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/user"
)

type UserHandler struct {
	Commands *user.CommandService
	Queries  *user.QueryService
}

func (h *UserHandler) Register(r *chi.Mux) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.findActive)
		r.Get("/all", h.findAll)
		r.Get("/trashed", h.findTrashed)
		r.Post("/restore", h.restoreAll)
		r.Delete("/trashed", h.deleteAll)
		r.Get("/{id}", h.findByID)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.trash)
		r.Post("/{id}/restore", h.restore)
		r.Delete("/{id}/permanent", h.delete)
	})
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("body: invalid json"))
		return
	}
	u, err := h.Commands.Create(r.Context(), &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, u)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("body: invalid json"))
		return
	}
	req.UserID = id
	u, err := h.Commands.Update(r.Context(), &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

func (h *UserHandler) findAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Queries.FindAll)
}

func (h *UserHandler) findActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Queries.FindActive)
}

func (h *UserHandler) findTrashed(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Queries.FindTrashed)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error)) {
	req := listRequest(r)
	users, total, err := fetch(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, pageResponse{
		Items: users, Total: total, Page: req.Page, PageSize: req.PageSize,
	})
}

func (h *UserHandler) findByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	u, err := h.Queries.FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

func (h *UserHandler) trash(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	u, err := h.Commands.Trash(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

func (h *UserHandler) restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	u, err := h.Commands.Restore(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h *UserHandler) restoreAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Commands.RestoreAll(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (h *UserHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Commands.DeleteAll(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
