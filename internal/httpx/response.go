package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type pageResponse struct {
	Items    any `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, apiResponse{Status: "success", Data: data})
}

func writeErr(w http.ResponseWriter, err error) {
	code := apperr.HTTPStatus(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
		writeJSON(w, code, apiResponse{Status: "error", Message: "internal error"})
		return
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, code, apiResponse{Status: "error", Message: "validation failed", Data: ve.Fields})
		return
	}
	writeJSON(w, code, apiResponse{Status: "error", Message: err.Error()})
}

// listRequest pulls the shared pagination params off the query string;
// Normalize clamps them, so bad input degrades instead of erroring.
func listRequest(r *http.Request) domain.FindAllRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	req := domain.FindAllRequest{
		Search:   q.Get("search"),
		Page:     page,
		PageSize: size,
	}
	req.Normalize()
	return req
}

func pathID(r *http.Request, param string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id < 1 {
		return 0, apperr.Validation(param + ": must be a positive integer")
	}
	return id, nil
}
