package category

import (
	"net/http"
	"strings"

	errors "github.com/frahmantamala/expense-reports/internal"
	"github.com/frahmantamala/expense-reports/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAllCategories() []CategoryResponse
	GetCategoryByName(name string) (*CategoryResponse, bool)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: h.Service.GetAllCategories(),
	})
}

// GetCategory handles GET /categories/{name}. Names match case-insensitively.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "name")))

	category, ok := h.Service.GetCategoryByName(name)
	if !ok {
		h.HandleServiceError(w, r, errors.ErrCategoryNotFound)
		return
	}
	h.WriteJSON(w, http.StatusOK, category)
}
