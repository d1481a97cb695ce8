package category_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/expense-reports/internal/category"
	"github.com/frahmantamala/expense-reports/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Category Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := category.NewHandler(&transport.BaseHandler{Logger: slogger}, category.NewService(slogger))

		router = chi.NewRouter()
		router.Get("/categories", handler.GetCategories)
		router.Get("/categories/{name}", handler.GetCategory)
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	It("should handle GET /categories request successfully", func() {
		w := get("/categories")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(7))
		Expect(response.Categories[0].Name).To(Equal("TRAVEL"))
	})

	It("should return a single category by name", func() {
		w := get("/categories/office_supplies")

		Expect(w.Code).To(Equal(http.StatusOK))
		var response category.CategoryResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Name).To(Equal("OFFICE_SUPPLIES"))
		Expect(response.Description).NotTo(BeEmpty())
	})

	It("should return 404 for an unknown category", func() {
		w := get("/categories/GROCERIES")

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("CATEGORY_NOT_FOUND"))
	})
})
