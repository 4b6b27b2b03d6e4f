package presentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dinehub/restaurant-api/internal/application"
	"github.com/dinehub/restaurant-api/internal/presentation/helpers"
)

type CatalogHandler struct {
	svc *application.CatalogService
}

func NewCatalogHandler(svc *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Route("/foods", func(r chi.Router) {
		r.Get("/", h.ListFoods)
		r.Post("/", h.CreateFood)
		r.Get("/{id}", h.GetFood)
		r.Put("/{id}", h.UpdateFood)
		r.Delete("/{id}", h.DeleteFood)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
	})
}

func (h *CatalogHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	categoryID := uuid.Nil
	if v := r.URL.Query().Get("category"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			helpers.HttpError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		categoryID = parsed
	}
	foods, err := h.svc.ListFoods(r.Context(), categoryID)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"foods": foods})
}

func (h *CatalogHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid food id")
		return
	}
	f, err := h.svc.GetFood(r.Context(), id)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, f)
}

func (h *CatalogHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var in application.FoodInput
	if err := helpers.DecodeJSON(r.Body, &in); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	f, err := h.svc.CreateFood(r.Context(), caller, in)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, f)
}

func (h *CatalogHandler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid food id")
		return
	}
	var in application.FoodInput
	if err := helpers.DecodeJSON(r.Body, &in); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	f, err := h.svc.UpdateFood(r.Context(), caller, id, in)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, f)
}

func (h *CatalogHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid food id")
		return
	}
	if err := h.svc.DeleteFood(r.Context(), caller, id); err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"message": "Food deleted"})
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var body struct {
		CategoryName string `json:"category_name"`
	}
	if err := helpers.DecodeJSON(r.Body, &body); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), caller, body.CategoryName)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, c)
}
