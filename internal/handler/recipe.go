package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wenqilu/mealweek/internal/model"
	"github.com/wenqilu/mealweek/internal/store"
)

type RecipeHandler struct {
	recipeStore *store.RecipeStore
	logger      *slog.Logger
}

func NewRecipeHandler(rs *store.RecipeStore, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipeStore: rs, logger: logger}
}

type recipeRequest struct {
	Title       string             `json:"title"`
	CookingTime int                `json:"cooking_time"`
	Difficulty  string             `json:"difficulty"`
	CoverImage  string             `json:"cover_image"`
	Ingredients []model.Ingredient `json:"ingredients"`
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeStore.List()
	if err != nil {
		h.logger.Error("list recipes", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list recipes"})
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	recipe, err := h.recipeStore.GetRecipe(id)
	if err != nil {
		h.logger.Error("get recipe", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get recipe"})
		return
	}
	if recipe == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	recipe, err := h.recipeStore.Create(req.Title, req.CookingTime, req.Difficulty, req.CoverImage, req.Ingredients)
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create recipe"})
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.recipeStore.GetRecipe(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get recipe"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	recipe, err := h.recipeStore.Update(id, req.Title, req.CookingTime, req.Difficulty, req.CoverImage, req.Ingredients)
	if err != nil {
		h.logger.Error("update recipe", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update recipe"})
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.recipeStore.GetRecipe(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get recipe"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
		return
	}

	if err := h.recipeStore.Delete(id); err != nil {
		h.logger.Error("delete recipe", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete recipe"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
