package handlers

import (
	"net/http"

	"devshub-backend/internal/middleware"
	"devshub-backend/internal/repository"
)

type UserHandler struct {
	userRepo *repository.UserRepo
}

func NewUserHandler(userRepo *repository.UserRepo) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Me returns the profile of the authenticated learner.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByID(r.Context(), middleware.GetLearnerID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
