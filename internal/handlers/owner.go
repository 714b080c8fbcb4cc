package handlers

import (
	"net/http"

	"salonmenu/internal/logger"
	"salonmenu/internal/models"
	"salonmenu/internal/services"
	helpers "salonmenu/internal/utils/helpers"

	"go.uber.org/zap"
)

type OwnerHandler struct{ svc *services.OwnerService }

func NewOwnerHandler(s *services.OwnerService) *OwnerHandler {
	return &OwnerHandler{svc: s}
}

type registerOwnerRequest struct {
	Email        string `json:"email"`
	BusinessName string `json:"businessName"`
}

type ownerResponse struct {
	models.Owner
	Token string `json:"token,omitempty"`
}

// Register
// @Summary      Создать или получить владельца
// @Description  Идемпотентно по email. При настроенном JWT_SECRET возвращает token с claim owner_id
// @Tags         owners
// @Accept       json
// @Produce      json
// @Param        body  body  registerOwnerRequest  true  "Владелец"
// @Success      200 {object} ownerResponse
// @Failure      400 {object} helpers.Response
// @Failure      500 {object} helpers.Response
// @Router       /users [post]
func (h *OwnerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerOwnerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, opCreate, "Failed to create user", err)
		return
	}

	owner, token, err := h.svc.Register(r.Context(), req.Email, req.BusinessName)
	if err != nil {
		writeError(w, r, opCreate, "Failed to create user", err)
		return
	}
	logger.WithCtx(r.Context()).Info("owners: владелец получен", zap.String("owner_id", owner.ID.String()))
	helpers.JSON(w, http.StatusOK, ownerResponse{Owner: *owner, Token: token})
}

// Get
// @Summary      Профиль владельца
// @Tags         owners
// @Produce      json
// @Param        ownerId  path  string  true  "ID владельца"
// @Success      200 {object} models.Owner
// @Failure      400 {object} helpers.Response
// @Failure      401 {object} helpers.Response
// @Failure      403 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Router       /users/{ownerId} [get]
func (h *OwnerHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathUUID(r, "ownerId")
	if err != nil {
		writeError(w, r, opRead, "owners: неверный id владельца", err)
		return
	}
	owner, err := h.svc.GetOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, opRead, "User not found", err)
		return
	}
	helpers.JSON(w, http.StatusOK, owner)
}
