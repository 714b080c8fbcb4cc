package handlers

import (
	"fmt"
	"net/http"

	"salonmenu/internal/logger"
	"salonmenu/internal/models"
	"salonmenu/internal/services"
	helpers "salonmenu/internal/utils/helpers"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type MenuHandler struct{ svc *services.MenuService }

func NewMenuHandler(s *services.MenuService) *MenuHandler {
	return &MenuHandler{svc: s}
}

type createSectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type createServiceRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Duration    int          `json:"duration"`
	Price       models.Money `json:"price"`
	Order       int          `json:"order"`
}

type createPackageRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	TotalPrice  models.Money `json:"totalPrice"`
	Duration    int          `json:"duration"`
	Order       int          `json:"order"`
	ServiceIDs  []uuid.UUID  `json:"serviceIds"`
}

// sectionsOrderRequest — тело перестановки разделов, для документации.
type sectionsOrderRequest struct {
	Items []struct {
		ID    string `json:"id"`
		Order int    `json:"order"`
	} `json:"sections"`
}

// GetMenu
// @Summary      Меню владельца
// @Description  Разделы по позиции, внутри каждого услуги и пакеты по позиции. Заголовок X-Cache: HIT|MISS
// @Tags         menu
// @Produce      json
// @Param        ownerId  path  string  true  "ID владельца"
// @Success      200 {object} helpers.Response{data=models.Menu}
// @Failure      400 {object} helpers.Response
// @Failure      500 {object} helpers.Response
// @Router       /menu/{ownerId} [get]
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathUUID(r, "ownerId")
	if err != nil {
		writeError(w, r, opRead, "menu: неверный id владельца", err)
		return
	}

	menu, hit, err := h.svc.GetMenu(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, opRead, "Failed to fetch menu", err)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	helpers.Data(w, http.StatusOK, menu)
}

// ReorderSections
// @Summary      Переставить разделы
// @Description  Список должен содержать все активные разделы владельца; позиция = индекс в массиве + 1
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        ownerId  path  string          true  "ID владельца"
// @Param        body     body  sectionsOrderRequest  true  "{sections:[{id,order}]}"
// @Success      200 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Failure      500 {object} helpers.Response
// @Router       /menu/{ownerId}/sections/order [put]
func (h *MenuHandler) ReorderSections(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathUUID(r, "ownerId")
	if err != nil {
		writeError(w, r, opReorder, "menu: неверный id владельца", err)
		return
	}
	ids, err := parseOrderList(r, string(models.KindSection))
	if err != nil {
		writeError(w, r, opReorder, "Failed to reorder sections", err)
		return
	}

	res, err := h.svc.ReorderSections(r.Context(), ownerID, ids)
	if err != nil {
		writeError(w, r, opReorder, "Failed to reorder sections", err)
		return
	}
	h.reordered(w, r, models.KindSection, res)
}

// ReorderServices
// @Summary      Переставить услуги раздела
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        ownerId    path  string  true  "ID владельца"
// @Param        sectionId  path  string  true  "ID раздела"
// @Param        body       body  object  true  "{services:[{id,order}]}"
// @Success      200 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Failure      500 {object} helpers.Response
// @Router       /menu/{ownerId}/sections/{sectionId}/services/order [put]
func (h *MenuHandler) ReorderServices(w http.ResponseWriter, r *http.Request) {
	h.reorderInSection(w, r, models.KindService)
}

// ReorderPackages
// @Summary      Переставить пакеты раздела
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        ownerId    path  string  true  "ID владельца"
// @Param        sectionId  path  string  true  "ID раздела"
// @Param        body       body  object  true  "{packages:[{id,order}]}"
// @Success      200 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Failure      500 {object} helpers.Response
// @Router       /menu/{ownerId}/sections/{sectionId}/packages/order [put]
func (h *MenuHandler) ReorderPackages(w http.ResponseWriter, r *http.Request) {
	h.reorderInSection(w, r, models.KindPackage)
}

func (h *MenuHandler) reorderInSection(w http.ResponseWriter, r *http.Request, kind models.Kind) {
	msg := fmt.Sprintf("Failed to reorder %s", kind)
	ownerID, err := pathUUID(r, "ownerId")
	if err != nil {
		writeError(w, r, opReorder, msg, err)
		return
	}
	sectionID, err := pathUUID(r, "sectionId")
	if err != nil {
		writeError(w, r, opReorder, msg, err)
		return
	}
	ids, err := parseOrderList(r, string(kind))
	if err != nil {
		writeError(w, r, opReorder, msg, err)
		return
	}

	var res services.RenumberResult
	if kind == models.KindService {
		res, err = h.svc.ReorderServices(r.Context(), ownerID, sectionID, ids)
	} else {
		res, err = h.svc.ReorderPackages(r.Context(), ownerID, sectionID, ids)
	}
	if err != nil {
		writeError(w, r, opReorder, msg, err)
		return
	}
	h.reordered(w, r, kind, res)
}

func (h *MenuHandler) reordered(w http.ResponseWriter, r *http.Request, kind models.Kind, res services.RenumberResult) {
	logger.WithCtx(r.Context()).Info("menu: порядок сохранён",
		zap.String("kind", string(kind)), zap.Int("updated", res.Updated), zap.Int("skipped", res.Skipped))
	helpers.JSON(w, http.StatusOK, helpers.Response{
		Success: true,
		Message: fmt.Sprintf("%s order updated", kind),
		Data:    res,
	})
}

// CreateSection
// @Summary      Создать раздел
// @Description  order 0 или пусто — в конец списка; занятая позиция — 409
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        ownerId  path  string                true  "ID владельца"
// @Param        body     body  createSectionRequest  true  "Раздел"
// @Success      201 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Failure      409 {object} helpers.Response
// @Router       /menu/{ownerId}/sections [post]
func (h *MenuHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathUUID(r, "ownerId")
	if err != nil {
		writeError(w, r, opCreate, "menu: неверный id владельца", err)
		return
	}
	var req createSectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, opCreate, "Failed to create section", err)
		return
	}

	sec := &models.Section{OwnerID: ownerID, Name: req.Name, Description: req.Description, Position: req.Order}
	if err := h.svc.CreateSection(r.Context(), sec); err != nil {
		writeError(w, r, opCreate, "Failed to create section", err)
		return
	}
	logger.WithCtx(r.Context()).Info("menu: раздел создан", zap.String("id", sec.ID.String()), zap.Int("position", sec.Position))
	helpers.Created(w, sec.ID.String(), "Section created")
}

// CreateService
// @Summary      Создать услугу
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        ownerId    path  string                true  "ID владельца"
// @Param        sectionId  path  string                true  "ID раздела"
// @Param        body       body  createServiceRequest  true  "Услуга"
// @Success      201 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Failure      409 {object} helpers.Response
// @Router       /menu/{ownerId}/sections/{sectionId}/services [post]
func (h *MenuHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathUUID(r, "ownerId")
	if err != nil {
		writeError(w, r, opCreate, "menu: неверный id владельца", err)
		return
	}
	sectionID, err := pathUUID(r, "sectionId")
	if err != nil {
		writeError(w, r, opCreate, "menu: неверный id раздела", err)
		return
	}
	var req createServiceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, opCreate, "Failed to create service", err)
		return
	}

	svc := &models.Service{
		SectionID:       sectionID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.Duration,
		Price:           req.Price,
		Position:        req.Order,
	}
	if err := h.svc.CreateService(r.Context(), ownerID, svc); err != nil {
		writeError(w, r, opCreate, "Failed to create service", err)
		return
	}
	logger.WithCtx(r.Context()).Info("menu: услуга создана", zap.String("id", svc.ID.String()), zap.Int("position", svc.Position))
	helpers.Data(w, http.StatusCreated, map[string]any{"id": svc.ID, "position": svc.Position})
}

// CreatePackage
// @Summary      Создать пакет
// @Description  Услуги пакета могут лежать в любых разделах того же владельца
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        sectionId  path  string                true  "ID раздела"
// @Param        body       body  createPackageRequest  true  "Пакет"
// @Success      201 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Failure      409 {object} helpers.Response
// @Router       /sections/{sectionId}/packages [post]
func (h *MenuHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	ownerID := uuid.Nil
	if _, scoped := mux.Vars(r)["ownerId"]; scoped {
		id, err := pathUUID(r, "ownerId")
		if err != nil {
			writeError(w, r, opCreate, "menu: неверный id владельца", err)
			return
		}
		ownerID = id
	}
	sectionID, err := pathUUID(r, "sectionId")
	if err != nil {
		writeError(w, r, opCreate, "menu: неверный id раздела", err)
		return
	}
	var req createPackageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, opCreate, "Failed to create package", err)
		return
	}

	p := &models.Package{
		SectionID:       sectionID,
		Name:            req.Name,
		Description:     req.Description,
		TotalPrice:      req.TotalPrice,
		DurationMinutes: req.Duration,
		Position:        req.Order,
		ServiceIDs:      req.ServiceIDs,
	}
	if err := h.svc.CreatePackage(r.Context(), ownerID, p); err != nil {
		writeError(w, r, opCreate, "Failed to create package", err)
		return
	}
	logger.WithCtx(r.Context()).Info("menu: пакет создан", zap.String("id", p.ID.String()), zap.Int("services", len(p.ServiceIDs)))
	helpers.Created(w, p.ID.String(), "Package created")
}

// DeleteSection
// @Summary      Удалить раздел
// @Description  Мягкое удаление; позиции соседей не меняются
// @Tags         menu
// @Param        ownerId    path  string  true  "ID владельца"
// @Param        sectionId  path  string  true  "ID раздела"
// @Success      200 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Router       /menu/{ownerId}/sections/{sectionId} [delete]
func (h *MenuHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathUUID(r, "ownerId")
	if err != nil {
		writeError(w, r, opDelete, "menu: неверный id владельца", err)
		return
	}
	sectionID, err := pathUUID(r, "sectionId")
	if err != nil {
		writeError(w, r, opDelete, "menu: неверный id раздела", err)
		return
	}
	if err := h.svc.DeleteSection(r.Context(), ownerID, sectionID); err != nil {
		writeError(w, r, opDelete, "Failed to delete section", err)
		return
	}
	helpers.Message(w, http.StatusOK, "Section deleted")
}

// DeleteService
// @Summary      Удалить услугу
// @Tags         menu
// @Param        ownerId    path  string  true  "ID владельца"
// @Param        sectionId  path  string  true  "ID раздела"
// @Param        id         path  string  true  "ID услуги"
// @Success      200 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Router       /menu/{ownerId}/sections/{sectionId}/services/{id} [delete]
func (h *MenuHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	h.deleteInSection(w, r, models.KindService)
}

// DeletePackage
// @Summary      Удалить пакет
// @Tags         menu
// @Param        ownerId    path  string  true  "ID владельца"
// @Param        sectionId  path  string  true  "ID раздела"
// @Param        id         path  string  true  "ID пакета"
// @Success      200 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Router       /menu/{ownerId}/sections/{sectionId}/packages/{id} [delete]
func (h *MenuHandler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	h.deleteInSection(w, r, models.KindPackage)
}

func (h *MenuHandler) deleteInSection(w http.ResponseWriter, r *http.Request, kind models.Kind) {
	msg := fmt.Sprintf("Failed to delete %s", kind)
	ids := make([]uuid.UUID, 0, 3)
	for _, name := range []string{"ownerId", "sectionId", "id"} {
		id, err := pathUUID(r, name)
		if err != nil {
			writeError(w, r, opDelete, msg, err)
			return
		}
		ids = append(ids, id)
	}

	var err error
	if kind == models.KindService {
		err = h.svc.DeleteService(r.Context(), ids[0], ids[1], ids[2])
	} else {
		err = h.svc.DeletePackage(r.Context(), ids[0], ids[1], ids[2])
	}
	if err != nil {
		writeError(w, r, opDelete, msg, err)
		return
	}
	helpers.Message(w, http.StatusOK, fmt.Sprintf("%s deleted", kind))
}
