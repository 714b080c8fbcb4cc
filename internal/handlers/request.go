package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"salonmenu/internal/logger"
	"salonmenu/internal/repository"
	"salonmenu/internal/services"
	helpers "salonmenu/internal/utils/helpers"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func badRequest(format string, args ...any) error {
	return &services.ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// pathUUID читает uuid из переменной маршрута.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest("bad %s", name)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return badRequest("bad json: %v", err)
	}
	return nil
}

type orderItem struct {
	ID       *string         `json:"id"`
	Order    json.RawMessage `json:"order"`
	Position json.RawMessage `json:"position"`
}

// parseOrderList разбирает {"<key>": [{"id": ..., "order": N}, ...]}.
// Ранг — индекс элемента в массиве; order (или position) обязан быть числом,
// но на результат не влияет.
func parseOrderList(r *http.Request, key string) ([]uuid.UUID, error) {
	var body map[string]json.RawMessage
	if err := decodeBody(r, &body); err != nil {
		return nil, err
	}
	raw := bytes.TrimSpace(body[key])
	if len(raw) == 0 || raw[0] != '[' {
		return nil, badRequest("%s must be an array", key)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, badRequest("%s must be an array", key)
	}

	ids := make([]uuid.UUID, 0, len(items))
	for i, rawItem := range items {
		var item orderItem
		if err := json.Unmarshal(rawItem, &item); err != nil {
			return nil, badRequest("%s[%d] must be an object", key, i)
		}
		if item.ID == nil {
			return nil, badRequest("%s[%d].id is required", key, i)
		}
		id, err := uuid.Parse(*item.ID)
		if err != nil {
			return nil, badRequest("%s[%d].id is not a valid id", key, i)
		}
		rank := item.Order
		if isNull(rank) {
			rank = item.Position
		}
		if !isNumber(rank) {
			return nil, badRequest("%s[%d].order must be a number", key, i)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		return false
	}
	var f float64
	return json.Unmarshal(raw, &f) == nil
}

type operation int

const (
	opRead operation = iota
	opCreate
	opReorder
	opDelete
)

// writeError переводит ошибки сервисов и хранилища в HTTP-коды.
func writeError(w http.ResponseWriter, r *http.Request, op operation, msg string, err error) {
	log := logger.WithCtx(r.Context())

	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn(msg, zap.String("reason", vErr.Msg))
		helpers.Error(w, http.StatusBadRequest, vErr.Msg)
	case errors.Is(err, repository.ErrNotFound):
		log.Warn(msg, zap.Error(err))
		helpers.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrConstraintViolation) && op == opCreate:
		log.Warn(msg, zap.Error(err))
		helpers.ErrorDetails(w, http.StatusConflict, "position or name already taken", err.Error())
	case errors.Is(err, repository.ErrTransient):
		log.Error(msg, zap.Error(err))
		helpers.ErrorDetails(w, http.StatusServiceUnavailable, "storage unavailable, retry", err.Error())
	default:
		log.Error(msg, zap.Error(err))
		helpers.ErrorDetails(w, http.StatusInternalServerError, msg, err.Error())
	}
}
