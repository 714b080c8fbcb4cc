package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"salonmenu/internal/logger"
	"salonmenu/internal/reqctx"
	"salonmenu/internal/repository"
	"salonmenu/internal/utils"
	helpers "salonmenu/internal/utils/helpers"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SectionOwners отвечает, какому владельцу принадлежит раздел.
type SectionOwners interface {
	SectionOwner(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error)
}

// OwnerScope пропускает запрос, только если owner_id из Bearer-токена совпадает
// с {ownerId} маршрута или владеет {sectionId}. С пустым secret проверка выключена.
func OwnerScope(secret string, sections SectionOwners) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.WithCtx(r.Context())

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("OwnerScope: отсутствует access token")
				helpers.Error(w, http.StatusUnauthorized, "missing access token")
				return
			}
			tokenOwner, err := utils.ParseToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Warn("OwnerScope: неверный или просроченный токен", zap.Error(err))
				helpers.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			pathOwner, err := ownerFromPath(r, sections)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				helpers.Error(w, http.StatusNotFound, "not found")
				return
			case err != nil:
				log.Warn("OwnerScope: не удалось определить владельца", zap.Error(err))
				helpers.Error(w, http.StatusBadRequest, err.Error())
				return
			}
			if pathOwner != tokenOwner {
				log.Warn("OwnerScope: чужое меню",
					zap.String("token_owner", tokenOwner.String()), zap.String("path_owner", pathOwner.String()))
				helpers.Error(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx := reqctx.WithOwnerID(r.Context(), tokenOwner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ownerFromPath(r *http.Request, sections SectionOwners) (uuid.UUID, error) {
	vars := mux.Vars(r)
	if raw, ok := vars["ownerId"]; ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, errors.New("bad ownerId")
		}
		return id, nil
	}
	raw, ok := vars["sectionId"]
	if !ok {
		return uuid.Nil, errors.New("route has no owner scope")
	}
	sectionID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("bad sectionId")
	}
	return sections.SectionOwner(r.Context(), sectionID)
}
