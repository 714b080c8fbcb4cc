// internal/reqctx/reqctx.go
package reqctx

import (
	"context"

	"github.com/google/uuid"
)

type key int

const (
	keyRequestID key = iota
	keyOwnerID
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok
}

// WithOwnerID кладёт владельца из проверенного токена.
func WithOwnerID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyOwnerID, id)
}

func GetOwnerID(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(keyOwnerID).(uuid.UUID)
	return v, ok
}
