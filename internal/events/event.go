// Package events publishes menu change notifications to RabbitMQ so other
// services (booking widgets, search indexers) can refresh their copy of a menu.
package events

import (
	"time"

	"salonmenu/internal/models"

	"github.com/google/uuid"
)

// MenuChangedQueue — durable очередь событий меню.
const MenuChangedQueue = "menu.changed"

type Action string

const (
	ActionReordered   Action = "reordered"
	ActionCreated     Action = "created"
	ActionDeactivated Action = "deactivated"
)

// MenuChangedEvent описывает одно успешное изменение меню владельца.
// IDs — затронутые строки; для перестановки в новом порядке.
type MenuChangedEvent struct {
	OwnerID    uuid.UUID   `json:"owner_id"`
	Kind       models.Kind `json:"kind"`
	ParentID   uuid.UUID   `json:"parent_id"`
	Action     Action      `json:"action"`
	IDs        []uuid.UUID `json:"ids"`
	OccurredAt time.Time   `json:"occurred_at"`
}
