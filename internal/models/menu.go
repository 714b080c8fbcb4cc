package models

import (
	"time"

	"github.com/google/uuid"
)

// Kind — упорядоченная коллекция внутри родительской области.
type Kind string

const (
	KindSection Kind = "sections" // родитель — владелец
	KindService Kind = "services" // родитель — раздел
	KindPackage Kind = "packages" // родитель — раздел
)

func (k Kind) Valid() bool {
	switch k {
	case KindSection, KindService, KindPackage:
		return true
	}
	return false
}

// Parent возвращает название родительской области для сообщений.
func (k Kind) Parent() string {
	if k == KindSection {
		return "owner"
	}
	return "section"
}

type Owner struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	BusinessName string    `json:"business_name"`
	IsActive     bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Section struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Service struct {
	ID              uuid.UUID `json:"id"`
	SectionID       uuid.UUID `json:"section_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration"`
	Price           Money     `json:"price"`
	Position        int       `json:"position"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Package struct {
	ID              uuid.UUID   `json:"id"`
	SectionID       uuid.UUID   `json:"section_id"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	TotalPrice      Money       `json:"total_price"`
	DurationMinutes int         `json:"duration"`
	Position        int         `json:"position"`
	IsActive        bool        `json:"is_active"`
	ServiceIDs      []uuid.UUID `json:"service_ids"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Positioned — активный ребёнок области и его текущая позиция.
type Positioned struct {
	ID       uuid.UUID
	Position int
}

// MenuSection — раздел вместе с упорядоченными услугами и пакетами.
type MenuSection struct {
	Section
	Services []Service `json:"services"`
	Packages []Package `json:"packages"`
}

type Menu struct {
	OwnerID  uuid.UUID     `json:"owner_id"`
	Sections []MenuSection `json:"sections"`
}
