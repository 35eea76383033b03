package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// BookingEvent is an append-only audit fact. Rows are never updated or deleted.
type BookingEvent struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID uuid.UUID              `gorm:"column:booking_id;type:uuid;not null"`
	Type      enums.BookingEventType `gorm:"column:type;type:text;not null"`
	ActorID   *uuid.UUID             `gorm:"column:actor_id;type:uuid"`
	ActorRole *enums.ActorRole       `gorm:"column:actor_role;type:text"`
	Data      datatypes.JSON         `gorm:"column:data;type:jsonb"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
