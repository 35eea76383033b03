package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// Notification stores in-app notification payloads addressed to one party.
type Notification struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientType enums.RecipientType    `gorm:"column:recipient_type;type:text;not null"`
	RecipientID   uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null"`
	BookingID     *uuid.UUID             `gorm:"column:booking_id;type:uuid"`
	Type          enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title         string                 `gorm:"column:title;type:text;not null"`
	Message       string                 `gorm:"column:message;type:text;not null"`
	ReadAt        *time.Time             `gorm:"column:read_at"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
