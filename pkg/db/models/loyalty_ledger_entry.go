package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/enums"
)

// LoyaltyLedgerEntry is an append-only points movement. Balances are always derived.
type LoyaltyLedgerEntry struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID       *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	SourceEntryID *uuid.UUID             `gorm:"column:source_entry_id;type:uuid"`
	EntryType     enums.LoyaltyEntryType `gorm:"column:entry_type;type:loyalty_entry_type;not null"`
	Points        int64                  `gorm:"column:points;not null"`
	Description   string                 `gorm:"column:description;not null"`
	ExpiresAt     *time.Time             `gorm:"column:expires_at;type:timestamptz"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
