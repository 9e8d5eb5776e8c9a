package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID assigns a client-side UUID so inserts do not depend on a database default.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error { ensureID(&u.ID); return nil }
func (a *Address) BeforeCreate(*gorm.DB) error { ensureID(&a.ID); return nil }
func (p *Product) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
func (v *ProductVariation) BeforeCreate(*gorm.DB) error { ensureID(&v.ID); return nil }
func (c *CartItem) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }
func (s *DeliverySlot) BeforeCreate(*gorm.DB) error { ensureID(&s.ID); return nil }
func (c *Coupon) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }
func (c *CouponUsage) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error { ensureID(&o.ID); return nil }
func (i *OrderItem) BeforeCreate(*gorm.DB) error { ensureID(&i.ID); return nil }
func (e *OrderTrackingEvent) BeforeCreate(*gorm.DB) error { ensureID(&e.ID); return nil }
func (e *LoyaltyLedgerEntry) BeforeCreate(*gorm.DB) error { ensureID(&e.ID); return nil }
func (n *Notification) BeforeCreate(*gorm.DB) error { ensureID(&n.ID); return nil }
