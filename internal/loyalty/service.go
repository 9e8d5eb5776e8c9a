package loyalty

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
)

const recentEntriesLimit = 20

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EntryDTO is a ledger row as shown to the account owner.
type EntryDTO struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	EntryType   string     `json:"entry_type"`
	Points      int64      `json:"points"`
	Description string     `json:"description"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Summary is the derived balance plus the latest ledger activity.
type Summary struct {
	Balance int64      `json:"balance"`
	Entries []EntryDTO `json:"entries"`
}

// Service reads balances and runs point expiry.
type Service interface {
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)
	ExpireDue(ctx context.Context, now time.Time, batch int) (int, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loyalty balance")
	}
	entries, err := s.repo.ListRecent(ctx, userID, recentEntriesLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loyalty entries")
	}

	out := &Summary{Balance: balance, Entries: make([]EntryDTO, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, EntryDTO{
			ID:          e.ID,
			OrderID:     e.OrderID,
			EntryType:   string(e.EntryType),
			Points:      e.Points,
			Description: e.Description,
			ExpiresAt:   e.ExpiresAt,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out, nil
}

// ExpireDue writes one expired entry per overdue earned entry. Each expiry removes
// at most the current balance, so points already redeemed are never taken twice.
func (s *service) ExpireDue(ctx context.Context, now time.Time, batch int) (int, error) {
	due, err := s.repo.ListExpirable(ctx, now, batch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, entry := range due {
		entry := entry
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			balance, err := repo.Balance(ctx, entry.UserID)
			if err != nil {
				return err
			}
			points := entry.Points
			if balance < points {
				points = balance
			}
			if points < 0 {
				points = 0
			}
			sourceID := entry.ID
			return repo.Append(ctx, &models.LoyaltyLedgerEntry{
				UserID:        entry.UserID,
				OrderID:       entry.OrderID,
				SourceEntryID: &sourceID,
				EntryType:     enums.LoyaltyEntryExpired,
				Points:        points,
				Description:   fmt.Sprintf("Expired %d points earned on %s", entry.Points, entry.CreatedAt.Format("2006-01-02")),
			})
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				continue
			}
			return expired, err
		}
		expired++
	}
	return expired, nil
}
