package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

// LedgerCache implements usecase.LedgerCache using Redis. Each account's balanced ledger is
// stored as one JSON document.
type LedgerCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewLedgerCache creates a new LedgerCache.
func NewLedgerCache(client *redis.Client, ttl time.Duration) *LedgerCache {
	return &LedgerCache{
		client: client,
		prefix: "ledger:",
		ttl:    ttl,
	}
}

type cachedEntry struct {
	Date        time.Time       `json:"date"`
	ID          string          `json:"id"`
	AccountCode string          `json:"account_code"`
	JournalCode string          `json:"journal_code"`
	Label       string          `json:"label"`
	Piece       string          `json:"piece"`
	Lettrage    string          `json:"lettrage,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// Get returns the cached ledger of an account.
func (c *LedgerCache) Get(ctx context.Context, accountCode string) ([]domain.Entry, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+accountCode).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached []cachedEntry
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("decode cached ledger %s: %w", accountCode, err)
	}

	entries := make([]domain.Entry, len(cached))
	for i, e := range cached {
		entries[i] = domain.Entry(e)
	}

	return entries, true, nil
}

// Set stores the balanced ledger of an account.
func (c *LedgerCache) Set(ctx context.Context, accountCode string, entries []domain.Entry) error {
	cached := make([]cachedEntry, len(entries))
	for i, e := range entries {
		cached[i] = cachedEntry(e)
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.prefix+accountCode, raw, c.ttl).Err()
}

// Invalidate drops the cached ledger of an account.
func (c *LedgerCache) Invalidate(ctx context.Context, accountCode string) error {
	return c.client.Del(ctx, c.prefix+accountCode).Err()
}
