// Package gormstore implements the trade ledger on Gorm + SQLite.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/ledger"
	"github.com/lzkill/bsc-arbitrage-check/internal/logger"
	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

// Store persists trades and offers in a local SQLite database.
type Store struct {
	db *gorm.DB
}

var _ ledger.Store = (*Store)(nil)

// New opens (and migrates) the ledger database at path.
func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: ledger path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&tradeModel{}, &offerModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: keep the pool small to avoid lock contention between the
	// engine and the status endpoints.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ListPendingTrades(ctx context.Context) ([]types.Trade, error) {
	var rows []tradeModel
	err := s.db.WithContext(ctx).
		Where("status IN ?", []string{string(types.TradeOpen), string(types.TradeBroken)}).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	offerIDs := make([]string, 0, len(rows)*2)
	for _, r := range rows {
		offerIDs = append(offerIDs, r.OpenOfferID)
		if r.CloseOfferID != nil {
			offerIDs = append(offerIDs, *r.CloseOfferID)
		}
	}
	var offerRows []offerModel
	if err := s.db.WithContext(ctx).Where("id IN ?", offerIDs).Find(&offerRows).Error; err != nil {
		return nil, err
	}
	offers := make(map[string]types.Offer, len(offerRows))
	for _, o := range offerRows {
		offers[o.ID] = offerFromModel(o)
	}

	// Corrupted rows are skipped, not fatal: one orphaned trade must never
	// block the whole pending listing.
	trades := make([]types.Trade, 0, len(rows))
	for _, r := range rows {
		open, ok := offers[r.OpenOfferID]
		if !ok {
			logger.Errorf("trade %s references missing open offer %s, skipping: %v",
				r.ID, r.OpenOfferID, ledger.ErrNotFound)
			continue
		}
		t, err := tradeFromModel(r, open)
		if err != nil {
			logger.Errorf("trade %s has an unreadable row, skipping: %v", r.ID, err)
			continue
		}
		if r.CloseOfferID != nil {
			if co, ok := offers[*r.CloseOfferID]; ok {
				t.CloseOffer = &co
			}
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func (s *Store) UpdateTrade(ctx context.Context, t types.Trade) error {
	updates := map[string]any{
		"status":       string(t.Status),
		"checked_at":   t.CheckedAt,
		"has_siblings": t.HasSiblings,
	}
	if t.CloseOffer != nil {
		closeID := t.CloseOffer.ID.String()
		updates["close_offer_id"] = closeID
	}
	res := s.db.WithContext(ctx).Model(&tradeModel{}).Where("id = ?", t.ID.String()).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("trade %s: %w", t.ID, ledger.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateOffer(ctx context.Context, o types.Offer) error {
	row := offerToModel(o)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&row).Error
}

func (s *Store) CreateOffer(ctx context.Context, o types.Offer) (uuid.UUID, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	row := offerToModel(o)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return uuid.Nil, err
	}
	return o.ID, nil
}

func (s *Store) RemoveTrade(ctx context.Context, t types.Trade) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", t.ID.String()).Delete(&tradeModel{}).Error; err != nil {
			return err
		}
		ids := []string{t.OpenOffer.ID.String()}
		if t.CloseOffer != nil {
			ids = append(ids, t.CloseOffer.ID.String())
		}
		return tx.Where("id IN ?", ids).Delete(&offerModel{}).Error
	})
}

func tradeFromModel(r tradeModel, open types.Offer) (types.Trade, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return types.Trade{}, fmt.Errorf("trade %s: invalid id: %w", r.ID, err)
	}
	return types.Trade{
		ID:          id,
		Status:      types.TradeStatus(r.Status),
		OpenOffer:   open,
		CheckedAt:   r.CheckedAt,
		HasSiblings: r.HasSiblings,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func offerFromModel(r offerModel) types.Offer {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		id = uuid.Nil
	}
	return types.Offer{
		ID:          id,
		OfferID:     r.OfferID,
		APIKeyID:    r.APIKeyID,
		Op:          types.OfferOp(r.Op),
		Base:        r.Base,
		Quote:       r.Quote,
		BaseAmount:  r.BaseAmount,
		QuoteAmount: r.QuoteAmount,
		EfPrice:     r.EfPrice,
		IsQuote:     r.IsQuote,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
		ConfirmedAt: r.ConfirmedAt,
		Raw:         json.RawMessage(r.Raw),
	}
}

func offerToModel(o types.Offer) offerModel {
	return offerModel{
		ID:          o.ID.String(),
		OfferID:     o.OfferID,
		APIKeyID:    o.APIKeyID,
		Op:          string(o.Op),
		Base:        o.Base,
		Quote:       o.Quote,
		BaseAmount:  o.BaseAmount,
		QuoteAmount: o.QuoteAmount,
		EfPrice:     o.EfPrice,
		IsQuote:     o.IsQuote,
		CreatedAt:   o.CreatedAt,
		ExpiresAt:   o.ExpiresAt,
		ConfirmedAt: o.ConfirmedAt,
		Raw:         datatypes.JSON(o.Raw),
	}
}

// IsNotFound reports whether err is a missing-record error from gorm or the
// ledger contract.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ledger.ErrNotFound)
}
