package gormstore

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type tradeModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Status       string     `gorm:"column:status;index"`
	OpenOfferID  string     `gorm:"column:open_offer_id"`
	CloseOfferID *string    `gorm:"column:close_offer_id"`
	CheckedAt    *time.Time `gorm:"column:checked_at"`
	HasSiblings  bool       `gorm:"column:has_siblings"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (tradeModel) TableName() string { return "trades" }

type offerModel struct {
	ID          string          `gorm:"column:id;primaryKey"`
	OfferID     string          `gorm:"column:offer_id;index"`
	APIKeyID    string          `gorm:"column:api_key_id"`
	Op          string          `gorm:"column:op"`
	Base        string          `gorm:"column:base"`
	Quote       string          `gorm:"column:quote"`
	BaseAmount  decimal.Decimal `gorm:"column:base_amount;type:TEXT"`
	QuoteAmount decimal.Decimal `gorm:"column:quote_amount;type:TEXT"`
	EfPrice     decimal.Decimal `gorm:"column:ef_price;type:TEXT"`
	IsQuote     bool            `gorm:"column:is_quote"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	ExpiresAt   time.Time       `gorm:"column:expires_at"`
	ConfirmedAt *time.Time      `gorm:"column:confirmed_at"`
	Raw         datatypes.JSON  `gorm:"column:raw;type:TEXT"`
}

func (offerModel) TableName() string { return "offers" }
