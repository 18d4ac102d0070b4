package repository

import (
	"context"
	"time"

	"github.com/egapool/klinedl/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const batchSize = 500

// OhlcvRecord is one row of the ohlcvs table.
type OhlcvRecord struct {
	ID        uint            `gorm:"primaryKey"`
	Exchange  string          `gorm:"size:32;uniqueIndex:idx_ohlcv_bar"`
	Symbol    string          `gorm:"size:64;uniqueIndex:idx_ohlcv_bar"`
	Timeframe string          `gorm:"size:8;uniqueIndex:idx_ohlcv_bar"`
	OpenTime  int64           `gorm:"uniqueIndex:idx_ohlcv_bar"`
	StartTime time.Time
	Open      decimal.Decimal `gorm:"type:decimal(36,18)"`
	High      decimal.Decimal `gorm:"type:decimal(36,18)"`
	Low       decimal.Decimal `gorm:"type:decimal(36,18)"`
	Close     decimal.Decimal `gorm:"type:decimal(36,18)"`
	Volume    decimal.Decimal `gorm:"type:decimal(36,18)"`
}

func (OhlcvRecord) TableName() string {
	return "ohlcvs"
}

type OhlcvRepository struct {
	db *gorm.DB
}

func NewOhlcvRepository(db *gorm.DB) *OhlcvRepository {
	return &OhlcvRepository{db: db}
}

func (repo *OhlcvRepository) Migrate() error {
	return repo.db.AutoMigrate(&OhlcvRecord{})
}

// Store inserts every row of t. Rows already present violate idx_ohlcv_bar and fail the call.
func (repo *OhlcvRepository) Store(ctx context.Context, exchange, symbol, timeframe string, t domain.Table) error {
	records := ToRecords(exchange, symbol, timeframe, t)
	if len(records) == 0 {
		return nil
	}
	return repo.db.WithContext(ctx).CreateInBatches(records, batchSize).Error
}

func ToRecords(exchange, symbol, timeframe string, t domain.Table) []OhlcvRecord {
	records := make([]OhlcvRecord, 0, t.Len())
	for _, r := range t.Rows {
		records = append(records, OhlcvRecord{
			Exchange:  exchange,
			Symbol:    symbol,
			Timeframe: timeframe,
			OpenTime:  r.OpenTime,
			StartTime: r.Time(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}
	return records
}
