package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/egapool/klinedl/database"
	"github.com/egapool/klinedl/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table() domain.Table {
	p := decimal.RequireFromString("42000.5")
	return domain.NewTable([]domain.Candle{
		{OpenTime: 1704070800000, Open: p, High: p, Low: p, Close: p, Volume: decimal.NewFromInt(2)},
		{OpenTime: 1704067200000, Open: p, High: p, Low: p, Close: p, Volume: decimal.NewFromInt(1)},
	})
}

func TestToRecords(t *testing.T) {
	records := ToRecords("binance", "BTC/USDT", "1h", table())

	require.Len(t, records, 2)
	assert.Equal(t, int64(1704067200000), records[0].OpenTime)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), records[0].StartTime)
	assert.Equal(t, "binance", records[1].Exchange)
	assert.Equal(t, "BTC/USDT", records[1].Symbol)
	assert.Equal(t, "1h", records[1].Timeframe)
	assert.True(t, records[1].Volume.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "ohlcvs", OhlcvRecord{}.TableName())
}

// KLINEDL_TEST_DSN を .env に書くと実 DB で走る
func TestStore(t *testing.T) {
	_ = godotenv.Load("../.env")
	dsn := os.Getenv("KLINEDL_TEST_DSN")
	if dsn == "" {
		t.Skip("KLINEDL_TEST_DSN not set")
	}
	h, err := database.NewSQLHandler(dsn)
	require.NoError(t, err)
	defer h.Close()

	repo := NewOhlcvRepository(h.Db)
	require.NoError(t, repo.Migrate())
	symbol := "TEST/" + time.Now().Format("150405.000")
	t.Cleanup(func() { h.Db.Where("symbol = ?", symbol).Delete(&OhlcvRecord{}) })

	require.NoError(t, repo.Store(context.Background(), "binance", symbol, "1h", table()))

	var count int64
	require.NoError(t, h.Db.Model(&OhlcvRecord{}).Where("symbol = ?", symbol).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// 同じ足をもう一度入れるとユニーク制約で失敗する
	assert.Error(t, repo.Store(context.Background(), "binance", symbol, "1h", table()))
}

func TestStoreEmpty(t *testing.T) {
	repo := NewOhlcvRepository(nil)
	assert.NoError(t, repo.Store(context.Background(), "binance", "BTC/USDT", "1h", domain.NewTable(nil)))
}
