package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type priceModel struct {
	Symbol        string         `gorm:"column:symbol;primaryKey"`
	Price         float64        `gorm:"column:price"`
	Venues        datatypes.JSON `gorm:"column:venues;type:TEXT"`
	UpdatedAtUnix int64          `gorm:"column:updated_at"`
}

func (priceModel) TableName() string { return "price_snapshot" }

// SQLiteStore keeps only the current snapshot; Save replaces the whole table
// in one transaction.
type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("snapshot database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return NewSQLiteStoreFromDB(db)
}

func NewSQLiteStoreFromDB(db *gorm.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	if err := db.AutoMigrate(&priceModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	var rows []priceModel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	snap := Snapshot{
		Prices: make(map[string]float64, len(rows)),
		Venues: make(map[string][]string, len(rows)),
	}
	var newest int64
	for _, row := range rows {
		if row.Price <= 0 {
			continue
		}
		snap.Prices[row.Symbol] = row.Price
		if len(row.Venues) > 0 {
			var venues []string
			if err := json.Unmarshal(row.Venues, &venues); err == nil {
				snap.Venues[row.Symbol] = venues
			}
		}
		if row.UpdatedAtUnix > newest {
			newest = row.UpdatedAtUnix
		}
	}
	if newest > 0 {
		snap.UpdatedAt = time.Unix(newest, 0)
	}
	return snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	ts := snap.UpdatedAt.Unix()
	rows := make([]priceModel, 0, len(snap.Prices))
	for sym, price := range snap.Prices {
		venues, err := json.Marshal(snap.Venues[sym])
		if err != nil {
			return err
		}
		rows = append(rows, priceModel{
			Symbol:        sym,
			Price:         price,
			Venues:        datatypes.JSON(venues),
			UpdatedAtUnix: ts,
		})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&priceModel{}).Error; err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
