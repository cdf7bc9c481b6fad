package ledgerstate

import (
	"errors"
	"fmt"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type stateRow struct {
	Key       string `gorm:"primaryKey;column:state_key"`
	Value     []byte `gorm:"column:state_value"`
	Version   int64  `gorm:"column:version"`
	UpdatedAt time.Time
}

func (stateRow) TableName() string { return "world_state" }

// SQLiteStore is a file-backed Store used by the seed/dev tooling to exercise
// the contracts without a running network. It is not the production state
// store; on a network the stub owns the world state.
type SQLiteStore struct {
	db *gorm.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&stateRow{}); err != nil {
		return nil, fmt.Errorf("automigrate world_state: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var row stateRow
	err := s.db.Where("state_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

func (s *SQLiteStore) Put(key string, value []byte) error {
	row := stateRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"state_value": value,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row).Error
}

func (s *SQLiteStore) Del(key string) error {
	return s.db.Where("state_key = ?", key).Delete(&stateRow{}).Error
}

func (s *SQLiteStore) Range(prefix string) ([]KV, error) {
	var rows []stateRow
	if err := s.db.Where("state_key LIKE ?", prefix+"%").Order("state_key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]KV, 0, len(rows))
	for _, r := range rows {
		out = append(out, KV{Key: r.Key, Value: r.Value})
	}
	return out, nil
}
