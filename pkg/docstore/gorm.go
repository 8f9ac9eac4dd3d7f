package docstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type documentRow struct {
	Path      string    `gorm:"column:path;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (documentRow) TableName() string {
	return "documents"
}

// GormStore persists documents in a single `documents` table, one row per
// path. Upserts are per-row; cross-path atomicity is intentionally not
// offered so the driver matches the Store contract.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore builds a store bound to the provided DB handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Put(ctx context.Context, path string, value []byte) error {
	row := documentRow{Path: path, Value: value, UpdatedAt: time.Now().UTC()}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

func (g *GormStore) Get(ctx context.Context, path string) ([]byte, error) {
	var row documentRow
	err := g.db.WithContext(ctx).
		Where("path = ?", path).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.Value, nil
}

func (g *GormStore) Delete(ctx context.Context, path string) error {
	return g.db.WithContext(ctx).
		Where("path = ?", path).
		Delete(&documentRow{}).Error
}

func (g *GormStore) ListPrefix(ctx context.Context, prefix string) ([]Document, error) {
	var rows []documentRow
	err := g.db.WithContext(ctx).
		Where(`path LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Order("path ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{Path: row.Path, Value: row.Value})
	}
	return docs, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
