package store

import (
	"context" // Request context
	"errors"  // Matching gorm.ErrRecordNotFound
	"fmt"     // Error wrapping

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Upsert clause
)

// Collection is the row holding one serialized slot
type Collection struct {
	Name      string `gorm:"primaryKey;size:64"`     // Slot key
	Payload   string `gorm:"type:longtext;not null"` // Serialized collection
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"`   // Last write in milliseconds
}

// Gorm keeps slots in the collections table
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open connection; run db.Migrate or AutoMigrate first
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Load(ctx context.Context, key string, dest any) (bool, error) {
	var row Collection // Row for the slot
	err := g.db.WithContext(ctx).Where("name = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil // Slot never written
	} else if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	return true, Decode([]byte(row.Payload), dest)
}

func (g *Gorm) Save(ctx context.Context, slots ...Slot) error {
	encoded, err := encodeAll(slots)
	if err != nil {
		return err
	}
	// Atomic multi-slot write
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, b := range encoded {
			row := Collection{Name: k, Payload: string(b)}
			// Insert or replace the blob
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("save %s: %w", k, err) // Return error to rollback
			}
		}
		return nil // Commit transaction
	})
}
