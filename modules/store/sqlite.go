package store

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/mini-network-chat/domain/chat"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// userRecord is the users table row.
type userRecord struct {
	Name      string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (userRecord) TableName() string { return "chat_users" }

// messageRecord is the messages table row. Ids come from counterRecord so
// they are never reused after trims and clears.
type messageRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Type      string `gorm:"not null"`
	Text      string `gorm:"not null"`
	Username  *string
	Timestamp time.Time `gorm:"not null"`
}

func (messageRecord) TableName() string { return "chat_messages" }

const messageCounter = "messages"

// counterRecord holds the last assigned id of a sequence.
type counterRecord struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

func (counterRecord) TableName() string { return "chat_counters" }

func (r messageRecord) toDomain() domain.Message {
	return domain.Message{
		ID:        r.ID,
		Type:      r.Type,
		Text:      r.Text,
		Timestamp: r.Timestamp.UTC(),
		Username:  r.Username,
	}
}

// SQLiteStore keeps chat state in a SQLite database through GORM.
type SQLiteStore struct {
	db *gorm.DB
}

var _ domain.Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Each SQLite connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&userRecord{}, &messageRecord{}, &counterRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AddUser(ctx context.Context, name string) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userRecord{Name: name})
	if err := result.Error; err != nil {
		return false, fmt.Errorf("failed to add user: %w", err)
	}
	return result.RowsAffected == 1, nil
}

func (s *SQLiteStore) RemoveUser(ctx context.Context, name string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", name).Delete(&userRecord{}).Error; err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).Model(&userRecord{}).
		Order("created_at, name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return names, nil
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	rec := messageRecord{
		Type:      msg.Type,
		Text:      msg.Text,
		Username:  msg.Username,
		Timestamp: msg.Timestamp,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, messageCounter)
		if err != nil {
			return err
		}
		rec.ID = id
		return tx.Create(&rec).Error
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to append message: %w", err)
	}
	msg.ID = rec.ID
	return msg, nil
}

// nextID increments the named counter and returns its new value.
func nextID(tx *gorm.DB, name string) (int64, error) {
	result := tx.Model(&counterRecord{}).Where("name = ?", name).
		Update("value", gorm.Expr("value + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		if err := tx.Create(&counterRecord{Name: name, Value: 1}).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var c counterRecord
	if err := tx.Where("name = ?", name).First(&c).Error; err != nil {
		return 0, err
	}
	return c.Value, nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context) ([]domain.Message, error) {
	return s.ListMessagesSince(ctx, 0)
}

func (s *SQLiteStore) ListMessagesSince(ctx context.Context, id int64) ([]domain.Message, error) {
	var recs []messageRecord
	if err := s.db.WithContext(ctx).Where("id > ?", id).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	msgs := make([]domain.Message, 0, len(recs))
	for _, r := range recs {
		msgs = append(msgs, r.toDomain())
	}
	return msgs, nil
}

func (s *SQLiteStore) TrimMessages(ctx context.Context, maxCount int) error {
	db := s.db.WithContext(ctx)
	if maxCount < 0 {
		maxCount = 0
	}
	newest := db.Model(&messageRecord{}).Select("id").Order("id DESC").Limit(maxCount)
	if err := db.Where("id NOT IN (?)", newest).Delete(&messageRecord{}).Error; err != nil {
		return fmt.Errorf("failed to trim messages: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&userRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&messageRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear messages: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
