package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/prasetyowira/qrlink/constant"
	"github.com/prasetyowira/qrlink/domain/shortener"
	appLogger "github.com/prasetyowira/qrlink/infrastructure/logger"
)

// ErrLinkNotFound is returned when no link exists for a long URL
var ErrLinkNotFound = shortener.ErrLinkNotFound

// SQLiteRepository implements shortener.Repository interface
type SQLiteRepository struct {
	db *gorm.DB
}

// LinkModel is the GORM model for a shortened link
type LinkModel struct {
	ID        uint   `gorm:"primaryKey"`
	LongURL   string `gorm:"uniqueIndex;not null"`
	ShortURL  string `gorm:"not null"`
	Requests  uint   `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (m LinkModel) toLink() *shortener.Link {
	return &shortener.Link{
		ID:        m.ID,
		LongURL:   m.LongURL,
		ShortURL:  m.ShortURL,
		Requests:  m.Requests,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// GormLogger implements GORM's logger.Interface
type GormLogger struct{}

// LogMode implements the log.Interface method
func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	return l
}

// Info logs info messages
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxInfo(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Warn logs warn messages
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxWarn(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Error logs error messages
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxError(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Error: &appLogger.CustomError{
			Code:    constant.ErrCodeDBGeneral,
			Message: msg,
			Type:    constant.ErrTypeDB,
		},
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Trace logs SQL operations
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	// A miss on First is an expected lookup result, not a failure
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		appLogger.CtxError(ctx, "SQL error", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBGeneral,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataElapsed: elapsed.String(),
				constant.DataRows:    rows,
				constant.DataSQL:     sql,
			},
		})
		return
	}

	appLogger.CtxDebug(ctx, "SQL query", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataElapsed: elapsed.String(),
			constant.DataRows:    rows,
			constant.DataSQL:     sql,
		},
	})
}

// NewSQLiteRepository opens (creating if needed) the link history database
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	ctx := context.Background()

	appLogger.CtxDebug(ctx, "Opening SQLite database", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: &GormLogger{},
	})
	if err != nil {
		appLogger.CtxError(ctx, "Failed to open database", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBOpen,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataPath: dbPath,
			},
		})
		return nil, err
	}

	if err := db.AutoMigrate(&LinkModel{}); err != nil {
		appLogger.CtxError(ctx, "Failed to migrate database schema", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBMigrate,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return nil, err
	}

	appLogger.CtxInfo(ctx, "Database initialized successfully", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	return &SQLiteRepository{db: db}, nil
}

// Record stores link, or bumps the request count and refreshes the short
// URL when the long URL was shortened before. ID, Requests and the
// timestamps on link are filled from the stored row.
func (r *SQLiteRepository) Record(ctx context.Context, link *shortener.Link) error {
	var model LinkModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("long_url = ?", link.LongURL).First(&model).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = LinkModel{
				LongURL:  link.LongURL,
				ShortURL: link.ShortURL,
				Requests: 1,
			}
			if err := tx.Create(&model).Error; err != nil {
				appLogger.CtxError(ctx, "Failed to insert link", appLogger.LoggerInfo{
					ContextFunction: constant.CtxRecord,
					Error: &appLogger.CustomError{
						Code:    constant.ErrCodeDBInsert,
						Message: err.Error(),
						Type:    constant.ErrTypeDB,
					},
					Data: map[string]interface{}{
						constant.DataLongURL: link.LongURL,
					},
				})
				return err
			}
			return nil
		case err != nil:
			appLogger.CtxError(ctx, "Database error while looking up link", appLogger.LoggerInfo{
				ContextFunction: constant.CtxRecord,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeDBLookup,
					Message: err.Error(),
					Type:    constant.ErrTypeDB,
				},
				Data: map[string]interface{}{
					constant.DataLongURL: link.LongURL,
				},
			})
			return err
		}

		result := tx.Model(&model).UpdateColumns(map[string]interface{}{
			"short_url":  link.ShortURL,
			"requests":   gorm.Expr("requests + 1"),
			"updated_at": time.Now(),
		})
		if result.Error != nil {
			appLogger.CtxError(ctx, "Failed to update link", appLogger.LoggerInfo{
				ContextFunction: constant.CtxRecord,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeDBUpdate,
					Message: result.Error.Error(),
					Type:    constant.ErrTypeDB,
				},
				Data: map[string]interface{}{
					constant.DataLongURL: link.LongURL,
				},
			})
			return result.Error
		}

		// Re-read so Requests reflects the SQL-side increment
		return tx.First(&model, model.ID).Error
	})
	if err != nil {
		return err
	}

	*link = *model.toLink()

	appLogger.CtxDebug(ctx, "Link recorded", appLogger.LoggerInfo{
		ContextFunction: constant.CtxRecord,
		Data: map[string]interface{}{
			constant.DataLongURL:  link.LongURL,
			constant.DataShortURL: link.ShortURL,
			constant.DataRequests: link.Requests,
		},
	})

	return nil
}

// FindByLongURL retrieves the link recorded for longURL
func (r *SQLiteRepository) FindByLongURL(ctx context.Context, longURL string) (*shortener.Link, error) {
	var model LinkModel

	err := r.db.WithContext(ctx).Where("long_url = ?", longURL).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		appLogger.CtxDebug(ctx, "Link not found", appLogger.LoggerInfo{
			ContextFunction: constant.CtxFindByLongURL,
			Data: map[string]interface{}{
				constant.DataLongURL: longURL,
			},
		})
		return nil, ErrLinkNotFound
	}
	if err != nil {
		appLogger.CtxError(ctx, "Database error while looking up link", appLogger.LoggerInfo{
			ContextFunction: constant.CtxFindByLongURL,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBLookup,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataLongURL: longURL,
			},
		})
		return nil, err
	}

	return model.toLink(), nil
}

// ListRecent returns up to limit links, most recently requested first
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]*shortener.Link, error) {
	var models []LinkModel

	err := r.db.WithContext(ctx).Order("updated_at DESC").Order("id DESC").Limit(limit).Find(&models).Error
	if err != nil {
		appLogger.CtxError(ctx, "Failed to list links", appLogger.LoggerInfo{
			ContextFunction: constant.CtxListRecent,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBList,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataLimit: limit,
			},
		})
		return nil, err
	}

	links := make([]*shortener.Link, 0, len(models))
	for _, m := range models {
		links = append(links, m.toLink())
	}
	return links, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	ctx := context.Background()
	sqlDB, err := r.db.DB()
	if err != nil {
		appLogger.CtxError(ctx, "Failed to get database connection", appLogger.LoggerInfo{
			ContextFunction: constant.CtxClose,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBClose,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return err
	}

	appLogger.CtxInfo(ctx, "Closing database connection", appLogger.LoggerInfo{
		ContextFunction: constant.CtxClose,
	})

	return sqlDB.Close()
}
