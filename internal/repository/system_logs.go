package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sghss/sghss-api/internal/models"
)

const logBatchSize = 50

// SystemLogs persists ERROR-level log records written by logging.PGHandler.
type SystemLogs struct {
	db *gorm.DB
}

func NewSystemLogs(db *gorm.DB) *SystemLogs {
	return &SystemLogs{db: db}
}

func (r *SystemLogs) Insert(ctx context.Context, logs []models.SystemLog) error {
	if len(logs) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(logs, logBatchSize).Error)
}

// DeleteBefore removes records older than cutoff and reports how many went.
func (r *SystemLogs) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return res.RowsAffected, translate(res.Error)
}
