package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/fantribe/fantribe/app/models"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create creates a new moderation report
func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

// GetByID retrieves a report by its ID
func (r *reportRepository) GetByID(id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.Preload("Reporter").Preload("ResolvedBy").First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListOpen lists open reports, oldest first so the queue is worked in order
func (r *reportRepository) ListOpen(offset, limit int) ([]models.Report, error) {
	return r.ListByStatus(models.ReportStatusOpen, offset, limit)
}

// ListByStatus lists reports by status with pagination
func (r *reportRepository) ListByStatus(status string, offset, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Preload("Reporter").Where("status = ?", status).
		Order("created_at ASC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, err
}

// Resolve closes a report as resolved or dismissed
func (r *reportRepository) Resolve(id uint, resolverID uint, status string) error {
	now := time.Now()
	return r.db.Model(&models.Report{}).Where("id = ?", id).Updates(map[string]any{
		"status":         status,
		"resolved_by_id": resolverID,
		"resolved_at":    now,
	}).Error
}

// CountOpen returns the number of open reports
func (r *reportRepository) CountOpen() (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).
		Where("status = ?", models.ReportStatusOpen).Count(&count).Error
	return count, err
}
