package repository

import (
	"errors"
	"fmt"

	"github.com/fyerfyer/integra-processual/internal/database"
	"github.com/fyerfyer/integra-processual/internal/models"
	"gorm.io/gorm"
)

// runRepository 处理记录仓储实现
type runRepository struct {
	db *gorm.DB
}

// NewRunRepository 使用全局数据库连接创建仓储实例
func NewRunRepository() RunRepository {
	return &runRepository{db: database.MustDB()}
}

// NewRunRepositoryWithDB 使用指定的数据库连接创建仓储实例
func NewRunRepositoryWithDB(db *gorm.DB) RunRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &runRepository{db: db}
}

// Create 创建处理记录
func (r *runRepository) Create(run *models.ProcessRun) error {
	if run.ID == "" {
		return errors.New("run ID cannot be empty")
	}
	return r.db.Omit("Documents").Create(run).Error
}

// Update 更新处理记录
func (r *runRepository) Update(run *models.ProcessRun) error {
	if run.ID == "" {
		return errors.New("run ID cannot be empty")
	}
	return r.db.Omit("Documents").Save(run).Error
}

// GetByID 根据ID获取处理记录
func (r *runRepository) GetByID(id string) (*models.ProcessRun, error) {
	var run models.ProcessRun
	err := r.db.Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("number ASC")
	}).Where("id = ?", id).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrRunNotFound, id)
		}
		return nil, err
	}
	return &run, nil
}

// List 列出处理记录，按开始时间倒序
func (r *runRepository) List(offset, limit int, filters map[string]interface{}) ([]*models.ProcessRun, int64, error) {
	var runs []*models.ProcessRun
	var total int64

	query := r.db.Model(&models.ProcessRun{})

	if status, ok := filters["status"]; ok {
		if s := fmt.Sprintf("%v", status); s != "" {
			query = query.Where("status = ?", s)
		}
	}
	if batchID, ok := filters["batch_id"].(string); ok && batchID != "" {
		query = query.Where("batch_id = ?", batchID)
	}
	if source, ok := filters["source_file"].(string); ok && source != "" {
		query = query.Where("source_file LIKE ?", "%"+source+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}
	err := query.Order("started_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

// Delete 删除处理记录
func (r *runRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&models.RunDocument{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.ProcessRun{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", models.ErrRunNotFound, id)
		}
		return nil
	})
}

// SaveDocuments 批量保存文书统计
func (r *runRepository) SaveDocuments(runID string, docs []*models.RunDocument) error {
	if len(docs) == 0 {
		return nil
	}
	for _, d := range docs {
		d.RunID = runID
	}
	return r.db.CreateInBatches(docs, 100).Error
}

// GetDocuments 获取处理记录的文书统计
func (r *runRepository) GetDocuments(runID string) ([]*models.RunDocument, error) {
	var docs []*models.RunDocument
	err := r.db.Where("run_id = ?", runID).Order("number ASC").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
