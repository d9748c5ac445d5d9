package repository

import "github.com/fyerfyer/integra-processual/internal/models"

// RunRepository 处理记录仓储接口
// 负责处理历史的存储和检索
type RunRepository interface {
	// Create 创建处理记录
	Create(run *models.ProcessRun) error

	// Update 更新处理记录
	Update(run *models.ProcessRun) error

	// GetByID 根据ID获取处理记录，包含文书统计
	GetByID(id string) (*models.ProcessRun, error)

	// List 列出处理记录，支持分页和筛选
	List(offset, limit int, filters map[string]interface{}) ([]*models.ProcessRun, int64, error)

	// Delete 删除处理记录及其文书统计
	Delete(id string) error

	// SaveDocuments 批量保存文书统计
	SaveDocuments(runID string, docs []*models.RunDocument) error

	// GetDocuments 获取处理记录的文书统计，按序号排列
	GetDocuments(runID string) ([]*models.RunDocument, error)
}
