package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RunStatus 处理记录状态
type RunStatus string

const (
	// RunStatusProcessing 处理中
	RunStatusProcessing RunStatus = "processing"
	// RunStatusCompleted 处理完成
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed 处理失败
	RunStatusFailed RunStatus = "failed"
)

// ProcessRun 单次PDF处理记录
type ProcessRun struct {
	ID                string         `gorm:"primaryKey"`         // 记录ID
	BatchID           string         `gorm:"size:50;index"`      // 所属批次ID，单独处理时为空
	SourceFile        string         `gorm:"not null"`           // 源文件
	Engine            string         `gorm:"size:20"`            // 提取引擎
	Status            RunStatus      `gorm:"not null;index"`     // 状态
	TotalPages        int            `gorm:"not null;default:0"` // 页数
	TotalDocuments    int            `gorm:"not null;default:0"` // 文书数
	TotalLinesRemoved int            `gorm:"not null;default:0"` // 移除行数
	JudicialSystem    string         `gorm:"size:30"`            // 识别出的系统
	OutputDir         string         `gorm:"type:varchar(512)"`  // 输出目录
	Error             string         `gorm:"type:text"`          // 错误信息
	DurationMs        int64          `gorm:"not null;default:0"` // 耗时（毫秒）
	Summary           datatypes.JSON `gorm:"type:json"`          // 元数据，JSON格式
	StartedAt         time.Time      `gorm:"not null;index"`     // 开始时间
	FinishedAt        *time.Time     `gorm:"index"`              // 结束时间
	UpdatedAt         time.Time      `gorm:"not null"`           // 更新时间
	Documents         []RunDocument  `gorm:"foreignKey:RunID"`   // 文书统计
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (r *ProcessRun) BeforeCreate(tx *gorm.DB) (err error) {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	r.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (r *ProcessRun) BeforeUpdate(tx *gorm.DB) (err error) {
	r.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (ProcessRun) TableName() string {
	return "process_runs"
}

// RunDocument 处理记录中的单个文书统计
type RunDocument struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"` // 主键ID
	RunID        string    `gorm:"not null;index"`           // 所属处理记录
	Number       int       `gorm:"not null"`                 // 文书序号
	Type         string    `gorm:"size:30;not null"`         // 文书类型
	Lines        int       `gorm:"not null"`                 // 原始行数
	Chars        int       `gorm:"not null"`                 // 原始字符数
	RemovedLines int       `gorm:"not null"`                 // 移除行数
	CreatedAt    time.Time `gorm:"not null"`                 // 创建时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (d *RunDocument) BeforeCreate(tx *gorm.DB) (err error) {
	d.CreatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (RunDocument) TableName() string {
	return "run_documents"
}
