package model

import (
	"mime/multipart"
)

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// Offset 当前页的偏移量
func (p *PaginationRequest) Offset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ProcessRequest PDF处理请求
type ProcessRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 上传的PDF
	Name string                `form:"name" binding:"omitempty"` // 输出目录名，默认取文件名
}

// RunListRequest 处理记录列表请求
type RunListRequest struct {
	PaginationRequest
	Status     string `form:"status" binding:"omitempty,oneof=processing completed failed"` // 状态过滤
	BatchID    string `form:"batch_id" binding:"omitempty"`                                 // 批次过滤
	SourceFile string `form:"source_file" binding:"omitempty"`                              // 源文件过滤
}

// RunRequest 单条处理记录请求
type RunRequest struct {
	ID string `uri:"id" binding:"required"` // 处理记录ID
}
