package models

import "errors"

var (
	// ErrInputNotFound 输入的PDF文件不存在
	ErrInputNotFound = errors.New("input file not found")

	// ErrExtractionFailed PDF无法读取或解析
	ErrExtractionFailed = errors.New("pdf extraction failed")

	// ErrRunNotFound 处理记录不存在
	ErrRunNotFound = errors.New("processing run not found")
)
