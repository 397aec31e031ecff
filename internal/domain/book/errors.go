package book

import (
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "ISBN号已存在")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrInvalidBookInfo 书名或作者为空
	ErrInvalidBookInfo = apperrors.New(apperrors.ErrCodeInvalidParams, "书名和作者不能为空")
)
