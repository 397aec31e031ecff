package cart

import (
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

var (
	// ErrItemNotFound 书篮中没有该图书
	ErrItemNotFound = apperrors.New(apperrors.ErrCodeCartItemNotFound, "书篮中没有该图书")

	// ErrDuplicateItem 图书已在书篮中
	ErrDuplicateItem = apperrors.NewReason(apperrors.ErrCodeDuplicateCartItem, apperrors.ReasonDuplicateCartItem, "图书已在书篮中")

	// ErrEmptyCart 书篮为空
	ErrEmptyCart = apperrors.NewReason(apperrors.ErrCodeEmptyCart, apperrors.ReasonEmptyCart, "书篮为空")
)
