package book

import (
	"regexp"
	"strings"
	"time"
)

// Book 图书实体(目录条目)
// 设计说明:
// 1. Book只描述书目信息,可借阅的实体是bookcopy.BookCopy
// 2. ISBN作为业务唯一标识(数据库层保证唯一性)
// 3. 流通引擎只依赖"图书是否存在"以及书名(用于结算失败提示)
type Book struct {
	ID        uint
	ISBN      string // ISBN号(国际标准书号)
	Title     string // 书名
	Author    string // 作者
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBook 创建新图书(工厂方法)
// 业务规则:
// - ISBN必须是10位或13位数字(允许"-"分隔)
// - 书名、作者不能为空
func NewBook(isbn, title, author string, now time.Time) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" || author == "" {
		return nil, ErrInvalidBookInfo
	}

	clean, ok := NormalizeISBN(isbn)
	if !ok {
		return nil, ErrInvalidISBN
	}

	return &Book{
		ISBN:      clean,
		Title:     title,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

var nonDigit = regexp.MustCompile(`[^0-9Xx]`)

// NormalizeISBN 去除分隔符并校验位数
// 简化实现:只检查位数(生产环境应校验校验位)
func NormalizeISBN(isbn string) (string, bool) {
	clean := strings.ToUpper(nonDigit.ReplaceAllString(isbn, ""))
	if len(clean) != 10 && len(clean) != 13 {
		return "", false
	}
	return clean, true
}
