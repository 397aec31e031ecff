package cart

import "time"

// Item 书篮条目
// 同一读者同一本书只能出现一次
type Item struct {
	ID        uint
	UserID    uint
	BookID    uint
	CreatedAt time.Time

	// 查询时填充
	BookTitle  string
	BookAuthor string
}
