package mysql

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. TranslateError让唯一索引冲突统一变成gorm.ErrDuplicatedKey
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), GormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("数据库连接成功")

	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// GormConfig 生产和测试共用的GORM配置
// 所有时间统一使用UTC
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// AutoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&BookCopyModel{},
		&LoanModel{},
		&ReservationModel{},
		&CartItemModel{},
	)
}

// BookModel GORM图书模型
// 设计说明:
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/book/entity.go是领域实体，不依赖GORM
type BookModel struct {
	ID        uint      `gorm:"primaryKey"`
	ISBN      string    `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title     string    `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author    string    `gorm:"index:idx_search;size:100;not null;comment:作者"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// BookCopyModel GORM副本模型
// 教学要点:
// 1. (book_id, copy_number)联合唯一
// 2. version是乐观锁版本号,每次状态变更+1
// 3. condition是MySQL保留字,列名改为copy_condition
type BookCopyModel struct {
	ID         uint      `gorm:"primaryKey"`
	BookID     uint      `gorm:"uniqueIndex:uk_book_copy_number,priority:1;not null;comment:图书ID"`
	CopyNumber int       `gorm:"uniqueIndex:uk_book_copy_number,priority:2;not null;comment:副本编号"`
	Status     string    `gorm:"index;size:16;not null;default:AVAILABLE;comment:流通状态"`
	Condition  string    `gorm:"column:copy_condition;size:16;not null;default:GOOD;comment:品相"`
	Version    int       `gorm:"not null;default:1;comment:乐观锁版本号"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookCopyModel) TableName() string {
	return "book_copies"
}

// LoanModel GORM借阅模型
// 教学要点:
// 1. active_copy_id在ACTIVE期间等于book_copy_id,归还后置NULL
// 2. 唯一索引允许多个NULL,因此"一个副本最多一条ACTIVE借阅"由数据库保证
type LoanModel struct {
	ID           uint       `gorm:"primaryKey"`
	UserID       uint       `gorm:"index;not null;comment:借阅人ID"`
	BookCopyID   uint       `gorm:"index;not null;comment:副本ID"`
	ActiveCopyID *uint      `gorm:"uniqueIndex;comment:借阅中的副本ID(归还后为NULL)"`
	BorrowedAt   time.Time  `gorm:"index;not null;comment:借出时间"`
	DueAt        time.Time  `gorm:"not null;comment:应还时间"`
	ReturnedAt   *time.Time `gorm:"comment:归还时间"`
	Status       string     `gorm:"index;size:16;not null;comment:借阅状态"`
	Renewals     int        `gorm:"not null;default:0;comment:续借次数"`
}

// TableName 指定表名
func (LoanModel) TableName() string {
	return "loans"
}

// ReservationModel GORM预约模型
// active_copy_id与LoanModel相同,保证一个副本最多一条ACTIVE预约
type ReservationModel struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"index;not null;comment:预约人ID"`
	BookCopyID   uint      `gorm:"index;not null;comment:副本ID"`
	ActiveCopyID *uint     `gorm:"uniqueIndex;comment:预约中的副本ID(结束后为NULL)"`
	ReservedAt   time.Time `gorm:"not null;comment:预约时间"`
	DueAt        time.Time `gorm:"index;not null;comment:保留期限"`
	Status       string    `gorm:"index;size:16;not null;comment:预约状态"`
}

// TableName 指定表名
func (ReservationModel) TableName() string {
	return "reservations"
}

// CartItemModel GORM书篮模型
type CartItemModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:uk_cart_user_book,priority:1;not null;comment:读者ID"`
	BookID    uint      `gorm:"uniqueIndex:uk_cart_user_book,priority:2;not null;comment:图书ID"`
	CreatedAt time.Time `gorm:"comment:加入时间"`
}

// TableName 指定表名
func (CartItemModel) TableName() string {
	return "cart_items"
}
