package mysql

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 把一组仓储调用放进同一个数据库事务
//
// 事务句柄挂在ctx上向下传,仓储统一通过dbFromContext取连接,
// 所以用例层只需要把ctx原样传给仓储。嵌套调用复用外层事务,
// 由最外层的fn返回值决定COMMIT或ROLLBACK。
//
//	err := tx.Transaction(ctx, func(ctx context.Context) error {
//	    c, err := copies.FindAllocatable(ctx, bookID, userID, nil) // FOR UPDATE SKIP LOCKED
//	    if err != nil {
//	        return err
//	    }
//	    if err := copies.CompareAndSetStatus(ctx, c.ID, c.Version, bookcopy.StatusLoaned); err != nil {
//	        return err
//	    }
//	    return loans.Create(ctx, l)
//	})
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}

// inTx 行锁(FOR UPDATE)只在事务里有意义,事务外的查询跳过加锁
func inTx(ctx context.Context) bool {
	_, ok := txFrom(ctx)
	return ok
}

// dbFromContext 有事务用事务,没有就用连接池
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := txFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
