package circulation

import (
	"time"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/config"
)

// Policy 流通规则
type Policy struct {
	MaxActiveLoans    int           // 同时借阅上限,0表示不限
	MaxRenewals       int           // 续借次数上限,0表示不限
	RenewalPeriod     time.Duration // 每次续借顺延的时长
	AllocationRetries int           // 乐观锁冲突后最多尝试的候选副本数
	SweepBatch        int           // 过期预约每批处理条数
}

// DefaultPolicy 默认规则
func DefaultPolicy() Policy {
	return Policy{
		MaxActiveLoans:    5,
		MaxRenewals:       2,
		RenewalPeriod:     7 * 24 * time.Hour,
		AllocationRetries: 3,
		SweepBatch:        100,
	}
}

// PolicyFromConfig 从配置构造规则
func PolicyFromConfig(cfg config.CirculationConfig) Policy {
	p := Policy{
		MaxActiveLoans:    cfg.MaxActiveLoans,
		MaxRenewals:       cfg.MaxRenewals,
		RenewalPeriod:     cfg.RenewalPeriod,
		AllocationRetries: cfg.AllocationRetries,
		SweepBatch:        cfg.ReservationSweepBatch,
	}
	return p.normalized()
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.RenewalPeriod <= 0 {
		p.RenewalPeriod = def.RenewalPeriod
	}
	if p.AllocationRetries < 1 {
		p.AllocationRetries = 1
	}
	if p.SweepBatch <= 0 {
		p.SweepBatch = def.SweepBatch
	}
	return p
}
