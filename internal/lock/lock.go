package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLocked = errors.New("已有排班任务正在进行，请稍后再试")

// 只有持有者才能释放锁，避免锁过期后误删别人的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GenerationLock 跨进程的排班互斥锁
// 数据库事务已经保证了同一个班次不会被重复分配，这个锁用来让多个 API 实例不去争抢同一批行锁
type GenerationLock struct {
	rdb        *redis.Client
	key        string
	expiration time.Duration
}

func NewGenerationLock(rdb *redis.Client, key string, expiration time.Duration) *GenerationLock {
	return &GenerationLock{
		rdb:        rdb,
		key:        key,
		expiration: expiration,
	}
}

// Acquire 尝试获取锁，成功时返回释放锁的函数，锁被占用时返回 ErrLocked
func (l *GenerationLock) Acquire(ctx context.Context) (func(ctx context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, l.key, token, l.expiration).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
	}
	return release, nil
}
