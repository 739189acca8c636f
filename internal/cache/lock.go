package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLockScript 仅持有者可释放
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock 持有中的互斥锁，client 为 nil 表示单实例模式下的本地占位
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// TryLock SET NX 抢锁；未启用 Redis 时直接成功，多实例部署需开启 Redis
func TryLock(ctx context.Context, key string, ttl time.Duration) (*Lock, bool, error) {
	b := current()
	lock := &Lock{client: b.client, key: b.key(key), token: uuid.NewString()}
	if lock.client == nil {
		return lock, true, nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := lock.client.SetNX(ctx, lock.key, lock.token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	return lock, true, nil
}

func (l *Lock) Unlock(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	return releaseLockScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}

func (l *Lock) Key() string {
	if l == nil {
		return ""
	}
	return l.key
}
