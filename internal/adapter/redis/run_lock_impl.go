package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/imagewatch/pkg/utils"
)

const runLockPrefix = "imagewatch:run-lock:"

// unlockScript deletes the key only if it still holds our token, so an expired lock
// taken over by another run is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLockImpl implements RunLock with SET NX PX.
type RunLockImpl struct {
	client *redis.Client
	key    string

	mu    sync.Mutex
	token string
}

// NewRunLock creates a lock scoped to one record store. Runs against the same store
// from any process share the lock.
func NewRunLock(client *redis.Client, scope string) *RunLockImpl {
	return &RunLockImpl{
		client: client,
		key:    runLockPrefix + utils.HashURL(scope),
	}
}

// Key returns the redis key the lock lives under.
func (l *RunLockImpl) Key() string {
	return l.key
}

func (l *RunLockImpl) TryLock(ctx context.Context, ttl time.Duration) (bool, error) {
	token, err := newToken()
	if err != nil {
		return false, err
	}

	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.token = token
	l.mu.Unlock()
	return true, nil
}

func (l *RunLockImpl) Unlock(ctx context.Context) error {
	l.mu.Lock()
	token := l.token
	l.token = ""
	l.mu.Unlock()

	if token == "" {
		return nil
	}
	if err := unlockScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
