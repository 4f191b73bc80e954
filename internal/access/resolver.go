package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cloud-ru/erp-finance-summary/internal/metrics"
)

const (
	keyPrefix = "access:modules:"
	// genPrefix хранит поколение кэша пользователя; Invalidate его увеличивает
	genPrefix = "access:gen:"
)

// errStale: пока шла загрузка, кэш пользователя был сброшен
var errStale = errors.New("access: generation changed")

// ErrNoUser возвращается, если идентификатор пользователя не передан
var ErrNoUser = errors.New("access: user id required")

// ModuleSource загружает разрешённые модули пользователя
type ModuleSource interface {
	Modules(ctx context.Context, userID string) ([]string, error)
}

// Resolver загружает набор модулей один раз за сессию и кэширует его в Redis.
// Параллельные запросы одного пользователя делят один запрос к upstream.
type Resolver struct {
	client *redis.Client
	source ModuleSource
	ttl    time.Duration
	log    *zap.Logger
	group  singleflight.Group
}

// NewResolver создаёт резолвер. С nil-клиентом кэш отключён.
func NewResolver(client *redis.Client, source ModuleSource, ttl time.Duration, log *zap.Logger) *Resolver {
	return &Resolver{client: client, source: source, ttl: ttl, log: log}
}

// Resolve возвращает контекст доступа пользователя
func (r *Resolver) Resolve(ctx context.Context, userID string) (*Context, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	if modules, ok := r.cached(ctx, userID); ok {
		return NewContext(userID, modules), nil
	}

	ch := r.group.DoChan(userID, func() (interface{}, error) {
		return r.load(context.WithoutCancel(ctx), userID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return NewContext(userID, res.Val.([]string)), nil
	}
}

// Invalidate сбрасывает кэш пользователя. Поколение увеличивается до удаления
// ключа, поэтому загрузка, начатая раньше, свой результат уже не запишет.
func (r *Resolver) Invalidate(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNoUser
	}
	defer r.group.Forget(userID)
	if r.client == nil {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genPrefix+userID)
		p.Expire(ctx, genPrefix+userID, r.ttl)
		p.Del(ctx, keyPrefix+userID)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("access: invalidate: %w", err)
	}
	return nil
}

func (r *Resolver) cached(ctx context.Context, userID string) ([]string, bool) {
	if r.client == nil {
		return nil, false
	}
	payload, err := r.client.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.AccessCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.AccessCache.WithLabelValues("error").Inc()
		r.log.Warn("access cache read failed", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	var modules []string
	if err := json.Unmarshal(payload, &modules); err != nil {
		metrics.AccessCache.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.AccessCache.WithLabelValues("hit").Inc()
	return modules, true
}

func (r *Resolver) load(ctx context.Context, userID string) ([]string, error) {
	gen, genOK := r.generation(ctx, userID)

	modules, err := r.source.Modules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access: load modules: %w", err)
	}
	if modules == nil {
		modules = []string{}
	}
	if genOK {
		if err := r.store(ctx, userID, gen, modules); err != nil {
			if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
				r.log.Debug("access cache write skipped", zap.String("user_id", userID))
			} else {
				r.log.Warn("access cache write failed", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}
	r.log.Debug("access modules loaded", zap.String("user_id", userID), zap.Int("modules", len(modules)))
	return modules, nil
}

// generation читает текущее поколение; false означает, что писать в кэш нельзя
func (r *Resolver) generation(ctx context.Context, userID string) (int64, bool) {
	if r.client == nil {
		return 0, false
	}
	gen, err := r.client.Get(ctx, genPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		r.log.Warn("access generation read failed", zap.String("user_id", userID), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// store пишет набор модулей, только если поколение не изменилось с начала загрузки
func (r *Resolver) store(ctx context.Context, userID string, gen int64, modules []string) error {
	raw, err := json.Marshal(modules)
	if err != nil {
		return err
	}
	genKey := genPrefix + userID
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, keyPrefix+userID, raw, r.ttl)
			return nil
		})
		return err
	}, genKey)
}
