// Package cache keeps JSON snapshots of owner menus in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"salonmenu/internal/logger"
	"salonmenu/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix = "menu:"
	genSuffix = ":gen"
)

// NoGeneration — поколение неизвестно (кэш выключен или redis недоступен); Set с ним ничего не пишет.
const NoGeneration int64 = -1

// MenuCache — кэш снимков меню. С nil-клиентом выключен: всегда промах, запись no-op.
// Ошибки redis только логируются.
//
// Рядом со снимком хранится счётчик поколений владельца. Invalidate увеличивает его,
// а Set пишет снимок только если счётчик не менялся с момента чтения.
type MenuCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMenuCache(client *redis.Client, ttl time.Duration) *MenuCache {
	return &MenuCache{client: client, ttl: ttl}
}

// NewRedisClient подключается к redis и проверяет соединение.
// Пустой addr или недоступный сервер дают nil: кэш отключается.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.Warn("redis недоступен, кэш меню отключён", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

func Key(ownerID uuid.UUID) string { return keyPrefix + ownerID.String() }

// GenKey — ключ счётчика поколений владельца.
func GenKey(ownerID uuid.UUID) string { return Key(ownerID) + genSuffix }

func (c *MenuCache) Enabled() bool { return c != nil && c.client != nil }

// Get возвращает снимок и текущее поколение. При промахе поколение нужно
// передать в Set вместе со свежепрочитанным меню.
func (c *MenuCache) Get(ctx context.Context, ownerID uuid.UUID) (*models.Menu, int64, bool) {
	if !c.Enabled() {
		return nil, NoGeneration, false
	}
	vals, err := c.client.MGet(ctx, Key(ownerID), GenKey(ownerID)).Result()
	if err != nil {
		logger.WithCtx(ctx).Warn("Ошибка чтения кэша меню", zap.Error(err))
		return nil, NoGeneration, false
	}
	gen, err := parseGen(vals[1])
	if err != nil {
		logger.WithCtx(ctx).Warn("Повреждённый счётчик поколений кэша", zap.Error(err))
		return nil, NoGeneration, false
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false
	}
	var menu models.Menu
	if err := json.Unmarshal([]byte(raw), &menu); err != nil {
		logger.WithCtx(ctx).Warn("Повреждённый снимок меню в кэше", zap.Error(err))
		return nil, gen, false
	}
	return &menu, gen, true
}

// Set сохраняет снимок, если поколение владельца всё ещё равно gen.
// Иначе меню успело измениться после чтения, и снимок отбрасывается.
func (c *MenuCache) Set(ctx context.Context, ownerID uuid.UUID, gen int64, menu *models.Menu) {
	if !c.Enabled() || gen == NoGeneration {
		return
	}
	raw, err := json.Marshal(menu)
	if err != nil {
		logger.WithCtx(ctx).Warn("Не удалось сериализовать меню для кэша", zap.Error(err))
		return
	}

	genKey := GenKey(ownerID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		now, err := parseGen(cur)
		if err != nil {
			return err
		}
		if now != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(ownerID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		logger.WithCtx(ctx).Debug("Снимок меню устарел, в кэш не записан")
	default:
		logger.WithCtx(ctx).Warn("Ошибка записи кэша меню", zap.Error(err))
	}
}

// Invalidate увеличивает поколение и удаляет снимок одной транзакцией.
func (c *MenuCache) Invalidate(ctx context.Context, ownerID uuid.UUID) {
	if !c.Enabled() {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenKey(ownerID))
		pipe.Del(ctx, Key(ownerID))
		return nil
	})
	if err != nil {
		logger.WithCtx(ctx).Warn("Ошибка сброса кэша меню", zap.Error(err))
	}
}

var errStaleGeneration = errors.New("stale menu generation")

// parseGen: отсутствующий счётчик — поколение 0.
func parseGen(v interface{}) (int64, error) {
	switch s := v.(type) {
	case nil:
		return 0, nil
	case string:
		if s == "" {
			return 0, nil
		}
		return strconv.ParseInt(s, 10, 64)
	default:
		return 0, errors.New("unexpected generation value")
	}
}
