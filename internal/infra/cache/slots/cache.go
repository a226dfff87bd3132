// Package slots кэширует вычисленные свободные слоты в Redis.
//
// Каждая пара (сотрудник, дата) имеет счетчик версии. Запись кэша сохраняется
// под версией, прочитанной до вычисления, и только если версия с тех пор не менялась.
// Любое изменение бронирований этой пары увеличивает версию, поэтому устаревшая
// запись никогда не читается. Счетчик живет дольше самой даты и не сбрасывается в 0,
// пока записи этой даты могут быть прочитаны.
package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Key ключ запроса слотов
type Key struct {
	ServiceID   int64
	StaffID     int64
	Day         time.Time
	StepMinutes int
}

type entry struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// KEYS[1] версия, ARGV[1] минимальное время жизни версии в мс. Срок жизни только продлевается.
var bumpVersionScript = redis.NewScript(`
local v = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < tonumber(ARGV[1]) then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return v
`)

// KEYS[1] версия, KEYS[2] запись. ARGV: ожидаемая версия, значение, ttl в мс.
var setEntryScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if not current then
	current = "0"
end
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// versionGrace сколько версия живет после окончания даты
const versionGrace = 48 * time.Hour

// Cache кэш слотов поверх Redis
type Cache struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// NewCache создает кэш
func NewCache(rdb redis.UniversalClient, ttl time.Duration, prefix string) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if prefix == "" {
		prefix = "slots"
	}
	return &Cache{rdb: rdb, ttl: ttl, prefix: prefix, now: time.Now}
}

// Ключи одной пары (сотрудник, дата) делят hash tag, чтобы скрипты работали в кластере
func (c *Cache) versionKey(staffID int64, day time.Time) string {
	return fmt.Sprintf("%s:{%d:%s}:ver", c.prefix, staffID, day.Format(domain.DateFormat))
}

func (c *Cache) entryKey(key Key, version int64) string {
	return fmt.Sprintf("%s:{%d:%s}:%d:%d:v%d",
		c.prefix, key.StaffID, key.Day.Format(domain.DateFormat), key.ServiceID, key.StepMinutes, version)
}

// versionLifetime время жизни версии: не меньше двух ttl записи и до конца даты с запасом
func (c *Cache) versionLifetime(day time.Time) time.Duration {
	y, m, d := day.Date()
	expiresAt := time.Date(y, m, d, 0, 0, 0, 0, day.Location()).AddDate(0, 0, 1).Add(versionGrace)
	lifetime := expiresAt.Sub(c.now()) + c.ttl
	if minimum := 2 * c.ttl; lifetime < minimum {
		return minimum
	}
	return lifetime
}

// Get возвращает закэшированные слоты и текущую версию пары (сотрудник, дата).
// Версию нужно передать в Set, если значения в кэше не оказалось.
func (c *Cache) Get(ctx context.Context, key Key) ([]domain.Slot, int64, bool, error) {
	version, err := c.rdb.Get(ctx, c.versionKey(key.StaffID, key.Day)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("%w: get version: %v", ErrCache, err)
	}

	raw, err := c.rdb.Get(ctx, c.entryKey(key, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, false, nil
	}
	if err != nil {
		return nil, version, false, fmt.Errorf("%w: get entry: %v", ErrCache, err)
	}

	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, version, false, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	result := make([]domain.Slot, 0, len(entries))
	for _, e := range entries {
		result = append(result, domain.Slot{Start: e.Start, End: e.End})
	}
	return result, version, true, nil
}

// Set сохраняет слоты под версией, полученной из Get.
// Если версия успела измениться, запись пропускается: слоты вычислены по старым данным.
func (c *Cache) Set(ctx context.Context, key Key, version int64, slots []domain.Slot) error {
	entries := make([]entry, 0, len(slots))
	for _, s := range slots {
		entries = append(entries, entry{Start: s.Start, End: s.End})
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrCache, err)
	}

	keys := []string{c.versionKey(key.StaffID, key.Day), c.entryKey(key, version)}
	args := []interface{}{strconv.FormatInt(version, 10), raw, c.ttl.Milliseconds()}
	if err := setEntryScript.Run(ctx, c.rdb, keys, args...).Err(); err != nil {
		return fmt.Errorf("%w: set entry: %v", ErrCache, err)
	}
	return nil
}

// Invalidate увеличивает версию пары (сотрудник, дата)
func (c *Cache) Invalidate(ctx context.Context, staffID int64, day time.Time) error {
	ttlMs := strconv.FormatInt(c.versionLifetime(day).Milliseconds(), 10)
	if err := bumpVersionScript.Run(ctx, c.rdb, []string{c.versionKey(staffID, day)}, ttlMs).Err(); err != nil {
		return fmt.Errorf("%w: bump version: %v", ErrCache, err)
	}
	return nil
}
