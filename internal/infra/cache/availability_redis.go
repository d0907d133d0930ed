package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// AvailabilityRedis stores resolved slot lists in one hash per barber and
// day, with one field per requested duration. Redis errors are logged and
// treated as misses.
//
// Each barber/day has a generation counter bumped by Invalidate and the whole
// cache has an epoch bumped by InvalidateAll. Entries carry the epoch they
// were resolved under, and writes are refused once the generation moved.
type AvailabilityRedis struct {
	rdb     *redis.Client
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
}

const (
	epochKey = "availability:epoch"
	// generations must outlive every entry written under them
	genTTL = 48 * time.Hour
)

// KEYS: epoch, generation, entry hash. ARGV: epoch, generation, field,
// payload, ttl in ms.
var setIfCurrentScript = redis.NewScript(`
local epoch = redis.call("GET", KEYS[1]) or "0"
local gen = redis.call("GET", KEYS[2]) or "0"
if epoch ~= ARGV[1] or gen ~= ARGV[2] then
  return 0
end
redis.call("HSET", KEYS[3], ARGV[3], ARGV[4])
redis.call("PEXPIRE", KEYS[3], ARGV[5])
return 1
`)

type entry struct {
	Epoch string              `json:"epoch"`
	Slots []availability.Slot `json:"slots"`
}

func NewAvailabilityRedis(rdb *redis.Client, ttl time.Duration, log *slog.Logger, m *metrics.Metrics) *AvailabilityRedis {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &AvailabilityRedis{rdb: rdb, ttl: ttl, log: log, metrics: m}
}

func key(barberID uuid.UUID, day timezone.Day) string {
	return "availability:" + barberID.String() + ":" + day.String()
}

func genKey(barberID uuid.UUID, day timezone.Day) string {
	return key(barberID, day) + ":gen"
}

func (c *AvailabilityRedis) Get(ctx context.Context, barberID uuid.UUID, day timezone.Day, duration int) ([]availability.Slot, string, bool) {
	var (
		versions *redis.SliceCmd
		field    *redis.StringCmd
	)
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		versions = p.MGet(ctx, epochKey, genKey(barberID, day))
		field = p.HGet(ctx, key(barberID, day), strconv.Itoa(duration))
		return nil
	})
	if err != nil && err != redis.Nil {
		c.log.Warn("availability cache get failed", "err", err)
		c.observe("error")
		return nil, "", false
	}

	vals := versions.Val()
	epoch, gen := counter(vals[0]), counter(vals[1])
	version := epoch + ":" + gen

	raw, err := field.Bytes()
	if err == redis.Nil {
		c.observe("miss")
		return nil, version, false
	}
	if err != nil {
		c.log.Warn("availability cache get failed", "err", err)
		c.observe("error")
		return nil, "", false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.Warn("availability cache entry corrupt", "err", err)
		c.observe("error")
		return nil, version, false
	}
	if e.Epoch != epoch {
		c.observe("miss")
		return nil, version, false
	}
	c.observe("hit")
	return e.Slots, version, true
}

func (c *AvailabilityRedis) Set(ctx context.Context, barberID uuid.UUID, day timezone.Day, duration int, version string, slots []availability.Slot) {
	epoch, gen, ok := strings.Cut(version, ":")
	if !ok {
		return
	}
	raw, err := json.Marshal(entry{Epoch: epoch, Slots: slots})
	if err != nil {
		return
	}

	keys := []string{epochKey, genKey(barberID, day), key(barberID, day)}
	stored, err := setIfCurrentScript.Run(ctx, c.rdb, keys, epoch, gen, strconv.Itoa(duration), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.Warn("availability cache set failed", "err", err)
		return
	}
	if stored == 0 {
		c.log.Debug("availability cache set skipped, entry invalidated meanwhile", "barber_id", barberID, "day", day.String())
	}
}

func (c *AvailabilityRedis) Invalidate(ctx context.Context, barberID uuid.UUID, day timezone.Day) {
	gk := genKey(barberID, day)
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, gk)
		p.Expire(ctx, gk, genTTL)
		p.Del(ctx, key(barberID, day))
		return nil
	})
	if err != nil {
		c.log.Warn("availability cache invalidate failed", "err", err)
	}
}

func (c *AvailabilityRedis) InvalidateAll(ctx context.Context) {
	if err := c.rdb.Incr(ctx, epochKey).Err(); err != nil {
		c.log.Warn("availability cache flush failed", "err", err)
	}
}

func counter(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "0"
}

func (c *AvailabilityRedis) observe(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
