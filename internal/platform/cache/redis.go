package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each entry in a hash with fields p (payload), v (version) and g (generation),
// plus one epoch counter per space. Conditional writes run as Lua scripts so the ticket and
// version checks are atomic with the write.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

var lookupScript = redis.NewScript(`
redis.call('SETNX', KEYS[2], '0')
local epoch = redis.call('GET', KEYS[2])
local vals = redis.call('HMGET', KEYS[1], 'p', 'v', 'g')
local present = 0
local payload = ''
if vals[1] then
  present = 1
  payload = vals[1]
end
return {present, payload, vals[2] or '0', vals[3] or '0', epoch}
`)

var fillScript = redis.NewScript(`
local epoch = redis.call('GET', KEYS[2]) or '0'
if epoch ~= ARGV[4] then
  return 0
end
local vals = redis.call('HMGET', KEYS[1], 'v', 'g')
local v = tonumber(vals[1] or '0')
local g = vals[2] or '0'
if g ~= ARGV[3] then
  return 0
end
if tonumber(ARGV[2]) < v then
  return 0
end
redis.call('HSET', KEYS[1], 'p', ARGV[1], 'v', ARGV[2], 'g', g)
return 1
`)

var putScript = redis.NewScript(`
local vals = redis.call('HMGET', KEYS[1], 'v', 'g')
local v = tonumber(vals[1] or '0')
local g = tonumber(vals[2] or '0')
if tonumber(ARGV[2]) < v then
  return 0
end
redis.call('HSET', KEYS[1], 'p', ARGV[1], 'v', ARGV[2], 'g', tostring(g + 1))
return 1
`)

var evictScript = redis.NewScript(`
local vals = redis.call('HMGET', KEYS[1], 'v', 'g')
local v = tonumber(vals[1] or '0')
local g = tonumber(vals[2] or '0')
local nv = tonumber(ARGV[1])
if nv < v then
  nv = v
end
redis.call('HDEL', KEYS[1], 'p')
redis.call('HSET', KEYS[1], 'v', tostring(nv), 'g', tostring(g + 1))
return 1
`)

// NewRedis connects and pings.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisFromClient(client, opts.Prefix), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "cardvault"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Lookup(ctx context.Context, space, key string) (Entry, Ticket, bool, error) {
	raw, err := lookupScript.Run(ctx, r.client, []string{r.entryKey(space, key), r.epochKey(space)}).Slice()
	if err != nil {
		return Entry{}, Ticket{}, false, fmt.Errorf("redis lookup %s/%s: %w", space, key, err)
	}
	if len(raw) != 5 {
		return Entry{}, Ticket{}, false, fmt.Errorf("redis lookup %s/%s: unexpected reply length %d", space, key, len(raw))
	}

	version, err := toInt64(raw[2])
	if err != nil {
		return Entry{}, Ticket{}, false, err
	}
	generation, err := toInt64(raw[3])
	if err != nil {
		return Entry{}, Ticket{}, false, err
	}
	epoch, err := toInt64(raw[4])
	if err != nil {
		return Entry{}, Ticket{}, false, err
	}
	ticket := Ticket{Generation: generation, Epoch: epoch}

	present, err := toInt64(raw[0])
	if err != nil {
		return Entry{}, Ticket{}, false, err
	}
	if present == 0 {
		return Entry{}, ticket, false, nil
	}
	payload, ok := raw[1].(string)
	if !ok {
		return Entry{}, Ticket{}, false, fmt.Errorf("redis lookup %s/%s: unexpected payload type %T", space, key, raw[1])
	}
	return Entry{Payload: []byte(payload), Version: version}, ticket, true, nil
}

func (r *Redis) Fill(ctx context.Context, space, key string, ticket Ticket, payload []byte, version int64) (bool, error) {
	applied, err := fillScript.Run(ctx, r.client,
		[]string{r.entryKey(space, key), r.epochKey(space)},
		string(payload), version, ticket.Generation, ticket.Epoch,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis fill %s/%s: %w", space, key, err)
	}
	return applied == 1, nil
}

func (r *Redis) Put(ctx context.Context, space, key string, payload []byte, version int64) (bool, error) {
	applied, err := putScript.Run(ctx, r.client, []string{r.entryKey(space, key)}, string(payload), version).Int64()
	if err != nil {
		return false, fmt.Errorf("redis put %s/%s: %w", space, key, err)
	}
	return applied == 1, nil
}

func (r *Redis) Evict(ctx context.Context, space, key string, version int64) error {
	if err := evictScript.Run(ctx, r.client, []string{r.entryKey(space, key)}, version).Err(); err != nil {
		return fmt.Errorf("redis evict %s/%s: %w", space, key, err)
	}
	return nil
}

// Clear bumps the epoch first so fills racing with the payload removal are rejected.
func (r *Redis) Clear(ctx context.Context, space string) error {
	if err := r.client.Incr(ctx, r.epochKey(space)).Err(); err != nil {
		return fmt.Errorf("redis clear %s: %w", space, err)
	}
	return r.dropPayloads(ctx, r.prefix+":"+space+":k:*")
}

// Flush bumps every epoch and drops every payload under the prefix. Lookup creates the
// epoch key of its space, so every outstanding ticket is invalidated.
func (r *Redis) Flush(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+":*:epoch", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Incr(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis flush: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis flush scan: %w", err)
	}
	return r.dropPayloads(ctx, r.prefix+":*:k:*")
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// dropPayloads removes the p field of every matching entry. The v and g fields stay
// behind as the version floor of the key.
func (r *Redis) dropPayloads(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)
	flush := func() error {
		_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, key := range batch {
				pipe.HDel(ctx, key, "p")
			}
			return nil
		})
		batch = batch[:0]
		if err != nil {
			return fmt.Errorf("redis drop payloads %s: %w", pattern, err)
		}
		return nil
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	if len(batch) > 0 {
		return flush()
	}
	return nil
}

func (r *Redis) entryKey(space, key string) string {
	return r.prefix + ":" + space + ":k:" + key
}

func (r *Redis) epochKey(space string) string {
	return r.prefix + ":" + space + ":epoch"
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("redis reply %q is not an integer", v)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("redis reply has unexpected type %T", value)
	}
}
