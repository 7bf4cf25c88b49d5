package store

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SiriusScan/redis-tools/internal/endpoint"
)

// goredisStore implements Store on top of a go-redis client
type goredisStore struct {
	client *goredis.Client
}

var _ Store = (*goredisStore)(nil)

func newGoRedisStore(cfg Config, ep endpoint.Endpoint) (Store, error) {
	username, password := credentials(cfg, ep)
	client := goredis.NewClient(&goredis.Options{
		Addr:         ep.Addr(),
		Username:     username,
		Password:     password,
		DB:           ep.DB,
		DialTimeout:  seconds(cfg.ConnectionTimeout),
		ReadTimeout:  seconds(cfg.OperationTimeout),
		WriteTimeout: seconds(cfg.OperationTimeout),
		PoolSize:     1,
	})
	return &goredisStore{client: client}, nil
}

// wrapGoRedis sorts errors into server replies and connection failures.
func wrapGoRedis(op string, err error) error {
	if err == nil {
		return nil
	}
	var replyErr goredis.Error
	if errors.As(err, &replyErr) {
		return &CommandError{Op: op, Err: err}
	}
	return &ConnectionError{Op: op, Err: err}
}

func (s *goredisStore) Type(ctx context.Context, key string) (Kind, error) {
	tag, err := s.client.Type(ctx, key).Result()
	if err != nil {
		return "", wrapGoRedis("TYPE", err)
	}
	return Kind(tag), nil
}

func (s *goredisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, wrapGoRedis("EXISTS", err)
	}
	return n > 0, nil
}

func (s *goredisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, wrapGoRedis("KEYS", err)
	}
	return keys, nil
}

func (s *goredisStore) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := s.client.Del(ctx, keys...).Result()
	return n, wrapGoRedis("DEL", err)
}

func (s *goredisStore) StrLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.StrLen(ctx, key).Result()
	return n, wrapGoRedis("STRLEN", err)
}

func (s *goredisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	return value, wrapGoRedis("GET", err)
}

func (s *goredisStore) Set(ctx context.Context, key, value string) error {
	return wrapGoRedis("SET", s.client.Set(ctx, key, value, 0).Err())
}

func (s *goredisStore) LLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.LLen(ctx, key).Result()
	return n, wrapGoRedis("LLEN", err)
}

func (s *goredisStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	values, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrapGoRedis("LRANGE", err)
	}
	return values, nil
}

func (s *goredisStore) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	n, err := s.client.RPush(ctx, key, toArgs(values)...).Result()
	return n, wrapGoRedis("RPUSH", err)
}

func (s *goredisStore) RPopBatch(ctx context.Context, key string, n int) error {
	cmds, err := s.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i := 0; i < n; i++ {
			pipe.RPop(ctx, key)
		}
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return wrapGoRedis("RPOP", err)
	}
	for _, cmd := range cmds {
		if err := cmd.Err(); err != nil && !errors.Is(err, goredis.Nil) {
			return wrapGoRedis("RPOP", err)
		}
	}
	return nil
}

func (s *goredisStore) HLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.HLen(ctx, key).Result()
	return n, wrapGoRedis("HLEN", err)
}

func (s *goredisStore) HScan(ctx context.Context, key string, cursor uint64, count int64) ([]FieldValue, uint64, error) {
	flat, next, err := s.client.HScan(ctx, key, cursor, "", count).Result()
	if err != nil {
		return nil, 0, wrapGoRedis("HSCAN", err)
	}
	fields := make([]FieldValue, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		fields = append(fields, FieldValue{Field: flat[i], Value: flat[i+1]})
	}
	return fields, next, nil
}

func (s *goredisStore) HSet(ctx context.Context, key string, fields []FieldValue) error {
	args := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Field, f.Value)
	}
	return wrapGoRedis("HSET", s.client.HSet(ctx, key, args...).Err())
}

func (s *goredisStore) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	n, err := s.client.HDel(ctx, key, fields...).Result()
	return n, wrapGoRedis("HDEL", err)
}

func (s *goredisStore) SCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.SCard(ctx, key).Result()
	return n, wrapGoRedis("SCARD", err)
}

func (s *goredisStore) SScan(ctx context.Context, key string, cursor uint64, count int64) ([]string, uint64, error) {
	members, next, err := s.client.SScan(ctx, key, cursor, "", count).Result()
	if err != nil {
		return nil, 0, wrapGoRedis("SSCAN", err)
	}
	return members, next, nil
}

func (s *goredisStore) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	n, err := s.client.SAdd(ctx, key, toArgs(members)...).Result()
	return n, wrapGoRedis("SADD", err)
}

func (s *goredisStore) SRem(ctx context.Context, key string, members ...string) (int64, error) {
	n, err := s.client.SRem(ctx, key, toArgs(members)...).Result()
	return n, wrapGoRedis("SREM", err)
}

func (s *goredisStore) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.ZCard(ctx, key).Result()
	return n, wrapGoRedis("ZCARD", err)
}

func (s *goredisStore) ZScan(ctx context.Context, key string, cursor uint64, count int64) ([]ScoredMember, uint64, error) {
	flat, next, err := s.client.ZScan(ctx, key, cursor, "", count).Result()
	if err != nil {
		return nil, 0, wrapGoRedis("ZSCAN", err)
	}
	members, err := scoredMembers(flat)
	if err != nil {
		return nil, 0, &CommandError{Op: "ZSCAN", Err: err}
	}
	return members, next, nil
}

func (s *goredisStore) ZAdd(ctx context.Context, key string, members []ScoredMember) error {
	zs := make([]goredis.Z, 0, len(members))
	for _, m := range members {
		zs = append(zs, goredis.Z{Score: m.Score, Member: m.Member})
	}
	return wrapGoRedis("ZADD", s.client.ZAdd(ctx, key, zs...).Err())
}

func (s *goredisStore) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error) {
	n, err := s.client.ZRemRangeByRank(ctx, key, start, stop).Result()
	return n, wrapGoRedis("ZREMRANGEBYRANK", err)
}

func (s *goredisStore) Ping(ctx context.Context) error {
	return wrapGoRedis("PING", s.client.Ping(ctx).Err())
}

// Close closes the go-redis client connection
func (s *goredisStore) Close() error {
	return s.client.Close()
}

func toArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
