package store

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/SiriusScan/redis-tools/internal/endpoint"
)

// valkeyStore implements Store on top of a valkey-go client
type valkeyStore struct {
	client valkey.Client
}

var _ Store = (*valkeyStore)(nil)

func newValkeyStore(cfg Config, ep endpoint.Endpoint) (Store, error) {
	username, password := credentials(cfg, ep)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{ep.Addr()},
		Username:          username,
		Password:          password,
		SelectDB:          ep.DB,
		DisableCache:      true,
		ForceSingleClient: true,
		Dialer:            net.Dialer{Timeout: seconds(cfg.ConnectionTimeout)},
		ConnWriteTimeout:  seconds(cfg.OperationTimeout),
	})
	if err != nil {
		return nil, &ConnectionError{Op: "CONNECT " + ep.URI(), Err: err}
	}
	return &valkeyStore{client: client}, nil
}

// wrapValkey sorts errors into server replies and connection failures.
func wrapValkey(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := valkey.IsValkeyErr(err); ok {
		return &CommandError{Op: op, Err: err}
	}
	return &ConnectionError{Op: op, Err: err}
}

func (s *valkeyStore) Type(ctx context.Context, key string) (Kind, error) {
	tag, err := s.client.Do(ctx, s.client.B().Type().Key(key).Build()).ToString()
	if err != nil {
		return "", wrapValkey("TYPE", err)
	}
	return Kind(tag), nil
}

func (s *valkeyStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Do(ctx, s.client.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, wrapValkey("EXISTS", err)
	}
	return n > 0, nil
}

func (s *valkeyStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := s.client.Do(ctx, s.client.B().Keys().Pattern(pattern).Build()).AsStrSlice()
	if err != nil {
		return nil, wrapValkey("KEYS", err)
	}
	return keys, nil
}

func (s *valkeyStore) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Del().Key(keys...).Build()).AsInt64()
	return n, wrapValkey("DEL", err)
}

func (s *valkeyStore) StrLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Strlen().Key(key).Build()).AsInt64()
	return n, wrapValkey("STRLEN", err)
}

func (s *valkeyStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", ErrNotFound
	}
	return value, wrapValkey("GET", err)
}

func (s *valkeyStore) Set(ctx context.Context, key, value string) error {
	err := s.client.Do(ctx, s.client.B().Set().Key(key).Value(value).Build()).Error()
	return wrapValkey("SET", err)
}

func (s *valkeyStore) LLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Llen().Key(key).Build()).AsInt64()
	return n, wrapValkey("LLEN", err)
}

func (s *valkeyStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	values, err := s.client.Do(ctx, s.client.B().Lrange().Key(key).Start(start).Stop(stop).Build()).AsStrSlice()
	if err != nil {
		return nil, wrapValkey("LRANGE", err)
	}
	return values, nil
}

func (s *valkeyStore) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Rpush().Key(key).Element(values...).Build()).AsInt64()
	return n, wrapValkey("RPUSH", err)
}

func (s *valkeyStore) RPopBatch(ctx context.Context, key string, n int) error {
	cmds := make(valkey.Commands, 0, n)
	for i := 0; i < n; i++ {
		cmds = append(cmds, s.client.B().Rpop().Key(key).Build())
	}
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil && !valkey.IsValkeyNil(err) {
			return wrapValkey("RPOP", err)
		}
	}
	return nil
}

func (s *valkeyStore) HLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Hlen().Key(key).Build()).AsInt64()
	return n, wrapValkey("HLEN", err)
}

func (s *valkeyStore) HScan(ctx context.Context, key string, cursor uint64, count int64) ([]FieldValue, uint64, error) {
	entry, err := s.client.Do(ctx, s.client.B().Hscan().Key(key).Cursor(cursor).Count(count).Build()).AsScanEntry()
	if err != nil {
		return nil, 0, wrapValkey("HSCAN", err)
	}
	fields := make([]FieldValue, 0, len(entry.Elements)/2)
	for i := 0; i+1 < len(entry.Elements); i += 2 {
		fields = append(fields, FieldValue{Field: entry.Elements[i], Value: entry.Elements[i+1]})
	}
	return fields, entry.Cursor, nil
}

func (s *valkeyStore) HSet(ctx context.Context, key string, fields []FieldValue) error {
	cmd := s.client.B().Hset().Key(key).FieldValue()
	for _, f := range fields {
		cmd = cmd.FieldValue(f.Field, f.Value)
	}
	return wrapValkey("HSET", s.client.Do(ctx, cmd.Build()).Error())
}

func (s *valkeyStore) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Hdel().Key(key).Field(fields...).Build()).AsInt64()
	return n, wrapValkey("HDEL", err)
}

func (s *valkeyStore) SCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Scard().Key(key).Build()).AsInt64()
	return n, wrapValkey("SCARD", err)
}

func (s *valkeyStore) SScan(ctx context.Context, key string, cursor uint64, count int64) ([]string, uint64, error) {
	entry, err := s.client.Do(ctx, s.client.B().Sscan().Key(key).Cursor(cursor).Count(count).Build()).AsScanEntry()
	if err != nil {
		return nil, 0, wrapValkey("SSCAN", err)
	}
	return entry.Elements, entry.Cursor, nil
}

func (s *valkeyStore) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Sadd().Key(key).Member(members...).Build()).AsInt64()
	return n, wrapValkey("SADD", err)
}

func (s *valkeyStore) SRem(ctx context.Context, key string, members ...string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Srem().Key(key).Member(members...).Build()).AsInt64()
	return n, wrapValkey("SREM", err)
}

func (s *valkeyStore) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Zcard().Key(key).Build()).AsInt64()
	return n, wrapValkey("ZCARD", err)
}

func (s *valkeyStore) ZScan(ctx context.Context, key string, cursor uint64, count int64) ([]ScoredMember, uint64, error) {
	entry, err := s.client.Do(ctx, s.client.B().Zscan().Key(key).Cursor(cursor).Count(count).Build()).AsScanEntry()
	if err != nil {
		return nil, 0, wrapValkey("ZSCAN", err)
	}
	members, err := scoredMembers(entry.Elements)
	if err != nil {
		return nil, 0, &CommandError{Op: "ZSCAN", Err: err}
	}
	return members, entry.Cursor, nil
}

func (s *valkeyStore) ZAdd(ctx context.Context, key string, members []ScoredMember) error {
	cmd := s.client.B().Zadd().Key(key).ScoreMember()
	for _, m := range members {
		cmd = cmd.ScoreMember(m.Score, m.Member)
	}
	return wrapValkey("ZADD", s.client.Do(ctx, cmd.Build()).Error())
}

func (s *valkeyStore) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Zremrangebyrank().Key(key).Start(start).Stop(stop).Build()).AsInt64()
	return n, wrapValkey("ZREMRANGEBYRANK", err)
}

func (s *valkeyStore) Ping(ctx context.Context) error {
	return wrapValkey("PING", s.client.Do(ctx, s.client.B().Ping().Build()).Error())
}

// Close closes the valkey client connection
func (s *valkeyStore) Close() error {
	s.client.Close()
	return nil
}

// scoredMembers decodes the flat member, score, member, score... reply of ZSCAN.
func scoredMembers(flat []string) ([]ScoredMember, error) {
	members := make([]ScoredMember, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		score, err := strconv.ParseFloat(flat[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score %q for member %q: %w", flat[i+1], flat[i], err)
		}
		members = append(members, ScoredMember{Member: flat[i], Score: score})
	}
	return members, nil
}

func credentials(cfg Config, ep endpoint.Endpoint) (string, string) {
	if ep.Username != "" || ep.Password != "" {
		return ep.Username, ep.Password
	}
	return cfg.Username, cfg.Password
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
