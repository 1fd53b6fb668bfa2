package redis

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/aretw0/trustroute/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Key layout under the prefix:
//
//	q:<src>|<dst>       hash   action -> value
//	qorder:<src>|<dst>  list   actions in first-insertion order
//	pairs               set    every pair key
//	trust               hash   node -> score
const defaultPrefix = "trustroute:"

// seedScript creates the pair with a single Flood action unless it exists.
// KEYS: values, order, pairs. ARGV: flood, seed, pair key.
const seedLua = `
local created = 0
if redis.call("EXISTS", KEYS[2]) == 0 then
	redis.call("RPUSH", KEYS[2], ARGV[1])
	redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
	redis.call("SADD", KEYS[3], ARGV[3])
	created = 1
end
`

const readLua = `
local out = {created}
local order = redis.call("LRANGE", KEYS[2], 0, -1)
for _, a in ipairs(order) do
	out[#out + 1] = a
	out[#out + 1] = redis.call("HGET", KEYS[1], a)
end
return out
`

var (
	getOrInitScript = backend.NewScript(seedLua + readLua)

	peekScript = backend.NewScript(`
local created = redis.call("EXISTS", KEYS[2])
` + readLua)

	// ARGV additionally carries action and value.
	setQScript = backend.NewScript(seedLua + `
if redis.call("HEXISTS", KEYS[1], ARGV[4]) == 0 then
	redis.call("RPUSH", KEYS[2], ARGV[4])
end
redis.call("HSET", KEYS[1], ARGV[4], ARGV[5])
return created
`)
)

// Store implements ports.StateStore using Redis, so several controller replicas can
// share one Q-table and trust table.
type Store struct {
	client       *backend.Client
	prefix       string
	seed         ports.Seeder
	defaultTrust float64
}

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithSeeder replaces the uniform random seed of new pairs.
func WithSeeder(seed ports.Seeder) Option {
	return func(s *Store) {
		s.seed = seed
	}
}

// WithDefaultTrust sets the score reported for unseen nodes.
func WithDefaultTrust(trust float64) Option {
	return func(s *Store) {
		s.defaultTrust = trust
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:       client,
		prefix:       defaultPrefix,
		seed:         rand.Float64,
		defaultTrust: domain.DefaultTrust,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client returns the underlying client, e.g. to build a Locker on the same connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) pairKeys(src, dst domain.NodeID) []string {
	pair := domain.PairKey(src, dst)
	return []string{s.prefix + "q:" + pair, s.prefix + "qorder:" + pair, s.prefix + "pairs"}
}

func (s *Store) trustKey() string {
	return s.prefix + "trust"
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// GetOrInitActions reads the pair, seeding it atomically when absent.
func (s *Store) GetOrInitActions(ctx context.Context, src, dst domain.NodeID) (domain.ActionValues, bool, error) {
	reply, err := getOrInitScript.Run(ctx, s.client, s.pairKeys(src, dst),
		domain.Flood.String(), formatValue(s.seed()), domain.PairKey(src, dst)).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("failed to init actions in redis: %w", err)
	}
	return decodeActions(reply)
}

// PeekActions reads the pair without seeding it.
func (s *Store) PeekActions(ctx context.Context, src, dst domain.NodeID) (domain.ActionValues, bool, error) {
	reply, err := peekScript.Run(ctx, s.client, s.pairKeys(src, dst)).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read actions from redis: %w", err)
	}
	return decodeActions(reply)
}

// SetQ writes a value, seeding the pair first when absent.
func (s *Store) SetQ(ctx context.Context, src, dst domain.NodeID, action domain.Action, value float64) error {
	err := setQScript.Run(ctx, s.client, s.pairKeys(src, dst),
		domain.Flood.String(), formatValue(s.seed()), domain.PairKey(src, dst),
		action.String(), formatValue(value)).Err()
	if err != nil {
		return fmt.Errorf("failed to set q-value in redis: %w", err)
	}
	return nil
}

// GetTrust returns the node's score or the default.
func (s *Store) GetTrust(ctx context.Context, node domain.NodeID) (float64, error) {
	val, err := s.client.HGet(ctx, s.trustKey(), string(node)).Float64()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return s.defaultTrust, nil
		}
		return 0, fmt.Errorf("failed to get trust from redis: %w", err)
	}
	return val, nil
}

// SetTrust records a score.
func (s *Store) SetTrust(ctx context.Context, node domain.NodeID, value float64) error {
	if err := s.client.HSet(ctx, s.trustKey(), string(node), formatValue(value)).Err(); err != nil {
		return fmt.Errorf("failed to set trust in redis: %w", err)
	}
	return nil
}

// Snapshot lists both tables, sorted by key. It is not atomic across pairs.
func (s *Store) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	pairs, err := s.client.SMembers(ctx, s.prefix+"pairs").Result()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to list pairs: %w", err)
	}
	sort.Strings(pairs)

	snap := domain.Snapshot{
		QTable: make([]domain.PairEntry, 0, len(pairs)),
	}
	for _, pair := range pairs {
		src, dst, ok := domain.SplitPairKey(pair)
		if !ok {
			continue
		}
		actions, found, err := s.PeekActions(ctx, src, dst)
		if err != nil {
			return domain.Snapshot{}, err
		}
		if !found {
			continue
		}
		snap.QTable = append(snap.QTable, domain.PairEntry{Src: src, Dst: dst, Actions: actions})
	}
	sort.Slice(snap.QTable, func(i, j int) bool {
		a, b := snap.QTable[i], snap.QTable[j]
		if a.Src != b.Src {
			return a.Src < b.Src
		}
		return a.Dst < b.Dst
	})

	trust, err := s.client.HGetAll(ctx, s.trustKey()).Result()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to list trust: %w", err)
	}
	snap.Trust = make([]domain.TrustEntry, 0, len(trust))
	for node, raw := range trust {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("corrupt trust value for %s: %w", node, err)
		}
		snap.Trust = append(snap.Trust, domain.TrustEntry{Node: domain.NodeID(node), Trust: v})
	}
	sort.Slice(snap.Trust, func(i, j int) bool { return snap.Trust[i].Node < snap.Trust[j].Node })
	return snap, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// decodeActions reads {flag, action1, value1, action2, value2, ...}.
func decodeActions(reply []any) (domain.ActionValues, bool, error) {
	if len(reply) == 0 || len(reply)%2 != 1 {
		return nil, false, fmt.Errorf("unexpected script reply of length %d", len(reply))
	}
	flag, ok := reply[0].(int64)
	if !ok {
		return nil, false, fmt.Errorf("unexpected script flag %T", reply[0])
	}

	actions := make(domain.ActionValues, 0, len(reply)/2)
	for i := 1; i < len(reply); i += 2 {
		rawAction, _ := reply[i].(string)
		rawValue, _ := reply[i+1].(string)
		action, err := domain.ParseAction(rawAction)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt action %q: %w", rawAction, err)
		}
		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt value for action %s: %w", action, err)
		}
		actions = append(actions, domain.ActionValue{Action: action, Value: value})
	}
	if len(actions) == 0 {
		actions = nil
	}
	return actions, flag == 1, nil
}

var (
	_ ports.StateStore  = (*Store)(nil)
	_ ports.Inspectable = (*Store)(nil)
)
