// Package draft persists unsaved form rows per user in Redis.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"backoffice/internal/config"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "draft"

// ErrNotFound is returned when no draft is stored for a form.
var ErrNotFound = errors.New("draft not found")

var formPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Draft is the stored payload of one form.
type Draft struct {
	Form    string          `json:"form"`
	Rows    json.RawMessage `json:"rows"`
	SavedAt time.Time       `json:"saved_at"`
}

// Store keeps drafts under draft:{user}:{form} with a sliding TTL.
type Store struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
	now   func() time.Time
}

// New connects to Redis and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{store: raw, raw: raw, ttl: cfg.DraftTTL, now: time.Now}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// Key builds the redis key of a user's form draft.
func Key(userID, form string) string {
	return strings.Join([]string{keyPrefix, userID, form}, ":")
}

// ValidForm reports whether form is usable as a key segment.
func ValidForm(form string) bool {
	return formPattern.MatchString(form)
}

func (s *Store) Save(ctx context.Context, userID, form string, rows json.RawMessage) (Draft, error) {
	if s.store == nil {
		return Draft{}, errors.New("redis client not initialized")
	}
	if !json.Valid(rows) {
		return Draft{}, errors.New("draft rows are not valid json")
	}
	d := Draft{Form: form, Rows: rows, SavedAt: s.now().UTC()}
	payload, err := json.Marshal(d)
	if err != nil {
		return Draft{}, fmt.Errorf("encode draft: %w", err)
	}
	if err := s.store.Set(ctx, Key(userID, form), payload, s.ttl).Err(); err != nil {
		return Draft{}, fmt.Errorf("store draft: %w", err)
	}
	return d, nil
}

func (s *Store) Load(ctx context.Context, userID, form string) (Draft, error) {
	if s.store == nil {
		return Draft{}, errors.New("redis client not initialized")
	}
	v, err := s.store.Get(ctx, Key(userID, form)).Result()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("load draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal([]byte(v), &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

func (s *Store) Delete(ctx context.Context, userID, form string) error {
	if s.store == nil {
		return errors.New("redis client not initialized")
	}
	return s.store.Del(ctx, Key(userID, form)).Err()
}

// Ping checks the connection for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if s.store == nil {
		return errors.New("redis client not initialized")
	}
	return s.store.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
