// Package numerator provides document auto-numbering.
//
// Numbers follow the pattern PREFIX-PERIOD-XXX (e.g. INV-20260115-003) and
// are allocated per actor, so two businesses each get their own sequence.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Strategy defines the number allocation strategy.
type Strategy int

const (
	// StrategyStrict uses UPSERT ... RETURNING for every number.
	// Guarantees sequential numbers without gaps. Used for bill numbers.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// Much faster, but may leave gaps if the application restarts.
	// Used for catalog codes (SKUs) where gaps are harmless.
	StrategyCached
)

// Options configure number allocation.
type Options struct {
	Strategy Strategy

	// RangeSize is the number of values reserved at once in Cached
	// strategy. Default is 50.
	RangeSize int64
}

// DefaultOptions returns strict allocation.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Querier is the minimal database surface the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds numbering configuration for one document family.
type Config struct {
	// Prefix added to all numbers (e.g. "INV", "PUR", "ITM").
	Prefix string

	// PadWidth is the minimum digit width (default 3).
	PadWidth int

	// ResetPeriod: "day", "month", "year", "never".
	ResetPeriod string
}

// BillConfig returns the configuration used for bill numbers:
// daily reset, three digits.
func BillConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    3,
		ResetPeriod: "day",
	}
}

// CatalogConfig returns the configuration used for catalog codes:
// no reset, five digits.
func CatalogConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    5,
		ResetPeriod: "never",
	}
}

type cachedRange struct {
	current int64
	max     int64
}

// Service allocates document numbers from the doc_sequences table.
type Service struct {
	querier Querier

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		ranges:  make(map[string]*cachedRange),
	}
}

// Next generates the next document number for the actor.
func (s *Service) Next(ctx context.Context, actorID string, cfg Config, opts *Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	key := buildKey(cfg, period)

	var num int64
	var err error
	switch opts.Strategy {
	case StrategyCached:
		num, err = s.nextCached(ctx, actorID, key, opts)
	default:
		num, err = s.nextStrict(ctx, actorID, key)
	}
	if err != nil {
		return "", err
	}

	return formatNumber(cfg, period, num), nil
}

// nextStrict bumps the sequence row and returns the new value in one
// round trip. The UPSERT serializes concurrent callers on the row lock.
func (s *Service) nextStrict(ctx context.Context, actorID, key string) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO doc_sequences (actor_id, seq_key, current_val)
		VALUES ($1, $2, 1)
		ON CONFLICT (actor_id, seq_key) DO UPDATE SET current_val = doc_sequences.current_val + 1
		RETURNING current_val
	`, actorID, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("strict next: %w", err)
	}
	return num, nil
}

// nextCached serves numbers from an in-memory range, reserving a new
// block from the database when the range is exhausted.
func (s *Service) nextCached(ctx context.Context, actorID, key string, opts *Options) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	cacheKey := actorID + ":" + key
	rng, ok := s.ranges[cacheKey]
	if !ok {
		rng = &cachedRange{}
		s.ranges[cacheKey] = rng
	}

	if rng.current >= rng.max {
		size := opts.RangeSize
		if size <= 0 {
			size = 50
		}

		// current_val tracks the last value handed out, so bumping it by
		// size reserves (newMax-size, newMax].
		var newMax int64
		err := s.querier.QueryRow(ctx, `
			INSERT INTO doc_sequences (actor_id, seq_key, current_val)
			VALUES ($1, $2, $3)
			ON CONFLICT (actor_id, seq_key) DO UPDATE SET current_val = doc_sequences.current_val + $3
			RETURNING current_val
		`, actorID, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}

		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNext forces the sequence to a value (used by data imports).
func (s *Service) SetNext(ctx context.Context, actorID string, cfg Config, period time.Time, value int64) error {
	key := buildKey(cfg, period)

	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO doc_sequences (actor_id, seq_key, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (actor_id, seq_key) DO UPDATE SET current_val = $3
		RETURNING current_val
	`, actorID, key, value).Scan(&result)

	s.cacheMu.Lock()
	delete(s.ranges, actorID+":"+key)
	s.cacheMu.Unlock()

	return err
}

func buildKey(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "day":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01_02"))
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

func formatNumber(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 3
	}

	switch cfg.ResetPeriod {
	case "day":
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("20060102"), padWidth, num)
	case "month":
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("200601"), padWidth, num)
	case "year":
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	default:
		return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
	}
}

// ParseNumber extracts the sequence part from a formatted number, the
// segment after the last dash. Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	idx := strings.LastIndexByte(formatted, '-')
	if idx < 0 || idx == len(formatted)-1 {
		return -1
	}
	num, err := strconv.ParseInt(formatted[idx+1:], 10, 64)
	if err != nil {
		return -1
	}
	return num
}
