package materialize

import (
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

// IDGenerator produces the identifier shared by all long rows of one record.
//
// The strategies trade uniqueness for reproducibility:
//   - uuid: random, unique across runs appended to the same file;
//   - sequence: 1, 2, 3, ... deterministic, but repeats across appended runs;
//   - xxh3: hash of the encoded record, reproducible across runs, and equal
//     for byte-identical records.
type IDGenerator interface {
	// Next returns the identifier for a record encoded as raw. Generators that
	// ignore content accept nil.
	Next(raw []byte) string
}

// Strategy names accepted by NewIDGenerator.
const (
	StrategyUUID     = "uuid"
	StrategySequence = "sequence"
	StrategyXXH3     = "xxh3"
)

// NewIDGenerator returns the generator for strategy. prefix only applies to
// sequence.
func NewIDGenerator(strategy, prefix string) (IDGenerator, error) {
	switch strategy {
	case "", StrategyUUID:
		return NewUUIDGenerator(), nil
	case StrategySequence:
		return NewSequenceGenerator(prefix), nil
	case StrategyXXH3:
		return XXH3Generator{}, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown identifier strategy %q", strategy)
	}
}

// NeedsRaw reports whether g reads the record bytes.
func NeedsRaw(g IDGenerator) bool {
	_, ok := g.(XXH3Generator)
	return ok
}

// UUIDGenerator returns random version 4 UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a UUIDGenerator.
func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

// Next implements IDGenerator.
func (UUIDGenerator) Next([]byte) string {
	return uuid.NewString()
}

// SequenceGenerator counts from 1.
type SequenceGenerator struct {
	prefix string
	n      uint64
}

// NewSequenceGenerator creates a counter whose values carry prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Next implements IDGenerator.
func (g *SequenceGenerator) Next([]byte) string {
	g.n++
	return g.prefix + strconv.FormatUint(g.n, 10)
}

// XXH3Generator hashes the encoded record with 128-bit xxh3.
type XXH3Generator struct{}

// Next implements IDGenerator.
func (XXH3Generator) Next(raw []byte) string {
	sum := xxh3.Hash128(raw).Bytes()
	return hex.EncodeToString(sum[:])
}
