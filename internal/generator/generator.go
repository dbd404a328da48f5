// Package generator produces synthetic payment-card records whose numbers
// always satisfy the Luhn checksum.
package generator

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ncaceres/cardbot/internal/domain"
)

const (
	// numberLength is the total length of every generated card number.
	numberLength = 16

	// BatchSize is the fixed number of cards produced per request. The count
	// is part of the user-facing contract, not a tunable.
	BatchSize = 10
)

// Config configures a Generator instance.
type Config struct {
	// Seed for the internal random source. Zero means time-based.
	Seed int64
}

// Generator produces Luhn-valid card records. Safe for concurrent use.
type Generator struct {
	mu   sync.Mutex
	rand *rand.Rand
	now  func() time.Time
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Generator{
		rand: rand.New(rand.NewSource(cfg.Seed)),
		now:  time.Now,
	}
}

// Generate produces a single card from the specification. The BIN must pass
// domain.ValidBIN; month, year, and cvv overrides are applied verbatim when
// present (year reduced to its last two digits), randomized otherwise.
func (g *Generator) Generate(spec domain.CardSpec) (domain.GeneratedCard, error) {
	if !domain.ValidBIN(spec.BIN) {
		return domain.GeneratedCard{}, fmt.Errorf("bin %q: %w", spec.BIN, domain.ErrValidation)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	card := domain.GeneratedCard{
		Number: g.number(spec.BIN),
		Month:  spec.Month,
		Year:   normalizeYear(spec.Year),
		CVV:    spec.CVV,
	}
	if card.Month == "" {
		card.Month = fmt.Sprintf("%02d", 1+g.rand.Intn(12))
	}
	if card.Year == "" {
		card.Year = fmt.Sprintf("%02d", (g.now().Year()+1+g.rand.Intn(5))%100)
	}
	if card.CVV == "" {
		card.CVV = g.digits(3 + g.rand.Intn(2))
	}
	return card, nil
}

// GenerateBatch produces exactly BatchSize independent cards from the same
// specification.
func (g *Generator) GenerateBatch(spec domain.CardSpec) ([]domain.GeneratedCard, error) {
	cards := make([]domain.GeneratedCard, 0, BatchSize)
	for i := 0; i < BatchSize; i++ {
		card, err := g.Generate(spec)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// number extends the bin with random filler digits and recomputes the final
// digit so the full sequence satisfies the Luhn checksum. The checksum owns
// the last position: a maximum-length bin keeps only its first 15 digits.
func (g *Generator) number(bin string) string {
	digits := []byte(bin)
	if len(digits) > numberLength-1 {
		digits = digits[:numberLength-1]
	}
	for len(digits) < numberLength-1 {
		digits = append(digits, byte('0'+g.rand.Intn(10)))
	}
	return string(append(digits, checkDigit(digits)))
}

// checkDigit returns the digit that makes prefix+digit Luhn-valid. With the
// check digit occupying the rightmost position, every second digit counted
// from the prefix's end is doubled.
func checkDigit(prefix []byte) byte {
	sum := 0
	for i := 0; i < len(prefix); i++ {
		d := int(prefix[len(prefix)-1-i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return byte('0' + (10-sum%10)%10)
}

func (g *Generator) digits(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte('0' + g.rand.Intn(10))
	}
	return string(out)
}

func normalizeYear(year string) string {
	if len(year) > 2 {
		return year[len(year)-2:]
	}
	return year
}
