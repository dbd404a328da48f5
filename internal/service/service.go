// Package service implements the bot's command handlers: card batch
// generation, BIN metadata lookup, and taxpayer-registry lookup.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ncaceres/cardbot/internal/dispatch"
	"github.com/ncaceres/cardbot/internal/domain"
	"github.com/ncaceres/cardbot/internal/generator"
	"github.com/ncaceres/cardbot/internal/lookup"
	"github.com/ncaceres/cardbot/internal/parser"
	"github.com/ncaceres/cardbot/internal/store"
	"github.com/ncaceres/cardbot/internal/transport"
)

var (
	monthRegex      = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	yearRegex       = regexp.MustCompile(`^\d{4}$`)
	cvvRegex        = regexp.MustCompile(`^\d{3,4}$`)
	registryIDRegex = regexp.MustCompile(`^\d{6,13}$`)
)

// CommandService owns the command handlers and their collaborators.
type CommandService struct {
	logger    *slog.Logger
	generator *generator.Generator
	bins      *lookup.BinResolver
	registry  *lookup.RegistryClient
	store     store.Client
	replier   transport.Replier
	now       func() time.Time
}

// New constructs a CommandService.
func New(logger *slog.Logger, gen *generator.Generator, bins *lookup.BinResolver, registry *lookup.RegistryClient, st store.Client, replier transport.Replier) *CommandService {
	return &CommandService{
		logger:    logger,
		generator: gen,
		bins:      bins,
		registry:  registry,
		store:     st,
		replier:   replier,
		now:       time.Now,
	}
}

// Register wires the handlers into the router under their command names.
func (s *CommandService) Register(r *dispatch.Router) {
	r.Handle("gen", s.GenerateCards)
	r.Handle("bin", s.LookupBIN)
	r.Handle("ruc", s.LookupRegistry)
}

// GenerateCards parses the card specification, generates a fixed batch of
// cards, replies with the batch, and bumps the user's counters.
func (s *CommandService) GenerateCards(ctx context.Context, inv domain.Invocation, args string) error {
	spec := parser.Parse(args)
	if err := validateSpec(spec); err != nil {
		return err
	}

	cards, err := s.generator.GenerateBatch(spec)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cards for BIN %s:\n", spec.BIN)
	for _, card := range cards {
		fmt.Fprintf(&b, "%s|%s|%s|%s\n", card.Number, card.Month, card.Year, card.CVV)
	}
	if err := s.replier.SendText(ctx, inv.ChatID, strings.TrimRight(b.String(), "\n")); err != nil {
		return fmt.Errorf("deliver batch: %w", err)
	}

	s.bumpRecord(ctx, inv.UserID, func(r *domain.UserRecord) {
		r.CardsGenerated += len(cards)
	})
	return nil
}

// LookupBIN resolves BIN metadata through the provider fallback chain.
func (s *CommandService) LookupBIN(ctx context.Context, inv domain.Invocation, args string) error {
	bin := parser.Parse(args).BIN
	if !domain.ValidBIN(bin) {
		return fmt.Errorf("bin %q: %w", bin, domain.ErrValidation)
	}

	info, err := s.bins.Resolve(ctx, bin)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("BIN: %s\nBank: %s\nBrand: %s\nType: %s\nLevel: %s\nCountry: %s (%s)",
		bin, info.Bank, info.Brand, info.Type, info.Level, info.Country, info.CountryCode)
	if err := s.replier.SendText(ctx, inv.ChatID, text); err != nil {
		return fmt.Errorf("deliver bin info: %w", err)
	}

	s.bumpRecord(ctx, inv.UserID, func(r *domain.UserRecord) {
		r.BinLookups++
	})
	return nil
}

// LookupRegistry resolves a taxpayer identifier against the registry.
func (s *CommandService) LookupRegistry(ctx context.Context, inv domain.Invocation, args string) error {
	identifier := strings.TrimSpace(args)
	if !registryIDRegex.MatchString(identifier) {
		return fmt.Errorf("identifier %q: %w", identifier, domain.ErrValidation)
	}

	info, err := s.registry.Lookup(ctx, identifier)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nClass: %s\nIdentity type: %s\nLast updated: %s",
		info.Name, info.Class, info.IdentityType, info.UpdatedAt)
	if info.HasDebt {
		fmt.Fprintf(&b, "\nDebt: %s (%s)", info.DebtStatus, info.DebtAmount)
	}
	if err := s.replier.SendText(ctx, inv.ChatID, b.String()); err != nil {
		return fmt.Errorf("deliver registry info: %w", err)
	}

	s.bumpRecord(ctx, inv.UserID, func(r *domain.UserRecord) {
		r.RegistryLookups++
	})
	return nil
}

// bumpRecord applies a whole-document read-modify-write on the user's
// record. Concurrent commands from the same user can race here; loading
// immediately before saving keeps the window short. Persistence failures
// never fail a command whose reply was already delivered.
func (s *CommandService) bumpRecord(ctx context.Context, userID string, mutate func(*domain.UserRecord)) {
	record, err := s.store.LoadRecord(ctx, userID)
	if err != nil {
		s.logger.Warn("record load failed", "user", userID, "error", err)
		return
	}
	mutate(&record)
	record.LastCommandAt = s.now()
	if err := s.store.SaveRecord(ctx, record); err != nil {
		s.logger.Warn("record save failed", "user", userID, "error", err)
	}
}

// validateSpec checks the optional fields a tolerant parse may have left in
// an unusable state. The BIN check doubles as the pre-network gate.
func validateSpec(spec domain.CardSpec) error {
	if !domain.ValidBIN(spec.BIN) {
		return fmt.Errorf("bin %q: %w", spec.BIN, domain.ErrValidation)
	}
	if spec.Month != "" && !monthRegex.MatchString(spec.Month) {
		return fmt.Errorf("month %q: %w", spec.Month, domain.ErrValidation)
	}
	if spec.Year != "" && !yearRegex.MatchString(spec.Year) {
		return fmt.Errorf("year %q: %w", spec.Year, domain.ErrValidation)
	}
	if spec.CVV != "" && !cvvRegex.MatchString(spec.CVV) {
		return fmt.Errorf("cvv %q: %w", spec.CVV, domain.ErrValidation)
	}
	return nil
}
