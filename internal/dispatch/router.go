// Package dispatch routes inbound text events to command handlers. It owns
// the dual trigger syntax, the cooldown/dedup guard, and the boundary that
// converts every handler error into a single user-facing reply.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ncaceres/cardbot/internal/domain"
	"github.com/ncaceres/cardbot/internal/guard"
	"github.com/ncaceres/cardbot/internal/transport"
)

// Handler processes a matched command. Handlers deliver their own success
// replies; errors are translated to replies by the router.
type Handler func(ctx context.Context, inv domain.Invocation, args string) error

// User-facing notices produced at the dispatch boundary.
const (
	ReplyPleaseWait = "Please wait a moment before sending another command."
	ReplyInvalid    = "Invalid input. Check the command arguments and try again."
	ReplyNotFound   = "No data found for that query."
	ReplyTryLater   = "The service is busy right now. Try again later."
	ReplyFailure    = "Something went wrong processing your command."
)

type command struct {
	name       string
	handler    Handler
	dotPattern *regexp.Regexp
}

// Router matches inbound text against the registered commands and runs the
// matching handler behind the guard.
type Router struct {
	logger   *slog.Logger
	guard    *guard.Guard
	replier  transport.Replier
	commands []command
}

// NewRouter constructs a Router. Commands are registered with Handle before
// routing begins; registration is not safe to interleave with Route.
func NewRouter(logger *slog.Logger, g *guard.Guard, replier transport.Replier) *Router {
	return &Router{logger: logger, guard: g, replier: replier}
}

// Handle registers a handler for a command name. The name matches both as
// `/name` (first whitespace-delimited token) and as a case-insensitive
// `.name` prefix with a word boundary.
func (r *Router) Handle(name string, h Handler) {
	name = strings.ToLower(name)
	r.commands = append(r.commands, command{
		name:       name,
		handler:    h,
		dotPattern: regexp.MustCompile(`(?i)^\.` + regexp.QuoteMeta(name) + `\b[\s]*`),
	})
}

// Route dispatches the invocation. It reports whether any command matched;
// a denied or deduplicated command still counts as handled.
func (r *Router) Route(ctx context.Context, inv domain.Invocation) bool {
	cmd, args, form, ok := r.match(inv.Text)
	if !ok {
		return false
	}
	inv.Trigger = form

	// Cooldown strictly precedes dedup marking: a denied command must never
	// enter the in-flight set.
	if !r.guard.Allow(inv.UserID) {
		r.logger.Debug("command denied by cooldown", "user", inv.UserID, "command", cmd.name)
		r.reply(ctx, inv, ReplyPleaseWait)
		return true
	}

	// The slash form is subject to framework redelivery; drop duplicates
	// silently. The dot form is matched from raw text and never redelivered
	// with the same message id.
	if form == domain.TriggerSlash {
		key := inv.DedupKey()
		if !r.guard.Begin(key) {
			r.logger.Debug("duplicate invocation dropped", "user", inv.UserID, "message", inv.MessageID)
			return true
		}
		defer r.guard.End(key)
	}

	r.run(ctx, cmd, inv, args)
	return true
}

// run executes the handler and converts any failure into exactly one reply.
// A panic is contained here so one invocation cannot take down the
// dispatch loop for other users.
func (r *Router) run(ctx context.Context, cmd command, inv domain.Invocation, args string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler panicked", "command", cmd.name, "user", inv.UserID, "panic", fmt.Sprint(rec))
			r.reply(ctx, inv, ReplyFailure)
		}
	}()

	err := cmd.handler(ctx, inv, args)
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		r.logger.Debug("command rejected", "command", cmd.name, "user", inv.UserID, "error", err)
		r.reply(ctx, inv, ReplyInvalid)
	case errors.Is(err, domain.ErrNotFound):
		r.reply(ctx, inv, ReplyNotFound)
	case errors.Is(err, domain.ErrTransient):
		r.logger.Warn("command failed transiently", "command", cmd.name, "user", inv.UserID, "error", err)
		r.reply(ctx, inv, ReplyTryLater)
	case errors.Is(err, domain.ErrBadPayload):
		r.logger.Error("command failed on malformed provider data", "command", cmd.name, "user", inv.UserID, "error", err)
		r.reply(ctx, inv, ReplyFailure)
	case errors.Is(err, domain.ErrProviderFailure):
		r.logger.Error("command rejected by provider", "command", cmd.name, "user", inv.UserID, "error", err)
		r.reply(ctx, inv, ReplyFailure)
	default:
		r.logger.Error("command failed", "command", cmd.name, "user", inv.UserID, "error", err)
		r.reply(ctx, inv, ReplyFailure)
	}
}

// match resolves the command and its argument string from raw text. Slash
// arguments are the remainder after the first whitespace-delimited token;
// dot arguments are everything past the command name and optional space.
func (r *Router) match(text string) (command, string, domain.TriggerForm, bool) {
	trimmed := strings.TrimSpace(text)
	firstToken := trimmed
	if fields := strings.Fields(trimmed); len(fields) > 0 {
		firstToken = fields[0]
	}

	for _, cmd := range r.commands {
		if firstToken == "/"+cmd.name {
			args := strings.TrimSpace(trimmed[len(firstToken):])
			return cmd, args, domain.TriggerSlash, true
		}
		if loc := cmd.dotPattern.FindStringIndex(trimmed); loc != nil {
			return cmd, trimmed[loc[1]:], domain.TriggerDot, true
		}
	}
	return command{}, "", "", false
}

func (r *Router) reply(ctx context.Context, inv domain.Invocation, text string) {
	if err := r.replier.SendText(ctx, inv.ChatID, text); err != nil {
		r.logger.Warn("reply delivery failed", "chat", inv.ChatID, "error", err)
	}
}
