// Package bot implements the Telegram commands of the score bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/uoscommunity/scorebot/internal/account"
	"github.com/uoscommunity/scorebot/internal/chain"
	"github.com/uoscommunity/scorebot/internal/domain"
	"github.com/uoscommunity/scorebot/internal/report"
	"github.com/uoscommunity/scorebot/internal/score"
	"github.com/uoscommunity/scorebot/internal/telegram"
)

const introText = `
I can help you to know the score of UOS Network accounts.

*Bot Commands*

/link <UOS account name> - Links your telegram account to specified UOS account

/unlink - Unlinks your telegram account from any linked UOS accounts

/check <Telegram/UOS account name> - Check the score of any telegram account (starting with @) or UOS account, sending this command without arguments shows your own score

!score <Telegram/UOS account name> - Same as above, doesn't work without argument

/balance - Check the balance of your telegram account (accounts should be linked using /link command)

[❤❤❤ Join bot community! ❤❤❤](https://u.community/communities/245)`

const linkHint = "'/link <UOS account name>' command"

var actionPattern = regexp.MustCompile(`^!([^@\s]+)\s(\S+)$`)

// AccountStore is the subset of account.Repository the bot needs.
type AccountStore interface {
	Add(ctx context.Context, a domain.LinkedAccount) (*domain.LinkedAccount, error)
	Save(ctx context.Context, a domain.LinkedAccount) error
	Remove(ctx context.Context, telegramID int64) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.LinkedAccount, error)
	GetByTelegramName(ctx context.Context, telegramName string) (*domain.LinkedAccount, error)
}

// ScoreProvider resolves display scores.
type ScoreProvider interface {
	GetScore(ctx context.Context, accountName string) (domain.Score, error)
}

// ProfileFetcher reads the on-chain profile of an account.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accountName string) (domain.Profile, error)
}

// BalanceComputer builds balance reports.
type BalanceComputer interface {
	Compute(ctx context.Context, accountName string) (domain.BalanceReport, error)
}

// userError is a validation failure whose message is shown to the user as is.
type userError struct {
	msg string
}

func (e *userError) Error() string { return e.msg }

func userErrorf(format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...)}
}

// Handler turns incoming messages into replies.
type Handler struct {
	accounts AccountStore
	scores   ScoreProvider
	profiles ProfileFetcher
	balances BalanceComputer
	links    report.Links
	helpLink string
}

// NewHandler creates a command Handler. helpLink is sent when a profile does not list the user.
func NewHandler(accounts AccountStore, scores ScoreProvider, profiles ProfileFetcher, balances BalanceComputer, links report.Links, helpLink string) *Handler {
	if accounts == nil {
		panic("bot.NewHandler: accounts is nil")
	}
	if scores == nil {
		panic("bot.NewHandler: scores is nil")
	}
	if profiles == nil {
		panic("bot.NewHandler: profiles is nil")
	}
	if balances == nil {
		panic("bot.NewHandler: balances is nil")
	}
	return &Handler{
		accounts: accounts,
		scores:   scores,
		profiles: profiles,
		balances: balances,
		links:    links,
		helpLink: helpLink,
	}
}

// Handle returns the reply to msg, or "" when the message needs none.
func (h *Handler) Handle(ctx context.Context, msg *telegram.Message) string {
	if msg == nil || msg.From == nil {
		return ""
	}

	command, args, ok := parseCommand(msg.Text)
	if !ok {
		return ""
	}

	var (
		reply string
		err   error
	)
	switch command {
	case "/start", "/help":
		return introText
	case "/link", "/unlink", "/check", "!score", "/balance":
		h.refreshUsername(ctx, msg.From)
	default:
		return ""
	}

	switch command {
	case "/link":
		reply, err = h.link(ctx, msg.From, args)
	case "/unlink":
		reply, err = h.unlink(ctx, msg.From)
	case "/check", "!score":
		reply, err = h.check(ctx, msg.From, args)
	case "/balance":
		reply, err = h.balance(ctx, msg.From)
	}

	if err != nil {
		var ue *userError
		if errors.As(err, &ue) {
			slog.Debug("command rejected", "command", command, "user", msg.From.ID, "reason", ue.msg)
			return "Error: " + ue.msg
		}
		slog.Error("command failed", "command", command, "user", msg.From.ID, "error", err)
		return "GeneralError: " + err.Error()
	}
	return reply
}

// parseCommand splits "/cmd@bot args" or "!action arg".
func parseCommand(text string) (command, args string, ok bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		command, args, _ = strings.Cut(text, " ")
		command, _, _ = strings.Cut(command, "@")
		return strings.ToLower(command), strings.TrimSpace(args), true
	}
	if m := actionPattern.FindStringSubmatch(text); m != nil {
		return "!" + strings.ToLower(m[1]), m[2], true
	}
	return "", "", false
}

// refreshUsername keeps the stored Telegram username current so @name lookups follow renames.
func (h *Handler) refreshUsername(ctx context.Context, from *telegram.User) {
	if from.Username == "" {
		return
	}
	linked, err := h.accounts.GetByTelegramID(ctx, from.ID)
	if err != nil || linked.TelegramName == from.Username {
		return
	}
	old := linked.TelegramName
	linked.TelegramName = from.Username
	if err := h.accounts.Save(ctx, *linked); err != nil {
		slog.Warn("failed to update telegram username", "user", from.ID, "error", err)
		return
	}
	slog.Info("telegram username updated", "user", from.ID, "from", old, "to", from.Username)
}

func (h *Handler) link(ctx context.Context, from *telegram.User, uosName string) (string, error) {
	if !domain.ValidAccountName(uosName) {
		return "", userErrorf("Provide valid UOS account name (must be exactly %d chars length) to link your telegram account with.", domain.AccountNameLength)
	}
	if from.Username == "" {
		return "", userErrorf("Set a Telegram username in your settings to link it with UOS account.")
	}

	if _, err := h.scores.GetScore(ctx, uosName); err != nil {
		if errors.Is(err, score.ErrNotFound) {
			return "", userErrorf("UOS account name %s not found.", report.AccountLink(uosName, h.links))
		}
		return "", fmt.Errorf("checking score of %s: %w", uosName, err)
	}

	existing, err := h.accounts.GetByTelegramID(ctx, from.ID)
	switch {
	case err == nil:
		return "", alreadyLinked(existing)
	case !errors.Is(err, account.ErrNotFound):
		return "", fmt.Errorf("looking up link of %d: %w", from.ID, err)
	}

	profile, err := h.profiles.FetchProfile(ctx, uosName)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			return "", userErrorf("UOS account details for %s not found, please register on U°Community platform to use this service.", report.AccountLink(uosName, h.links))
		}
		return "", fmt.Errorf("reading profile of %s: %w", uosName, err)
	}
	if !profile.ListsTelegram(from.Username) {
		return h.helpLink, nil
	}

	added, err := h.accounts.Add(ctx, domain.LinkedAccount{
		TelegramID:   from.ID,
		TelegramName: from.Username,
		UOSName:      uosName,
	})
	if err != nil {
		if errors.Is(err, account.ErrAlreadyLinked) {
			if existing, lookupErr := h.accounts.GetByTelegramID(ctx, from.ID); lookupErr == nil {
				return "", alreadyLinked(existing)
			}
		}
		return "", fmt.Errorf("linking %d to %s: %w", from.ID, uosName, err)
	}

	slog.Info("account linked", "telegram", added.TelegramName, "uos", added.UOSName)
	return fmt.Sprintf("Your telegram account @%s linked to UOS account %s.", added.TelegramName, report.AccountName(added.UOSName)), nil
}

func alreadyLinked(a *domain.LinkedAccount) error {
	return userErrorf("Your telegram account @%s is already linked to UOS account %s.", a.TelegramName, report.AccountName(a.UOSName))
}

func (h *Handler) unlink(ctx context.Context, from *telegram.User) (string, error) {
	linked, err := h.accounts.GetByTelegramID(ctx, from.ID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return "", userErrorf("Your telegram account is not linked with any UOS account.")
		}
		return "", fmt.Errorf("looking up link of %d: %w", from.ID, err)
	}

	if err := h.accounts.Remove(ctx, linked.TelegramID); err != nil && !errors.Is(err, account.ErrNotFound) {
		return "", fmt.Errorf("unlinking %d: %w", from.ID, err)
	}

	slog.Info("account unlinked", "telegram", linked.TelegramName, "uos", linked.UOSName)
	return fmt.Sprintf("Your telegram account @%s unlinked from UOS account %s.", linked.TelegramName, report.AccountName(linked.UOSName)), nil
}

func (h *Handler) check(ctx context.Context, from *telegram.User, target string) (string, error) {
	name := target
	var telegramName string

	switch {
	case strings.HasPrefix(target, "@"):
		linked, err := h.accounts.GetByTelegramName(ctx, strings.TrimPrefix(target, "@"))
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return "", userErrorf("This telegram account is not linked with UOS account, ask your friend to link accounts via %s.", linkHint)
			}
			return "", fmt.Errorf("looking up %s: %w", target, err)
		}
		name, telegramName = linked.UOSName, linked.TelegramName
	case target == "":
		linked, err := h.accounts.GetByTelegramID(ctx, from.ID)
		switch {
		case err == nil:
			name, telegramName = linked.UOSName, linked.TelegramName
		case !errors.Is(err, account.ErrNotFound):
			return "", fmt.Errorf("looking up link of %d: %w", from.ID, err)
		}
	}

	if name == "" {
		return "", userErrorf("Please use proper command format or link your telegram account to UOS account via %s.", linkHint)
	}
	if !domain.ValidAccountName(name) {
		return "", userErrorf("Account name must be exactly %d chars length.", domain.AccountNameLength)
	}

	s, err := h.scores.GetScore(ctx, name)
	if err != nil {
		if errors.Is(err, score.ErrNotFound) {
			return "", userErrorf("UOS account name '%s' not found.", name)
		}
		return "", fmt.Errorf("getting score of %s: %w", name, err)
	}

	if telegramName != "" {
		return report.LinkedScore(s, telegramName, h.links), nil
	}
	return report.Score(s, h.links), nil
}

func (h *Handler) balance(ctx context.Context, from *telegram.User) (string, error) {
	linked, err := h.accounts.GetByTelegramID(ctx, from.ID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return "", userErrorf("Your telegram account must be linked to UOS account using /link command.")
		}
		return "", fmt.Errorf("looking up link of %d: %w", from.ID, err)
	}

	if !domain.ValidAccountName(linked.UOSName) {
		return "", userErrorf("UOS account name invalid (must be exactly %d chars length), fix it using /unlink & /link commands.", domain.AccountNameLength)
	}

	r, err := h.balances.Compute(ctx, linked.UOSName)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			slog.Error("malformed balance data", "account", linked.UOSName, "error", err)
			return "", userErrorf("could not compute balance for %s, please contact developers.", report.AccountName(linked.UOSName))
		}
		return "", fmt.Errorf("computing balance of %s: %w", linked.UOSName, err)
	}

	return report.Balance(r), nil
}
