// Package report renders balances and scores as Telegram Markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/uoscommunity/scorebot/internal/domain"
)

// Links builds profile URLs on the community site.
type Links struct {
	UserURL string
	UserURI string
}

// ProfileURL returns the community profile URL of account.
func (l Links) ProfileURL(account string) string {
	return l.UserURL + l.UserURI + account
}

var printer = message.NewPrinter(language.English)

// AccountName renders an account name with the network marker.
func AccountName(name string) string {
	return name + "°"
}

// AccountLink renders an account name linking to its community profile.
func AccountLink(name string, links Links) string {
	return fmt.Sprintf("[%s](%s)", AccountName(name), links.ProfileURL(name))
}

// Balance renders a balance report. Line order is fixed.
func Balance(r domain.BalanceReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "UOS account %s balances:\n", AccountName(r.Account))
	fmt.Fprintf(&b, "`     Liquid: %s`\n", r.Liquid)
	fmt.Fprintf(&b, "`  Stake NET: %s`\n", r.StakeNet)
	fmt.Fprintf(&b, "`  Stake CPU: %s`\n", r.StakeCPU)
	fmt.Fprintf(&b, "`Time Locked: %s, can withdraw: %s`\n", r.TimeLocked, r.TimeAvailable)
	fmt.Fprintf(&b, "`Actv Locked: %s, can withdraw: %s`", r.ActivityLocked, r.ActivityAvailable)
	return b.String()
}

// Score renders the score of an account.
func Score(s domain.Score, links Links) string {
	return fmt.Sprintf("UOS score for %s\n%s", AccountLink(s.Account, links), rates(s))
}

// LinkedScore renders the score of an account linked to a Telegram user.
func LinkedScore(s domain.Score, telegramName string, links Links) string {
	return fmt.Sprintf("UOS score for *@%s* linked with %s\n%s", telegramName, AccountLink(s.Account, links), rates(s))
}

func rates(s domain.Score) string {
	return fmt.Sprintf("`Importance: %s°`\n`    Social: %s°`", Grouped(s.Importance), Grouped(s.Social))
}

// Grouped formats an integral value with English thousands separators.
func Grouped(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.Round(0).IntPart())
}
