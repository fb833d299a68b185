package domain

import (
	"regexp"
	"time"

	"github.com/samber/lo"
)

// AccountNameLength is the fixed length of a UOS account name.
const AccountNameLength = 12

// LinkedAccount ties a Telegram user to a UOS account.
type LinkedAccount struct {
	TelegramID   int64     `json:"telegramId"`
	TelegramName string    `json:"telegramName"`
	UOSName      string    `json:"uosName"`
	LastUpdate   time.Time `json:"lastUpdate"`
}

// ValidAccountName reports whether name has the length of a UOS account name.
func ValidAccountName(name string) bool {
	return len(name) == AccountNameLength
}

// Profile is the public profile an account publishes on chain.
type Profile struct {
	Sources []ProfileSource `json:"usersSources"`
}

// ProfileSource is one external link listed on a profile.
type ProfileSource struct {
	SourceURL string `json:"sourceUrl"`
}

var telegramSource = regexp.MustCompile(`^https://t\.me/(\w+)$`)

// ListsTelegram reports whether the profile links to the Telegram user username.
func (p Profile) ListsTelegram(username string) bool {
	if username == "" {
		return false
	}
	return lo.ContainsBy(p.Sources, func(s ProfileSource) bool {
		m := telegramSource.FindStringSubmatch(s.SourceURL)
		return m != nil && m[1] == username
	})
}
