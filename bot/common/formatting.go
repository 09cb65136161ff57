package common

import (
	"fmt"
	"strings"
	"time"

	"nscollab/models"
)

// Embed colors
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
)

// FormatBalance formats a funding amount with thousand separators and two decimals
func FormatBalance(amount models.Cents) string {
	str := amount.String()

	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}

	whole, frac, _ := strings.Cut(str, ".")

	// Add commas for thousands
	n := len(whole)
	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range whole {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	result.WriteString(".")
	result.WriteString(frac)

	return result.String()
}

// FormatMultiplier formats a rank multiplier, "-" for pitches outside the rewarded ranks
func FormatMultiplier(multiplier int64) string {
	if multiplier == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx", multiplier)
}

// RankPrefix returns a medal for the podium and the rank number otherwise
func RankPrefix(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("**%d.**", rank)
	}
}

// FormatMention formats a Discord user mention
func FormatMention(discordID int64) string {
	return fmt.Sprintf("<@%d>", discordID)
}

// FormatMonth formats an event date as "June 2025"
func FormatMonth(t time.Time) string {
	return t.UTC().Format("January 2006")
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}
