package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"nscollab/bot/common"
	"nscollab/models"
)

// Rankings longer than this are cut in announcements
const maxAnnouncedRanks = 10

// buildPitchingOpenEmbed announces that angels can start investing
func buildPitchingOpenEmbed(event *models.Event, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🚀 Demoday %s: pitching is open", common.FormatMonth(event.EventDate)),
		Description: "Register as an angel to receive your funding, then invest in the pitches you believe in.",
		Color:       common.ColorPrimary,
		Timestamp:   now.Format(time.RFC3339),
	}

	embed.Fields = append(embed.Fields, detailFields(event.Details)...)
	return embed
}

// buildEventEmbed shows an event and, when known, the caller's balance
func buildEventEmbed(event *models.Event, balance *models.Balance, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Demoday %s", common.FormatMonth(event.EventDate)),
		Color:     colorForStatus(event.Status),
		Timestamp: now.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: string(event.Status), Inline: true},
		},
	}
	embed.Fields = append(embed.Fields, detailFields(event.Details)...)

	if balance != nil && balance.IsAngel {
		value := fmt.Sprintf("Remaining: **%s**\nInvested: **%s**",
			common.FormatBalance(balance.RemainingBalance),
			common.FormatBalance(balance.Invested()))
		if balance.FinalBalance != nil {
			value += fmt.Sprintf("\nFinal: **%s**", common.FormatBalance(*balance.FinalBalance))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "💰 Your funding",
			Value:  value,
			Inline: true,
		})
	}

	return embed
}

// buildResultsEmbed lists the top pitches and angels of a results snapshot
func buildResultsEmbed(event *models.Event, snapshot *models.ResultsSnapshot) *discordgo.MessageEmbed {
	title := "🏆 Demoday results"
	if event != nil {
		title = fmt.Sprintf("🏆 Demoday %s results", common.FormatMonth(event.EventDate))
	}

	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     common.ColorSuccess,
		Timestamp: snapshot.CalculatedAt.Format(time.RFC3339),
	}

	if len(snapshot.PitchRankings) == 0 {
		embed.Description = "No pitches were funded."
		return embed
	}

	var pitches []string
	for _, r := range snapshot.PitchRankings {
		if r.Rank > maxAnnouncedRanks {
			break
		}
		pitches = append(pitches, fmt.Sprintf("%s %s by %s: **%s** from %d angels (%s)",
			common.RankPrefix(r.Rank),
			r.IdeaTitle,
			common.FormatMention(r.PitcherID),
			common.FormatBalance(r.TotalFunding),
			r.InvestorCount,
			common.FormatMultiplier(r.Multiplier)))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Pitches",
		Value: strings.Join(pitches, "\n"),
	})

	var angels []string
	for _, r := range snapshot.InvestorRankings {
		if r.Rank > maxAnnouncedRanks {
			break
		}
		angels = append(angels, fmt.Sprintf("%s %s: **%s** (+%s)",
			common.RankPrefix(r.Rank),
			common.FormatMention(r.InvestorID),
			common.FormatBalance(r.FinalBalance),
			common.FormatBalance(r.Returns)))
	}
	if len(angels) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Angels",
			Value: strings.Join(angels, "\n"),
		})
	}

	return embed
}

func detailFields(details models.EventDetails) []*discordgo.MessageEmbedField {
	var fields []*discordgo.MessageEmbedField
	for _, d := range []struct{ name, value string }{
		{"When", details.When},
		{"Where", details.Where},
		{"What", details.What},
		{"Link", details.URL},
	} {
		if d.value == "" {
			continue
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: d.name, Value: d.value, Inline: d.name != "What"})
	}
	return fields
}

func colorForStatus(status models.EventStatus) int {
	switch status {
	case models.EventStatusPitching:
		return common.ColorWarning
	case models.EventStatusCompleted:
		return common.ColorSuccess
	default:
		return common.ColorPrimary
	}
}
