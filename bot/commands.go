package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"nscollab/bot/common"
	"nscollab/models"
	"nscollab/service"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "demoday",
			Description: "Follow the monthly Demoday",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "event",
					Description: "Show this month's Demoday and your funding",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "results",
					Description: "Show the results of this month's Demoday",
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	if data.Name != "demoday" || len(data.Options) == 0 {
		return
	}

	switch data.Options[0].Name {
	case "event":
		b.handleEventCommand(s, i)
	case "results":
		b.handleResultsCommand(s, i)
	}
}

func (b *Bot) handleEventCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring demoday event response: %v", err)
		return
	}

	event, err := b.eventService.GetOrCreateEventForMonth(ctx, time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to load current Demoday")
		common.FollowUpWithError(s, i, service.UserMessage(err))
		return
	}

	var balance *models.Balance
	if discordID, err := interactionUserID(i); err == nil {
		balance, err = b.angelService.GetBalance(ctx, event.ID, discordID)
		if err != nil {
			log.WithError(err).WithField("user_id", discordID).Warn("Failed to load Demoday balance")
		}
	}

	if _, err := common.FollowUpWithEmbed(s, i, buildEventEmbed(event, balance, time.Now()), true); err != nil {
		log.Errorf("Error sending demoday event embed: %v", err)
	}
}

func (b *Bot) handleResultsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring demoday results response: %v", err)
		return
	}

	event, err := b.eventService.GetOrCreateEventForMonth(ctx, time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to load current Demoday")
		common.FollowUpWithError(s, i, service.UserMessage(err))
		return
	}

	snapshot, err := b.resultsService.GetResults(ctx, event.ID)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			log.WithError(err).WithField("event_id", event.ID).Error("Failed to load Demoday results")
		}
		common.FollowUpWithError(s, i, service.UserMessage(err))
		return
	}

	if _, err := common.FollowUpWithEmbed(s, i, buildResultsEmbed(event, snapshot), false); err != nil {
		log.Errorf("Error sending demoday results embed: %v", err)
	}
}

// interactionUserID returns the Discord ID of the member or DM user behind an interaction
func interactionUserID(i *discordgo.InteractionCreate) (int64, error) {
	var user *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		user = i.Member.User
	case i.User != nil:
		user = i.User
	default:
		return 0, errors.New("interaction has no user")
	}
	return strconv.ParseInt(user.ID, 10, 64)
}
