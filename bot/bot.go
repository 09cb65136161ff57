package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"nscollab/events"
	"nscollab/service"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string
	AnnounceChannelID string
}

type Bot struct {
	config         Config
	session        *discordgo.Session
	eventService   service.EventService
	angelService   service.AngelService
	resultsService service.ResultsService
}

func New(config Config, eventService service.EventService, angelService service.AngelService, resultsService service.ResultsService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		config:         config,
		session:        dg,
		eventService:   eventService,
		angelService:   angelService,
		resultsService: resultsService,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	if config.AnnounceChannelID != "" {
		NewAnnouncer(dg, config.AnnounceChannelID, eventService).Subscribe(eventBus)
		log.WithField("channel_id", config.AnnounceChannelID).Info("Demoday announcements enabled")
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}
