package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"nscollab/events"
	"nscollab/models"
	"nscollab/service"
)

// channelSender is the part of a discord session used for announcements
type channelSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer posts Demoday milestones to a Discord channel
type Announcer struct {
	sender       channelSender
	channelID    string
	eventService service.EventService
	now          func() time.Time
}

// NewAnnouncer creates an announcer posting to channelID
func NewAnnouncer(sender channelSender, channelID string, eventService service.EventService) *Announcer {
	return &Announcer{
		sender:       sender,
		channelID:    channelID,
		eventService: eventService,
		now:          time.Now,
	}
}

// Subscribe registers the announcer for lifecycle and results events
func (a *Announcer) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeEventStatusChanged, a.handleStatusChanged)
	bus.Subscribe(events.EventTypeResultsCalculated, a.handleResultsCalculated)
}

func (a *Announcer) handleStatusChanged(ctx context.Context, event events.Event) {
	e, ok := event.(events.EventStatusChangedEvent)
	if !ok || e.NewStatus != models.EventStatusPitching {
		return
	}

	demoday, err := a.eventService.GetEvent(ctx, e.EventID)
	if err != nil {
		log.WithError(err).WithField("event_id", e.EventID).Error("Failed to load event for announcement")
		return
	}

	a.send(e.EventID, buildPitchingOpenEmbed(demoday, a.now()))
}

func (a *Announcer) handleResultsCalculated(ctx context.Context, event events.Event) {
	e, ok := event.(events.ResultsCalculatedEvent)
	if !ok || e.Snapshot == nil {
		return
	}

	demoday, err := a.eventService.GetEvent(ctx, e.EventID)
	if err != nil {
		// The results are still worth posting without the month
		log.WithError(err).WithField("event_id", e.EventID).Warn("Failed to load event for results announcement")
		demoday = nil
	}

	a.send(e.EventID, buildResultsEmbed(demoday, e.Snapshot))
}

func (a *Announcer) send(eventID int64, embed *discordgo.MessageEmbed) {
	if _, err := a.sender.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"event_id":   eventID,
			"channel_id": a.channelID,
		}).Error("Failed to post announcement")
		return
	}

	log.WithFields(log.Fields{
		"event_id": eventID,
		"title":    embed.Title,
	}).Info("Posted Demoday announcement")
}
