package infrastructure

import (
	"context"
	"fmt"

	"tokenlottery/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	colorInfo    = 0x3498DB
	colorSuccess = 0x2ECC71
	colorPrize   = 0xF1C40F
)

// EmbedSender is the part of a discordgo session the announcer needs
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts lottery milestones to a Discord channel
type DiscordAnnouncer struct {
	session   EmbedSender
	channelID string
}

// NewDiscordAnnouncer creates an announcer posting to channelID
func NewDiscordAnnouncer(session EmbedSender, channelID string) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		session:   session,
		channelID: channelID,
	}
}

// OpenDiscordSession opens a bot session for announcements
func OpenDiscordSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	return dg, nil
}

// Attach subscribes the announcer to the milestones it posts
func (a *DiscordAnnouncer) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventTypeLotteryConfigured, a.Handle)
	bus.Subscribe(events.EventTypeRandomnessCommitted, a.Handle)
	bus.Subscribe(events.EventTypeWinnerChosen, a.Handle)
	bus.Subscribe(events.EventTypePrizeClaimed, a.Handle)
}

// Handle is an events.Handler
func (a *DiscordAnnouncer) Handle(ctx context.Context, event events.Event) {
	embed := BuildAnnouncement(event)
	if embed == nil {
		return
	}

	if _, err := a.session.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"channelID": a.channelID,
			"error":     err,
		}).Error("Failed to post lottery announcement")
	}
}

// BuildAnnouncement renders an event as an embed, or nil if it is not announced
func BuildAnnouncement(event events.Event) *discordgo.MessageEmbed {
	switch e := event.(type) {
	case events.LotteryConfiguredEvent:
		return &discordgo.MessageEmbed{
			Title:       "🎟️ New Lottery",
			Description: fmt.Sprintf("Lottery **%s** is configured.", e.Namespace),
			Color:       colorInfo,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Sales Open", Value: fmt.Sprintf("slot %d", e.StartSlot), Inline: true},
				{Name: "Sales Close", Value: fmt.Sprintf("slot %d", e.EndSlot), Inline: true},
				{Name: "Ticket Price", Value: fmt.Sprintf("%d", e.TicketPrice), Inline: true},
			},
		}
	case events.RandomnessCommittedEvent:
		return &discordgo.MessageEmbed{
			Title:       "🔒 Randomness Committed",
			Description: fmt.Sprintf("Lottery **%s** committed to record `%s` at slot %d.", e.Namespace, e.Record, e.Slot),
			Color:       colorInfo,
		}
	case events.WinnerChosenEvent:
		return &discordgo.MessageEmbed{
			Title:       "🏆 Winner Chosen",
			Description: fmt.Sprintf("Ticket **#%d** wins lottery **%s**!", e.Winner, e.Namespace),
			Color:       colorSuccess,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Tickets Sold", Value: fmt.Sprintf("%d", e.TotalTickets), Inline: true},
				{Name: "Pot", Value: fmt.Sprintf("%d", e.PotAmount), Inline: true},
			},
		}
	case events.PrizeClaimedEvent:
		if e.Amount == 0 {
			return nil
		}
		return &discordgo.MessageEmbed{
			Title:       "💰 Prize Claimed",
			Description: fmt.Sprintf("Ticket **#%d** claimed **%d** from lottery **%s**.", e.Sequence, e.Amount, e.Namespace),
			Color:       colorPrize,
		}
	default:
		return nil
	}
}
