package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokenlottery/bot/common"
	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	gethcommon "github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

const commandTimeout = 5 * time.Second

// LotteryReader is the read side of the lottery the bot exposes
type LotteryReader interface {
	GetLottery(ctx context.Context, namespace string) (*interfaces.LotteryView, error)
	GetAccount(ctx context.Context, address gethcommon.Address) (*entities.Account, error)
}

// Bot answers /lottery slash commands
type Bot struct {
	session          *discordgo.Session
	lottery          LotteryReader
	defaultNamespace string
	commands         []*discordgo.ApplicationCommand
}

// New attaches the command handlers to an open session and registers the commands
func New(session *discordgo.Session, lottery LotteryReader, defaultNamespace string) (*Bot, error) {
	bot := &Bot{
		session:          session,
		lottery:          lottery,
		defaultNamespace: defaultNamespace,
	}

	session.AddHandler(bot.handleCommands)

	if err := bot.registerCommands(); err != nil {
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Close removes the registered commands
func (b *Bot) Close() error {
	for _, cmd := range b.commands {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, "", cmd.ID); err != nil {
			log.WithError(err).Warnf("Failed to delete '%s' command", cmd.Name)
		}
	}
	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	if data.Name != commandName {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	embed, err := b.resolve(ctx, data)
	if err != nil {
		common.RespondWithError(s, i, userMessage(err))
		return
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.WithError(err).Error("Error responding to lottery command")
	}
}

// resolve turns a /lottery invocation into the embed to reply with
func (b *Bot) resolve(ctx context.Context, data discordgo.ApplicationCommandInteractionData) (*discordgo.MessageEmbed, error) {
	if len(data.Options) == 0 {
		return nil, errUnknownSubcommand
	}

	sub := data.Options[0]
	options := optionMap(sub.Options)

	switch sub.Name {
	case subcommandStatus:
		namespace := b.defaultNamespace
		if opt, ok := options["namespace"]; ok {
			namespace = opt.StringValue()
		}

		view, err := b.lottery.GetLottery(ctx, namespace)
		if err != nil {
			return nil, err
		}
		return StatusEmbed(view), nil

	case subcommandBalance:
		opt, ok := options["address"]
		if !ok || !gethcommon.IsHexAddress(opt.StringValue()) {
			return nil, errInvalidAddress
		}

		account, err := b.lottery.GetAccount(ctx, gethcommon.HexToAddress(opt.StringValue()))
		if err != nil {
			return nil, err
		}
		return BalanceEmbed(account), nil
	}

	return nil, errUnknownSubcommand
}

var (
	errUnknownSubcommand = errors.New("unknown subcommand")
	errInvalidAddress    = errors.New("address must be a 0x-prefixed hex address")
)

func userMessage(err error) string {
	var lotteryErr *entities.LotteryError
	switch {
	case errors.As(err, &lotteryErr):
		return lotteryErr.Message
	case errors.Is(err, errInvalidAddress), errors.Is(err, errUnknownSubcommand):
		return err.Error()
	}

	log.WithError(err).Error("Lottery command failed")
	return "Something went wrong, try again later."
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
