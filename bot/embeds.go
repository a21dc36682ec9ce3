package bot

import (
	"fmt"
	"strings"

	"tokenlottery/bot/common"
	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

const (
	colorOpen    = 0x2ECC71
	colorPending = 0x3498DB
	colorDone    = 0xF1C40F
	colorNeutral = 0x95A5A6
)

var phaseLabels = map[entities.LotteryPhase]string{
	entities.LotteryPhaseConfigured:          "⏳ Not yet open",
	entities.LotteryPhaseOpen:                "🎟️ Selling tickets",
	entities.LotteryPhaseSalesClosed:         "🔒 Sales closed",
	entities.LotteryPhaseRandomnessCommitted: "🎲 Awaiting draw",
	entities.LotteryPhaseWinnerChosen:        "🏆 Winner drawn",
	entities.LotteryPhaseClaimed:             "✅ Prize claimed",
}

// StatusEmbed renders a lottery snapshot
func StatusEmbed(view *interfaces.LotteryView) *discordgo.MessageEmbed {
	l := view.Lottery

	fields := []*discordgo.MessageEmbedField{
		{Name: "Phase", Value: phaseLabel(view.Phase), Inline: true},
		{Name: "Pot", Value: common.FormatBalance(l.PotAmount), Inline: true},
		{Name: "Tickets", Value: common.FormatBalance(l.TotalTickets), Inline: true},
		{Name: "Price", Value: common.FormatBalance(l.TicketPrice), Inline: true},
		{Name: "Sale window", Value: fmt.Sprintf("slots %d – %d", l.StartSlot, l.EndSlot), Inline: true},
		{Name: "Current slot", Value: fmt.Sprintf("%d", view.CurrentSlot), Inline: true},
	}

	if l.RandomnessRecord != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Randomness",
			Value: fmt.Sprintf("`%s`", common.ShortAddress(*l.RandomnessRecord)),
		})
	}

	if l.WinnerChosen {
		winner := fmt.Sprintf("Ticket #%d", l.Winner)
		if l.PrizeClaimedAt != nil {
			winner += " · claimed " + common.FormatDiscordTimestamp(*l.PrizeClaimedAt, "R")
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Winner", Value: winner})
	}

	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Lottery · %s", l.Namespace),
		Color:  phaseColor(view.Phase),
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: "Authority " + common.ShortAddress(l.Authority)},
	}
}

// BalanceEmbed renders an account balance
func BalanceEmbed(account *entities.Account) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Balance",
		Description: fmt.Sprintf("`%s` holds **%s**", account.Address.Hex(), common.FormatBalance(account.Balance)),
		Color:       colorNeutral,
	}
}

func phaseLabel(phase entities.LotteryPhase) string {
	if label, ok := phaseLabels[phase]; ok {
		return label
	}
	return strings.ReplaceAll(string(phase), "_", " ")
}

func phaseColor(phase entities.LotteryPhase) int {
	switch phase {
	case entities.LotteryPhaseOpen:
		return colorOpen
	case entities.LotteryPhaseWinnerChosen, entities.LotteryPhaseClaimed:
		return colorDone
	case entities.LotteryPhaseSalesClosed, entities.LotteryPhaseRandomnessCommitted:
		return colorPending
	}
	return colorNeutral
}
