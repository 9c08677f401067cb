package handlers

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"punishment-bot/bot"
	"punishment-bot/model"
	"punishment-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleAutocomplete answers type and tier autocomplete queries for the issue
// and punishment-config commands.
func HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	options := data.Options
	// Subcommand-style commands nest their options one level down.
	if len(options) == 1 && options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		options = options[0].Options
	}

	var focused *discordgo.ApplicationCommandInteractionDataOption
	for _, opt := range options {
		if opt.Focused {
			focused = opt
			break
		}
	}
	if focused == nil {
		return
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch focused.Name {
	case "type":
		choices = typeChoices(b, focused.StringValue())
	case "tier":
		choices = tierChoices(b, strOpt(optionMap(options), "type"))
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		log.Printf("Failed to respond to autocomplete: %v", err)
	}
}

func typeChoices(b *bot.Bot, prefix string) []*discordgo.ApplicationCommandOptionChoice {
	types, err := b.Punish.Config().ListTypes()
	if err != nil {
		log.Printf("Failed to list punishment types for autocomplete: %v", err)
		return nil
	}

	names := make([]string, 0, len(types))
	for name := range types {
		if strings.HasPrefix(name, strings.ToLower(strings.TrimSpace(prefix))) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > 25 {
		names = names[:25]
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, name := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  capitalizeFirst(name),
			Value: name,
		})
	}
	return choices
}

func tierChoices(b *bot.Bot, typeName string) []*discordgo.ApplicationCommandOptionChoice {
	cfg := b.Punish.Config()
	ptype, err := cfg.GetTypeByName(typeName)
	if err != nil {
		return []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Select a valid punishment type first", Value: "invalid"},
		}
	}
	tiers, err := cfg.ListTiers(ptype.TypeID)
	if err != nil {
		log.Printf("Failed to list tiers for autocomplete: %v", err)
		return nil
	}
	if len(tiers) == 0 {
		return []*discordgo.ApplicationCommandOptionChoice{
			{Name: "No tier required", Value: "none"},
		}
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(tiers))
	for _, tier := range tiers {
		if len(choices) == 25 {
			break
		}
		if tier.Category.Valid && tier.Category.String != "" {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  tier.Category.String,
				Value: "category:" + tier.Category.String,
			})
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("Tier %d (%s)", tier.TierNumber, utils.FormatTierDuration(nullableLength(tier))),
			Value: fmt.Sprintf("tier:%d", tier.TierNumber),
		})
	}
	return choices
}

func nullableLength(tier model.PunishmentTier) *int64 {
	if !tier.LengthDays.Valid {
		return nil
	}
	v := tier.LengthDays.Int64
	return &v
}
