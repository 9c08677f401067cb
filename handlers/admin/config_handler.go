// Package admin implements the configuration commands for punishment types,
// tiers, stacking rules, and notification settings.
package admin

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"punishment-bot/bot"
	"punishment-bot/utils"
	"punishment-bot/utils/database/punishconfig"

	"github.com/bwmarrin/discordgo"
)

// HandlePunishmentConfigCommand dispatches the punishment-config subcommands.
func HandlePunishmentConfigCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !canManageGuild(i) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	cfg := b.Punish.Config()
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "add-type":
		handleAddType(s, i, cfg, strOpt(opts, "name"))
	case "remove-type":
		handleRemoveType(s, i, cfg, strOpt(opts, "type"))
	case "add-tier":
		handleAddTier(s, i, cfg, opts)
	case "remove-tier":
		handleRemoveTier(s, i, cfg, intOpt(opts, "tier_id"))
	case "set-stacking":
		handleSetStacking(s, i, cfg, opts)
	case "set-nonconcurrency":
		handleSetNonConcurrency(s, i, cfg, opts)
	case "list-types":
		handleListTypes(s, i, cfg)
	case "list-tiers":
		handleListTiers(s, i, cfg, strOpt(opts, "type"))
	case "list-all":
		handleListAll(s, i, cfg)
	default:
		utils.SendFollowUpError(s, i.Interaction, "Unknown subcommand.")
	}
}

func handleAddType(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *punishconfig.Store, name string) {
	types, err := cfg.ListTypes()
	if err != nil {
		replyConfigError(s, i, err)
		return
	}
	if _, exists := types[strings.ToLower(strings.TrimSpace(name))]; exists {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Punishment type **%s** already exists.", name))
		return
	}

	// Type IDs continue the seeded 1001+ range.
	var nextID int64 = 1001
	for _, id := range types {
		if id >= nextID {
			nextID = id + 1
		}
	}
	if err := cfg.AddType(nextID, name, false, 1); err != nil {
		replyConfigError(s, i, err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Added punishment type **%s** (ID %d).", strings.ToLower(name), nextID))
}

func handleRemoveType(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *punishconfig.Store, name string) {
	removed, err := cfg.RemoveType(name)
	if err != nil {
		replyConfigError(s, i, err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Removed punishment type **%s** and all of its tiers.", removed.Name))
}

func handleAddTier(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *punishconfig.Store, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	var lengthDays *int64
	if opt, ok := opts["length_days"]; ok {
		v := opt.IntValue()
		lengthDays = &v
	}

	tier, err := cfg.AddTier(strOpt(opts, "type"), intOpt(opts, "tier"), lengthDays, strOpt(opts, "category"))
	if err != nil {
		replyConfigError(s, i, err)
		return
	}

	detail := utils.FormatTierDuration(lengthDays)
	if tier.Category.Valid && tier.Category.String != "" {
		detail = fmt.Sprintf("category %q, %s", tier.Category.String, detail)
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Added tier %d (%s), tier ID %d.", tier.TierNumber, detail, tier.TierID))
}

func handleRemoveTier(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *punishconfig.Store, tierID int64) {
	if err := cfg.RemoveTier(tierID); err != nil {
		replyConfigError(s, i, err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Removed tier %d.", tierID))
}

func handleSetStacking(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *punishconfig.Store, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	typeName := strOpt(opts, "type")
	stackable := false
	if opt, ok := opts["stackable"]; ok {
		stackable = opt.BoolValue()
	}
	var limit int64 = 1
	if opt, ok := opts["limit"]; ok {
		limit = opt.IntValue()
	}

	if err := cfg.SetStacking(typeName, stackable, limit); err != nil {
		replyConfigError(s, i, err)
		return
	}
	switch {
	case stackable && limit == -1:
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ **%s** now stacks without limit.", typeName))
	case stackable:
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ **%s** now stacks up to %d active record(s).", typeName, limit))
	default:
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ **%s** no longer stacks.", typeName))
	}
}

func handleSetNonConcurrency(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *punishconfig.Store, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	typeName := strOpt(opts, "type")
	raw := strings.TrimSpace(strOpt(opts, "blocked_types"))

	var ids []int64
	var blocked []string
	if !strings.EqualFold(raw, "none") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, err := cfg.GetTypeByName(part)
			if err != nil {
				utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Unknown punishment type: %s", part))
				return
			}
			ids = append(ids, t.TypeID)
			blocked = append(blocked, t.Name)
		}
	}

	if err := cfg.SetNonConcurrency(typeName, ids); err != nil {
		replyConfigError(s, i, err)
		return
	}
	if len(blocked) == 0 {
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ **%s** no longer blocks any other types.", typeName))
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ **%s** can no longer be active alongside: %s. Configure the reverse direction separately if desired.", typeName, strings.Join(blocked, ", ")))
}

func handleListTypes(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *punishconfig.Store) {
	lines, err := typeLines(cfg)
	if err != nil {
		replyConfigError(s, i, err)
		return
	}
	if len(lines) == 0 {
		utils.SendFollowUp(s, i.Interaction, "No punishment types configured.")
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       "Punishment Types",
		Color:       0x0099FF,
		Description: strings.Join(lines, "\n"),
	})
}

func handleListTiers(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *punishconfig.Store, typeName string) {
	ptype, err := cfg.GetTypeByName(typeName)
	if err != nil {
		replyConfigError(s, i, err)
		return
	}
	lines, err := tierLines(cfg, ptype.TypeID)
	if err != nil {
		replyConfigError(s, i, err)
		return
	}
	if len(lines) == 0 {
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("**%s** has no tiers.", ptype.Name))
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Tiers: %s", ptype.Name),
		Color:       0x0099FF,
		Description: strings.Join(lines, "\n"),
	})
}

func handleListAll(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *punishconfig.Store) {
	types, err := cfg.ListTypes()
	if err != nil {
		replyConfigError(s, i, err)
		return
	}
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	embed := &discordgo.MessageEmbed{
		Title: "Punishment Configuration",
		Color: 0x0099FF,
	}
	for _, name := range names {
		ptype, err := cfg.GetTypeByName(name)
		if err != nil {
			replyConfigError(s, i, err)
			return
		}
		lines, err := tierLines(cfg, ptype.TypeID)
		if err != nil {
			replyConfigError(s, i, err)
			return
		}
		value := describeType(cfg, ptype.Stackable, ptype.StackLimit, ptype.NonConcurrentWith)
		if len(lines) > 0 {
			value += "\n" + strings.Join(lines, "\n")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s (ID %d)", name, ptype.TypeID),
			Value: value,
		})
	}
	if len(embed.Fields) == 0 {
		utils.SendFollowUp(s, i.Interaction, "No punishment types configured.")
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
}

func typeLines(cfg *punishconfig.Store) ([]string, error) {
	types, err := cfg.ListTypes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		ptype, err := cfg.GetTypeByName(name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("**%s** (ID %d) — %s", name, ptype.TypeID,
			describeType(cfg, ptype.Stackable, ptype.StackLimit, ptype.NonConcurrentWith)))
	}
	return lines, nil
}

func tierLines(cfg *punishconfig.Store, typeID int64) ([]string, error) {
	tiers, err := cfg.ListTiers(typeID)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		if tier.Category.Valid && tier.Category.String != "" {
			lines = append(lines, fmt.Sprintf("`%d` Category: %s", tier.TierID, tier.Category.String))
			continue
		}
		var length *int64
		if tier.LengthDays.Valid {
			v := tier.LengthDays.Int64
			length = &v
		}
		lines = append(lines, fmt.Sprintf("`%d` Tier %d: %s", tier.TierID, tier.TierNumber, utils.FormatTierDuration(length)))
	}
	return lines, nil
}

func describeType(cfg *punishconfig.Store, stackable bool, stackLimit int64, nonConcurrentWith string) string {
	stacking := "not stackable"
	if stackable {
		stacking = fmt.Sprintf("stackable up to %d", stackLimit)
		if stackLimit == -1 {
			stacking = "stackable without limit"
		}
	}
	blockedIDs := punishconfig.DecodeNonConcurrent(nonConcurrentWith)
	if len(blockedIDs) == 0 {
		return stacking
	}
	blocked := make([]string, 0, len(blockedIDs))
	for _, id := range blockedIDs {
		if t, err := cfg.GetType(id); err == nil {
			blocked = append(blocked, t.Name)
		} else {
			blocked = append(blocked, fmt.Sprintf("#%d", id))
		}
	}
	return fmt.Sprintf("%s, blocks: %s", stacking, strings.Join(blocked, ", "))
}

func replyConfigError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, punishconfig.ErrTypeNotFound):
		utils.SendFollowUpError(s, i.Interaction, "Punishment type not found.")
	case errors.Is(err, punishconfig.ErrTierNotFound):
		utils.SendFollowUpError(s, i.Interaction, "Punishment tier not found.")
	default:
		log.Printf("Punishment config command failed: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "An internal error occurred. Please try again later.")
	}
}
