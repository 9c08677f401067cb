package handlers

import (
	"errors"
	"fmt"
	"log"

	"punishment-bot/bot"
	"punishment-bot/notify"
	"punishment-bot/punish"
	"punishment-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleIssueCommand issues a punishment against a Roblox user.
func HandleIssueCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	selector, err := punish.ParseSelector(strOpt(opts, "tier"))
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, err.Error())
		return
	}

	result, err := b.Punish.Issue(punish.IssueRequest{
		Username: strOpt(opts, "username"),
		TypeName: strOpt(opts, "type"),
		Selector: selector,
		Reason:   strOpt(opts, "reason"),
		Evidence: strOpt(opts, "evidence"),
		IssuedBy: actorID(i),
	})
	if err != nil {
		replyServiceError(s, i, b, "Issue", err)
		return
	}

	embed := notify.ActionEmbed("issue", result.Record, notify.ActionEmbedOptions{
		Username: result.Username,
		ActorID:  actorID(i),
	})
	if avatar := b.Resolver.GetAvatarURL(result.SubjectID); avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatar}
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
	b.Notifier.Send(i.GuildID, embed)
}

// HandleUpdateCommand applies in-place edits to a punishment record.
func HandleUpdateCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	recordID := intOpt(opts, "record_id")

	var patch punish.UpdatePatch
	if reason := strOpt(opts, "reason"); reason != "" {
		patch.Reason = &reason
	}
	if evidence := strOpt(opts, "evidence"); evidence != "" {
		patch.Evidence = &evidence
	}
	if tierOpt, ok := opts["tier"]; ok {
		tier := tierOpt.IntValue()
		patch.Tier = &tier
	}

	result, err := b.Punish.Update(recordID, patch, actorID(i))
	if err != nil {
		replyServiceError(s, i, b, "Update", err)
		return
	}

	username := b.Resolver.GetUsername(result.Record.SubjectID)
	embed := notify.ActionEmbed("update", result.Record, notify.ActionEmbedOptions{
		Username: username,
		ActorID:  actorID(i),
		Changes:  result.Changes,
	})
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
	b.Notifier.Send(i.GuildID, embed)
}

// HandleRemoveCommand deactivates a punishment record.
func HandleRemoveCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	recordID := intOpt(opts, "record_id")
	reason := strOpt(opts, "reason")

	result, err := b.Punish.Remove(recordID, actorID(i), reason)
	if err != nil {
		replyServiceError(s, i, b, "Remove", err)
		return
	}

	username := b.Resolver.GetUsername(result.Record.SubjectID)
	embed := notify.ActionEmbed("remove", result.Record, notify.ActionEmbedOptions{
		Username:      username,
		ActorID:       actorID(i),
		RemovalReason: result.Record.DeactivationReason.String,
	})
	if result.NewPrimary != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "New Primary Record",
			Value: fmt.Sprintf("#%d (%s)", result.NewPrimary.RecordID, capitalizeFirst(result.NewPrimary.TypeName)),
		})
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
	b.Notifier.Send(i.GuildID, embed)
}

// HandleDeleteCommand permanently erases a punishment record.
func HandleDeleteCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	recordID := intOpt(opts, "record_id")

	result, err := b.Punish.Delete(recordID)
	if err != nil {
		replyServiceError(s, i, b, "Delete", err)
		return
	}

	username := b.Resolver.GetUsername(result.Record.SubjectID)
	embed := notify.ActionEmbed("delete", result.Record, notify.ActionEmbedOptions{
		Username: username,
		ActorID:  actorID(i),
	})
	if result.SummaryErased {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Subject Record",
			Value: "Erased (no punishment records remain)",
		})
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
	b.Notifier.Send(i.GuildID, embed)
}

// HandleGetCommand looks up punishment information by username or record ID.
func HandleGetCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	username := strOpt(opts, "username")
	if _, ok := opts["record_id"]; !ok && username == "" {
		utils.SendFollowUpError(s, i.Interaction, "Provide a username or a record ID.")
		return
	}

	if recordOpt, ok := opts["record_id"]; ok {
		record, err := b.Punish.GetByRecord(recordOpt.IntValue())
		if err != nil {
			replyServiceError(s, i, b, "Get", err)
			return
		}
		name := b.Resolver.GetUsername(record.SubjectID)
		utils.SendFollowUpEmbed(s, i.Interaction, recordEmbed(record, name))
		return
	}

	subjectID, err := b.Resolver.GetIDByUsername(username)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Could not find a Roblox user named %q.", username))
		return
	}
	summary, records, err := b.Punish.GetBySubject(subjectID)
	if errors.Is(err, punish.ErrRecordNotFound) {
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ **%s** has no punishment records.", username))
		return
	}
	if err != nil {
		replyServiceError(s, i, b, "Get", err)
		return
	}

	embed := subjectEmbed(summary.SubjectID, username, summary, len(records))
	if avatar := b.Resolver.GetAvatarURL(subjectID); avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatar}
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
}
