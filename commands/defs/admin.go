package defs

import "github.com/bwmarrin/discordgo"

var minTierNumber = 1.0
var minLengthDays = -1.0
var minStackLimit = -1.0

var PunishmentConfig = &discordgo.ApplicationCommand{
	Name:        "punishment-config",
	Description: "Manage punishment types, tiers, and stacking rules",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add-type",
			Description: "Add a new punishment type",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Name of the punishment type",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove-type",
			Description: "Remove a punishment type and all of its tiers",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "type",
					Description:  "Punishment type to remove",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add-tier",
			Description: "Add a tier to a punishment type",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "type",
					Description:  "Punishment type",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "tier",
					Description: "Tier number",
					Required:    true,
					MinValue:    &minTierNumber,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "length_days",
					Description: "Duration in days (-1 for permanent, omit for no expiry)",
					Required:    false,
					MinValue:    &minLengthDays,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "Category label for categorized types",
					Required:    false,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove-tier",
			Description: "Remove a tier by its ID",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "tier_id",
					Description: "Tier ID (see list-tiers)",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "set-stacking",
			Description: "Configure whether a type stacks and its limit",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "type",
					Description:  "Punishment type",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "stackable",
					Description: "Whether multiple active records of this type may coexist",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Maximum active records when stackable (-1 for unlimited)",
					Required:    false,
					MinValue:    &minStackLimit,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "set-nonconcurrency",
			Description: "Set the types that cannot be active alongside a type",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "type",
					Description:  "Punishment type",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "blocked_types",
					Description: "Comma-separated type names, or 'none' to clear",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list-types",
			Description: "List configured punishment types",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list-tiers",
			Description: "List the tiers of a punishment type",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "type",
					Description:  "Punishment type",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list-all",
			Description: "List every type with its tiers and stacking rules",
		},
	},
}

var NotificationSettings = &discordgo.ApplicationCommand{
	Name:        "notification-settings",
	Description: "Configure where punishment notifications are sent",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "set-channel",
			Description: "Set the notification channel for this server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to send notifications to",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "view",
			Description: "Show the current notification settings",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "disable",
			Description: "Disable punishment notifications for this server",
		},
	},
}

var SystemInfo = &discordgo.ApplicationCommand{
	Name:        "system-info",
	Description: "Display bot and system status information",
}
