package defs

import "github.com/bwmarrin/discordgo"

var Issue = &discordgo.ApplicationCommand{
	Name:        "issue",
	Description: "Issue a punishment to a Roblox user",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "username",
			Description: "Roblox username",
			Required:    true,
		},
		{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "type",
			Description:  "Type of punishment",
			Required:     true,
			Autocomplete: true,
		},
		{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "tier",
			Description:  "Tier number (suspensions) or category (blacklists)",
			Required:     false,
			Autocomplete: true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for punishment",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "evidence",
			Description: "Evidence URL",
			Required:    false,
		},
	},
}

var Update = &discordgo.ApplicationCommand{
	Name:        "update",
	Description: "Update a punishment record",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "record_id",
			Description: "Punishment record ID",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "New reason for the punishment",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "evidence",
			Description: "New evidence URL",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "tier",
			Description: "New tier (for applicable punishment types)",
			Required:    false,
			MinValue:    &tierMinValue,
		},
	},
}

var tierMinValue = 1.0

var Remove = &discordgo.ApplicationCommand{
	Name:        "remove",
	Description: "Remove (deactivate) a punishment, keeping it in the record history",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "record_id",
			Description: "Punishment record ID",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for removal",
			Required:    false,
		},
	},
}

var Delete = &discordgo.ApplicationCommand{
	Name:        "delete",
	Description: "Permanently delete a punishment record and its history lines",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "record_id",
			Description: "Punishment record ID",
			Required:    true,
		},
	},
}

var Get = &discordgo.ApplicationCommand{
	Name:        "get",
	Description: "Get punishment information by username or record ID",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "username",
			Description: "Roblox username",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "record_id",
			Description: "Punishment record ID",
			Required:    false,
		},
	},
}

var Recap = &discordgo.ApplicationCommand{
	Name:        "recap",
	Description: "Run the expired punishments check now",
}
