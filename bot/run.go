package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"punishment-bot/commands"
	"punishment-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// Run opens the session, registers slash commands, starts the scheduler, and
// blocks until interrupted.
func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	cfg := b.GetConfig()
	cmds := commands.GenerateCommands()

	b.RegisteredCommands = make([]*discordgo.ApplicationCommand, 0)
	if len(cfg.GuildIDs) == 0 {
		log.Println("Registering global commands...")
		b.registerCommands("", cmds)
	} else {
		for _, guildID := range cfg.GuildIDs {
			log.Printf("Registering commands for guild %s...", guildID)
			b.registerCommands(guildID, cmds)
		}
	}

	b.scheduler.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	if err := utils.LogInfo(cfg.LogWebhookURL, "System", "Startup", "Bot has started successfully."); err != nil {
		log.Printf("Failed to send startup log: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}

func (b *Bot) registerCommands(guildID string, cmds []*discordgo.ApplicationCommand) {
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, guildID, cmds)
	if err != nil {
		log.Printf("Cannot register commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registered...)
}
