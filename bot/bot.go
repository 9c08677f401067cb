package bot

import (
	"sync/atomic"

	"punishment-bot/model"
	"punishment-bot/notify"
	"punishment-bot/punish"
	"punishment-bot/utils/roblox"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Bot ties the Discord session to the punishment engine and its collaborators.
type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	Punish   *punish.Service
	Resolver *roblox.Client
	Notifier *notify.Notifier

	config    atomic.Value // *model.Config
	db        *sqlx.DB
	scheduler *Scheduler
	done      chan struct{}
}

func New(cfg *model.Config, db *sqlx.DB, service *punish.Service, resolver *roblox.Client) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds
	dg.StateEnabled = true

	b := &Bot{
		Session:  dg,
		Punish:   service,
		Resolver: resolver,
		Notifier: notify.New(dg, db),
		db:       db,
		done:     make(chan struct{}),
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.db
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

// Close stops the scheduler and the Discord session.
func (b *Bot) Close() {
	close(b.done)
	b.scheduler.Stop()
	b.Session.Close()
}
