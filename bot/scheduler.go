package bot

import (
	"log"
	"sync"
	"time"

	"punishment-bot/tasks"
)

// Scheduler runs the daily expiry sweep. The sweep is read-only and
// independent of command traffic; it shares nothing with in-flight lifecycle
// operations beyond the store itself.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(b *Bot) *Scheduler {
	return &Scheduler{bot: b, done: make(chan struct{})}
}

// Start begins the daily task loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runDailyTasks()
}

// Stop terminates the task loop gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) runDailyTasks() {
	defer s.wg.Done()

	for {
		now := time.Now()
		runHour := s.bot.GetConfig().SweepHour
		next := time.Date(now.Year(), now.Month(), now.Day(), runHour, 0, 0, 0, now.Location())
		if !now.Before(next) {
			next = next.AddDate(0, 0, 1)
		}

		log.Printf("Next expiry sweep scheduled for: %v", next)
		select {
		case <-time.After(next.Sub(now)):
			log.Println("Running expired punishments check...")
			tasks.RunExpirySweep(s.bot.GetDB(), s.bot.Resolver, s.bot.Notifier)
		case <-s.done:
			return
		}
	}
}
