package scheduler

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/axatsa/Sadaka-bot/internal/locales"
	"github.com/axatsa/Sadaka-bot/internal/models"
	"github.com/axatsa/Sadaka-bot/internal/service"
)

// Reminder times, bot-local.
const (
	morningSpec   = "30 7 * * *"
	afternoonSpec = "50 17 * * *"
	eveningSpec   = "0 20 * * *"
)

// Scheduler fans daily reminders out to marathon participants. Each run gets
// a correlation id so a single user's delivery failure can be traced back to
// the run it belonged to.
type Scheduler struct {
	bot     *tgbotapi.BotAPI
	service *service.Service
	cron    *cron.Cron
}

func New(bot *tgbotapi.BotAPI, svc *service.Service) *Scheduler {
	return &Scheduler{
		bot:     bot,
		service: svc,
		cron:    cron.New(),
	}
}

// Start registers the three daily reminders and starts the cron loop.
func (s *Scheduler) Start() error {
	jobs := []struct {
		spec string
		name string
		run  func()
	}{
		{morningSpec, "morning", s.morningReminder},
		{afternoonSpec, "afternoon", s.afternoonReminder},
		{eveningSpec, "evening", s.eveningReminder},
	}
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			return err
		}
		log.Info().Str("job", job.name).Str("spec", job.spec).Msg("reminder scheduled")
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// morningReminder asks every participant whether they intend to give today.
func (s *Scheduler) morningReminder() {
	ctx := context.Background()
	users, err := s.service.ActiveParticipants(ctx)
	if err != nil {
		log.Error().Err(err).Msg("morning reminder: list participants")
		return
	}

	s.fanOut("morning", users, func(user models.User) tgbotapi.Chattable {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(locales.Text(user.Language, "yes"), "morning_yes")),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(locales.Text(user.Language, "no"), "morning_no")),
		)
		msg := tgbotapi.NewMessage(user.ID, locales.Text(user.Language, "morning_reminder"))
		msg.ReplyMarkup = keyboard
		return msg
	})
}

// afternoonReminder nudges participants who have not acted on today yet.
func (s *Scheduler) afternoonReminder() {
	ctx := context.Background()
	users, err := s.service.ParticipantsWithoutCompletion(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("afternoon reminder: list participants")
		return
	}

	s.fanOut("afternoon", users, func(user models.User) tgbotapi.Chattable {
		return tgbotapi.NewMessage(user.ID, locales.Text(user.Language, "afternoon_reminder"))
	})
}

// eveningReminder asks participants still without a ledger entry to report
// the day, completed or not.
func (s *Scheduler) eveningReminder() {
	ctx := context.Background()
	users, err := s.service.ParticipantsWithoutCompletion(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("evening reminder: list participants")
		return
	}

	s.fanOut("evening", users, func(user models.User) tgbotapi.Chattable {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(locales.Text(user.Language, "yes_completed"), "mark_completed")),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(locales.Text(user.Language, "no_not_completed"), "mark_not_completed")),
		)
		msg := tgbotapi.NewMessage(user.ID, locales.Text(user.Language, "evening_reminder"))
		msg.ReplyMarkup = keyboard
		return msg
	})
}

// fanOut delivers one message per user. A blocked chat or an API error is
// logged against the run id and skipped, never aborting the run.
func (s *Scheduler) fanOut(job string, users []models.User, build func(models.User) tgbotapi.Chattable) {
	runID := uuid.NewString()
	sent := 0
	for _, user := range users {
		if _, err := s.bot.Send(build(user)); err != nil {
			log.Warn().Err(err).
				Str("run_id", runID).
				Str("job", job).
				Int64("user_id", user.ID).
				Msg("reminder delivery failed")
			continue
		}
		sent++
	}
	log.Info().
		Str("run_id", runID).
		Str("job", job).
		Int("sent", sent).
		Int("total", len(users)).
		Msg("reminder run finished")
}
