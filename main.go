package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/axatsa/Sadaka-bot/internal/config"
	"github.com/axatsa/Sadaka-bot/internal/handlers"
	"github.com/axatsa/Sadaka-bot/internal/repository"
	"github.com/axatsa/Sadaka-bot/internal/scheduler"
	"github.com/axatsa/Sadaka-bot/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()
	if cfg.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is not set")
	}

	db, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("init schema")
	}

	svc := service.New(repo)

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("create bot")
	}
	log.Info().Str("username", bot.Self.UserName).Msg("authorized on telegram")

	handler := handlers.NewBotHandler(bot, svc, cfg)

	reminders := scheduler.New(bot, svc)
	if err := reminders.Start(); err != nil {
		log.Fatal().Err(err).Msg("start reminder scheduler")
	}
	defer reminders.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}
	updates := bot.GetUpdatesChan(u)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msg("bot started")
	for {
		select {
		case update := <-updates:
			handler.HandleUpdate(update)
		case sig := <-stop:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			bot.StopReceivingUpdates()
			return
		}
	}
}
