package handlers

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/axatsa/Sadaka-bot/internal/locales"
	"github.com/axatsa/Sadaka-bot/internal/models"
	"github.com/axatsa/Sadaka-bot/internal/validate"
)

// newMarathonDuration is the span of an admin-created marathon.
const newMarathonDuration = 30 * 24 * time.Hour

// The admin panel is Russian-only, like the rest of the operator surface.

func (h *BotHandler) handleAdminCommand(message *tgbotapi.Message) {
	if h.cfg.AdminPassword == "" {
		return
	}
	h.sendText(message.Chat.ID, "Введите пароль администратора:")
	h.userStates[message.From.ID] = &userState{Step: stepAwaitingAdminPass}
}

func (h *BotHandler) handleAdminInput(ctx context.Context, message *tgbotapi.Message, state *userState) {
	switch state.Step {
	case stepAwaitingAdminPass:
		h.receiveAdminPassword(message, state)
	case stepAwaitingAdminGoal:
		h.receiveMarathonGoal(ctx, message, state)
	}
}

func (h *BotHandler) receiveAdminPassword(message *tgbotapi.Message, state *userState) {
	if message.Text != h.cfg.AdminPassword {
		delete(h.userStates, message.From.ID)
		h.sendText(message.Chat.ID, "Неверный пароль.")
		log.Warn().Int64("user_id", message.From.ID).Msg("failed admin login")
		return
	}
	state.AdminAuthed = true
	state.Step = ""
	h.sendAdminMenu(message.Chat.ID)
}

func adminMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Новый марафон", "admin_add_marathon")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика марафона", "admin_marathon_stats")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Общая статистика", "admin_general_stats")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚪 Выйти", "admin_exit")),
	)
}

func (h *BotHandler) sendAdminMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Панель администратора")
	msg.ReplyMarkup = adminMenuKeyboard()
	h.send(msg)
}

func (h *BotHandler) handleAdminCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	state, ok := h.userStates[query.From.ID]
	if !ok || !state.AdminAuthed {
		h.answerCallback(query, "Сессия администратора истекла. Введите /admin.")
		return
	}

	switch query.Data {
	case "admin_menu":
		state.Step = ""
		h.editText(query, "Панель администратора", ptr(adminMenuKeyboard()))
		h.answerCallback(query, "")
	case "admin_add_marathon":
		h.confirmAddMarathon(ctx, query)
	case "admin_confirm_add_marathon":
		state.Step = stepAwaitingAdminGoal
		h.editText(query, "Введите целевую сумму марафона (в сумах):", nil)
		h.answerCallback(query, "")
	case "admin_marathon_stats":
		h.showAdminMarathonStats(ctx, query)
	case "admin_general_stats":
		h.showAdminGeneralStats(ctx, query)
	case "admin_exit":
		delete(h.userStates, query.From.ID)
		language := h.userLanguage(ctx, query.From.ID)
		h.editText(query, locales.Text(language, "main_menu"), ptr(mainMenuKeyboard(language)))
		h.answerCallback(query, "")
	}
}

func (h *BotHandler) confirmAddMarathon(ctx context.Context, query *tgbotapi.CallbackQuery) {
	text := "Создать новый марафон на 30 дней?"
	if marathon, err := h.service.ActiveMarathon(ctx); err == nil && marathon != nil {
		text = "Сейчас идёт активный марафон. Новый марафон завершит текущий. Продолжить?"
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, создать", "admin_confirm_add_marathon")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "admin_menu")),
	)
	h.editText(query, text, &keyboard)
	h.answerCallback(query, "")
}

func (h *BotHandler) receiveMarathonGoal(ctx context.Context, message *tgbotapi.Message, state *userState) {
	goal, err := validate.MarathonGoal(message.Text)
	if err != nil {
		h.sendText(message.Chat.ID, h.errorText("ru", err))
		return
	}

	start := time.Now()
	end := start.Add(newMarathonDuration)
	marathon, err := h.service.StartMarathon(ctx, goal, start, end)
	if err != nil {
		log.Error().Err(err).Msg("start marathon")
		h.sendText(message.Chat.ID, "Не удалось создать марафон. Попробуйте ещё раз.")
		return
	}

	state.Step = ""
	h.sendText(message.Chat.ID, "Марафон создан. Цель: "+locales.FormatNumber(marathon.GoalAmount)+" сум.")
	h.broadcastNewMarathon(ctx, marathon)
	h.sendAdminMenu(message.Chat.ID)
}

// broadcastNewMarathon announces the marathon to every known user in their
// own language. A blocked or dead chat never aborts the loop.
func (h *BotHandler) broadcastNewMarathon(ctx context.Context, marathon *models.Marathon) {
	users, err := h.service.AllUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list users for broadcast")
		return
	}

	sent := 0
	for _, user := range users {
		text := locales.Textf(user.Language, "new_marathon_started",
			"goal", locales.FormatNumber(marathon.GoalAmount),
			"start_date", marathon.StartDate.Format(models.DateLayout),
			"end_date", marathon.EndDate.Format(models.DateLayout),
		)
		if _, err := h.bot.Send(tgbotapi.NewMessage(user.ID, text)); err != nil {
			log.Warn().Err(err).Int64("user_id", user.ID).Msg("broadcast delivery failed")
			continue
		}
		sent++
	}
	log.Info().Int("sent", sent).Int("total", len(users)).Msg("new marathon broadcast")
}

func (h *BotHandler) showAdminMarathonStats(ctx context.Context, query *tgbotapi.CallbackQuery) {
	marathon, stats, err := h.service.MarathonOverview(ctx)
	if errors.Is(err, models.ErrNoActiveMarathon) {
		h.editText(query, "Сейчас нет активного марафона.", ptr(adminBackKeyboard()))
		h.answerCallback(query, "")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("admin marathon stats")
		h.answerCallback(query, "Ошибка, попробуйте ещё раз.")
		return
	}

	text := "📊 Активный марафон\n\n" +
		"🎯 Цель: " + locales.FormatNumber(marathon.GoalAmount) + " сум\n" +
		"💰 Собрано: " + locales.FormatNumber(stats.TotalCollected) + " сум\n" +
		"📈 Выполнено: " + locales.FormatFloat(float64(stats.Percent), 0) + "%\n" +
		"👥 Участники: " + locales.FormatFloat(float64(stats.ParticipantsCount), 0) + "\n" +
		"📅 Период: " + marathon.StartDate.Format(models.DateLayout) + " - " + marathon.EndDate.Format(models.DateLayout)
	h.editText(query, text, ptr(adminBackKeyboard()))
	h.answerCallback(query, "")
}

func (h *BotHandler) showAdminGeneralStats(ctx context.Context, query *tgbotapi.CallbackQuery) {
	stats, err := h.service.GeneralStats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("admin general stats")
		h.answerCallback(query, "Ошибка, попробуйте ещё раз.")
		return
	}

	text := "📈 Общая статистика\n\n" +
		"👥 Пользователи: " + locales.FormatFloat(float64(stats.UsersCount), 0) + "\n" +
		"🏃 Марафоны: " + locales.FormatFloat(float64(stats.MarathonsCount), 0) + "\n" +
		"🤲 Дуа: " + locales.FormatFloat(float64(stats.DuasCount), 0) + "\n" +
		"💰 Всего собрано: " + locales.FormatNumber(stats.TotalDonations) + " сум"
	h.editText(query, text, ptr(adminBackKeyboard()))
	h.answerCallback(query, "")
}

func adminBackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Назад", "admin_menu")),
	)
}
