package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/axatsa/Sadaka-bot/internal/config"
	"github.com/axatsa/Sadaka-bot/internal/locales"
	"github.com/axatsa/Sadaka-bot/internal/models"
	"github.com/axatsa/Sadaka-bot/internal/service"
	"github.com/axatsa/Sadaka-bot/internal/validate"
)

// Conversation steps for the per-user state machine. Only steps that wait
// for free-text input need an entry; button-to-button flow is stateless.
const (
	stepAwaitingDailyPlan    = "awaiting_daily_plan"
	stepAwaitingPseudonym    = "awaiting_pseudonym"
	stepAwaitingDailyAmount  = "awaiting_daily_amount"
	stepAwaitingDua          = "awaiting_dua"
	stepAwaitingSettingsPlan = "awaiting_settings_plan"
	stepAwaitingAdminPass    = "awaiting_admin_password"
	stepAwaitingAdminGoal    = "awaiting_admin_goal"
)

type userState struct {
	Step         string
	DuaAnonymous bool
	AdminAuthed  bool
}

// BotHandler routes Telegram updates into the service layer and renders the
// results. It keeps a per-user conversation step in memory, the persistent
// part of the user state lives in the store.
type BotHandler struct {
	bot        *tgbotapi.BotAPI
	service    *service.Service
	cfg        config.Config
	userStates map[int64]*userState
}

func NewBotHandler(bot *tgbotapi.BotAPI, svc *service.Service, cfg config.Config) *BotHandler {
	return &BotHandler{
		bot:        bot,
		service:    svc,
		cfg:        cfg,
		userStates: make(map[int64]*userState),
	}
}

func (h *BotHandler) HandleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		h.handleMessage(update.Message)
	}
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(update.CallbackQuery)
	}
}

func (h *BotHandler) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()
	userID := message.From.ID

	if err := h.service.RegisterUser(ctx, userID, message.From.UserName, message.From.FirstName); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("register user")
	}

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			h.handleStart(ctx, message)
		case "admin":
			h.handleAdminCommand(message)
		}
		return
	}

	if state, ok := h.userStates[userID]; ok {
		h.handleStateInput(ctx, message, state)
	}
}

func (h *BotHandler) handleStateInput(ctx context.Context, message *tgbotapi.Message, state *userState) {
	switch state.Step {
	case stepAwaitingDailyPlan:
		h.receiveDailyPlan(ctx, message)
	case stepAwaitingPseudonym:
		h.receivePseudonym(ctx, message)
	case stepAwaitingDailyAmount:
		h.receiveDailyAmount(ctx, message)
	case stepAwaitingDua:
		h.receiveDuaText(ctx, message, state)
	case stepAwaitingSettingsPlan:
		h.receiveSettingsPlan(ctx, message)
	case stepAwaitingAdminPass, stepAwaitingAdminGoal:
		h.handleAdminInput(ctx, message, state)
	}
}

// Onboarding

func (h *BotHandler) handleStart(ctx context.Context, message *tgbotapi.Message) {
	user, err := h.service.GetUser(ctx, message.From.ID)
	if err != nil {
		log.Error().Err(err).Msg("get user on /start")
		return
	}
	if user != nil && user.State == models.StateInMarathon {
		h.sendMainMenu(message.Chat.ID, user.Language)
		return
	}
	h.showLanguageSelection(message.Chat.ID)
}

func (h *BotHandler) showLanguageSelection(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("O'zbekcha (lotin)", "lang_uz_latin")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("O'zbekcha (кирилл)", "lang_uz_cyrillic")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Русский", "lang_ru")),
	)
	msg := tgbotapi.NewMessage(chatID, "Tilni tanlang / Выберите язык:")
	msg.ReplyMarkup = keyboard
	h.send(msg)
}

func (h *BotHandler) selectLanguage(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	language := strings.TrimPrefix(query.Data, "lang_")
	if language != "uz_latin" && language != "uz_cyrillic" && language != "ru" {
		language = locales.DefaultLanguage
	}

	if err := h.service.SetLanguage(ctx, userID, language); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("set language")
		h.answerCallback(query, "")
		return
	}

	h.editText(query, locales.Text(language, "onboarding_welcome"), nil)
	h.askDailyPlan(query.Message.Chat.ID, language)
	h.answerCallback(query, "")
}

func (h *BotHandler) askDailyPlan(chatID int64, language string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "add_later"), "skip_daily_plan")),
	)
	msg := tgbotapi.NewMessage(chatID, locales.Text(language, "ask_daily_plan"))
	msg.ReplyMarkup = keyboard
	h.send(msg)
	h.setStep(chatID, stepAwaitingDailyPlan)
}

func (h *BotHandler) receiveDailyPlan(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	language := h.userLanguage(ctx, userID)

	proj, err := h.service.SetDailyPlan(ctx, userID, message.Text)
	if err != nil {
		h.sendText(message.Chat.ID, h.errorText(language, err))
		return
	}

	h.sendText(message.Chat.ID, locales.Textf(language, "daily_plan_accepted",
		"daily_plan", locales.FormatNumber(proj.DailyPlan),
		"total_projected", locales.FormatNumber(proj.TotalProjected),
		"contribution_percent", locales.FormatFloat(proj.ContributionPercent, 2),
	))
	h.askDisplayName(message.Chat.ID, language)
}

func (h *BotHandler) askDisplayName(chatID int64, language string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "keep_my_name"), "name_keep")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "participate_anonymous"), "name_anonymous")),
	)
	msg := tgbotapi.NewMessage(chatID, locales.Text(language, "ask_display_name"))
	msg.ReplyMarkup = keyboard
	h.send(msg)
	delete(h.userStates, chatID)
}

func (h *BotHandler) keepName(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	language := h.userLanguage(ctx, userID)

	if err := h.service.SetDisplayName(ctx, userID, query.From.FirstName, false); err != nil {
		// Telegram first names can fail our validation; fall back to a pseudonym.
		h.editText(query, locales.Text(language, "enter_pseudonym"), nil)
		h.setStep(userID, stepAwaitingPseudonym)
		h.answerCallback(query, "")
		return
	}
	h.completeOnboarding(ctx, query.Message.Chat.ID, userID, language)
	h.answerCallback(query, "")
}

func (h *BotHandler) chooseAnonymousName(ctx context.Context, query *tgbotapi.CallbackQuery) {
	language := h.userLanguage(ctx, query.From.ID)
	h.editText(query, locales.Text(language, "enter_pseudonym"), nil)
	h.setStep(query.From.ID, stepAwaitingPseudonym)
	h.answerCallback(query, "")
}

func (h *BotHandler) receivePseudonym(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	language := h.userLanguage(ctx, userID)

	if err := h.service.SetDisplayName(ctx, userID, message.Text, true); err != nil {
		h.sendText(message.Chat.ID, h.errorText(language, err))
		return
	}
	h.completeOnboarding(ctx, message.Chat.ID, userID, language)
}

func (h *BotHandler) completeOnboarding(ctx context.Context, chatID, userID int64, language string) {
	delete(h.userStates, userID)

	joined, err := h.service.CompleteOnboarding(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("complete onboarding")
		h.sendText(chatID, locales.Text(language, "something_went_wrong"))
		return
	}
	if joined {
		h.sendText(chatID, locales.Text(language, "welcome_to_marathon"))
	} else {
		h.sendText(chatID, locales.Text(language, "waiting_for_marathon"))
	}
	h.sendMainMenu(chatID, language)
}

// Main menu and stats

func mainMenuKeyboard(language string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "marathon_stats"), "marathon_stats")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "dua_button"), "send_dua")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "settings"), "settings")),
	)
}

func backToMenuKeyboard(language string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "back_button"), "main_menu")),
	)
}

func (h *BotHandler) sendMainMenu(chatID int64, language string) {
	msg := tgbotapi.NewMessage(chatID, locales.Text(language, "main_menu"))
	msg.ReplyMarkup = mainMenuKeyboard(language)
	h.send(msg)
}

func (h *BotHandler) showMainMenu(ctx context.Context, query *tgbotapi.CallbackQuery) {
	language := h.userLanguage(ctx, query.From.ID)
	delete(h.userStates, query.From.ID)
	h.editText(query, locales.Text(language, "main_menu"), ptr(mainMenuKeyboard(language)))
	h.answerCallback(query, "")
}

func (h *BotHandler) showMarathonStats(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	language := h.userLanguage(ctx, userID)

	view, err := h.service.MarathonView(ctx, userID)
	if errors.Is(err, models.ErrNoActiveMarathon) {
		h.editText(query, locales.Text(language, "no_active_marathon"), ptr(backToMenuKeyboard(language)))
		h.answerCallback(query, "")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("marathon view")
		h.editText(query, locales.Text(language, "something_went_wrong"), ptr(backToMenuKeyboard(language)))
		h.answerCallback(query, "")
		return
	}

	text := locales.Textf(language, "marathon_stats_text",
		"goal", locales.FormatNumber(view.Marathon.GoalAmount),
		"current", locales.FormatNumber(view.Stats.TotalCollected),
		"percent", locales.FormatFloat(float64(view.Stats.Percent), 0),
		"participants_count", locales.FormatFloat(float64(view.Stats.ParticipantsCount), 0),
		"user_contribution", locales.FormatNumber(view.UserStats.TotalContribution),
		"user_plan_percent", locales.FormatFloat(view.PlanAdherencePercent, 1),
		"rank", locales.FormatFloat(float64(view.Rank), 0),
		"completed_days", locales.FormatFloat(float64(view.UserStats.CompletedDays), 0),
		"missed_days", locales.FormatFloat(float64(view.MissedDays), 0),
		"global_contribution_percent", locales.FormatFloat(view.GoalContributionPercent, 2),
	)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "view_calendar"), "calendar_current")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "back_button"), "main_menu")),
	)
	h.editText(query, text, &keyboard)
	h.answerCallback(query, "")
}

// Daily check-in

func (h *BotHandler) askDailyAmount(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	language := h.userLanguage(ctx, userID)

	marathon, err := h.service.ActiveMarathon(ctx)
	if err != nil || marathon == nil {
		h.answerCallback(query, locales.Text(language, "no_active_marathon"))
		return
	}
	h.editText(query, locales.Text(language, "ask_daily_amount"), nil)
	h.setStep(userID, stepAwaitingDailyAmount)
	h.answerCallback(query, "")
}

func (h *BotHandler) receiveDailyAmount(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	language := h.userLanguage(ctx, userID)

	amount, err := validate.Amount(message.Text)
	if err != nil || amount <= 0 {
		h.sendText(message.Chat.ID, locales.Text(language, "invalid_number"))
		return
	}

	stats, err := h.service.CheckIn(ctx, userID, time.Now(), amount)
	if errors.Is(err, models.ErrNoActiveMarathon) {
		h.sendText(message.Chat.ID, locales.Text(language, "no_active_marathon"))
		delete(h.userStates, userID)
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("check in")
		h.sendText(message.Chat.ID, h.errorText(language, err))
		return
	}

	delete(h.userStates, userID)
	h.sendDailyStats(message.Chat.ID, language, stats)
}

func (h *BotHandler) markDayNotCompleted(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	language := h.userLanguage(ctx, userID)

	stats, err := h.service.UndoCheckIn(ctx, userID, time.Now())
	if errors.Is(err, models.ErrNoActiveMarathon) {
		h.answerCallback(query, locales.Text(language, "no_active_marathon"))
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("undo check in")
		h.answerCallback(query, locales.Text(language, "something_went_wrong"))
		return
	}

	h.editText(query, locales.Text(language, "day_marked_not_completed"), nil)
	h.sendDailyStats(query.Message.Chat.ID, language, stats)
	h.answerCallback(query, "")
}

func (h *BotHandler) sendDailyStats(chatID int64, language string, stats *service.DayStats) {
	status := "❌"
	if stats.Completed {
		status = "✅"
	}
	h.sendText(chatID, locales.Textf(language, "daily_stats_message",
		"status", status,
		"user_amount", locales.FormatNumber(stats.Amount),
		"participants", locales.FormatFloat(float64(stats.Participants), 0),
		"total_amount", locales.FormatNumber(stats.TotalAmount),
		"day_progress", locales.FormatFloat(stats.DayProgress, 1),
	))
}

// Settings

func (h *BotHandler) showSettings(ctx context.Context, query *tgbotapi.CallbackQuery) {
	language := h.userLanguage(ctx, query.From.ID)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "change_language"), "settings_change_language")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "change_plan"), "settings_change_plan")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "back_button"), "main_menu")),
	)
	h.editText(query, locales.Text(language, "settings_menu"), &keyboard)
	h.answerCallback(query, "")
}

func (h *BotHandler) showSettingsLanguages(query *tgbotapi.CallbackQuery) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("O'zbekcha (lotin)", "settings_lang_uz_latin")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("O'zbekcha (кирилл)", "settings_lang_uz_cyrillic")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Русский", "settings_lang_ru")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Назад", "settings")),
	)
	h.editText(query, "Tilni tanlang / Выберите язык:", &keyboard)
	h.answerCallback(query, "")
}

func (h *BotHandler) updateSettingsLanguage(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	language := strings.TrimPrefix(query.Data, "settings_lang_")
	if language != "uz_latin" && language != "uz_cyrillic" && language != "ru" {
		language = locales.DefaultLanguage
	}

	if err := h.service.SetLanguage(ctx, userID, language); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("update language")
		h.answerCallback(query, "")
		return
	}
	h.editText(query, locales.Text(language, "language_changed"), ptr(backToSettingsKeyboard(language)))
	h.answerCallback(query, "")
}

func (h *BotHandler) askNewPlan(ctx context.Context, query *tgbotapi.CallbackQuery) {
	language := h.userLanguage(ctx, query.From.ID)
	h.editText(query, locales.Text(language, "enter_new_plan"), ptr(backToSettingsKeyboard(language)))
	h.setStep(query.From.ID, stepAwaitingSettingsPlan)
	h.answerCallback(query, "")
}

func (h *BotHandler) receiveSettingsPlan(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	language := h.userLanguage(ctx, userID)

	proj, err := h.service.SetDailyPlan(ctx, userID, message.Text)
	if err != nil {
		h.sendText(message.Chat.ID, h.errorText(language, err))
		return
	}

	delete(h.userStates, userID)
	msg := tgbotapi.NewMessage(message.Chat.ID, locales.Textf(language, "plan_updated",
		"daily_plan", locales.FormatNumber(proj.DailyPlan),
		"total_projected", locales.FormatNumber(proj.TotalProjected),
		"contribution_percent", locales.FormatFloat(proj.ContributionPercent, 2),
	))
	msg.ReplyMarkup = backToSettingsKeyboard(language)
	h.send(msg)
}

func backToSettingsKeyboard(language string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "back_button"), "settings")),
	)
}

// Callback routing

func (h *BotHandler) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	data := query.Data

	switch {
	case strings.HasPrefix(data, "lang_"):
		h.selectLanguage(ctx, query)
	case data == "skip_daily_plan":
		language := h.userLanguage(ctx, query.From.ID)
		delete(h.userStates, query.From.ID)
		h.askDisplayName(query.Message.Chat.ID, language)
		h.answerCallback(query, "")
	case data == "name_keep":
		h.keepName(ctx, query)
	case data == "name_anonymous":
		h.chooseAnonymousName(ctx, query)
	case data == "main_menu":
		h.showMainMenu(ctx, query)
	case data == "marathon_stats":
		h.showMarathonStats(ctx, query)
	case data == "calendar_current" || strings.HasPrefix(data, "calendar_nav_"):
		h.showCalendar(ctx, query)
	case data == "calendar_ignore" || strings.HasPrefix(data, "day_"):
		h.answerCallback(query, "")
	case data == "mark_completed":
		h.askDailyAmount(ctx, query)
	case data == "mark_not_completed":
		h.markDayNotCompleted(ctx, query)
	case data == "morning_yes":
		h.answerCallback(query, locales.Text(h.userLanguage(ctx, query.From.ID), "yes"))
	case data == "morning_no":
		language := h.userLanguage(ctx, query.From.ID)
		h.editText(query, locales.Text(language, "day_marked_not_completed"), nil)
		h.answerCallback(query, "")
	case data == "send_dua":
		h.startDua(ctx, query)
	case data == "dua_confirm_send":
		h.askDuaNameChoice(ctx, query)
	case data == "dua_name_real":
		h.chooseDuaName(ctx, query, false)
	case data == "dua_name_anonymous":
		h.chooseDuaName(ctx, query, true)
	case data == "settings":
		h.showSettings(ctx, query)
	case data == "settings_change_language":
		h.showSettingsLanguages(query)
	case strings.HasPrefix(data, "settings_lang_"):
		h.updateSettingsLanguage(ctx, query)
	case data == "settings_change_plan":
		h.askNewPlan(ctx, query)
	case strings.HasPrefix(data, "admin_"):
		h.handleAdminCallback(ctx, query)
	}
}

// Helpers

func (h *BotHandler) userLanguage(ctx context.Context, userID int64) string {
	user, err := h.service.GetUser(ctx, userID)
	if err != nil || user == nil {
		return locales.DefaultLanguage
	}
	return user.Language
}

// errorText maps a service error to a localized message. Validation errors
// carry their text key; anything else is a generic failure.
func (h *BotHandler) errorText(language string, err error) string {
	var ve *validate.Error
	if errors.As(err, &ve) {
		return locales.Text(language, ve.Key)
	}
	return locales.Text(language, "something_went_wrong")
}

func (h *BotHandler) setStep(userID int64, step string) {
	state, ok := h.userStates[userID]
	if !ok {
		state = &userState{}
		h.userStates[userID] = state
	}
	state.Step = step
}

func (h *BotHandler) send(msg tgbotapi.Chattable) {
	if _, err := h.bot.Send(msg); err != nil {
		log.Error().Err(err).Msg("send message")
	}
}

func (h *BotHandler) sendText(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *BotHandler) editText(query *tgbotapi.CallbackQuery, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	if keyboard != nil {
		h.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *keyboard))
		return
	}
	h.send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (h *BotHandler) answerCallback(query *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(query.ID, text)); err != nil {
		log.Error().Err(err).Msg("answer callback")
	}
}

func ptr(k tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &k
}
