package handlers

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/axatsa/Sadaka-bot/internal/locales"
	"github.com/axatsa/Sadaka-bot/internal/models"
)

// startDua runs the weekly quota gate before anything is typed. A hard limit
// ends the flow, the near-full warning asks the user whether to proceed.
func (h *BotHandler) startDua(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	language := h.userLanguage(ctx, userID)

	gate, err := h.service.CanSubmitDua(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("dua gate")
		h.editText(query, locales.Text(language, "something_went_wrong"), ptr(backToMenuKeyboard(language)))
		h.answerCallback(query, "")
		return
	}

	if !gate.Allowed {
		key := "dua_limit_user"
		if gate.Reason == models.QuotaTotal {
			key = "dua_limit_total"
		}
		h.editText(query, locales.Text(language, key), ptr(backToMenuKeyboard(language)))
		h.answerCallback(query, "")
		return
	}

	if gate.Warning {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "dua_send_now"), "dua_confirm_send")),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "dua_send_later"), "main_menu")),
		)
		h.editText(query, locales.Textf(language, "dua_limit_warning",
			"total", strconv.Itoa(gate.TotalUsed)), &keyboard)
		h.answerCallback(query, "")
		return
	}

	h.showDuaNameChoice(query, language)
	h.answerCallback(query, "")
}

func (h *BotHandler) askDuaNameChoice(ctx context.Context, query *tgbotapi.CallbackQuery) {
	language := h.userLanguage(ctx, query.From.ID)
	h.showDuaNameChoice(query, language)
	h.answerCallback(query, "")
}

func (h *BotHandler) showDuaNameChoice(query *tgbotapi.CallbackQuery, language string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "dua_my_name"), "dua_name_real")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "dua_anonymous"), "dua_name_anonymous")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "back_button"), "main_menu")),
	)
	h.editText(query, locales.Text(language, "dua_name_question"), &keyboard)
}

func (h *BotHandler) chooseDuaName(ctx context.Context, query *tgbotapi.CallbackQuery, anonymous bool) {
	userID := query.From.ID
	language := h.userLanguage(ctx, userID)

	h.userStates[userID] = &userState{Step: stepAwaitingDua, DuaAnonymous: anonymous}
	h.editText(query, locales.Text(language, "dua_enter_text"), nil)
	h.answerCallback(query, "")
}

func (h *BotHandler) receiveDuaText(ctx context.Context, message *tgbotapi.Message, state *userState) {
	userID := message.From.ID
	language := h.userLanguage(ctx, userID)

	err := h.service.SubmitDua(ctx, userID, message.Text, state.DuaAnonymous)
	if qe, ok := models.AsQuotaError(err); ok {
		key := "dua_limit_user"
		if qe.Reason == models.QuotaTotal {
			key = "dua_limit_total"
		}
		delete(h.userStates, userID)
		h.sendText(message.Chat.ID, locales.Text(language, key))
		h.sendMainMenu(message.Chat.ID, language)
		return
	}
	if err != nil {
		h.sendText(message.Chat.ID, h.errorText(language, err))
		return
	}

	delete(h.userStates, userID)
	msg := tgbotapi.NewMessage(message.Chat.ID, locales.Text(language, "dua_sent_success"))
	msg.ReplyMarkup = mainMenuKeyboard(language)
	h.send(msg)

	h.notifyAdminDua(ctx, userID, message.Text, state.DuaAnonymous)
}

// notifyAdminDua forwards an accepted dua to the admin chat when configured.
func (h *BotHandler) notifyAdminDua(ctx context.Context, userID int64, text string, anonymous bool) {
	if h.cfg.AdminChatID == 0 {
		return
	}

	senderName := "Аноним"
	if !anonymous {
		if user, err := h.service.GetUser(ctx, userID); err == nil && user != nil {
			switch {
			case user.DisplayName != "":
				senderName = user.DisplayName
			case user.FirstName != "":
				senderName = user.FirstName
			}
		}
	}

	h.sendText(h.cfg.AdminChatID, "🤲 Новая дуа\n\nОт: "+senderName+"\n\n"+text)
}
