package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/axatsa/Sadaka-bot/internal/locales"
	"github.com/axatsa/Sadaka-bot/internal/models"
)

var weekdayLabels = map[string][7]string{
	"uz_latin":    {"Du", "Se", "Ch", "Pa", "Ju", "Sh", "Ya"},
	"uz_cyrillic": {"Ду", "Се", "Чо", "Па", "Жу", "Ша", "Як"},
	"ru":          {"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"},
}

// showCalendar renders the month grid of the user's check-ins. Day cells are
// read-only; only the navigation arrows and the back button do anything.
func (h *BotHandler) showCalendar(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	language := h.userLanguage(ctx, userID)

	year, month := calendarTarget(query.Data, time.Now())

	marathon, err := h.service.ActiveMarathon(ctx)
	if err == nil && marathon == nil {
		err = models.ErrNoActiveMarathon
	}
	if errors.Is(err, models.ErrNoActiveMarathon) {
		h.editText(query, locales.Text(language, "no_active_marathon"), ptr(backToMenuKeyboard(language)))
		h.answerCallback(query, "")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("calendar marathon lookup")
		h.answerCallback(query, locales.Text(language, "something_went_wrong"))
		return
	}

	grid, err := h.service.MonthGrid(ctx, userID, year, month)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("calendar month grid")
		h.answerCallback(query, locales.Text(language, "something_went_wrong"))
		return
	}

	remaining := marathon.GoalAmount - marathon.CurrentAmount
	if remaining < 0 {
		remaining = 0
	}
	percent := int64(0)
	if marathon.GoalAmount > 0 {
		percent = marathon.CurrentAmount * 100 / marathon.GoalAmount
	}
	header := locales.Textf(language, "calendar_header",
		"goal", locales.FormatNumber(marathon.GoalAmount),
		"remaining", locales.FormatNumber(remaining),
		"percent", locales.FormatNumber(percent),
	)

	keyboard := monthKeyboard(language, year, month, grid)
	h.editText(query, header, &keyboard)
	h.answerCallback(query, "")
}

// calendarTarget extracts year and month from "calendar_nav_YYYY_MM" data,
// defaulting to the current month.
func calendarTarget(data string, now time.Time) (int, time.Month) {
	year, month := now.Year(), now.Month()
	if rest, ok := strings.CutPrefix(data, "calendar_nav_"); ok {
		var y, m int
		if _, err := fmt.Sscanf(rest, "%d_%d", &y, &m); err == nil && m >= 1 && m <= 12 {
			year, month = y, time.Month(m)
		}
	}
	return year, month
}

func monthKeyboard(language string, year int, month time.Month, grid map[int]models.CompletionStatus) tgbotapi.InlineKeyboardMarkup {
	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("«", fmt.Sprintf("calendar_nav_%d_%d", prev.Year(), int(prev.Month()))),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%02d.%d", int(month), year), "calendar_ignore"),
			tgbotapi.NewInlineKeyboardButtonData("»", fmt.Sprintf("calendar_nav_%d_%d", next.Year(), int(next.Month()))),
		},
	}

	labels, ok := weekdayLabels[language]
	if !ok {
		labels = weekdayLabels[locales.DefaultLanguage]
	}
	weekdayRow := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for _, label := range labels {
		weekdayRow = append(weekdayRow, tgbotapi.NewInlineKeyboardButtonData(label, "calendar_ignore"))
	}
	rows = append(rows, weekdayRow)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7 // Monday-first

	row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < offset; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "calendar_ignore"))
	}
	for day := 1; day <= daysInMonth; day++ {
		label := fmt.Sprintf("%d", day)
		switch grid[day] {
		case models.StatusCompleted:
			label = "✅"
		case models.StatusNotCompleted:
			label = "🚫"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label,
			fmt.Sprintf("day_%d_%d_%d", year, int(month), day)))
		if len(row) == 7 {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "calendar_ignore"))
		}
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(locales.Text(language, "back_button"), "marathon_stats"),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
