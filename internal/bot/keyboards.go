package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"habit-tracker/internal/model"
	"habit-tracker/internal/tracking"
)

const (
	btnSkip             = "⏭️ Пропустить"
	btnCancelDialog     = "⏪ Отменить ввод"
	btnNoCategory       = "📁 Без категории"
	btnToday            = "Сегодня"
	menuLabelNewHabit   = "➕ Привычка"
	menuLabelNewEvent   = "🗓 Событие"
	menuLabelTrackers   = "📋 Трекеры"
	menuLabelStats      = "📊 Статистика"
	menuLabelCategories = "📂 Категории"
	menuLabelHelp       = "ℹ️ Помощь"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewHabit),
			tgbotapi.NewKeyboardButton(menuLabelNewEvent),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTrackers),
			tgbotapi.NewKeyboardButton(menuLabelStats),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelCategories),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func emojiKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return gridKeyboard(model.Emojis, 6)
}

func colorKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return gridKeyboard(model.Palette, 3)
}

func categoryKeyboard(categories []model.Category) tgbotapi.ReplyKeyboardMarkup {
	titles := make([]string, 0, len(categories)+1)
	for _, c := range categories {
		titles = append(titles, c.Title)
	}
	kb := gridKeyboard(titles, 2)
	kb.Keyboard = append([][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnNoCategory)),
	}, kb.Keyboard...)
	return kb
}

// gridKeyboard lays labels out perRow per row, followed by skip and cancel.
func gridKeyboard(labels []string, perRow int) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, label := range labels {
		row = append(row, tgbotapi.NewKeyboardButton(label))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// scheduleKeyboard shows one toggle button per weekday and a done button.
func scheduleKeyboard(selected model.WeekdaySet) tgbotapi.InlineKeyboardMarkup {
	var first, second []tgbotapi.InlineKeyboardButton
	for i, d := range model.WeekOrder {
		label := d.Short()
		if selected.Contains(d) {
			label = "✅ " + label
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(label, cbWeekdayPrefix+strconv.Itoa(d.Number()))
		if i < 4 {
			first = append(first, btn)
		} else {
			second = append(second, btn)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		first,
		second,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Каждый день", cbWeekdayPrefix+"all"),
			tgbotapi.NewInlineKeyboardButtonData("Готово", cbWeekdayPrefix+"done"),
		),
	)
}

// boardKeyboard has a row per visible tracker (toggle, pin, edit, delete), then
// day navigation and the filter button.
func boardKeyboard(res tracking.Result, editable, filterActive bool) tgbotapi.InlineKeyboardMarkup {
	day := res.Date.Format(tracking.DayLayout)
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, group := range res.Categories {
		for _, t := range group.Trackers {
			mark := "⬜"
			if res.Completed[t.ID] {
				mark = "✅"
			}
			if !editable {
				mark = "🔒"
			}
			pin := "📌"
			if t.IsPinned {
				pin = "📍"
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s %s", mark, t.Emoji, shortTitle(t.Title, 22)), toggleData(t.ID.String(), day)),
				tgbotapi.NewInlineKeyboardButtonData(pin, cbPinPrefix+t.ID.String()),
				tgbotapi.NewInlineKeyboardButtonData("✏️", cbEditPrefix+t.ID.String()),
				tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+t.ID.String()),
			))
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(append(rows, navigationRows(res.Filter, filterActive)...)...)
}

func navigationRows(filter model.FilterType, active bool) [][]tgbotapi.InlineKeyboardButton {
	filterLabel := "🔍 Фильтры"
	if active {
		filterLabel = "🔍 " + filter.Title()
	}
	return [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️", cbDayPrefix+"-1"),
			tgbotapi.NewInlineKeyboardButtonData(btnToday, cbDayPrefix+"0"),
			tgbotapi.NewInlineKeyboardButtonData("▶️", cbDayPrefix+"1"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(filterLabel, cbFiltersPrefix),
		),
	}
}

func filterKeyboard(current model.FilterType) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range model.FilterTypes {
		label := f.Title()
		if f == current {
			label = "• " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbFilterPrefix+strconv.Itoa(int(f))),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmDeleteKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", cbConfirmPrefix+id),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Отмена", cbCancelPrefix+id),
		),
	)
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "пропустить" || value == "skip"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "отменить ввод" || value == "отмена"
}

func isNoCategoryInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnNoCategory) || value == strings.ToLower(tracking.UncategorizedTitle) || isSkipInput(text)
}
