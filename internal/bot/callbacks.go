package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
)

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		b.answerCallback(cq.ID, "", false)
		return nil
	}
	data := cq.Data

	switch {
	case strings.HasPrefix(data, cbWeekdayPrefix):
		return b.handleWeekdayCallback(ctx, cq)
	case strings.HasPrefix(data, cbConfirmPrefix):
		return b.handleConfirmDelete(ctx, cq)
	case strings.HasPrefix(data, cbCancelPrefix):
		b.answerCallback(cq.ID, "Отменено", false)
		return b.editText(cq.Message.Chat.ID, cq.Message.MessageID, "↩️ Удаление отменено.")
	case strings.HasPrefix(data, cbEditPrefix):
		id, err := parseID(data, cbEditPrefix)
		if err != nil {
			b.answerCallback(cq.ID, "Некорректная кнопка", false)
			return err
		}
		b.answerCallback(cq.ID, "", false)
		return b.startEditConversation(ctx, cq.From, cq.Message.Chat.ID, id)
	case strings.HasPrefix(data, cbDeletePrefix):
		id, err := parseID(data, cbDeletePrefix)
		if err != nil {
			b.answerCallback(cq.ID, "Некорректная кнопка", false)
			return err
		}
		b.answerCallback(cq.ID, "", false)
		_, err = b.sendWithReplyMarkup(cq.Message.Chat.ID, "🗑 Удалить трекер вместе со всеми отметками?", confirmDeleteKeyboard(id.String()))
		return err
	}

	cb, _, err := b.boardFor(ctx, cq.From, cq.Message.Chat.ID)
	if err != nil {
		b.answerCallback(cq.ID, "Не удалось открыть трекеры", true)
		return err
	}
	cb.view.track(cq.Message.MessageID)

	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		id, day, err := parseToggleData(b.cal, data)
		if err != nil {
			b.answerCallback(cq.ID, "Некорректная кнопка", false)
			return err
		}
		done, err := cb.board.ToggleOn(ctx, id, day)
		switch {
		case errors.Is(err, service.ErrFutureDate):
			b.answerCallback(cq.ID, "Нельзя отметить трекер на будущую дату", true)
			return nil
		case err != nil:
			b.answerCallback(cq.ID, b.userMessage(err), true)
			return nil
		case done:
			b.answerCallback(cq.ID, "✅ Выполнено · "+service.FormatDays(cb.board.CompletionCount(id)), false)
		default:
			b.answerCallback(cq.ID, "Отметка снята", false)
		}
		return nil

	case strings.HasPrefix(data, cbPinPrefix):
		id, err := parseID(data, cbPinPrefix)
		if err != nil {
			b.answerCallback(cq.ID, "Некорректная кнопка", false)
			return err
		}
		pinned, err := cb.board.TogglePin(ctx, id)
		if err != nil {
			b.answerCallback(cq.ID, b.userMessage(err), true)
			return nil
		}
		if pinned {
			b.answerCallback(cq.ID, "📌 Закреплено", false)
		} else {
			b.answerCallback(cq.ID, "Откреплено", false)
		}
		return nil

	case strings.HasPrefix(data, cbDayPrefix):
		shift, err := strconv.Atoi(strings.TrimPrefix(data, cbDayPrefix))
		if err != nil {
			b.answerCallback(cq.ID, "Некорректная кнопка", false)
			return err
		}
		b.answerCallback(cq.ID, "", false)
		if shift == 0 {
			return cb.board.SetDate(ctx, b.now())
		}
		return cb.board.ShiftDate(ctx, shift)

	case strings.HasPrefix(data, cbFilterPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(data, cbFilterPrefix))
		if err != nil {
			b.answerCallback(cq.ID, "Некорректная кнопка", false)
			return err
		}
		if err := cb.board.ApplyFilter(ctx, model.FilterType(n)); err != nil {
			b.answerCallback(cq.ID, b.userMessage(err), true)
			return nil
		}
		b.answerCallback(cq.ID, model.FilterType(n).Title(), false)
		return nil

	case data == cbFiltersPrefix:
		b.answerCallback(cq.ID, "", false)
		edit := tgbotapi.NewEditMessageReplyMarkup(cq.Message.Chat.ID, cq.Message.MessageID, filterKeyboard(cb.board.CurrentFilter()))
		if _, err := b.api.Send(edit); err != nil && !isNotModified(err) {
			return err
		}
		return nil
	}

	b.answerCallback(cq.ID, "", false)
	return nil
}

func (b *Bot) handleConfirmDelete(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	id, err := parseID(cq.Data, cbConfirmPrefix)
	if err != nil {
		b.answerCallback(cq.ID, "Некорректная кнопка", false)
		return err
	}
	user, err := b.ensureUser(ctx, cq.From)
	if err != nil {
		b.answerCallback(cq.ID, "", false)
		return err
	}
	if err := b.svc.Trackers.Delete(ctx, user.ID, id); err != nil {
		b.answerCallback(cq.ID, b.userMessage(err), true)
		return nil
	}
	b.answerCallback(cq.ID, "Удалено", false)
	return b.editText(cq.Message.Chat.ID, cq.Message.MessageID, "🗑 Трекер удалён.")
}

// handleWeekdayCallback toggles days of the schedule being entered.
func (b *Bot) handleWeekdayCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	state := b.getConversation(cq.From.ID)
	if state == nil || state.step != stepSchedule {
		b.answerCallback(cq.ID, "Этот ввод уже завершён", false)
		return nil
	}

	chatID, messageID := cq.Message.Chat.ID, cq.Message.MessageID
	switch value := strings.TrimPrefix(cq.Data, cbWeekdayPrefix); value {
	case "done":
		if state.input.Schedule.IsEmpty() {
			b.answerCallback(cq.ID, "Выбери хотя бы один день", true)
			return nil
		}
		b.answerCallback(cq.ID, "", false)
		if err := b.editText(chatID, messageID, "🗓 "+state.input.Schedule.String()); err != nil {
			b.log.Warn("edit schedule message", zap.Error(err))
		}
		return b.finishConversation(ctx, cq.From.ID, chatID, state)
	case "all":
		state.input.Schedule = model.EveryDay()
	default:
		n, err := strconv.Atoi(value)
		if err != nil {
			b.answerCallback(cq.ID, "Некорректная кнопка", false)
			return err
		}
		d, ok := model.WeekdayFromNumber(n)
		if !ok {
			b.answerCallback(cq.ID, "Некорректная кнопка", false)
			return nil
		}
		state.input.Schedule = state.input.Schedule.Toggle(d)
	}

	b.answerCallback(cq.ID, "", false)
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, scheduleKeyboard(state.input.Schedule))
	if _, err := b.api.Send(edit); err != nil && !isNotModified(err) {
		return err
	}
	return nil
}

func (b *Bot) editText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(edit)
	if err != nil && isNotModified(err) {
		return nil
	}
	return err
}
