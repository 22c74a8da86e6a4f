package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
)

type conversationStep int

const (
	stepTitle conversationStep = iota
	stepEmoji
	stepColor
	stepCategory
	stepSchedule
	stepDate
)

// conversationState is an unfinished tracker dialog. editing is uuid.Nil when
// a new tracker is being created. Skipped steps keep the value in input.
type conversationState struct {
	userID  uint
	step    conversationStep
	editing uuid.UUID
	input   service.TrackerInput
}

func (s *conversationState) current(value string) string {
	if s.editing == uuid.Nil || value == "" {
		return ""
	}
	return fmt.Sprintf(" Сейчас: %s.", escape(value))
}

func (b *Bot) startTrackerConversation(ctx context.Context, msg *tgbotapi.Message, kind model.TrackerKind) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{
		userID: user.ID,
		step:   stepTitle,
		input:  service.TrackerInput{Kind: kind},
	})

	prompt := "✍️ Как назовём привычку?"
	if kind == model.KindEvent {
		prompt = "✍️ Как назовём событие?"
	}
	_, err = b.sendWithReplyMarkup(msg.Chat.ID, prompt, cancelKeyboard())
	return err
}

// startEditConversation runs the creation dialog over an existing tracker.
func (b *Bot) startEditConversation(ctx context.Context, from *tgbotapi.User, chatID int64, id uuid.UUID) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	tracker, err := b.svc.Trackers.Get(ctx, user.ID, id)
	if err != nil {
		return b.sendText(chatID, b.userMessage(err))
	}

	state := &conversationState{
		userID:  user.ID,
		step:    stepTitle,
		editing: tracker.ID,
		input: service.TrackerInput{
			Kind:       tracker.Kind(),
			Title:      tracker.Title,
			Emoji:      tracker.Emoji,
			Color:      tracker.Color,
			CategoryID: tracker.CategoryID,
			Schedule:   tracker.Schedule,
			Date:       tracker.Date,
		},
	}
	b.setConversation(from.ID, state)

	prompt := fmt.Sprintf("✏️ Новое название для «%s» или «%s», чтобы оставить.", escape(tracker.Title), btnSkip)
	_, err = b.sendWithReplyMarkup(chatID, prompt, gridKeyboard(nil, 1))
	return err
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	text := strings.TrimSpace(msg.Text)
	skip := isSkipInput(text)

	switch state.step {
	case stepTitle:
		if !(skip && state.editing != uuid.Nil) {
			if text == "" {
				_, err := b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым. Попробуй ещё раз.", cancelKeyboard())
				return err
			}
			state.input.Title = text
		}
		state.step = stepEmoji
		_, err := b.sendWithReplyMarkup(msg.Chat.ID, "Выбери эмодзи или пропусти."+state.current(state.input.Emoji), emojiKeyboard())
		return err

	case stepEmoji:
		if !skip {
			state.input.Emoji = text
		}
		state.step = stepColor
		_, err := b.sendWithReplyMarkup(msg.Chat.ID, "Выбери цвет (#RRGGBB) или пропусти."+state.current(state.input.Color), colorKeyboard())
		return err

	case stepColor:
		if !skip {
			state.input.Color = text
		}
		categories, err := b.svc.Categories.List(ctx, state.userID)
		if err != nil {
			return err
		}
		state.step = stepCategory
		_, err = b.sendWithReplyMarkup(msg.Chat.ID, "Выбери категорию или напиши название новой."+state.current(categoryTitle(categories, state.input.CategoryID)), categoryKeyboard(categories))
		return err

	case stepCategory:
		if !skip {
			if err := b.resolveCategory(ctx, state, text); err != nil {
				b.clearConversation(msg.From.ID)
				return b.sendText(msg.Chat.ID, b.userMessage(err))
			}
		}
		if state.input.Kind == model.KindEvent {
			state.step = stepDate
			current := ""
			if state.input.Date != nil {
				current = state.current(state.input.Date.Format("02.01.2006"))
			}
			_, err := b.sendWithReplyMarkup(msg.Chat.ID, "📅 На какую дату? ГГГГ-ММ-ДД, ДД.ММ.ГГГГ, «сегодня» или «завтра»."+current, cancelKeyboard())
			return err
		}
		state.step = stepSchedule
		_, err := b.sendWithReplyMarkup(msg.Chat.ID, "🗓 По каким дням? Отметь кнопками или напиши: «пн, ср, пт», «каждый день».", scheduleKeyboard(state.input.Schedule))
		return err

	case stepSchedule:
		if skip && !state.input.Schedule.IsEmpty() {
			return b.finishConversation(ctx, msg.From.ID, msg.Chat.ID, state)
		}
		days, err := parseWeekdays(text)
		if err != nil {
			_, err := b.sendWithReplyMarkup(msg.Chat.ID, "Не понял дни. Пример: пн, ср, пт", scheduleKeyboard(state.input.Schedule))
			return err
		}
		state.input.Schedule = days
		return b.finishConversation(ctx, msg.From.ID, msg.Chat.ID, state)

	case stepDate:
		if skip && state.input.Date != nil {
			return b.finishConversation(ctx, msg.From.ID, msg.Chat.ID, state)
		}
		date, err := parseDate(b.cal, text, b.now())
		if err != nil {
			_, err := b.sendWithReplyMarkup(msg.Chat.ID, "Не понял дату. Пример: 2025-06-02 или 02.06.2025", cancelKeyboard())
			return err
		}
		state.input.Date = &date
		return b.finishConversation(ctx, msg.From.ID, msg.Chat.ID, state)
	}
	return nil
}

// resolveCategory picks an existing category by title or creates a new one.
func (b *Bot) resolveCategory(ctx context.Context, state *conversationState, text string) error {
	if isNoCategoryInput(text) {
		state.input.CategoryID = nil
		return nil
	}
	categories, err := b.svc.Categories.List(ctx, state.userID)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if strings.EqualFold(strings.TrimSpace(c.Title), text) {
			id := c.ID
			state.input.CategoryID = &id
			return nil
		}
	}
	created, err := b.svc.Categories.Create(ctx, state.userID, text)
	if err != nil {
		return err
	}
	state.input.CategoryID = &created.ID
	return nil
}

func categoryTitle(categories []model.Category, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	for _, c := range categories {
		if c.ID == *id {
			return c.Title
		}
	}
	return ""
}

func (b *Bot) finishConversation(ctx context.Context, telegramID, chatID int64, state *conversationState) error {
	b.clearConversation(telegramID)

	if state.editing != uuid.Nil {
		tracker, err := b.svc.Trackers.Update(ctx, state.userID, state.editing, state.input)
		if err != nil {
			return b.sendText(chatID, b.userMessage(err))
		}
		return b.sendText(chatID, fmt.Sprintf("✏️ Трекер %s «%s» обновлён.", tracker.Emoji, escape(tracker.Title)))
	}

	tracker, err := b.svc.Trackers.Create(ctx, state.userID, state.input)
	if err != nil {
		return b.sendText(chatID, b.userMessage(err))
	}
	if tracker.Kind() == model.KindEvent {
		return b.sendText(chatID, fmt.Sprintf("✅ Событие %s «%s» добавлено на %s.", tracker.Emoji, escape(tracker.Title), tracker.Date.Format("02.01.2006")))
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Привычка %s «%s» добавлена: %s.", tracker.Emoji, escape(tracker.Title), tracker.Schedule))
}
