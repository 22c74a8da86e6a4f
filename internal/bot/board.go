package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
	"habit-tracker/internal/tracking"
)

// boardFor returns the board of the sender, creating it on first use. A new
// board has already been rendered when created is true.
func (b *Bot) boardFor(ctx context.Context, from *tgbotapi.User, chatID int64) (cb *chatBoard, created bool, err error) {
	b.mu.Lock()
	cb, ok := b.boards[from.ID]
	b.mu.Unlock()
	if ok {
		return cb, false, nil
	}

	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return nil, false, err
	}

	view := newChatView(b, chatID)
	board, err := service.NewBoard(ctx, b.svc.Board, user.ID, view)
	if err != nil {
		return nil, false, err
	}
	view.attach(board)
	if err := board.Refresh(ctx); err != nil {
		b.log.Warn("refresh new board", zap.Error(err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.boards[from.ID]; ok {
		board.Close()
		return existing, false, nil
	}
	cb = &chatBoard{board: board, view: view}
	b.boards[from.ID] = cb
	return cb, true, nil
}

func (b *Bot) handleBoard(ctx context.Context, msg *tgbotapi.Message, today bool) error {
	cb, created, err := b.boardFor(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	if created {
		return nil
	}
	cb.view.track(0)
	if today {
		return b.replyOnError(msg.Chat.ID, cb.board.SetDate(ctx, b.now()))
	}
	return b.replyOnError(msg.Chat.ID, cb.board.Refresh(ctx))
}

func (b *Bot) handleDate(ctx context.Context, msg *tgbotapi.Message) error {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		return b.sendText(msg.Chat.ID, "Формат: /date ГГГГ-ММ-ДД, ДД.ММ.ГГГГ, «сегодня» или «завтра».")
	}
	date, err := parseDate(b.cal, arg, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не понял дату. Пример: /date 2025-06-02")
	}
	cb, _, err := b.boardFor(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	cb.view.track(0)
	return b.replyOnError(msg.Chat.ID, cb.board.SetDate(ctx, date))
}

func (b *Bot) handleFilter(ctx context.Context, msg *tgbotapi.Message) error {
	cb, _, err := b.boardFor(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	sent, err := b.sendWithReplyMarkup(msg.Chat.ID, "🔍 <b>Фильтры</b>", filterKeyboard(cb.board.CurrentFilter()))
	if err != nil {
		return err
	}
	cb.view.track(sent.MessageID)
	return nil
}

func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message) error {
	cb, _, err := b.boardFor(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	cb.view.track(0)
	return b.replyOnError(msg.Chat.ID, cb.board.SetSearch(ctx, msg.CommandArguments()))
}

func (b *Bot) replyOnError(chatID int64, err error) error {
	if err == nil {
		return nil
	}
	return b.sendText(chatID, b.userMessage(err))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.svc.Categories.List(ctx, user.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "📂 Категорий пока нет. Создай: /newcategory Спорт")
	}
	var sb strings.Builder
	sb.WriteString("📂 <b>Категории</b>\n")
	for i, c := range categories {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, escape(c.Title)))
	}
	sb.WriteString("\n/renamecategory &lt;номер&gt; &lt;название&gt; · /deletecategory &lt;номер&gt;")
	return b.sendText(msg.Chat.ID, sb.String())
}

func (b *Bot) handleNewCategory(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	category, err := b.svc.Categories.Create(ctx, user.ID, msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📂 Категория «%s» создана.", escape(category.Title)))
}

func (b *Bot) handleRenameCategory(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		return b.sendText(msg.Chat.ID, "Формат: /renamecategory &lt;номер&gt; &lt;новое название&gt;")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	category, err := b.categoryByNumber(ctx, user.ID, args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	title := strings.Join(args[1:], " ")
	if err := b.svc.Categories.Rename(ctx, user.ID, category.ID, title); err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✏️ «%s» → «%s»", escape(category.Title), escape(title)))
}

func (b *Bot) handleDeleteCategory(ctx context.Context, msg *tgbotapi.Message) error {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		return b.sendText(msg.Chat.ID, "Формат: /deletecategory &lt;номер&gt;")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	category, err := b.categoryByNumber(ctx, user.ID, arg)
	if err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	if err := b.svc.Categories.Delete(ctx, user.ID, category.ID); err != nil {
		return b.sendText(msg.Chat.ID, b.userMessage(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Категория «%s» удалена, её трекеры перенесены в «%s».", escape(category.Title), tracking.UncategorizedTitle))
}

// categoryByNumber resolves the 1-based position shown by /categories.
func (b *Bot) categoryByNumber(ctx context.Context, userID uint, raw string) (*model.Category, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, service.ErrNotFound
	}
	categories, err := b.svc.Categories.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(categories) {
		return nil, service.ErrNotFound
	}
	return &categories[n-1], nil
}
