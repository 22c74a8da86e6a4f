package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"habit-tracker/internal/metrics"
	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
	"habit-tracker/internal/tracking"
)

// telegramAPI is the part of *tgbotapi.BotAPI the handlers use.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// UserStore maps Telegram accounts to users.
type UserStore interface {
	UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
}

// Services are the collaborators the bot drives.
type Services struct {
	Users      UserStore
	Trackers   *service.TrackerService
	Categories *service.CategoryService
	Stats      *service.StatisticsService
	Reminders  *service.ReminderService
	Board      service.BoardDeps
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api    telegramAPI
	client *tgbotapi.BotAPI
	svc    Services
	cal    tracking.Calendar
	now    func() time.Time
	log    *zap.Logger

	mu            sync.Mutex
	conversations map[int64]*conversationState
	boards        map[int64]*chatBoard
}

func New(token string, debug bool, svc Services, cal tracking.Calendar, log *zap.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	client.Debug = debug

	b := newBot(client, svc, cal, log)
	b.client = client
	b.log.Info("bot authorized", zap.String("account", client.Self.UserName))
	return b, nil
}

func newBot(api telegramAPI, svc Services, cal tracking.Calendar, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	now := svc.Board.Now
	if now == nil {
		now = time.Now
	}
	return &Bot{
		api:           api,
		svc:           svc,
		cal:           cal,
		now:           now,
		log:           log.Named("bot"),
		conversations: make(map[int64]*conversationState),
		boards:        make(map[int64]*chatBoard),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot: no telegram client")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
	b.Close()
	return nil
}

// Close detaches every chat board from store notifications.
func (b *Bot) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, cb := range b.boards {
		cb.board.Close()
		delete(b.boards, id)
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		metrics.IncrementBotUpdate("callback")
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.log.Error("handle callback", zap.String("data", update.CallbackQuery.Data), zap.Error(err))
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		kind := "message"
		if update.Message.IsCommand() {
			kind = "command"
		}
		metrics.IncrementBotUpdate(kind)
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Error("handle message", zap.Int64("chat_id", update.Message.Chat.ID), zap.Error(err))
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	}

	if msg.IsCommand() {
		b.log.Debug("command", zap.Int64("from", msg.From.ID), zap.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /newhabit, чтобы добавить привычку, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "newhabit":
		return b.startTrackerConversation(ctx, msg, model.KindHabit)
	case "newevent":
		return b.startTrackerConversation(ctx, msg, model.KindEvent)
	case "trackers", "today":
		return b.handleBoard(ctx, msg, msg.Command() == "today")
	case "date":
		return b.handleDate(ctx, msg)
	case "filter":
		return b.handleFilter(ctx, msg)
	case "search":
		return b.handleSearch(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "newcategory":
		return b.handleNewCategory(ctx, msg)
	case "renamecategory":
		return b.handleRenameCategory(ctx, msg)
	case "deletecategory":
		return b.handleDeleteCategory(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewHabit):
		return true, b.startTrackerConversation(ctx, msg, model.KindHabit)
	case strings.ToLower(menuLabelNewEvent):
		return true, b.startTrackerConversation(ctx, msg, model.KindEvent)
	case strings.ToLower(menuLabelTrackers):
		return true, b.handleBoard(ctx, msg, false)
	case strings.ToLower(menuLabelStats):
		return true, b.handleStats(ctx, msg)
	case strings.ToLower(menuLabelCategories):
		return true, b.handleCategories(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я трекер привычек: отмечай, что сделал сегодня, и следи за сериями.</b>\n\n"+
			"• /newhabit — новая привычка по дням недели\n"+
			"• /newevent — нерегулярное событие на дату\n"+
			"• /trackers — трекеры на выбранный день\n"+
			"• /stats — статистика\n"+
			"• /help — все команды",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Команды</b>\n" +
		"• /newhabit — добавить привычку пошагово\n" +
		"• /newevent — добавить событие на конкретную дату\n" +
		"• /trackers — показать трекеры и отмечать выполнение кнопками\n" +
		"• /today — перейти к сегодняшнему дню\n" +
		"• /date &lt;ГГГГ-ММ-ДД&gt; — выбрать день\n" +
		"• /filter — фильтр: все, на сегодня, завершённые, не завершённые\n" +
		"• /search &lt;текст&gt; — поиск по названию (без текста сбрасывает)\n" +
		"• /stats — лучший период, идеальные дни, всего и в среднем\n" +
		"• /categories — список категорий\n" +
		"• /newcategory &lt;название&gt; — создать категорию\n" +
		"• /renamecategory &lt;номер&gt; &lt;название&gt; — переименовать\n" +
		"• /deletecategory &lt;номер&gt; — удалить категорию\n" +
		"• /report — ежедневный отчёт прямо сейчас\n" +
		"• /cancel — отменить текущий ввод"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	stats, ok, err := b.svc.Stats.Compute(ctx, user.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не удалось посчитать статистику, попробуй позже.")
	}
	if !ok {
		return b.sendText(msg.Chat.ID, "📊 Анализировать пока нечего. Отметь хотя бы один трекер.")
	}
	return b.sendText(msg.Chat.ID, "📊 <b>Статистика</b>\n"+service.FormatStatistics(stats))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.svc.Reminders.DailySummary(ctx, *user, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не удалось сформировать отчёт, попробуй позже.")
	}
	return b.sendText(msg.Chat.ID, text)
}

// SendDailyReports sends a summary to every known user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	sent, err := b.svc.Reminders.Deliver(ctx, b.svc.Users, b.now(), func(u model.User, text string) error {
		return b.sendText(u.TelegramID, text)
	})
	b.log.Info("daily reports sent", zap.Int("sent", sent))
	return err
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.svc.Users.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

// userMessage turns a service error into a chat reply. Unexpected errors
// are logged and get a generic text.
func (b *Bot) userMessage(err error) string {
	if v, ok := service.IsValidation(err); ok {
		return "⚠️ " + escape(v.Message)
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "Не найдено: возможно, уже удалено."
	case errors.Is(err, service.ErrFutureDate):
		return "Нельзя отметить трекер на будущую дату."
	default:
		b.log.Error("request failed", zap.Error(err))
		return "Что-то пошло не так, попробуй ещё раз."
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	return b.api.Send(msg)
}

func (b *Bot) answerCallback(id, text string, alert bool) {
	cfg := tgbotapi.NewCallback(id, text)
	cfg.ShowAlert = alert
	if _, err := b.api.Request(cfg); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
