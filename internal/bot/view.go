package bot

import (
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"habit-tracker/internal/service"
	"habit-tracker/internal/tracking"
)

// chatBoard is the board of one Telegram user together with its view.
type chatBoard struct {
	board *service.Board
	view  *chatView
}

// chatView renders board results into a single chat message, editing it in
// place once it has been sent. Results arriving before attach are dropped.
type chatView struct {
	bot    *Bot
	chatID int64

	mu        sync.Mutex
	messageID int
	board     *service.Board
}

func newChatView(b *Bot, chatID int64) *chatView {
	return &chatView{bot: b, chatID: chatID}
}

func (v *chatView) attached() *service.Board {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.board
}

func (v *chatView) ShowCategories(res tracking.Result) {
	board := v.attached()
	if board == nil {
		return
	}
	v.render(renderBoard(res), boardKeyboard(res, board.IsEditableDate(res.Date), board.IsFilterActive()))
}

func (v *chatView) ShowEmptyState(state tracking.EmptyState) {
	board := v.attached()
	if board == nil {
		return
	}
	res := board.Result()
	text := emptyStateText(state)
	if state == tracking.EmptyNoResults {
		text = boardHeader(res.Date, res.Filter, res.Search) + "\n" + text
	}
	v.render(text, tgbotapi.NewInlineKeyboardMarkup(navigationRows(res.Filter, board.IsFilterActive())...))
}

func (v *chatView) DateChanged(date time.Time) {
	v.bot.log.Debug("board date moved", zap.Int64("chat_id", v.chatID), zap.Time("date", date))
}

// track makes later renders edit messageID. Zero means send a new message.
func (v *chatView) track(messageID int) {
	v.mu.Lock()
	v.messageID = messageID
	v.mu.Unlock()
}

// attach binds the view to its board; the next refresh is rendered.
func (v *chatView) attach(board *service.Board) {
	v.mu.Lock()
	v.board = board
	v.mu.Unlock()
}

func (v *chatView) render(text string, markup tgbotapi.InlineKeyboardMarkup) {
	v.mu.Lock()
	messageID := v.messageID
	v.mu.Unlock()

	log := v.bot.log.With(zap.Int64("chat_id", v.chatID))

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(v.chatID, messageID, text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err := v.bot.api.Send(edit)
		if err == nil || isNotModified(err) {
			return
		}
		log.Warn("edit board message", zap.Error(err))
	}

	sent, err := v.bot.sendWithReplyMarkup(v.chatID, text, markup)
	if err != nil {
		log.Error("send board message", zap.Error(err))
		return
	}
	v.track(sent.MessageID)
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
