// Package telegram delivers the school bot over Telegram long polling.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
)

// Processor answers one user message.
type Processor interface {
	ProcessMessage(ctx context.Context, text, userID string) models.Reply
}

// botAPI is the part of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

const userIDPrefix = "tg:"

type Bot struct {
	api       botAPI
	processor Processor
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func New(token string, processor Processor, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Authorized on Telegram", zap.String("account", api.Self.UserName))

	return newBot(api, processor, logger), nil
}

func newBot(api botAPI, processor Processor, logger *zap.Logger) *Bot {
	return &Bot{
		api:       api,
		processor: processor,
		logger:    logger,
	}
}

// Run polls for updates until ctx is cancelled and waits for in-flight
// messages before returning.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}

			b.wg.Add(1)
			go func(message *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleMessage(ctx, message)
			}(update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}
	if text == "" {
		b.sendMessage(message.Chat.ID, "텍스트로 질문해 주세요. /help 로 사용법을 볼 수 있습니다.")
		return
	}

	reply := b.processor.ProcessMessage(ctx, text, userID(message))
	b.sendReply(message.Chat.ID, message.MessageID, reply)
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	default:
		b.sendMessage(message.Chat.ID, "알 수 없는 명령어입니다. /help 로 사용법을 확인해 주세요.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := "*" + escapeMarkdown("파주와석초등학교 챗봇") + "* 🍎\n\n" +
		escapeMarkdown("급식 메뉴, 학교 생활 질문에 답해 드립니다.\n아래 버튼을 누르거나 자유롭게 질문해 주세요.")

	msg := tgbotapi.NewMessage(message.Chat.ID, welcome)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = suggestionKeyboard(startSuggestions)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send welcome message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `사용 가능한 명령어:
/start - 챗봇 시작
/help - 도움말 보기

이렇게 물어보세요:
- 오늘 급식 뭐야?
- 5월 20일 급식 알려줘
- 이번 주 급식
- 전학은 어떻게 하나요?
- 도서관은 몇시에 여나요?`

	b.sendMessage(message.Chat.ID, help)
}

var startSuggestions = []models.Suggestion{
	{Label: "급식 메뉴", Message: "급식 메뉴 알려줘"},
	{Label: "학교 규칙", Message: "학교 규칙 알려줘"},
	{Label: "방과후", Message: "방과후 프로그램 알려줘"},
}

func (b *Bot) sendReply(chatID int64, replyToID int, reply models.Reply) {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ReplyToMessageID = replyToID
	if len(reply.Suggestions) > 0 {
		msg.ReplyMarkup = suggestionKeyboard(reply.Suggestions)
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("intent", reply.Intent))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

// suggestionKeyboard lays suggestions out one row each. Buttons send the
// full suggestion message so it classifies the same way as typed text.
func suggestionKeyboard(suggestions []models.Suggestion) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(suggestions))
	for _, s := range suggestions {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(s.Message)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func userID(message *tgbotapi.Message) string {
	if message.From != nil {
		return userIDPrefix + strconv.FormatInt(message.From.ID, 10)
	}
	return userIDPrefix + strconv.FormatInt(message.Chat.ID, 10)
}

// escapeMarkdown escapes special characters for MarkdownV2
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}
