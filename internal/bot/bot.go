// Package bot maps Telegram updates onto the expense service.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mjovanovik/firefly-receipt-bot/internal/expense"
)

// Service processes inbound expenses. Implemented by expense.Service.
type Service interface {
	ProcessImage(imageData []byte, contentType string) (*expense.Result, error)
	ProcessText(text string) (*expense.Result, error)
}

// Bot polls Telegram for updates and routes each message to the service.
// Messages are handled one at a time in arrival order.
type Bot struct {
	api     *tgbotapi.BotAPI
	service Service
	client  *http.Client
}

// New creates a Bot and authenticates against the Telegram API.
func New(token string, service Service) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Bot{
		api:     api,
		service: service,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Run polls for updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("Bot is running", "username", b.api.Self.UserName)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	switch {
	case msg.IsCommand():
		b.handleCommand(msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(msg)
	case msg.Document != nil:
		b.handleDocument(msg)
	case msg.Text != "":
		b.handleText(msg)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.send(msg.Chat.ID, startReply)
	default:
		b.send(msg.Chat.ID, unknownCommandReply)
	}
}

func (b *Bot) handlePhoto(msg *tgbotapi.Message) {
	slog.Info("Photo received", "from", msg.From.FirstName, "chat_id", msg.Chat.ID)

	// Telegram orders photo sizes smallest first
	photo := msg.Photo[len(msg.Photo)-1]
	b.processFile(msg.Chat.ID, photo.FileID, "image/jpeg")
}

func (b *Bot) handleDocument(msg *tgbotapi.Message) {
	doc := msg.Document
	slog.Info("Document received",
		"from", msg.From.FirstName,
		"chat_id", msg.Chat.ID,
		"mime_type", doc.MimeType,
	)

	if !strings.HasPrefix(doc.MimeType, "image/") && doc.MimeType != "application/pdf" {
		b.send(msg.Chat.ID, unsupportedDocumentReply)
		return
	}
	b.processFile(msg.Chat.ID, doc.FileID, doc.MimeType)
}

// processFile downloads a Telegram file and runs it through extraction
// and submission, keeping the user informed via an editable status
// message.
func (b *Bot) processFile(chatID int64, fileID string, contentType string) {
	statusID := b.send(chatID, processingReply)

	data, err := b.downloadFile(fileID)
	if err != nil {
		slog.Error("Failed to download file", "file_id", fileID, "error", err)
		b.update(chatID, statusID, failureReply(err))
		return
	}

	result, err := b.service.ProcessImage(data, contentType)
	if err != nil {
		slog.Error("Failed to process receipt", "error", err)
		b.update(chatID, statusID, failureReply(err))
		return
	}

	b.update(chatID, statusID, receiptReply(result))
}

func (b *Bot) handleText(msg *tgbotapi.Message) {
	slog.Info("Manual input received", "from", msg.From.FirstName, "chat_id", msg.Chat.ID)

	result, err := b.service.ProcessText(msg.Text)
	if err != nil {
		slog.Error("Failed to process manual input", "error", err)
		b.send(msg.Chat.ID, failureReply(err))
		return
	}
	b.send(msg.Chat.ID, manualReply(result))
}

// downloadFile fetches a file's bytes through the Telegram file API.
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolving file URL: %w", err)
	}

	resp, err := b.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// send sends a plain-text message and returns its ID, or 0 on failure.
func (b *Bot) send(chatID int64, text string) int {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		slog.Error("Failed to send message", "chat_id", chatID, "error", err)
		return 0
	}
	return sent.MessageID
}

// update edits a previously sent message in place, falling back to a new
// message when there is nothing to edit.
func (b *Bot) update(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.send(chatID, text)
		return
	}
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		slog.Error("Failed to edit message", "chat_id", chatID, "error", err)
	}
}
