package notify

import (
	"fmt"
	"regexp"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"sprout/internal/logger"
	"sprout/internal/models"
	"sprout/internal/paycycle"
	"sprout/internal/services"
)

// linkCodePattern matches the 6-character hex codes issued by the API.
var linkCodePattern = regexp.MustCompile(`^[0-9a-f]{6}$`)

// Notifier runs the Telegram bot: it completes account links from codes sent
// in chat and pushes payday transfer summaries to linked households.
type Notifier struct {
	api             *tgbotapi.BotAPI
	db              *gorm.DB
	telegramService services.TelegramServicer
	done            chan struct{}
}

// New creates a Notifier, or returns nil when no token is configured so the
// rest of the application runs without notifications.
func New(token string, telegramService services.TelegramServicer, db *gorm.DB) (*Notifier, error) {
	if token == "" {
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	api.Debug = false

	return &Notifier{
		api:             api,
		db:              db,
		telegramService: telegramService,
		done:            make(chan struct{}),
	}, nil
}

// Start begins consuming bot updates in a background goroutine.
func (n *Notifier) Start() {
	logger.Get().Infof("Telegram bot started as @%s", n.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := n.api.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil {
					n.handleMessage(update.Message)
				}
			case <-n.done:
				return
			}
		}
	}()
}

// Stop shuts down the update loop.
func (n *Notifier) Stop() {
	n.api.StopReceivingUpdates()
	close(n.done)
}

func (n *Notifier) handleMessage(msg *tgbotapi.Message) {
	if err := n.telegramService.RecordMessage(msg.From.ID); err != nil {
		logger.Get().Warnw("failed to record bot message", "error", err.Error())
	}

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		n.reply(msg.Chat.ID,
			"Hi! To link this chat to your account, generate a link code in the app and send it here.")

	case msg.IsCommand() && msg.Command() == "help":
		n.reply(msg.Chat.ID,
			"Send the 6-character link code from the app to connect your account. Once linked you'll get a transfer summary every payday.")

	case linkCodePattern.MatchString(msg.Text):
		n.completeLink(msg)

	default:
		n.reply(msg.Chat.ID, "I didn't recognise that. Send /help for instructions.")
	}
}

func (n *Notifier) completeLink(msg *tgbotapi.Message) {
	link, err := n.telegramService.CompleteLink(
		msg.Text, msg.From.ID, msg.Chat.ID, msg.From.UserName, msg.From.FirstName)
	if err != nil {
		logger.Get().Infow("link attempt failed",
			"telegram_user_id", msg.From.ID,
			"error", err.Error(),
		)
		n.reply(msg.Chat.ID, "That code didn't work. Codes expire after 15 minutes; generate a fresh one in the app and try again.")
		return
	}

	logger.Get().Infow("telegram account linked",
		"user_id", link.UserID,
		"telegram_user_id", link.TelegramUserID,
	)
	n.reply(msg.Chat.ID, "Linked! You'll get a transfer summary here every payday.")
}

func (n *Notifier) reply(chatID int64, text string) {
	if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Get().Warnw("failed to send bot message",
			"chat_id", chatID,
			"error", err.Error(),
		)
	}
}

// SendPaydaySummaries pushes a transfer summary to every linked chat of each
// household whose active cycle starts today. Returns the number of messages
// sent; delivery failures are logged and skipped rather than aborting the run.
func (n *Notifier) SendPaydaySummaries(today time.Time) (int, error) {
	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var cycles []models.PayCycle
	err := n.db.
		Preload("Household").
		Preload("Seeds").
		Where("status = ? AND start_date >= ? AND start_date < ?",
			models.CycleStatusActive, dayStart, dayEnd).
		Find(&cycles).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load payday cycles: %w", err)
	}

	sent := 0
	for i := range cycles {
		cycle := &cycles[i]
		transfers := paycycle.SummarizeTransfers(models.SeedLines(cycle.Seeds))
		if transfers.IsZero() {
			continue
		}

		links, err := n.telegramService.ActiveLinksForHousehold(cycle.HouseholdID)
		if err != nil {
			logger.Get().Warnw("failed to load household links",
				"household_id", cycle.HouseholdID,
				"error", err.Error(),
			)
			continue
		}

		text := paydayMessage(&cycle.Household, cycle, transfers)
		for _, link := range links {
			m := tgbotapi.NewMessage(link.ChatID, text)
			m.ParseMode = tgbotapi.ModeMarkdown
			if _, err := n.api.Send(m); err != nil {
				logger.Get().Warnw("failed to send payday summary",
					"chat_id", link.ChatID,
					"error", err.Error(),
				)
				continue
			}
			sent++
		}
	}
	return sent, nil
}
