package bot

import (
	"context"
	"f1strategybot/pkg/apps"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// NewAPI connects to Telegram with the given token.
func NewAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("TELEGRAM_TOKEN is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to telegram")
	}
	// Set this to true to log all interactions with telegram servers
	api.Debug = debug
	return api, nil
}

type Dispatcher struct {
	app    apps.Accepter
	logger zerolog.Logger
}

func NewDispatcher(app apps.Accepter, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		app:    app,
		logger: logger.With().Str("component", "bot").Logger(),
	}
}

// Run handles updates until ctx is cancelled or the channel is closed.
func (d *Dispatcher) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		// stop looping if ctx is cancelled
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			d.Handle(ctx, update)
		}
	}
}

// Handle dispatches one update. A panicking handler is logged and does not
// stop the bot.
func (d *Dispatcher) Handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Interface("panic", r).Int("update", update.UpdateID).Msg("handler panicked")
		}
	}()

	var err error
	switch {
	case update.Message != nil:
		err = d.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = d.handleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		d.logger.Error().Err(err).Msg("handling update")
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	user := message.From
	text := message.Text
	if user == nil || message.Chat == nil {
		return nil
	}

	d.logger.Debug().Str("user", user.FirstName).Str("text", text).Msg("message received")

	var accepted bool
	var handler func(ctx context.Context, chatId int64) error
	if message.IsCommand() {
		accepted, handler = d.app.AcceptCommand(text)
	} else {
		accepted, handler = d.app.AcceptButton(text)
	}
	if !accepted {
		return nil
	}
	return handler(ctx, message.Chat.ID)
}

func (d *Dispatcher) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.Message == nil || query.Message.Chat == nil {
		return nil
	}
	accepted, handler := d.app.AcceptCallback(query)
	if !accepted {
		return nil
	}
	return handler(ctx, query)
}

// Start begins long polling and dispatches updates until ctx is cancelled.
func Start(ctx context.Context, api *tgbotapi.BotAPI, app apps.Accepter, logger zerolog.Logger) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	// `updates` is a golang channel which receives telegram updates
	updates := api.GetUpdatesChan(u)
	d := NewDispatcher(app, logger)

	logger.Info().Str("bot", api.Self.UserName).Msg("start listening for updates")
	d.Run(ctx, updates)
	api.StopReceivingUpdates()
}
