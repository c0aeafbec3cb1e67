package mainapp

import (
	"context"
	"f1strategybot/pkg/apps"
	"f1strategybot/pkg/apps/strategies"
	"f1strategybot/pkg/menus"
	"f1strategybot/pkg/simulator"
	"f1strategybot/pkg/strategy"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	menuStart        = "/start"
	menuMenu         = "/menu"
	buttonStrategies = "Estrategias"
	buttonCompare    = "Comparar"
	appName          = "menu"
)

var (
	menuKeyboard = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonStrategies),
			tgbotapi.NewKeyboardButton(buttonCompare),
		),
	)
)

type menuer struct{}

func (m menuer) Menu() tgbotapi.ReplyKeyboardMarkup {
	return menuKeyboard
}

type Options struct {
	Simulator *simulator.Simulator
	Scenarios strategy.Scenarios
	TotalLaps int
	Circuit   string
	Logger    zerolog.Logger
}

type MainApp struct {
	bot       apps.Sender
	accepters []apps.Accepter
	circuit   string
}

func NewMainApp(bot apps.Sender, opts Options) *MainApp {
	strategiesAppMenu := menus.NewApplicationMenu(buttonStrategies, appName, menuer{})
	strategiesApp := strategies.NewStrategiesApp(bot, strategiesAppMenu, opts.Simulator, opts.Scenarios, opts.TotalLaps, opts.Circuit, opts.Logger)

	accepters := []apps.Accepter{strategiesApp}

	return &MainApp{
		bot:       bot,
		accepters: accepters,
		circuit:   opts.Circuit,
	}
}

func (m *MainApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if command == menuStart {
		return true, m.renderStart()
	} else if command == menuMenu {
		return true, m.renderMenu()
	}
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCommand(command)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCallback(query)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptButton(button)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

func (m *MainApp) renderStart() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := fmt.Sprintf("Hola, soy el bot de estrategias de gomas para %s.\n\n", m.circuit)
		message += "Puedes usar los siguientes comandos:\n\n"
		message += fmt.Sprintf("%s - Muestra el menú del bot\n", menuMenu)
		message += "/sim - Simula tu propia estrategia\n"
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}

func (m *MainApp) renderMenu() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Menú del bot.\n\n"
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}
