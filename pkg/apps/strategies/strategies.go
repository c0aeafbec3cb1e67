package strategies

import (
	"bytes"
	"context"
	"f1strategybot/pkg/apps"
	"f1strategybot/pkg/chart"
	"f1strategybot/pkg/helper"
	"f1strategybot/pkg/menus"
	"f1strategybot/pkg/metrics"
	"f1strategybot/pkg/render"
	"f1strategybot/pkg/simulator"
	"f1strategybot/pkg/strategy"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var commandSimulate = regexp.MustCompile(`^/sim(?:@\w+)?(?:\s+(.*))?$`)

type StrategiesApp struct {
	bot          apps.Sender
	appMenu      menus.ApplicationMenu
	menuKeyboard tgbotapi.ReplyKeyboardMarkup
	sim          *simulator.Simulator
	scenarios    strategy.Scenarios
	totalLaps    int
	circuit      string
	logger       zerolog.Logger
}

func NewStrategiesApp(bot apps.Sender, appMenu menus.ApplicationMenu, sim *simulator.Simulator, scenarios strategy.Scenarios, totalLaps int, circuit string, logger zerolog.Logger) *StrategiesApp {
	menuKeyboard := appMenu.Keyboard(2, buttonCompare, buttonHelp)

	return &StrategiesApp{
		bot:          bot,
		appMenu:      appMenu,
		menuKeyboard: menuKeyboard,
		sim:          sim,
		scenarios:    scenarios,
		totalLaps:    totalLaps,
		circuit:      circuit,
		logger:       logger.With().Str("app", appName).Logger(),
	}
}

func (sa *StrategiesApp) Menu() tgbotapi.ReplyKeyboardMarkup {
	return sa.menuKeyboard
}

func (sa *StrategiesApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if m := commandSimulate.FindStringSubmatch(strings.TrimSpace(command)); m != nil {
		return true, sa.renderCustom(m[1])
	}
	return false, nil
}

func (sa *StrategiesApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	switch button {
	case sa.appMenu.Name:
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("%s - %s (%d vueltas)", sa.appMenu.Name, sa.circuit, sa.totalLaps))
			msg.ReplyMarkup = sa.menuKeyboard
			if _, err := sa.bot.Send(msg); err != nil {
				return err
			}
			return sa.sendScenarioList(chatId, nil)
		}
	case buttonCompare:
		return true, sa.renderComparison()
	case buttonHelp:
		return true, sa.renderHelp()
	case sa.appMenu.ButtonBackTo():
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, "OK")
			msg.ReplyMarkup = sa.appMenu.PrevMenu()
			_, err := sa.bot.Send(msg)
			return err
		}
	}
	return false, nil
}

func (sa *StrategiesApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	switch {
	case data[0] == subcommandList:
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			sa.answer(query.ID, "")
			return sa.sendScenarioList(query.Message.Chat.ID, &query.Message.MessageID)
		}
	case (data[0] == subcommandSimulate || data[0] == subcommandChart) && len(data) == 3:
		sc, found := sa.scenarioByKey(data[1])
		policy, err := simulator.ParsePolicy(data[2])
		if !found || err != nil {
			return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
				sa.answer(query.ID, "Estrategia no disponible")
				return nil
			}
		}
		if data[0] == subcommandChart {
			return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
				sa.answer(query.ID, "")
				return sa.sendChart(query.Message.Chat.ID, sc, policy)
			}
		}
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			sa.answer(query.ID, "")
			return sa.sendResult(query.Message.Chat.ID, &query.Message.MessageID, sc, policy)
		}
	}
	return false, nil
}

func (sa *StrategiesApp) answer(queryID, text string) {
	if _, err := sa.bot.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		sa.logger.Debug().Err(err).Msg("answering callback")
	}
}

func (sa *StrategiesApp) scenarioByKey(key string) (strategy.Scenario, bool) {
	for _, sc := range sa.scenarios {
		if helper.ToID(sc.ID) == key {
			return sc, true
		}
	}
	return strategy.Scenario{}, false
}

func (sa *StrategiesApp) simulate(s strategy.Strategy, laps int, policy simulator.Policy) (simulator.Result, error) {
	res, err := sa.sim.With(simulator.WithPolicy(policy), simulator.WithLapTrace(true)).Simulate(s, laps)
	if err != nil {
		return res, err
	}
	metrics.ObserveResult(metricsSource, res)
	return res, nil
}

func (sa *StrategiesApp) sendScenarioList(chatId int64, messageId *int) error {
	text, keyboard := sa.scenariosTextMarkup()

	var cfg tgbotapi.Chattable
	if messageId == nil {
		msg := tgbotapi.NewMessage(chatId, text)
		msg.ReplyMarkup = keyboard
		cfg = msg
	} else {
		msg := tgbotapi.NewEditMessageText(chatId, *messageId, text)
		msg.ReplyMarkup = &keyboard
		cfg = msg
	}
	_, err := sa.bot.Send(cfg)
	return err
}

func (sa *StrategiesApp) scenariosTextMarkup() (text string, markup tgbotapi.InlineKeyboardMarkup) {
	buttons := [][]tgbotapi.InlineKeyboardButton{}
	for _, sc := range sa.scenarios {
		data := fmt.Sprintf("%s:%s:%s", subcommandSimulate, helper.ToID(sc.ID), sa.sim.Policy())
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(sc.Name, data)))
	}
	text = fmt.Sprintf("Elige la estrategia para %s:\n\n", sa.circuit)
	markup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	return
}

func (sa *StrategiesApp) sendResult(chatId int64, messageId *int, sc strategy.Scenario, policy simulator.Policy) error {
	res, err := sa.simulate(sc.Strategy, sa.totalLaps, policy)
	if err != nil {
		return sa.sendError(chatId, err)
	}
	sa.logger.Debug().Str("scenario", sc.ID).Str("policy", policy.String()).Bool("exhausted", res.Exhausted).Msg("simulated")

	text := resultText(sa.circuit, sc, res)
	keyboard := resultInlineKeyboard(helper.ToID(sc.ID), policy, len(res.Laps) > 0)

	var cfg tgbotapi.Chattable
	if messageId == nil {
		msg := tgbotapi.NewMessage(chatId, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = keyboard
		cfg = msg
	} else {
		msg := tgbotapi.NewEditMessageText(chatId, *messageId, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = &keyboard
		cfg = msg
	}
	_, err = sa.bot.Send(cfg)
	return err
}

func (sa *StrategiesApp) sendChart(chatId int64, sc strategy.Scenario, policy simulator.Policy) error {
	res, err := sa.simulate(sc.Strategy, sa.totalLaps, policy)
	if err != nil {
		return sa.sendError(chatId, err)
	}
	var b bytes.Buffer
	if err := chart.PNG(&b, res, sa.sim.Table()); err != nil {
		return sa.sendError(chatId, err)
	}
	msg := tgbotapi.NewPhoto(chatId, tgbotapi.FileBytes{Name: "strategy.png", Bytes: b.Bytes()})
	msg.Caption = fmt.Sprintf("‣ Estrategia: %s\n‣ Tiempo: %s\n‣ Paradas: %d (vueltas %s)\n‣ Estado: %s",
		sc.Name, render.RaceTime(res), res.PitStops, helper.Laps(res.PitLaps), render.Status(res))
	_, err = sa.bot.Send(msg)
	return err
}

func (sa *StrategiesApp) renderComparison() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		results, err := sa.sim.Compare(ctx, sa.scenarios, sa.totalLaps)
		if err != nil {
			return sa.sendError(chatId, err)
		}
		for _, res := range results {
			metrics.ObserveResult(metricsSource, res)
		}
		text := fmt.Sprintf("```\n%s · %d vueltas · %s\n\n%s```", sa.circuit, sa.totalLaps, sa.sim.Policy(), render.ComparisonTable(sa.scenarios, results))
		msg := tgbotapi.NewMessage(chatId, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		_, err = sa.bot.Send(msg)
		return err
	}
}

func (sa *StrategiesApp) renderHelp() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Simula tu propia estrategia con:\n\n"
		message += "/sim <vueltas> <goma>[:vueltas] ... [strict|lenient]\n\n"
		message += "Ejemplo: /sim 58 Soft:25 Medium:33\n"
		message += "Gomas: " + compoundList(sa.sim) + "\n"
		message += fmt.Sprintf("Pérdida por parada: %.1fs", sa.sim.PitStopLoss())
		msg := tgbotapi.NewMessage(chatId, message)
		_, err := sa.bot.Send(msg)
		return err
	}
}

func (sa *StrategiesApp) renderCustom(args string) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		laps, s, policy, err := parseCustom(args, sa.sim.Policy())
		if err != nil {
			return sa.sendError(chatId, err)
		}
		res, err := sa.simulate(s, laps, policy)
		if err != nil {
			return sa.sendError(chatId, err)
		}
		sc := strategy.Scenario{ID: "custom", Name: s.Name(), Strategy: s}
		msg := tgbotapi.NewMessage(chatId, resultText(sa.circuit, sc, res))
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		_, err = sa.bot.Send(msg)
		return err
	}
}

// sendError answers input problems to the user; everything else is returned.
func (sa *StrategiesApp) sendError(chatId int64, err error) error {
	var pe *strategy.ParseError
	if !simulator.IsValidation(err) && !errors.As(err, &pe) && !errors.Is(err, errCustomUsage) {
		return err
	}
	msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("No se puede simular: %s", err))
	_, sendErr := sa.bot.Send(msg)
	return sendErr
}

var errCustomUsage = errors.New("uso: /sim <vueltas> <goma>[:vueltas] ...")

// parseCustom reads "<laps> <stints...> [policy]".
func parseCustom(args string, fallback simulator.Policy) (int, strategy.Strategy, simulator.Policy, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return 0, nil, fallback, errCustomUsage
	}
	laps, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, nil, fallback, errCustomUsage
	}
	policy := fallback
	last := strings.ToLower(fields[len(fields)-1])
	if last == simulator.Strict.String() || last == simulator.Lenient.String() {
		policy, _ = simulator.ParsePolicy(last)
		fields = fields[:len(fields)-1]
	}
	s, err := strategy.Parse(strings.Join(fields[1:], " "))
	if err != nil {
		return 0, nil, fallback, err
	}
	return laps, s, policy, nil
}

func resultText(circuit string, sc strategy.Scenario, res simulator.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "```\n%s\n\n%s\n", circuit, render.ResultTable(sc, res))
	if stints := render.StintTable(res); stints != "" {
		fmt.Fprintf(&b, "\n%s\n", stints)
	}
	if bar := render.UsageBar(res); bar != "" {
		fmt.Fprintf(&b, "\n%s\n", bar)
	}
	b.WriteString("```")
	return b.String()
}

func resultInlineKeyboard(key string, policy simulator.Policy, withChart bool) tgbotapi.InlineKeyboardMarkup {
	strict := inlineKeyboardStrict
	lenient := inlineKeyboardLenient
	if policy == simulator.Strict {
		strict += " " + symbolCurrent
	} else {
		lenient += " " + symbolCurrent
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(strict, fmt.Sprintf("%s:%s:%s", subcommandSimulate, key, simulator.Strict)),
			tgbotapi.NewInlineKeyboardButtonData(lenient, fmt.Sprintf("%s:%s:%s", subcommandSimulate, key, simulator.Lenient)),
		),
	}
	if withChart {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardChart+" "+symbolChart, fmt.Sprintf("%s:%s:%s", subcommandChart, key, policy)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardList+" "+symbolList, subcommandList),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func compoundList(sim *simulator.Simulator) string {
	table := sim.Table()
	parts := []string{}
	for _, c := range table.Compounds() {
		spec := table[c]
		parts = append(parts, fmt.Sprintf("%s %s %.2fs/%d", helper.CompoundSymbol(c), c, spec.Pace, spec.Lifespan))
	}
	return strings.Join(parts, ", ")
}
