package menus

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const buttonBackTo = "Volver a"

// Menuer is anything that owns a reply keyboard a submenu can return to.
type Menuer interface {
	Menu() tgbotapi.ReplyKeyboardMarkup
}

// ApplicationMenu describes a submenu: the button that opens it and the menu
// it came from.
type ApplicationMenu struct {
	Name     string
	From     string
	prevMenu Menuer
}

func NewApplicationMenu(name, from string, prevMenu Menuer) ApplicationMenu {
	return ApplicationMenu{
		Name:     name,
		From:     from,
		prevMenu: prevMenu,
	}
}

func (am *ApplicationMenu) ButtonBackTo() string {
	return buttonBackTo + " " + am.From
}

func (am *ApplicationMenu) PrevMenu() tgbotapi.ReplyKeyboardMarkup {
	return am.prevMenu.Menu()
}

// Keyboard lays the buttons out in rows of perRow and appends the back button
// on its own row.
func (am *ApplicationMenu) Keyboard(perRow int, buttons ...string) tgbotapi.ReplyKeyboardMarkup {
	if perRow <= 0 {
		perRow = len(buttons)
	}
	rows := [][]tgbotapi.KeyboardButton{}
	for start := 0; start < len(buttons); start += perRow {
		end := start + perRow
		if end > len(buttons) {
			end = len(buttons)
		}
		row := []tgbotapi.KeyboardButton{}
		for _, b := range buttons[start:end] {
			row = append(row, tgbotapi.NewKeyboardButton(b))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(am.ButtonBackTo())))
	return tgbotapi.NewReplyKeyboard(rows...)
}
