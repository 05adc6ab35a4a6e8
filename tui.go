package main

import (
	"errors"
	"fmt"

	"med-lt/kb"
	"med-lt/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const adaptLabel = "Adapter au profil"

var helpText = `
[yellow]F1[white]: opérations
[yellow]F2[white]: consultation
[yellow]F3[white]: nouvelle consultation
[yellow]F5[white]: micro marche/arrêt
[yellow]F6[white]: lire le résultat (TTS)
[yellow]F12[white]: aide
[yellow]Esc[white]: envoyer le message (consultation)

Appuyez sur Entrée pour revenir
`

type tui struct {
	assistant *Assistant
	app       *tview.Application
	pages     *tview.Pages
	opsForm   *tview.Form
	opsOut    *tview.TextView
	chatView  *tview.TextView
	chatArea  *tview.TextArea
	statusTV  *tview.TextView
	// chat state
	chat       *models.Chat
	history    []models.RoleMsg
	lastResult string
}

func runTUI(assistant *Assistant) error {
	theme := tview.Theme{
		PrimitiveBackgroundColor:    tcell.ColorDefault,
		ContrastBackgroundColor:     tcell.ColorGray,
		MoreContrastBackgroundColor: tcell.ColorNavy,
		BorderColor:                 tcell.ColorGray,
		TitleColor:                  tcell.ColorRed,
		GraphicsColor:               tcell.ColorBlue,
		PrimaryTextColor:            tcell.ColorOlive,
		SecondaryTextColor:          tcell.ColorYellow,
		TertiaryTextColor:           tcell.ColorOrange,
		InverseTextColor:            tcell.ColorPurple,
		ContrastSecondaryTextColor:  tcell.ColorLime,
	}
	tview.Styles = theme
	t := &tui{
		assistant: assistant,
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
	}
	t.chat, t.history = assistant.loadLastChat()
	t.buildOpsPage()
	t.buildChatPage()
	t.buildHelpPage()
	t.app.SetInputCapture(t.keyCapture)
	return t.app.SetRoot(t.pages, true).EnableMouse(true).EnablePaste(true).Run()
}

func (t *tui) buildOpsPage() {
	actions := make([]string, 0, len(actionOrder)+1)
	for _, act := range actionOrder {
		actions = append(actions, string(act))
	}
	actions = append(actions, adaptLabel)
	t.opsOut = tview.NewTextView().
		SetDynamicColors(true).
		SetChangedFunc(func() { t.app.Draw() })
	t.opsOut.SetBorder(true).SetTitle("résultat")
	selectedAction := actions[0]
	profileLabels := t.assistant.profiles.Labels()
	selectedProfile := ""
	if len(profileLabels) > 0 {
		selectedProfile = profileLabels[0]
	}
	t.opsForm = tview.NewForm().
		AddDropDown("Action", actions, 0, func(option string, _ int) {
			selectedAction = option
		}).
		AddDropDown("Profil", profileLabels, 0, func(option string, _ int) {
			selectedProfile = option
		}).
		AddTextArea("Texte", "", 0, 4, 0, nil)
	t.opsForm.
		AddButton("Traiter", func() {
			text := t.opsForm.GetFormItemByLabel("Texte").(*tview.TextArea).GetText()
			t.runAction(selectedAction, selectedProfile, text)
		}).
		AddButton("Micro", func() { t.toggleRecording() }).
		AddButton("Lire résultat", func() { t.assistant.Speak(t.lastResult) })
	t.opsForm.SetBorder(true).SetTitle("assistant médical local")
	t.statusTV = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	t.updateStatus("")
	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.opsForm, 0, 12, true).
		AddItem(t.opsOut, 0, 20, false).
		AddItem(t.statusTV, 1, 1, false)
	t.pages.AddPage("ops", flex, true, true)
}

func (t *tui) buildChatPage() {
	t.chatView = tview.NewTextView().
		SetDynamicColors(true).
		SetChangedFunc(func() { t.app.Draw() })
	t.chatView.SetBorder(true).SetTitle("consultation")
	t.chatArea = tview.NewTextArea().
		SetPlaceholder("Écrivez ici...")
	t.chatArea.SetBorder(true).SetTitle("votre message")
	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.chatView, 0, 40, false).
		AddItem(t.chatArea, 0, 10, true)
	t.pages.AddPage("chat", flex, true, false)
	t.chatView.SetText(chatToText(t.history))
}

func (t *tui) buildHelpPage() {
	helpView := tview.NewTextView().
		SetDynamicColors(true).
		SetText(helpText).
		SetDoneFunc(func(key tcell.Key) {
			t.pages.HidePage("help")
		})
	helpView.SetBorder(true).SetTitle("aide")
	t.pages.AddPage("help", helpView, true, false)
}

func (t *tui) keyCapture(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyF1:
		t.pages.SwitchToPage("ops")
		return nil
	case tcell.KeyF2:
		t.pages.SwitchToPage("chat")
		t.app.SetFocus(t.chatArea)
		return nil
	case tcell.KeyF3:
		t.chat = t.assistant.newChat()
		t.history = t.assistant.defaultStarter()
		t.chatView.SetText(chatToText(t.history))
		return nil
	case tcell.KeyF5:
		t.toggleRecording()
		return nil
	case tcell.KeyF6:
		t.assistant.Speak(t.lastResult)
		return nil
	case tcell.KeyF12:
		t.pages.ShowPage("help")
		return nil
	case tcell.KeyEscape:
		if name, _ := t.pages.GetFrontPage(); name == "chat" {
			t.sendChatMsg()
			return nil
		}
	}
	return event
}

// runAction executes one synchronous pipeline and renders the outcome.
func (t *tui) runAction(action, profileLabel, text string) {
	var result string
	var err error
	if action == adaptLabel {
		key := t.assistant.profiles.KeyFor(profileLabel)
		result, err = t.assistant.AdaptToProfile(text, key)
	} else {
		result, err = t.assistant.Dispatch(Action(action), text)
	}
	switch {
	case err == nil:
		t.updateStatus("")
	case errors.Is(err, kb.ErrPersist):
		// keep showing the parsed values; flag the storage failure
		t.updateStatus("[red]échec d'enregistrement dans le dictionnaire[-]")
	case errors.Is(err, ErrInference):
		result = "Le modèle local est injoignable. Réessayez plus tard."
		t.updateStatus("[red]erreur d'inférence[-]")
	default:
		result = err.Error()
		t.updateStatus("[red]erreur[-]")
	}
	t.lastResult = result
	t.opsOut.SetText(result)
}

func (t *tui) sendChatMsg() {
	msg := t.chatArea.GetText()
	if msg == "" {
		return
	}
	t.chatArea.SetText("", true)
	history, _, err := t.assistant.ChatTurn(t.history, msg)
	t.history = history
	if err != nil {
		t.assistant.logger.Error("chat turn failed", "error", err)
		t.chatView.SetText(chatToText(t.history) + "\n[red]Le modèle local est injoignable.[-]\n")
		return
	}
	t.chatView.SetText(chatToText(t.history))
	if err := t.assistant.saveChat(t.chat, t.history); err != nil {
		t.assistant.logger.Error("failed to save chat", "chat", t.chat.Name, "error", err)
	}
}

func (t *tui) toggleRecording() {
	if !t.assistant.cfg.STT_ENABLED {
		t.updateStatus("[orange]STT désactivé dans la config[-]")
		return
	}
	asr := t.assistant.asr
	if asr.IsRecording() {
		text, err := asr.StopRecording()
		if err != nil {
			t.assistant.logger.Error("stt failed", "error", err)
			t.updateStatus("[red]échec de la reconnaissance vocale[-]")
			return
		}
		t.opsForm.GetFormItemByLabel("Texte").(*tview.TextArea).SetText(text, true)
		t.updateStatus("")
		return
	}
	if err := asr.StartRecording(); err != nil {
		t.assistant.logger.Error("failed to start recording", "error", err)
		t.updateStatus("[red]micro indisponible[-]")
		return
	}
	t.updateStatus("[lime]enregistrement...[-]")
}

func (t *tui) updateStatus(note string) {
	line := fmt.Sprintf("F12 aide; modèle: %s; termes: %d",
		t.assistant.cfg.ModelName, t.assistant.terms.Len())
	if note != "" {
		line += " | " + note
	}
	t.statusTV.SetText(line)
}

func chatToText(history []models.RoleMsg) string {
	text := ""
	for i, msg := range history {
		if msg.Role == "system" {
			continue
		}
		text += msg.ToText(i)
	}
	return text
}
