package ui

import "dbviewer/internal/cycler"

// AdvanceDueMsg carries a timer token that elapsed.
type AdvanceDueMsg struct {
	Token cycler.Token
}

// CommandMsg is an operator command from any input: console keys, the kiosk
// window or the control server.
type CommandMsg struct {
	Command cycler.Command
}

// TitleChangedMsg is sent when the kiosk window reports a new page title.
type TitleChangedMsg struct {
	Title string
}

// ContentChangedMsg is sent when the content file changes on disk.
type ContentChangedMsg struct{}

// QuitMsg asks the console to exit, e.g. Escape in the kiosk window.
type QuitMsg struct{}

// ManualEntryMsg is sent when the operator submits the manual entry modal.
type ManualEntryMsg struct {
	Text string
}

// DismissModalMsg closes the top overlay.
type DismissModalMsg struct{}

type startMsg struct{}

type openManualEntryMsg struct{}

type toggleHelpMsg struct{}

type previewLoadedMsg struct {
	Items []string
	Err   error
}

type tickMsg struct{}
