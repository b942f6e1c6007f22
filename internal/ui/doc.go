// Package ui is the operator console: a Bubble Tea program whose Update is the
// only place the cycler is driven. Timer expiry, kiosk keys, file changes and
// control requests all arrive as messages through tea.Program.Send.
//
// Keybindings are kept in a KeybindRegistry. Single keys map straight to
// commands; SPC starts a leader sequence (SPC q quits, SPC o opens manual entry).
package ui
