package tui

// Key binding constants used in handleKey.
const (
	KeyCtrlC      = "ctrl+c"
	KeyReset      = "ctrl+r"
	KeyEnter      = "enter"
	KeyTab        = "tab"
	KeyBackspace  = "backspace"
	KeyQuit       = "q"
	KeyNewSession = "n"
)
