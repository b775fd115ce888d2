package notifier

// TextNotifier is the only thing the panel job needs from a notifier.
type TextNotifier interface {
	SendText(text string) error
}
