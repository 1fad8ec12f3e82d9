package services

// Notifier pushes tournament events to connected viewers.
type Notifier interface {
	Publish(tournamentID, messageType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, string, interface{}) {}
