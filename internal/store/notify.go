package store

import "github.com/rs/zerolog/log"

type Level uint8

const (
	Success Level = iota
	Failure
)

// Notice is a user-facing message emitted by a store action. Failures are meant to be shown as a
// blocking, dismissible alert.
type Notice struct {
	Level   Level
	Message string
	Err     error
}

type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

// LogNotifier writes notices to the global logger.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	if n.Level == Failure {
		log.Error().Err(n.Err).Msg(n.Message)
		return
	}
	log.Info().Msg(n.Message)
}
