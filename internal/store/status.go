package store

type Status uint8

const (
	Idle Status = iota
	Loading
	Refreshing
	SearchingFiltered
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Refreshing:
		return "refreshing"
	case SearchingFiltered:
		return "searching"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Busy reports whether a list request is in flight.
func (s Status) Busy() bool {
	return s == Loading || s == Refreshing || s == SearchingFiltered
}
