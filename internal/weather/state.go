package weather

// State is what the presentation layer renders for one session.
type State struct {
	Query    string                `json:"query,omitempty"`
	Loading  bool                  `json:"loading"`
	City     string                `json:"city,omitempty"`
	Current  *CanonicalObservation `json:"current,omitempty"`
	Forecast []DailyForecastSlot   `json:"forecast"`
	History  []string              `json:"history"`
	Alert    AlertState            `json:"alert"`
	Error    string                `json:"error,omitempty"`
}

// Event is one external occurrence that changes State.
type Event interface {
	apply(State) State
}

// SearchStarted is emitted when the user submits a city.
type SearchStarted struct {
	Query string
}

// SearchSucceeded carries the result of a completed search.
type SearchSucceeded struct {
	Result SearchResult
}

// SearchFailed carries the error that ended a search.
type SearchFailed struct {
	Err error
}

// Reset returns to the start screen. History survives.
type Reset struct{}

// Reduce applies e to s and returns the new state. s is not modified.
func Reduce(s State, e Event) State {
	return e.apply(s)
}

func (e SearchStarted) apply(s State) State {
	s.Query = e.Query
	s.Loading = true
	s.Error = ""
	s.Alert = AlertNone
	return s
}

func (e SearchSucceeded) apply(s State) State {
	current := e.Result.Current
	s.Loading = false
	s.Error = ""
	s.Query = ""
	s.City = e.Result.City
	s.Current = &current
	s.Forecast = e.Result.Forecast
	s.Alert = e.Result.Alert
	s.History = PushHistory(s.History, e.Result.City)
	return s
}

// Previously displayed results are kept on failure.
func (e SearchFailed) apply(s State) State {
	s.Loading = false
	s.Error = UserMessage(e.Err)
	return s
}

func (Reset) apply(s State) State {
	return State{History: s.History}
}
