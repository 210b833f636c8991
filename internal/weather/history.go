package weather

// MaxHistory caps the session search history.
const MaxHistory = 10

// PushHistory returns history with city moved or added to the front. Entries
// equal to city ignoring case are dropped, and the result holds at most
// MaxHistory entries. The input slice is not modified.
func PushHistory(history []string, city string) []string {
	key := foldKey(city)
	out := make([]string, 0, min(len(history)+1, MaxHistory))
	out = append(out, city)
	for _, h := range history {
		if len(out) == MaxHistory {
			break
		}
		if foldKey(h) == key {
			continue
		}
		out = append(out, h)
	}
	return out
}
