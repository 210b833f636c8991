package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"pogoda/internal/weather"
)

func renderResult(w io.Writer, city string, current weather.CanonicalObservation, alert weather.AlertState, forecast []weather.DailyForecastSlot) {
	cond := current.Condition()
	fmt.Fprintf(w, "%s %s %.0f°C (odczuwalna %.0f°C)\n", city, weather.Glyph(cond.ID), current.Main.Temp, current.Main.FeelsLike)
	fmt.Fprintf(w, "%s, wilgotność %.0f%%, wiatr %d km/h\n",
		weather.TranslateDescription(cond.Description), current.Main.Humidity, weather.WindKMH(current.Wind.Speed))
	if msg := alert.Message(); msg != "" {
		fmt.Fprintln(w, msg)
	}

	if len(forecast) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Prognoza:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, day := range forecast {
		c := day.Condition()
		fmt.Fprintf(tw, "  %s\t%s\t%.0f°C\t%s\n", day.Date, weather.Glyph(c.ID), day.Main.Temp, weather.TranslateDescription(c.Description))
	}
	tw.Flush()
}

func renderHistory(w io.Writer, history []string) {
	if len(history) == 0 {
		fmt.Fprintln(w, "Brak historii wyszukiwania.")
		return
	}
	for i, city := range history {
		fmt.Fprintf(w, "%2d. %s\n", i+1, city)
	}
}
