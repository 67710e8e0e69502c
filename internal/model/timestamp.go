package model

import "time"

// TimestampLayout формат меток времени в ответах API.
const TimestampLayout = "2006-01-02 15:04:05"

// displayZone фиксированная зона UTC+05:30, в которой клиенты ожидают время.
var displayZone = time.FixedZone("IST", 5*60*60+30*60)

// FormatTimestamp переводит момент времени в зону отображения и форматирует его.
func FormatTimestamp(t time.Time) string {
	return t.In(displayZone).Format(TimestampLayout)
}
