package utils

import "time"

// displayLayout — формат времени для человекочитаемых полей API
const displayLayout = "02/01/2006 15:04"

// FormatDisplayTime форматирует время как dd/mm/yyyy HH:MM.
// Машиночитаемые поля используют ISO-8601 (time.RFC3339).
func FormatDisplayTime(t time.Time) string {
	return t.Local().Format(displayLayout)
}
