package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slashDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex  = regexp.MustCompile(`^(\d+)\s*(h|hour|hours|d|day|days|w|week|weeks)$`)
	clockRegex     = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
)

// ParseDueDate parses a task due date relative to now.
// Supported formats:
// - dd/mm/yyyy (e.g., "15/12/2024")
// - yyyy-mm-dd
// - today, tomorrow
// - X days, X hours, X weeks (e.g., "3 days", "3days", "24h")
func ParseDueDate(input string, now time.Time) (*time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil, nil
	}

	if day, err := parseCalendarDay(input, now); err == nil {
		due := endOfDay(day)
		return &due, nil
	}

	if due, err := parseRelative(input, now); err == nil {
		return due, nil
	}

	return nil, fmt.Errorf("invalid date format. Use: dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days, X hours, or X weeks")
}

// ParseSessionDate normalizes a session date to YYYY-MM-DD.
// Accepts yyyy-mm-dd, dd/mm/yyyy, today, tomorrow and "X days".
func ParseSessionDate(input string, now time.Time) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if day, err := parseCalendarDay(input, now); err == nil {
		return day.Format("2006-01-02"), nil
	}

	m := relativeRegex.FindStringSubmatch(input)
	if len(m) == 3 && strings.HasPrefix(m[2], "d") {
		n, _ := strconv.Atoi(m[1])
		return startOfDay(now).AddDate(0, 0, n).Format("2006-01-02"), nil
	}
	return "", fmt.Errorf("invalid date %q. Use: yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, or X days", input)
}

// ParseClock normalizes a time of day to HH:MM. Accepts "21:00", "9:05",
// "9pm" and "9:30am".
func ParseClock(input string) (string, error) {
	m := clockRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(input)))
	if len(m) != 4 {
		return "", fmt.Errorf("invalid time %q. Use: HH:MM or 9pm", input)
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch m[3] {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("invalid time %q: hour must be 1-12 with am/pm", input)
		}
		hour %= 12
		if m[3] == "pm" {
			hour += 12
		}
	default:
		if m[2] == "" {
			return "", fmt.Errorf("invalid time %q. Use: HH:MM or 9pm", input)
		}
	}

	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("invalid time %q", input)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// parseCalendarDay handles named and absolute days
func parseCalendarDay(input string, now time.Time) (time.Time, error) {
	switch input {
	case "today":
		return startOfDay(now), nil
	case "tomorrow":
		return startOfDay(now).AddDate(0, 0, 1), nil
	}

	if day, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
		return day, nil
	}

	matches := slashDateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return time.Time{}, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return time.Time{}, fmt.Errorf("year must be between 2000 and 2100")
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	// Catches 31/02 and similar
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date")
	}
	return date, nil
}

// parseRelative parses "3 days", "24h", "2 weeks"
func parseRelative(input string, now time.Time) (*time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid number")
	}

	switch matches[2][0] {
	case 'h':
		if amount < 1 || amount > 8760 {
			return nil, fmt.Errorf("hours must be between 1 and 8760")
		}
		due := now.Add(time.Duration(amount) * time.Hour)
		return &due, nil
	case 'd':
		if amount < 1 || amount > 365 {
			return nil, fmt.Errorf("days must be between 1 and 365")
		}
		due := endOfDay(startOfDay(now).AddDate(0, 0, amount))
		return &due, nil
	default:
		if amount < 1 || amount > 52 {
			return nil, fmt.Errorf("weeks must be between 1 and 52")
		}
		due := endOfDay(startOfDay(now).AddDate(0, 0, amount*7))
		return &due, nil
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

// FormatDueDate formats a due date for display
func FormatDueDate(dueDate *time.Time, now time.Time) string {
	if dueDate == nil {
		return ""
	}

	today := startOfDay(now)
	dueDay := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, now.Location())
	daysDiff := int(dueDay.Sub(today).Hours() / 24)

	// Always show the actual date to avoid confusion
	dateStr := dueDate.Format("02/01/2006")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("⚠️ OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", dateStr)
	}
}
