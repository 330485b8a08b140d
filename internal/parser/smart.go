package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/zen/internal/models"
)

var (
	durationRegex = regexp.MustCompile(`(?i)\b(\d+)\s*(m|min|mins|minutes|h|hr|hrs|hours)\b`)
	atRegex       = regexp.MustCompile(`(?i)\bat:(\S+)`)
	onRegex       = regexp.MustCompile(`(?i)\bon:(\S+)`)
	noteRegex     = regexp.MustCompile(`(?i)\bnote:"([^"]*)"|\bnote:(\S+)`)
	priorityRegex = regexp.MustCompile(`\+([a-zA-Z0-9]+)`)
	dueRegex      = regexp.MustCompile(`(?i)\bdue:(\S+)`)
)

// ParsedSession is a session described in one line of text
type ParsedSession struct {
	Title    string
	Duration int    // minutes, 0 when absent
	Date     string // YYYY-MM-DD, "" when absent
	Time     string // HH:MM, "" when absent
	Notes    string
	Errors   []string
}

// ParseSession extracts session fields from natural syntax.
// Syntax: "Evening Relaxation 20m at:21:00 on:tomorrow note:\"by the lake\""
func ParseSession(input string, now time.Time) ParsedSession {
	result := ParsedSession{Errors: []string{}}

	if m := durationRegex.FindStringSubmatch(input); len(m) == 3 {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(strings.ToLower(m[2]), "h") {
			n *= 60
		}
		result.Duration = n
		input = strings.Replace(input, m[0], "", 1)
	}

	if m := atRegex.FindStringSubmatch(input); len(m) == 2 {
		clock, err := ParseClock(m[1])
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Time = clock
		}
		input = atRegex.ReplaceAllString(input, "")
	}

	if m := onRegex.FindStringSubmatch(input); len(m) == 2 {
		date, err := ParseSessionDate(m[1], now)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Date = date
		}
		input = onRegex.ReplaceAllString(input, "")
	}

	if m := noteRegex.FindStringSubmatch(input); len(m) == 3 {
		result.Notes = m[1]
		if result.Notes == "" {
			result.Notes = m[2]
		}
		input = noteRegex.ReplaceAllString(input, "")
	}

	result.Title = strings.Join(strings.Fields(input), " ")
	return result
}

// ParsedTask is a task described in one line of text
type ParsedTask struct {
	Title    string
	Priority models.Priority
	DueDate  *time.Time
	Errors   []string
}

// ParseTask extracts task fields from natural syntax.
// Syntax: "Write report +high due:3days"
func ParseTask(input string, now time.Time) ParsedTask {
	result := ParsedTask{Errors: []string{}}

	if m := priorityRegex.FindStringSubmatch(input); len(m) == 2 {
		p, err := models.ParsePriority(m[1])
		if err != nil {
			result.Errors = append(result.Errors, "Invalid priority '"+m[1]+"'. Use: low, medium, high, 1, 2, or 3")
		} else {
			result.Priority = p
		}
		input = priorityRegex.ReplaceAllString(input, "")
	}

	if m := dueRegex.FindStringSubmatch(input); len(m) == 2 {
		due, err := ParseDueDate(m[1], now)
		if err != nil {
			result.Errors = append(result.Errors, "Invalid due date '"+m[1]+"': "+err.Error())
		} else {
			result.DueDate = due
		}
		input = dueRegex.ReplaceAllString(input, "")
	}

	result.Title = strings.Join(strings.Fields(input), " ")
	return result
}
