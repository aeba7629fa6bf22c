package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"regatta-server/internal/models"
	"regatta-server/pkg/logging"
)

// calendarTimeLayout is the wire format for event times in export
// requests, interpreted in the regatta's local timezone offset.
const calendarTimeLayout = "2006-01-02T15:04"

// CalendarEvent is one race or regatta function exportable to a device
// calendar.
type CalendarEvent struct {
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// CalendarService builds calendar exports. The primary format is ICS;
// Text is the clipboard fallback for devices without a calendar handler.
type CalendarService struct {
	logger *logging.StructuredLogger
}

// NewCalendarService creates a calendar service.
func NewCalendarService(logger *logging.StructuredLogger) *CalendarService {
	return &CalendarService{logger: logger}
}

// BuildEvent validates and assembles an event from request fields. An
// empty end time defaults to one hour after the start.
func (s *CalendarService) BuildEvent(ctx context.Context, title, location, notes, start, end string) (*CalendarEvent, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &models.ValidationError{Field: "title", Message: "event title is required"}
	}

	startAt, err := parseEventTime(start)
	if err != nil {
		return nil, &models.ValidationError{Field: "start", Value: start, Message: "start must be formatted as 2006-01-02T15:04"}
	}

	endAt := startAt.Add(time.Hour)
	if end != "" {
		endAt, err = parseEventTime(end)
		if err != nil {
			return nil, &models.ValidationError{Field: "end", Value: end, Message: "end must be formatted as 2006-01-02T15:04"}
		}
	}

	if !endAt.After(startAt) {
		return nil, &models.ValidationError{Field: "end", Value: end, Message: "end must be after start"}
	}

	event := &CalendarEvent{
		Title:    strings.TrimSpace(title),
		Location: strings.TrimSpace(location),
		Notes:    strings.TrimSpace(notes),
		Start:    startAt,
		End:      endAt,
	}

	s.logger.Debug(ctx, "[CALENDAR_BUILD] Event assembled", logging.Fields{
		"title": event.Title,
		"start": event.Start,
	})

	return event, nil
}

func parseEventTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(calendarTimeLayout, value)
}

// ICS renders the event as a single-event iCalendar document.
func (e *CalendarEvent) ICS() string {
	var b strings.Builder

	writeICSLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	writeICSLine("BEGIN:VCALENDAR")
	writeICSLine("VERSION:2.0")
	writeICSLine("PRODID:-//regatta-server//calendar//EN")
	writeICSLine("BEGIN:VEVENT")
	writeICSLine("UID:" + e.uid())
	writeICSLine("DTSTAMP:" + icsTime(time.Now().UTC()))
	writeICSLine("DTSTART:" + icsTime(e.Start.UTC()))
	writeICSLine("DTEND:" + icsTime(e.End.UTC()))
	writeICSLine("SUMMARY:" + escapeICS(e.Title))
	if e.Location != "" {
		writeICSLine("LOCATION:" + escapeICS(e.Location))
	}
	if e.Notes != "" {
		writeICSLine("DESCRIPTION:" + escapeICS(e.Notes))
	}
	writeICSLine("END:VEVENT")
	writeICSLine("END:VCALENDAR")

	return b.String()
}

// Text renders the event as plain text for clipboard export.
func (e *CalendarEvent) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", e.Title)
	fmt.Fprintf(&b, "Start: %s\n", e.Start.Format("Mon 2 Jan 2006 15:04"))
	fmt.Fprintf(&b, "End:   %s\n", e.End.Format("Mon 2 Jan 2006 15:04"))
	if e.Location != "" {
		fmt.Fprintf(&b, "Where: %s\n", e.Location)
	}
	if e.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", e.Notes)
	}

	return b.String()
}

func (e *CalendarEvent) uid() string {
	h := fnv.New64a()
	h.Write([]byte(e.Title))
	h.Write([]byte(e.Start.UTC().Format(time.RFC3339)))
	return fmt.Sprintf("%x-%d@regatta-server", h.Sum64(), e.Start.Unix())
}

func icsTime(t time.Time) string {
	return t.Format("20060102T150405Z")
}

func escapeICS(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}
