package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"regatta-server/internal/models"
)

func TestCalendarService_BuildEvent(t *testing.T) {
	svc := NewCalendarService(testLogger)
	ctx := context.Background()

	tests := []struct {
		name        string
		title       string
		start, end  string
		wantErr     bool
		wantField   string
		checkValues func(*testing.T, *CalendarEvent)
	}{
		{
			name:  "valid event with explicit end",
			title: "Race 3",
			start: "2026-09-12T13:55",
			end:   "2026-09-12T16:00",
			checkValues: func(t *testing.T, e *CalendarEvent) {
				if !e.Start.Equal(time.Date(2026, 9, 12, 13, 55, 0, 0, time.UTC)) {
					t.Errorf("Start = %v", e.Start)
				}
				if e.End.Sub(e.Start) != 2*time.Hour+5*time.Minute {
					t.Errorf("duration = %v", e.End.Sub(e.Start))
				}
			},
		},
		{
			name:  "missing end defaults to one hour",
			title: "Briefing",
			start: "2026-09-11T19:00",
			checkValues: func(t *testing.T, e *CalendarEvent) {
				if e.End.Sub(e.Start) != time.Hour {
					t.Errorf("default duration = %v, want 1h", e.End.Sub(e.Start))
				}
			},
		},
		{
			name:  "rfc3339 start is accepted",
			title: "Race 4",
			start: "2026-09-13T10:25:00+08:00",
			checkValues: func(t *testing.T, e *CalendarEvent) {
				if e.Start.UTC().Hour() != 2 {
					t.Errorf("Start UTC = %v, want 02:25", e.Start.UTC())
				}
			},
		},
		{
			name:      "empty title",
			title:     "   ",
			start:     "2026-09-12T13:55",
			wantErr:   true,
			wantField: "title",
		},
		{
			name:      "unparseable start",
			title:     "Race 3",
			start:     "tomorrow",
			wantErr:   true,
			wantField: "start",
		},
		{
			name:      "end before start",
			title:     "Race 3",
			start:     "2026-09-12T13:55",
			end:       "2026-09-12T13:00",
			wantErr:   true,
			wantField: "end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := svc.BuildEvent(ctx, tt.title, "Victoria Harbour", "", tt.start, tt.end)

			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				verr, ok := err.(*models.ValidationError)
				if !ok {
					t.Fatalf("error type = %T, want *models.ValidationError", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
				}
				return
			}
			if tt.checkValues != nil {
				tt.checkValues(t, event)
			}
		})
	}
}

func TestCalendarEvent_ICS(t *testing.T) {
	event := &CalendarEvent{
		Title:    "Race 3; Dragons, Etchells",
		Location: "Victoria Harbour",
		Notes:    "Monitor VHF 72",
		Start:    time.Date(2026, 9, 12, 13, 55, 0, 0, time.UTC),
		End:      time.Date(2026, 9, 12, 16, 0, 0, 0, time.UTC),
	}

	ics := event.ICS()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"DTSTART:20260912T135500Z",
		"DTEND:20260912T160000Z",
		`SUMMARY:Race 3\; Dragons\, Etchells`,
		"LOCATION:Victoria Harbour",
		"DESCRIPTION:Monitor VHF 72",
		"END:VEVENT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(ics, want) {
			t.Errorf("ICS output missing %q:\n%s", want, ics)
		}
	}

	if !strings.HasSuffix(ics, "\r\n") {
		t.Error("ICS lines must end with CRLF")
	}
}

func TestCalendarEvent_ICS_UIDStable(t *testing.T) {
	event := &CalendarEvent{
		Title: "Race 3",
		Start: time.Date(2026, 9, 12, 13, 55, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 12, 16, 0, 0, 0, time.UTC),
	}

	if event.uid() != event.uid() {
		t.Error("uid is not stable for the same event")
	}

	other := &CalendarEvent{Title: "Race 4", Start: event.Start, End: event.End}
	if event.uid() == other.uid() {
		t.Error("different events share a uid")
	}
}

func TestCalendarEvent_Text(t *testing.T) {
	event := &CalendarEvent{
		Title:    "Skippers briefing",
		Location: "Club lawn",
		Notes:    "Bring the SI amendments",
		Start:    time.Date(2026, 9, 11, 19, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 9, 11, 20, 0, 0, 0, time.UTC),
	}

	text := event.Text()

	for _, want := range []string{"Skippers briefing", "Club lawn", "Bring the SI amendments", "19:00"} {
		if !strings.Contains(text, want) {
			t.Errorf("text export missing %q:\n%s", want, text)
		}
	}
}
