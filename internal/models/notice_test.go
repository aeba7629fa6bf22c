package models

import (
	"testing"
	"time"
)

func TestNotice_Validate(t *testing.T) {
	posted := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		notice    Notice
		wantErr   bool
		wantField string
	}{
		{
			name:   "valid notice",
			notice: Notice{Title: "Race 3 start time", Category: CategoryRaceCommittee, PostedAt: posted},
		},
		{
			name:      "missing title",
			notice:    Notice{Category: CategoryGeneral, PostedAt: posted},
			wantErr:   true,
			wantField: "title",
		},
		{
			name:      "unknown category",
			notice:    Notice{Title: "x", Category: NoticeCategory("weather"), PostedAt: posted},
			wantErr:   true,
			wantField: "category",
		},
		{
			name:      "missing posted_at",
			notice:    Notice{Title: "x", Category: CategoryGeneral},
			wantErr:   true,
			wantField: "posted_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.notice.Validate()

			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				verr, ok := err.(*ValidationError)
				if !ok {
					t.Fatalf("error type = %T, want *ValidationError", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
				}
				if verr.IsTransient() {
					t.Error("validation errors must not be transient")
				}
			}
		})
	}
}

func TestCompetitor_Validate(t *testing.T) {
	tests := []struct {
		name       string
		competitor Competitor
		wantErr    bool
	}{
		{
			name: "valid entrant",
			competitor: Competitor{
				SailNumber:   "HKG 2417",
				BoatClass:    "Dragon",
				Registration: RegistrationConfirmed,
				Payment:      PaymentPaid,
			},
		},
		{
			name: "missing sail number",
			competitor: Competitor{
				BoatClass:    "Dragon",
				Registration: RegistrationConfirmed,
				Payment:      PaymentPaid,
			},
			wantErr: true,
		},
		{
			name: "unknown registration status",
			competitor: Competitor{
				SailNumber:   "HKG 1",
				Registration: RegistrationStatus("maybe"),
				Payment:      PaymentPaid,
			},
			wantErr: true,
		},
		{
			name: "unknown payment status",
			competitor: Competitor{
				SailNumber:   "HKG 1",
				Registration: RegistrationPending,
				Payment:      PaymentStatus("iou"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.competitor.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnums_Valid(t *testing.T) {
	for _, c := range []NoticeCategory{CategoryGeneral, CategoryRaceCommittee, CategoryProtest, CategoryAmendment, CategorySafety} {
		if !c.Valid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if NoticeCategory("").Valid() {
		t.Error("empty category should be invalid")
	}

	for _, k := range []StationKind{StationTide, StationWave, StationWind} {
		if !k.Valid() {
			t.Errorf("station kind %q should be valid", k)
		}
	}
	if StationKind("buoy").Valid() {
		t.Error("unknown station kind should be invalid")
	}
}
