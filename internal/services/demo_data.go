package services

import (
	"time"

	"regatta-server/internal/models"
)

// Demo data is the terminal fallback tier: when both the backend and the
// cache are unavailable the client still gets a populated, clearly
// labelled notice board and entry list.

// DemoNotices returns the built-in notice set, newest first.
func DemoNotices(now time.Time) []*models.Notice {
	return []*models.Notice{
		{
			ID:        9001,
			Title:     "Amendment 2 to the Sailing Instructions",
			Body:      "The starting line for all classes is moved 0.3 nm south of the position shown in Attachment A. All other provisions of SI 9 remain unchanged.",
			Category:  models.CategoryAmendment,
			Important: true,
			PostedAt:  now.Add(-2 * time.Hour),
			CreatedAt: now,
		},
		{
			ID:        9002,
			Title:     "Race 3 start time",
			Body:      "The warning signal for Race 3 is scheduled for 13:55. Monitor VHF channel 72 for postponements.",
			Category:  models.CategoryRaceCommittee,
			Important: false,
			PostedAt:  now.Add(-5 * time.Hour),
			CreatedAt: now,
		},
		{
			ID:        9003,
			Title:     "Protest time limit - Day 2",
			Body:      "The protest time limit for today's races is 17:30. Protest forms are available at the race office.",
			Category:  models.CategoryProtest,
			Important: false,
			PostedAt:  now.Add(-8 * time.Hour),
			CreatedAt: now,
		},
		{
			ID:        9004,
			Title:     "Strong wind advisory",
			Body:      "The forecast shows gusts above 25 kn after 16:00. The race committee may shorten the afternoon schedule. Check the notice board after each race.",
			Category:  models.CategorySafety,
			Important: true,
			PostedAt:  now.Add(-26 * time.Hour),
			CreatedAt: now,
		},
		{
			ID:        9005,
			Title:     "Welcome to the regatta",
			Body:      "Registration closes at 18:00 on Friday. The opening briefing takes place at the club lawn at 19:00.",
			Category:  models.CategoryGeneral,
			Important: false,
			PostedAt:  now.Add(-48 * time.Hour),
			CreatedAt: now,
		},
	}
}

// DemoDocuments returns the built-in regatta document set.
func DemoDocuments(now time.Time) []*models.Document {
	return []*models.Document{
		{ID: 9101, Title: "Notice of Race", URL: "https://example.org/docs/nor.pdf", Kind: models.DocNoticeOfRace, UploadedAt: now.Add(-30 * 24 * time.Hour)},
		{ID: 9102, Title: "Sailing Instructions", URL: "https://example.org/docs/si.pdf", Kind: models.DocSailingInstructions, UploadedAt: now.Add(-7 * 24 * time.Hour)},
		{ID: 9103, Title: "Course Area Chart", URL: "https://example.org/docs/courses.pdf", Kind: models.DocCourseChart, UploadedAt: now.Add(-7 * 24 * time.Hour)},
		{ID: 9104, Title: "Provisional Results - Day 1", URL: "https://example.org/docs/results-d1.pdf", Kind: models.DocResults, UploadedAt: now.Add(-18 * time.Hour)},
	}
}

// DemoCompetitors returns the built-in entry list.
func DemoCompetitors(now time.Time) []*models.Competitor {
	entries := []struct {
		sail    string
		boat    string
		skipper string
		class   string
		country string
		reg     models.RegistrationStatus
		pay     models.PaymentStatus
	}{
		{"HKG 2417", "Typhoon Warning", "A. Cheung", "Dragon", "HKG", models.RegistrationConfirmed, models.PaymentPaid},
		{"HKG 1881", "Sea Smoke", "P. Leung", "Dragon", "HKG", models.RegistrationConfirmed, models.PaymentPaid},
		{"AUS 311", "Southerly Buster", "K. Marsh", "Dragon", "AUS", models.RegistrationConfirmed, models.PaymentUnpaid},
		{"HKG 77", "Island Time", "S. Novak", "Etchells", "HKG", models.RegistrationConfirmed, models.PaymentPaid},
		{"GBR 1408", "Monsoon", "J. Whitfield", "Etchells", "GBR", models.RegistrationPending, models.PaymentUnpaid},
		{"HKG 903", "Lamma Flyer", "C. Ho", "Etchells", "HKG", models.RegistrationConfirmed, models.PaymentPaid},
		{"NZL 52", "Harbour Rat", "T. Ngata", "J/80", "NZL", models.RegistrationWaitlist, models.PaymentUnpaid},
		{"HKG 1210", "Victoria Crossing", "M. Tam", "J/80", "HKG", models.RegistrationConfirmed, models.PaymentPaid},
		{"SGP 18", "Straits Runner", "D. Lim", "J/80", "SGP", models.RegistrationConfirmed, models.PaymentRefunded},
		{"HKG 365", "North Point", "R. Ferreira", "J/80", "HKG", models.RegistrationWithdrawn, models.PaymentRefunded},
	}

	competitors := make([]*models.Competitor, 0, len(entries))
	for i, e := range entries {
		competitors = append(competitors, &models.Competitor{
			ID:           int64(9200 + i),
			SailNumber:   e.sail,
			BoatName:     e.boat,
			SkipperName:  e.skipper,
			BoatClass:    e.class,
			Country:      e.country,
			Registration: e.reg,
			Payment:      e.pay,
			CreatedAt:    now,
		})
	}
	return competitors
}
