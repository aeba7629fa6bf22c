package models

import (
	"time"
)

// NoticeCategory classifies notice board entries.
type NoticeCategory string

const (
	CategoryGeneral       NoticeCategory = "general"
	CategoryRaceCommittee NoticeCategory = "race_committee"
	CategoryProtest       NoticeCategory = "protest"
	CategoryAmendment     NoticeCategory = "amendment"
	CategorySafety        NoticeCategory = "safety"
)

// Valid reports whether the category is one of the known values.
func (c NoticeCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryRaceCommittee, CategoryProtest, CategoryAmendment, CategorySafety:
		return true
	}
	return false
}

// Notice is a notice board entry. Mutated only by explicit user actions
// (mark-as-read, bookmark), never by the simulation.
type Notice struct {
	ID         int64          `json:"id" db:"id"`
	Title      string         `json:"title" db:"title"`
	Body       string         `json:"body" db:"body"`
	Category   NoticeCategory `json:"category" db:"category"`
	Important  bool           `json:"important" db:"important"`
	Read       bool           `json:"read" db:"read"`
	Bookmarked bool           `json:"bookmarked" db:"bookmarked"`
	PostedAt   time.Time      `json:"posted_at" db:"posted_at"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// Validate checks the fields a notice must carry before persistence.
func (n *Notice) Validate() error {
	if n.Title == "" {
		return &ValidationError{Field: "title", Message: "notice title is required"}
	}
	if !n.Category.Valid() {
		return &ValidationError{Field: "category", Value: string(n.Category), Message: "unknown notice category"}
	}
	if n.PostedAt.IsZero() {
		return &ValidationError{Field: "posted_at", Message: "posted_at is required"}
	}
	return nil
}

// DocumentKind classifies regatta documents.
type DocumentKind string

const (
	DocSailingInstructions DocumentKind = "sailing_instructions"
	DocNoticeOfRace        DocumentKind = "notice_of_race"
	DocCourseChart         DocumentKind = "course_chart"
	DocResults             DocumentKind = "results"
)

// Document is a downloadable regatta document reference.
type Document struct {
	ID         int64        `json:"id" db:"id"`
	Title      string       `json:"title" db:"title"`
	URL        string       `json:"url" db:"url"`
	Kind       DocumentKind `json:"kind" db:"kind"`
	UploadedAt time.Time    `json:"uploaded_at" db:"uploaded_at"`
}

// RegistrationStatus tracks an entrant through the registration flow.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationWaitlist  RegistrationStatus = "waitlist"
	RegistrationWithdrawn RegistrationStatus = "withdrawn"
)

// Valid reports whether the registration status is a known value.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationConfirmed, RegistrationWaitlist, RegistrationWithdrawn:
		return true
	}
	return false
}

// PaymentStatus tracks an entrant's entry fee.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether the payment status is a known value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Competitor is a regatta entrant.
type Competitor struct {
	ID           int64              `json:"id" db:"id"`
	SailNumber   string             `json:"sail_number" db:"sail_number"`
	BoatName     string             `json:"boat_name" db:"boat_name"`
	SkipperName  string             `json:"skipper_name" db:"skipper_name"`
	BoatClass    string             `json:"boat_class" db:"boat_class"`
	Country      string             `json:"country" db:"country"`
	Registration RegistrationStatus `json:"registration_status" db:"registration_status"`
	Payment      PaymentStatus      `json:"payment_status" db:"payment_status"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}

// Validate checks the fields an entrant must carry before persistence.
func (c *Competitor) Validate() error {
	if c.SailNumber == "" {
		return &ValidationError{Field: "sail_number", Message: "sail number is required"}
	}
	if !c.Registration.Valid() {
		return &ValidationError{Field: "registration_status", Value: string(c.Registration), Message: "unknown registration status"}
	}
	if !c.Payment.Valid() {
		return &ValidationError{Field: "payment_status", Value: string(c.Payment), Message: "unknown payment status"}
	}
	return nil
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
