package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status is the decision state of an adoption application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// MaxMessageLength bounds the free-text note an applicant may attach.
const MaxMessageLength = 2000

var (
	ErrMissingIdentifier = errors.New("application identifier is required")
	ErrMissingPet        = errors.New("pet reference is required")
	ErrMissingApplicant  = errors.New("applicant reference is required")
	ErrMessageTooLong    = errors.New("message exceeds 2000 characters")
	ErrInvalidTransition = errors.New("application has already been decided")
)

// transitions lists the allowed moves out of each state. Approved and
// rejected are terminal.
var transitions = map[Status][]Status{
	StatusPending: {StatusApproved, StatusRejected},
}

// Application is one applicant's request to adopt one pet.
type Application struct {
	ID          uuid.UUID
	PetID       uuid.UUID
	ApplicantID uuid.UUID
	Message     string
	Status      Status
	SubmittedAt time.Time
}

// NewApplication builds a pending application.
func NewApplication(id, petID, applicantID uuid.UUID, message string, submittedAt time.Time) (*Application, error) {
	if id == uuid.Nil {
		return nil, ErrMissingIdentifier
	}
	if petID == uuid.Nil {
		return nil, ErrMissingPet
	}
	if applicantID == uuid.Nil {
		return nil, ErrMissingApplicant
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}
	return &Application{
		ID:          id,
		PetID:       petID,
		ApplicantID: applicantID,
		Message:     message,
		Status:      StatusPending,
		SubmittedAt: submittedAt.UTC(),
	}, nil
}

// Approve moves a pending application to approved.
func (a *Application) Approve() error {
	return a.transition(StatusApproved)
}

// Reject moves a pending application to rejected.
func (a *Application) Reject() error {
	return a.transition(StatusRejected)
}

// IsPending reports whether a decision is still outstanding.
func (a *Application) IsPending() bool {
	return a.Status == StatusPending
}

// CanTransition reports whether the application may move to next.
func (a *Application) CanTransition(next Status) bool {
	for _, allowed := range transitions[a.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (a *Application) transition(next Status) error {
	if !a.CanTransition(next) {
		return ErrInvalidTransition
	}
	a.Status = next
	return nil
}

// Clone returns an independent copy.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}
