package domain

import (
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Status represents the adoption lifecycle state of a pet.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusAdopted   Status = "adopted"
)

// Gender is the recorded sex of a pet.
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

// Pet represents the aggregate managed by the pets bounded context.
type Pet struct {
	ID          uuid.UUID
	Name        string
	Species     string
	Breed       string
	Age         float64
	Gender      Gender
	Description string
	ImageURL    string
	Status      Status
	AddedBy     uuid.UUID
}

var (
	ErrEmptyName         = errors.New("pet name is required")
	ErrEmptySpecies      = errors.New("pet species is required")
	ErrEmptyBreed        = errors.New("pet breed is required")
	ErrEmptyDescription  = errors.New("pet description is required")
	ErrInvalidAge        = errors.New("pet age must be a non-negative number")
	ErrInvalidGender     = errors.New("pet gender must be Male, Female or Unknown")
	ErrInvalidStatus     = errors.New("pet status must be available, pending or adopted")
	ErrAdoptionRequired  = errors.New("pet status adopted is only reachable by approving an application")
	ErrNotAdoptable      = errors.New("pet is not open for adoption")
	ErrAlreadyAdopted    = errors.New("an adopted pet's status cannot be changed")
	ErrInvalidAgeBucket  = errors.New("age bucket must be one of 0, 1, 3 or 7")
	ErrMissingIdentifier = errors.New("pet identifier is required")
)

// Profile carries the descriptive attributes an administrator supplies.
type Profile struct {
	Name        string
	Species     string
	Breed       string
	Age         float64
	Gender      Gender
	Description string
	ImageURL    string
}

// NewPet validates the invariants and builds a new Pet aggregate. New pets
// start available unless an explicit non-adopted status is supplied.
func NewPet(id uuid.UUID, profile Profile, status Status, addedBy uuid.UUID) (*Pet, error) {
	if id == uuid.Nil {
		return nil, ErrMissingIdentifier
	}
	p := &Pet{ID: id, AddedBy: addedBy, Status: StatusAvailable}
	if err := p.Rename(profile.Name); err != nil {
		return nil, err
	}
	if err := p.Reclassify(profile.Species, profile.Breed); err != nil {
		return nil, err
	}
	if err := p.UpdateAge(profile.Age); err != nil {
		return nil, err
	}
	if err := p.UpdateGender(profile.Gender); err != nil {
		return nil, err
	}
	if err := p.Describe(profile.Description); err != nil {
		return nil, err
	}
	p.UpdateImage(profile.ImageURL)
	if status != "" {
		if err := p.UpdateStatus(status); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Rename mutates the pet name ensuring the invariant.
func (p *Pet) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// Reclassify replaces species and breed together.
func (p *Pet) Reclassify(species, breed string) error {
	species, breed = strings.TrimSpace(species), strings.TrimSpace(breed)
	if species == "" {
		return ErrEmptySpecies
	}
	if breed == "" {
		return ErrEmptyBreed
	}
	p.Species = species
	p.Breed = breed
	return nil
}

// UpdateAge stores the age in years.
func (p *Pet) UpdateAge(age float64) error {
	if age < 0 || math.IsNaN(age) || math.IsInf(age, 0) {
		return ErrInvalidAge
	}
	p.Age = age
	return nil
}

// UpdateGender validates the gender enum.
func (p *Pet) UpdateGender(g Gender) error {
	if !g.Valid() {
		return ErrInvalidGender
	}
	p.Gender = g
	return nil
}

// Describe sets the free-text description.
func (p *Pet) Describe(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrEmptyDescription
	}
	p.Description = description
	return nil
}

// UpdateImage stores an image reference. Empty clears it.
func (p *Pet) UpdateImage(url string) {
	p.ImageURL = strings.TrimSpace(url)
}

// UpdateStatus applies an administrative status change. Adopted can only be
// reached through MarkAdopted and is never left.
func (p *Pet) UpdateStatus(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if status == StatusAdopted {
		return ErrAdoptionRequired
	}
	if p.Status == StatusAdopted {
		return ErrAlreadyAdopted
	}
	p.Status = status
	return nil
}

// Adoptable reports whether applications may be approved against the pet.
func (p *Pet) Adoptable() bool {
	return p.Status == StatusAvailable || p.Status == StatusPending
}

// MarkAdopted records the outcome of an approved application.
func (p *Pet) MarkAdopted() error {
	if !p.Adoptable() {
		return ErrNotAdoptable
	}
	p.Status = StatusAdopted
	return nil
}

// Clone returns an independent copy.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Valid reports whether s is a known lifecycle value.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusAdopted:
		return true
	}
	return false
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}
