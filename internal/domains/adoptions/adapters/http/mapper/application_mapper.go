package mapper

import (
	"time"

	"github.com/google/uuid"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	petmapper "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/http/mapper"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

// SubmitApplication is the inbound payload for POST /api/adoptions.
type SubmitApplication struct {
	PetID   string `json:"petId" binding:"required,uuid"`
	Message string `json:"message"`
}

// Applicant is the compact user view embedded in applications.
type Applicant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Application is the HTTP representation of an adoption application.
// Pet and User are null when the referenced record no longer exists.
type Application struct {
	ID        string                `json:"id"`
	PetID     string                `json:"petId"`
	UserID    string                `json:"userId"`
	Pet       *petmapper.PetSummary `json:"pet"`
	User      *Applicant            `json:"user"`
	Message   string                `json:"message"`
	Status    string                `json:"status"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// ToSubmitInput maps the payload into the application command. The pet id
// has already passed the uuid binding rule.
func ToSubmitInput(payload SubmitApplication, applicantID uuid.UUID) types.SubmitInput {
	petID, _ := uuid.Parse(payload.PetID)
	return types.SubmitInput{
		PetID:       petID,
		ApplicantID: applicantID,
		Message:     payload.Message,
	}
}

// FromView maps an application view into the HTTP representation.
func FromView(view *types.ApplicationView) Application {
	if view == nil || view.Application == nil || view.Application.Entity == nil {
		return Application{}
	}
	app := view.Application.Entity
	return Application{
		ID:        app.ID.String(),
		PetID:     app.PetID.String(),
		UserID:    app.ApplicantID.String(),
		Pet:       petmapper.ToSummary(view.Pet),
		User:      toApplicant(view.Applicant),
		Message:   app.Message,
		Status:    string(app.Status),
		CreatedAt: view.Application.Metadata.CreatedAt,
		UpdatedAt: view.Application.Metadata.UpdatedAt,
	}
}

// FromViews maps a listing, always returning a non-nil slice.
func FromViews(views []*types.ApplicationView) []Application {
	out := make([]Application, 0, len(views))
	for _, view := range views {
		out = append(out, FromView(view))
	}
	return out
}

func toApplicant(user *userdomain.User) *Applicant {
	if user == nil {
		return nil
	}
	return &Applicant{ID: user.ID.String(), Name: user.Name, Email: user.Email}
}
