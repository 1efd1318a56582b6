// Package seed loads the demo catalogue and accounts. Identifiers are derived
// from names so running it again updates rows instead of duplicating them.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
)

var namespace = uuid.MustParse("6f1d3c2a-9a7e-4f5b-8c1d-2e4a6b8c0d1e")

// Admin and Adopter are the demo accounts. Tokens for them can be minted with
// `adoptctl token`.
var (
	Admin = auth.Identity{
		UserID: uuid.NewSHA1(namespace, []byte("user/admin")),
		Role:   auth.RoleAdmin,
		Name:   "Admin User",
		Email:  "admin@example.com",
	}
	Adopter = auth.Identity{
		UserID: uuid.NewSHA1(namespace, []byte("user/adopter")),
		Role:   auth.RoleUser,
		Name:   "Test User",
		Email:  "user@example.com",
	}
)

type samplePet struct {
	name, species, breed string
	age                  float64
	gender               string
	description          string
	photo                string
}

const unsplash = "https://images.unsplash.com/"

var samplePets = []samplePet{
	{"Buddy", "Dog", "Golden Retriever", 2, "Male", "Energetic retriever who loves fetch and long walks. Great with children.", "photo-1552053831-71594a27632d"},
	{"Luna", "Cat", "Persian", 1, "Female", "Calm long-haired cat suited to a quiet home.", "photo-1574158622682-e40e69881006"},
	{"Max", "Dog", "German Shepherd", 3, "Male", "Loyal, well trained and good with families. Needs daily exercise.", "photo-1587300003388-59208cc962cb"},
	{"Whiskers", "Cat", "Maine Coon", 2, "Male", "Large, sociable cat that gets along with other pets.", "photo-1573865526739-10659fec78a5"},
	{"Charlie", "Dog", "Labrador", 4, "Male", "Playful family dog who loves water.", "photo-1561037404-61cd46aa615b"},
	{"Milo", "Cat", "British Shorthair", 1, "Male", "Curious kitten, a good first cat.", "photo-1596854407944-bf87f6fdd49e"},
	{"Bella", "Dog", "Beagle", 2, "Female", "Gentle explorer, great with kids.", "photo-1518717758536-85ae29035b6d"},
	{"Sophie", "Cat", "Siamese", 3, "Female", "Vocal and affectionate. Prefers a calm household.", "photo-1574158622682-e40e69881006"},
	{"Rocky", "Dog", "Bulldog", 5, "Male", "Low-energy companion that fits apartment life.", "photo-1551717743-49959800b1f6"},
	{"Daisy", "Cat", "Ragdoll", 2, "Female", "Relaxed lap cat, good with families.", "photo-1513245543132-31f507417b26"},
	{"Oscar", "Dog", "Poodle", 1, "Male", "Hypoallergenic and clever. Needs regular grooming.", "photo-1616190172456-62e5c343e999"},
	{"Ruby", "Cat", "Scottish Fold", 1, "Female", "Playful cuddler with folded ears.", "photo-1517331156700-3c241d2b4d83"},
	{"Cooper", "Dog", "Border Collie", 2, "Male", "Bright herder for an active owner.", "photo-1583337130417-3346a1be7dee"},
	{"Lily", "Cat", "Bengal", 2, "Female", "Climber who wants plenty of attention.", "photo-1595433707802-6b2626ef1c91"},
	{"Toby", "Dog", "Cocker Spaniel", 3, "Male", "Cheerful spaniel with a loving temperament.", "photo-1534361960057-19889dbdf1bb"},
	{"Oliver", "Cat", "Russian Blue", 2, "Male", "Shy at first, affectionate once settled.", "photo-1574158622682-e40e69881006"},
}

// PetID returns the identifier the seed assigns to a sample pet.
func PetID(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("pet/"+name))
}

// Run records the demo accounts and upserts the sample pets. It returns the
// number of pets written.
func Run(ctx context.Context, pets petsports.Service, users userports.Service) (int, error) {
	for _, identity := range []auth.Identity{Admin, Adopter} {
		_, err := users.Remember(ctx, userports.RememberInput{
			ID:    identity.UserID,
			Name:  identity.Name,
			Email: identity.Email,
			Role:  identity.Role,
		})
		if err != nil {
			return 0, fmt.Errorf("seed user %s: %w", identity.Email, err)
		}
	}
	for i, p := range samplePets {
		_, err := pets.CreatePet(ctx, petstypes.CreatePetInput{
			ID:          PetID(p.name),
			Name:        p.name,
			Species:     p.species,
			Breed:       p.breed,
			Age:         p.age,
			Gender:      p.gender,
			Description: p.description,
			ImageURL:    unsplash + p.photo + "?w=500",
			AddedBy:     Admin.UserID,
		})
		if err != nil {
			return i, fmt.Errorf("seed pet %s: %w", p.name, err)
		}
	}
	return len(samplePets), nil
}
