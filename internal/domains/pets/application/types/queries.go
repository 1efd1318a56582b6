package types

// ListPetsInput filters and paginates the public catalog.
type ListPetsInput struct {
	Species string
	Breed   string
	Search  string
	// AgeBucket is the lower bound of an age range: 0, 1, 3 or 7.
	AgeBucket *int
	// Statuses overrides the default status filter when non-empty.
	Statuses []string
	Page     int
	Limit    int
}
