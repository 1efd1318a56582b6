package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adoptionsmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petsmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/memstore"
)

type fixture struct {
	svc   *Service
	pets  *petsapp.Service
	users *userapp.Service
	tx    *adoptionsmemory.Transactor
	apps  *adoptionsmemory.Repository
	pRepo *petsmemory.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	petRepo := petsmemory.NewRepository(store)
	appRepo := adoptionsmemory.NewRepository(store)
	tx := adoptionsmemory.NewTransactor(store, petRepo, appRepo)
	users := userapp.NewService(usermemory.NewRepository(store))

	var tick int64
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&tick, 1)) * time.Second)
	}

	return &fixture{
		svc:   NewService(appRepo, petRepo, tx, WithApplicantDirectory(users), WithClock(clock)),
		pets:  petsapp.NewService(petRepo, tx.ForPets(), petsapp.WithDefaultStatus()),
		users: users,
		tx:    tx,
		apps:  appRepo,
		pRepo: petRepo,
	}
}

func (f *fixture) addPet(t *testing.T, name string) uuid.UUID {
	t.Helper()
	pet, err := f.pets.CreatePet(context.Background(), petstypes.CreatePetInput{
		Name:        name,
		Species:     "Dog",
		Breed:       "Beagle",
		Age:         2,
		Gender:      "Female",
		Description: "Loves walks",
	})
	require.NoError(t, err)
	return pet.Entity.ID
}

func (f *fixture) addUser(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := f.users.Remember(context.Background(), userports.RememberInput{ID: id, Name: name, Role: "user"})
	require.NoError(t, err)
	return id
}

func (f *fixture) submit(t *testing.T, petID, applicantID uuid.UUID) *types.ApplicationView {
	t.Helper()
	view, err := f.svc.Submit(context.Background(), types.SubmitInput{PetID: petID, ApplicantID: applicantID, Message: "Big garden"})
	require.NoError(t, err)
	return view
}

func (f *fixture) petStatus(t *testing.T, id uuid.UUID) petdomain.Status {
	t.Helper()
	pet, err := f.pets.GetPet(context.Background(), petstypes.PetIdentifier{ID: id})
	require.NoError(t, err)
	return pet.Entity.Status
}

func (f *fixture) appStatus(t *testing.T, id uuid.UUID) domain.Status {
	t.Helper()
	app, err := f.apps.GetByID(context.Background(), id)
	require.NoError(t, err)
	return app.Entity.Status
}

func TestSubmit_CreatesPendingApplication(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Buddy")
	alice := f.addUser(t, "Alice")

	view := f.submit(t, petID, alice)

	assert.Equal(t, domain.StatusPending, view.Application.Entity.Status)
	assert.Equal(t, "Big garden", view.Application.Entity.Message)
	require.NotNil(t, view.Pet)
	assert.Equal(t, "Buddy", view.Pet.Entity.Name)
	require.NotNil(t, view.Applicant)
	assert.Equal(t, "Alice", view.Applicant.Name)
	assert.Equal(t, petdomain.StatusAvailable, f.petStatus(t, petID))
}

func TestSubmit_MissingPet(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), types.SubmitInput{PetID: uuid.New(), ApplicantID: uuid.New()})
	require.True(t, IsNotFound(err))
}

func TestSubmit_PetNotAvailable(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Luna")
	pending := string(petdomain.StatusPending)
	_, err := f.pets.UpdatePet(context.Background(), petstypes.UpdatePetInput{ID: petID, Status: &pending})
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), types.SubmitInput{PetID: petID, ApplicantID: uuid.New()})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmit_DuplicateIsConflictEvenAfterRejection(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Max")
	bob := f.addUser(t, "Bob")
	first := f.submit(t, petID, bob)

	_, err := f.svc.Submit(context.Background(), types.SubmitInput{PetID: petID, ApplicantID: bob})
	require.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Reject(context.Background(), types.ApplicationIdentifier{ID: first.Application.Entity.ID})
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), types.SubmitInput{PetID: petID, ApplicantID: bob})
	require.ErrorIs(t, err, ErrConflict)
}

func TestSubmit_InvalidInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), types.SubmitInput{PetID: uuid.New(), ApplicantID: uuid.Nil})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestApprove_AdoptsPetAndRejectsSiblings(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Charlie")
	otherPet := f.addPet(t, "Milo")
	a := f.submit(t, petID, f.addUser(t, "A"))
	b := f.submit(t, petID, f.addUser(t, "B"))
	c := f.submit(t, petID, f.addUser(t, "C"))
	elsewhere := f.submit(t, otherPet, f.addUser(t, "D"))

	view, err := f.svc.Approve(context.Background(), types.ApplicationIdentifier{ID: b.Application.Entity.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, view.Application.Entity.Status)
	assert.Equal(t, petdomain.StatusAdopted, view.Pet.Entity.Status)
	assert.Equal(t, petdomain.StatusAdopted, f.petStatus(t, petID))
	assert.Equal(t, domain.StatusRejected, f.appStatus(t, a.Application.Entity.ID))
	assert.Equal(t, domain.StatusRejected, f.appStatus(t, c.Application.Entity.ID))
	assert.Equal(t, domain.StatusPending, f.appStatus(t, elsewhere.Application.Entity.ID))
	assert.Equal(t, petdomain.StatusAvailable, f.petStatus(t, otherPet))
}

func TestApprove_PendingPetIsAdoptable(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Bella")
	app := f.submit(t, petID, f.addUser(t, "Eve"))
	pending := string(petdomain.StatusPending)
	_, err := f.pets.UpdatePet(context.Background(), petstypes.UpdatePetInput{ID: petID, Status: &pending})
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), types.ApplicationIdentifier{ID: app.Application.Entity.ID})
	require.NoError(t, err)
	assert.Equal(t, petdomain.StatusAdopted, f.petStatus(t, petID))
}

func TestDecisionsAreTerminal(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Whiskers")
	a := f.submit(t, petID, f.addUser(t, "A"))
	b := f.submit(t, petID, f.addUser(t, "B"))
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, types.ApplicationIdentifier{ID: a.Application.Entity.ID})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, types.ApplicationIdentifier{ID: a.Application.Entity.ID})
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = f.svc.Reject(ctx, types.ApplicationIdentifier{ID: a.Application.Entity.ID})
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = f.svc.Approve(ctx, types.ApplicationIdentifier{ID: b.Application.Entity.ID})
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, domain.StatusRejected, f.appStatus(t, b.Application.Entity.ID))
}

func TestApprove_UnknownApplication(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Approve(context.Background(), types.ApplicationIdentifier{ID: uuid.New()})
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.True(t, IsNotFound(err))
}

func TestReject_LeavesPetUntouched(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Rocky")
	app := f.submit(t, petID, f.addUser(t, "Zoe"))

	view, err := f.svc.Reject(context.Background(), types.ApplicationIdentifier{ID: app.Application.Entity.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, view.Application.Entity.Status)
	require.NotNil(t, view.Applicant)
	assert.Equal(t, "Zoe", view.Applicant.Name)
	assert.Equal(t, petdomain.StatusAvailable, f.petStatus(t, petID))
}

var errStorage = errors.New("storage unavailable")

type faultyTransactor struct{ inner ports.Transactor }

func (f faultyTransactor) WithinTx(ctx context.Context, fn func(context.Context, ports.TxScope) error) error {
	return f.inner.WithinTx(ctx, func(ctx context.Context, scope ports.TxScope) error {
		return fn(ctx, faultyScope{scope})
	})
}

type faultyScope struct{ ports.TxScope }

func (s faultyScope) Applications() ports.Repository { return faultyApps{s.TxScope.Applications()} }

type faultyApps struct{ ports.Repository }

func (faultyApps) RejectPendingForPet(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return 0, errStorage
}

func TestApprove_FailureLeavesNoPartialWrites(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Daisy")
	a := f.submit(t, petID, f.addUser(t, "A"))
	b := f.submit(t, petID, f.addUser(t, "B"))
	svc := NewService(f.apps, f.pRepo, faultyTransactor{inner: f.tx})

	_, err := svc.Approve(context.Background(), types.ApplicationIdentifier{ID: a.Application.Entity.ID})
	require.ErrorIs(t, err, errStorage)

	assert.Equal(t, petdomain.StatusAvailable, f.petStatus(t, petID))
	assert.Equal(t, domain.StatusPending, f.appStatus(t, a.Application.Entity.ID))
	assert.Equal(t, domain.StatusPending, f.appStatus(t, b.Application.Entity.ID))
}

func TestListings_NewestFirst(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "Alice")
	first := f.submit(t, f.addPet(t, "One"), alice)
	second := f.submit(t, f.addPet(t, "Two"), alice)
	other := f.submit(t, f.addPet(t, "Three"), f.addUser(t, "Bob"))
	ctx := context.Background()

	mine, err := f.svc.ListForApplicant(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.Application.Entity.ID, mine[0].Application.Entity.ID)
	assert.Equal(t, first.Application.Entity.ID, mine[1].Application.Entity.ID)
	assert.Equal(t, "Two", mine[0].Pet.Entity.Name)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.Application.Entity.ID, all[0].Application.Entity.ID)
	assert.Equal(t, "Bob", all[0].Applicant.Name)

	none, err := f.svc.ListForApplicant(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListForPet(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Oscar")
	f.submit(t, petID, f.addUser(t, "A"))
	f.submit(t, petID, f.addUser(t, "B"))
	f.submit(t, f.addPet(t, "Other"), f.addUser(t, "C"))

	list, err := f.svc.ListForPet(context.Background(), petID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Applicant.Name)

	_, err = f.svc.ListForPet(context.Background(), uuid.New())
	require.True(t, IsNotFound(err))
}

func TestDeletePet_CascadesToApplications(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Ghost")
	app := f.submit(t, petID, f.addUser(t, "A"))

	require.NoError(t, f.pets.DeletePet(context.Background(), petstypes.PetIdentifier{ID: petID}))

	_, err := f.apps.GetByID(context.Background(), app.Application.Entity.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	all, err := f.svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConcurrentApprovals_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Rex")
	const applicants = 8
	ids := make([]uuid.UUID, 0, applicants)
	for i := 0; i < applicants; i++ {
		ids = append(ids, f.submit(t, petID, uuid.New()).Application.Entity.ID)
	}

	var (
		wg        sync.WaitGroup
		successes int32
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := f.svc.Approve(context.Background(), types.ApplicationIdentifier{ID: id}); err == nil {
				atomic.AddInt32(&successes, 1)
			} else {
				assert.ErrorIs(t, err, ErrInvalidState)
			}
		}(id)
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes)
	assert.Equal(t, petdomain.StatusAdopted, f.petStatus(t, petID))
	approved := 0
	for _, id := range ids {
		if f.appStatus(t, id) == domain.StatusApproved {
			approved++
		}
	}
	assert.Equal(t, 1, approved)
}

func TestConcurrentDuplicateSubmissions_OneStored(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Coco")
	applicant := uuid.New()

	var (
		wg        sync.WaitGroup
		successes int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Submit(context.Background(), types.SubmitInput{PetID: petID, ApplicantID: applicant})
			if err == nil {
				atomic.AddInt32(&successes, 1)
				return
			}
			assert.ErrorIs(t, err, ErrConflict)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes)
	list, err := f.svc.ListForApplicant(context.Background(), applicant)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecreatingAdoptedPetKeepsItAdopted(t *testing.T) {
	f := newFixture(t)
	input := petstypes.CreatePetInput{
		ID:          uuid.New(),
		Name:        "Buddy",
		Species:     "Dog",
		Breed:       "Golden Retriever",
		Age:         3,
		Gender:      "Male",
		Description: "Friendly and energetic",
	}
	_, err := f.pets.CreatePet(context.Background(), input)
	require.NoError(t, err)
	first := f.submit(t, input.ID, f.addUser(t, "Ann"))
	_, err = f.svc.Approve(context.Background(), types.ApplicationIdentifier{ID: first.Application.Entity.ID})
	require.NoError(t, err)

	again, err := f.pets.CreatePet(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, petdomain.StatusAdopted, again.Entity.Status)

	_, err = f.svc.Submit(context.Background(), types.SubmitInput{PetID: input.ID, ApplicantID: f.addUser(t, "Ben")})
	require.ErrorIs(t, err, ErrInvalidState)
	approved := 0
	list, err := f.svc.ListForPet(context.Background(), input.ID)
	require.NoError(t, err)
	for _, view := range list {
		if view.Application.Entity.Status == domain.StatusApproved {
			approved++
		}
	}
	assert.Equal(t, 1, approved)
}

func TestUpdatePetWaitsForPetLockHeldByApproval(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Buddy")
	first := f.submit(t, petID, f.addUser(t, "Ann"))
	second := f.submit(t, petID, f.addUser(t, "Ben"))

	approved := make(chan error, 1)
	var once sync.Once
	pets := petsapp.NewService(f.pRepo, hookedPetTx{
		Transactor: f.tx.ForPets(),
		beforeSave: func() {
			once.Do(func() {
				go func() {
					_, err := f.svc.Approve(context.Background(), types.ApplicationIdentifier{ID: first.Application.Entity.ID})
					approved <- err
				}()
				select {
				case err := <-approved:
					t.Errorf("approval completed while the pet update held the lock: %v", err)
					approved <- err
				case <-time.After(50 * time.Millisecond):
				}
			})
		},
	}, petsapp.WithDefaultStatus())

	description := "Now house trained"
	_, err := pets.UpdatePet(context.Background(), petstypes.UpdatePetInput{ID: petID, Description: &description})
	require.NoError(t, err)
	select {
	case err := <-approved:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("update never wrote through the transactional pet repository")
	}

	assert.Equal(t, petdomain.StatusAdopted, f.petStatus(t, petID))
	assert.Equal(t, domain.StatusApproved, f.appStatus(t, first.Application.Entity.ID))
	assert.Equal(t, domain.StatusRejected, f.appStatus(t, second.Application.Entity.ID))
	pet, err := f.pets.GetPet(context.Background(), petstypes.PetIdentifier{ID: petID})
	require.NoError(t, err)
	assert.Equal(t, description, pet.Entity.Description)
}

// hookedPetTx calls beforeSave ahead of every pet write made inside a pets
// unit of work.
type hookedPetTx struct {
	petsports.Transactor
	beforeSave func()
}

func (h hookedPetTx) WithinTx(ctx context.Context, fn func(ctx context.Context, scope petsports.TxScope) error) error {
	return h.Transactor.WithinTx(ctx, func(ctx context.Context, scope petsports.TxScope) error {
		return fn(ctx, hookedPetScope{TxScope: scope, beforeSave: h.beforeSave})
	})
}

type hookedPetScope struct {
	petsports.TxScope
	beforeSave func()
}

func (s hookedPetScope) Pets() petsports.Repository {
	return hookedPetRepository{Repository: s.TxScope.Pets(), beforeSave: s.beforeSave}
}

type hookedPetRepository struct {
	petsports.Repository
	beforeSave func()
}

func (r hookedPetRepository) Save(ctx context.Context, pet *petdomain.Pet) (*petstypes.PetProjection, error) {
	r.beforeSave()
	return r.Repository.Save(ctx, pet)
}
