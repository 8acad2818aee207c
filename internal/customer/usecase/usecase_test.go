package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/customer"
	"github.com/fekuna/omnipos-inventory-service/internal/customer/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/customer/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func strPtr(s string) *string { return &s }

func newUseCase(t *testing.T) (*memory.Store, customer.UseCase) {
	store := memory.NewStore()
	store.PutCustomer(model.Customer{
		BaseModel:      model.BaseModel{ID: "c-1", CreatedAt: time.Now()},
		Versioned:      model.Versioned{Version: 3, SyncStatus: model.SyncStatusSynced},
		OrganizationID: "org-1",
		Name:           "Existing",
		Phone:          strPtr("+62811"),
		Email:          strPtr("jo@example.com"),
	})
	return store, usecase.NewCustomerUseCase(store, store.Customers(), logger.Wrap(zaptest.NewLogger(t)))
}

func TestSyncCustomer_CreatesNew(t *testing.T) {
	store, uc := newUseCase(t)

	c, err := uc.SyncCustomer(context.Background(), &dto.SyncCustomerInput{
		OrganizationID: "org-1", LocalID: "l-1", ClientVersion: 1, Name: "New", Phone: strPtr("+62822"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Version)
	assert.Equal(t, model.TierBronze, c.LoyaltyTier)
	assert.Equal(t, 2, store.CountCustomers())
}

func TestSyncCustomer_DuplicateContactIsRejected(t *testing.T) {
	tests := []struct {
		name  string
		phone *string
		email *string
	}{
		{"phone", strPtr("+62811"), nil},
		{"email case insensitive", nil, strPtr("JO@example.com")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, uc := newUseCase(t)

			_, err := uc.SyncCustomer(context.Background(), &dto.SyncCustomerInput{
				OrganizationID: "org-1", LocalID: "l-2", ClientVersion: 1, Name: "Dup", Phone: tt.phone, Email: tt.email,
			})

			var dupErr *customer.DuplicateCustomerError
			require.ErrorAs(t, err, &dupErr)
			assert.Equal(t, "c-1", dupErr.Existing.ID)
			assert.Equal(t, 1, store.CountCustomers())
		})
	}
}

func TestSyncCustomer_OtherOrganizationIsNotADuplicate(t *testing.T) {
	store, uc := newUseCase(t)

	_, err := uc.SyncCustomer(context.Background(), &dto.SyncCustomerInput{
		OrganizationID: "org-2", LocalID: "l-3", ClientVersion: 1, Name: "Elsewhere", Phone: strPtr("+62811"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, store.CountCustomers())
}

func TestSyncCustomer_UpdateKeepsLoyalty(t *testing.T) {
	_, uc := newUseCase(t)
	ctx := context.Background()
	created, err := uc.SyncCustomer(ctx, &dto.SyncCustomerInput{
		OrganizationID: "org-1", LocalID: "l-4", ClientVersion: 1, Name: "Before",
	})
	require.NoError(t, err)

	updated, err := uc.SyncCustomer(ctx, &dto.SyncCustomerInput{
		OrganizationID: "org-1", LocalID: "l-4", ClientVersion: 1, Name: "After",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, int64(2), updated.Version)

	_, err = uc.SyncCustomer(ctx, &dto.SyncCustomerInput{
		OrganizationID: "org-1", LocalID: "l-4", ClientVersion: 1, Name: "Stale",
	})
	var conflict *apperr.VersionConflictError
	require.ErrorAs(t, err, &conflict)
}

type recordingRepo struct {
	*memory.CustomerRepository
	mu    sync.Mutex
	calls []string
}

func (r *recordingRepo) note(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingRepo) LockIdentities(ctx context.Context, keys []string) error {
	r.note("lock " + strings.Join(keys, ","))
	return r.CustomerRepository.LockIdentities(ctx, keys)
}

func (r *recordingRepo) FindDuplicate(ctx context.Context, organizationID string, phone, email *string, excludeID string) (*model.Customer, error) {
	r.note("find")
	return r.CustomerRepository.FindDuplicate(ctx, organizationID, phone, email, excludeID)
}

func TestSyncCustomer_LocksIdentityBeforeDuplicateCheck(t *testing.T) {
	store := memory.NewStore()
	repo := &recordingRepo{CustomerRepository: store.Customers()}
	uc := usecase.NewCustomerUseCase(store, repo, logger.Wrap(zaptest.NewLogger(t)))

	_, err := uc.SyncCustomer(context.Background(), &dto.SyncCustomerInput{
		OrganizationID: "org-1", LocalID: "l-1", ClientVersion: 1, Name: "Jo",
		Phone: strPtr("+62811"), Email: strPtr("Jo@Example.com"),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"lock org-1/email/jo@example.com,org-1/phone/+62811", "find"}, repo.calls)
}

func TestSyncCustomer_ConcurrentSamePhoneCreatesOne(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewCustomerUseCase(store, store.Customers(), logger.Wrap(zaptest.NewLogger(t)))

	const devices = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    int
		duplicates int
	)
	for i := 0; i < devices; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.SyncCustomer(context.Background(), &dto.SyncCustomerInput{
				OrganizationID: "org-1", LocalID: fmt.Sprintf("device-%d", i), ClientVersion: 1,
				Name: "Same person", Phone: strPtr("+62899"),
			})
			mu.Lock()
			defer mu.Unlock()
			var dupErr *customer.DuplicateCustomerError
			switch {
			case err == nil:
				created++
			case assert.ErrorAs(t, err, &dupErr):
				duplicates++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, devices-1, duplicates)
	assert.Equal(t, 1, store.CountCustomers())
}
