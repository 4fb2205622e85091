package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/infrastructure/metrics"
)

// accountCacheTTL bounds how stale a cached account read may be.
const accountCacheTTL = 30 * time.Second

// AccountUseCase handles account provisioning and lookup.
type AccountUseCase struct {
	accountRepo AccountRepository
	cache       Cache
	idGen       IDGenerator
	clock       Clock
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. The cache is optional
// and may be nil.
func NewAccountUseCase(accountRepo AccountRepository, cache Cache, idGen IDGenerator, clock Clock, metrics *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		cache:       cache,
		idGen:       idGen,
		clock:       clock,
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Phone     string
	Name      string
	Role      domain.ActorRole
	Territory domain.Territory
}

// CreateAccount provisions a new account with zero balances.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidatePhone(input.Phone); err != nil {
		return nil, err
	}

	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateTerritory(input.Territory); err != nil {
		return nil, err
	}

	role := input.Role
	if !role.IsValid() {
		role = domain.RoleUser
	}

	now := uc.clock.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Phone:     input.Phone,
		Name:      input.Name,
		Role:      role,
		Territory: input.Territory,
		Balance:   0,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	uc.cacheAccount(ctx, account)

	return account, nil
}

// GetAccount retrieves an account by ID. Reads go through a short-lived
// cache; balances served here may lag the ledger by up to accountCacheTTL.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, accountCacheKey(id)); err == nil {
			var account domain.Account
			if err := json.Unmarshal(data, &account); err == nil {
				return &account, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.cacheAccount(ctx, account)

	return account, nil
}

func (uc *AccountUseCase) cacheAccount(ctx context.Context, account *domain.Account) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(account)
	if err != nil {
		return
	}

	// Cache failures are non-fatal, the repository stays authoritative.
	_ = uc.cache.Set(ctx, accountCacheKey(account.ID), data, accountCacheTTL)
}

func accountCacheKey(id string) string {
	return "account:" + id
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}
