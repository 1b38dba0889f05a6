package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

// accountService implements [AccountService] over the account repository and
// fans out current-account switches as one latest-value stream.
type accountService struct {
	accounts store.AccountRepository
	logger   *logger.Logger

	mu   sync.Mutex
	subs []chan models.Account
}

// NewAccountService constructs an [AccountService] over the given storages.
func NewAccountService(storages *store.AgentStorages, logger *logger.Logger) AccountService {
	return &accountService{
		accounts: storages.AccountRepository,
		logger:   logger,
	}
}

// Current implements [AccountService].
func (s *accountService) Current(ctx context.Context) (models.Account, error) {
	return s.accounts.Current(ctx)
}

// Save implements [AccountService].
func (s *accountService) Save(ctx context.Context, account models.Account) (models.Account, error) {
	return s.accounts.Save(ctx, account)
}

// SetCurrent implements [AccountService]. Subscribers observe the new
// account only after it is durably marked current.
func (s *accountService) SetCurrent(ctx context.Context, accountID int64) error {
	if err := s.accounts.SetCurrent(ctx, accountID); err != nil {
		return fmt.Errorf("set current account: %w", err)
	}

	account, err := s.accounts.Current(ctx)
	if err != nil && !errors.Is(err, store.ErrNoCurrentAccount) {
		return fmt.Errorf("reload current account: %w", err)
	}

	s.logger.Info().
		Str("func", "accountService.SetCurrent").
		Int64("account_id", account.ID).
		Str("remote_id", account.RemoteID).
		Msg("current account switched")

	s.publish(account)

	return nil
}

// Subscribe implements [AccountService].
func (s *accountService) Subscribe() <-chan models.Account {
	ch := make(chan models.Account, 1)

	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	return ch
}

func (s *accountService) publish(account models.Account) {
	s.mu.Lock()
	subs := s.subs
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- account:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- account:
			default:
			}
		}
	}
}
