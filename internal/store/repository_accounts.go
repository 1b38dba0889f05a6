package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

// accountRepository is the SQLite-backed implementation of
// [AccountRepository].
type accountRepository struct {
	*DB
	logger *logger.Logger
}

// NewAccountRepository constructs an [AccountRepository] backed by the
// provided database connection and logger.
func NewAccountRepository(db *DB, logger *logger.Logger) AccountRepository {
	return &accountRepository{
		DB:     db,
		logger: logger,
	}
}

// Current implements [AccountRepository].
func (r *accountRepository) Current(ctx context.Context) (models.Account, error) {
	var account models.Account

	row := r.DB.QueryRowContext(ctx, getCurrentAccount)
	err := scanAccount(row, &account)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNoCurrentAccount
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "accountRepository.Current").
			Msg("failed to load current account")
		return models.Account{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return account, nil
}

// SetCurrent implements [AccountRepository]. Both updates run in one
// transaction so observers never see zero or two current accounts.
func (r *accountRepository) SetCurrent(ctx context.Context, accountID int64) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, clearCurrentAccount); err != nil {
		log.Err(err).Str("func", "accountRepository.SetCurrent").Msg("failed to clear current mark")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	res, err := tx.ExecContext(ctx, setCurrentAccount, accountID)
	if err != nil {
		log.Err(err).
			Str("func", "accountRepository.SetCurrent").
			Int64("account_id", accountID).
			Msg("failed to set current account")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrAccountNotFound
	}

	return tx.Commit()
}

// Save implements [AccountRepository].
func (r *accountRepository) Save(ctx context.Context, account models.Account) (models.Account, error) {
	log := logger.FromContext(ctx)

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	_, err := r.DB.ExecContext(ctx, upsertAccount,
		account.RemoteID,
		account.Name,
		account.ServerURL,
		account.Token,
		account.LiveSync,
		account.Current,
		account.CreatedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "accountRepository.Save").
			Str("remote_id", account.RemoteID).
			Msg("failed to upsert account")
		return models.Account{}, fmt.Errorf("failed to save account (remote_id=%s): %w", account.RemoteID, err)
	}

	var saved models.Account
	row := r.DB.QueryRowContext(ctx, getAccountByRemoteID, account.RemoteID)
	if err = scanAccount(row, &saved); err != nil {
		return models.Account{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return saved, nil
}

// UpdateToken implements [AccountRepository].
func (r *accountRepository) UpdateToken(ctx context.Context, accountID int64, token string) error {
	res, err := r.DB.ExecContext(ctx, updateAccountToken, token, accountID)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "accountRepository.UpdateToken").
			Int64("account_id", accountID).
			Msg("failed to update account token")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, account *models.Account) error {
	return row.Scan(
		&account.ID,
		&account.RemoteID,
		&account.Name,
		&account.ServerURL,
		&account.Token,
		&account.LiveSync,
		&account.Current,
		&account.CreatedAt,
	)
}
