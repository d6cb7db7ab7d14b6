package repository

import (
	"context"
	"errors"

	"quantum_clicker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const withdrawalColumns = `id, ref, player_id, amount, address, status, tx_hash, notes, created_at, processed_at`

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// CreateWithTx inserts the request inside the same transaction that debits
// the player, so the debit and the queued request commit together.
func (r *WithdrawalRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	w.Ref = uuid.NewString()
	w.Status = domain.WithdrawalPending
	return tx.QueryRow(ctx, `
		INSERT INTO withdrawals (ref, player_id, amount, address, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		w.Ref, w.PlayerID, w.Amount, w.Address, w.Status,
	).Scan(&w.ID, &w.CreatedAt)
}

func (r *WithdrawalRepository) GetByRef(ctx context.Context, ref string) (*domain.WithdrawalRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE ref = $1`, ref)
	return scanWithdrawal(row)
}

func (r *WithdrawalRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]domain.WithdrawalRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		WHERE player_id = $1 ORDER BY id DESC LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

// ClaimPending atomically moves up to limit pending requests into
// processing and returns them, so two settlement workers never pick up the
// same request.
func (r *WithdrawalRepository) ClaimPending(ctx context.Context, limit int) ([]domain.WithdrawalRequest, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE withdrawals SET status = 'processing'
		WHERE id IN (
			SELECT id FROM withdrawals
			WHERE status = 'pending'
			ORDER BY id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+withdrawalColumns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func (r *WithdrawalRepository) MarkCompleted(ctx context.Context, id int64, txHash string) error {
	return r.markDone(ctx, id, domain.WithdrawalCompleted, txHash, "")
}

func (r *WithdrawalRepository) MarkFailed(ctx context.Context, id int64, notes string) error {
	return r.markDone(ctx, id, domain.WithdrawalFailed, "", notes)
}

func (r *WithdrawalRepository) markDone(ctx context.Context, id int64, status domain.WithdrawalStatus, txHash, notes string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE withdrawals SET status = $2, tx_hash = $3, notes = $4, processed_at = now()
		WHERE id = $1 AND status = 'processing'`,
		id, status, txHash, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict("withdrawal is not in processing state")
	}
	return nil
}

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	err := row.Scan(&w.ID, &w.Ref, &w.PlayerID, &w.Amount, &w.Address,
		&w.Status, &w.TxHash, &w.Notes, &w.CreatedAt, &w.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound("withdrawal not found")
		}
		return nil, err
	}
	return &w, nil
}

func collectWithdrawals(rows pgx.Rows) ([]domain.WithdrawalRequest, error) {
	var res []domain.WithdrawalRequest
	for rows.Next() {
		var w domain.WithdrawalRequest
		if err := rows.Scan(&w.ID, &w.Ref, &w.PlayerID, &w.Amount, &w.Address,
			&w.Status, &w.TxHash, &w.Notes, &w.CreatedAt, &w.ProcessedAt); err != nil {
			return nil, err
		}
		res = append(res, w)
	}
	return res, rows.Err()
}
