package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markvl91/helpdesk-service/internal/domain"
)

// TicketRequestRepository handles persistence for ticket requests.
type TicketRequestRepository interface {
	Insert(ctx context.Context, request *domain.TicketRequest) error
	GetByID(ctx context.Context, id string) (*domain.TicketRequest, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketRequest, error)
	ListBySender(ctx context.Context, senderID string) ([]domain.TicketRequest, error)
	ListByRecipient(ctx context.Context, recipientID string) ([]domain.TicketRequest, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketRequestStatus) error
	SetArchived(ctx context.Context, id string, archived bool) error
	Delete(ctx context.Context, id string) error
}

type ticketRequestRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRequestRepository instantiates the repository.
func NewTicketRequestRepository(pool *pgxpool.Pool) TicketRequestRepository {
	return &ticketRequestRepository{pool: pool}
}

func (r *ticketRequestRepository) Insert(ctx context.Context, request *domain.TicketRequest) error {
	const query = `
        INSERT INTO ticket_requests (sender_id, recipient_id, ticket_id, message, status, archived)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.SenderID,
		request.RecipientID,
		request.TicketID,
		request.Message,
		request.Status,
		request.Archived,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *ticketRequestRepository) GetByID(ctx context.Context, id string) (*domain.TicketRequest, error) {
	const query = `
        SELECT id, sender_id, recipient_id, ticket_id, message, status, archived, created_at, updated_at
        FROM ticket_requests WHERE id=$1`

	var request domain.TicketRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.SenderID,
		&request.RecipientID,
		&request.TicketID,
		&request.Message,
		&request.Status,
		&request.Archived,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *ticketRequestRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketRequest, error) {
	return r.listWhere(ctx, "ticket_id", ticketID)
}

func (r *ticketRequestRepository) ListBySender(ctx context.Context, senderID string) ([]domain.TicketRequest, error) {
	return r.listWhere(ctx, "sender_id", senderID)
}

func (r *ticketRequestRepository) ListByRecipient(ctx context.Context, recipientID string) ([]domain.TicketRequest, error) {
	return r.listWhere(ctx, "recipient_id", recipientID)
}

func (r *ticketRequestRepository) listWhere(ctx context.Context, column, value string) ([]domain.TicketRequest, error) {
	query := `
        SELECT id, sender_id, recipient_id, ticket_id, message, status, archived, created_at, updated_at
        FROM ticket_requests WHERE ` + column + `=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketRequest
	for rows.Next() {
		var request domain.TicketRequest
		if err := rows.Scan(
			&request.ID,
			&request.SenderID,
			&request.RecipientID,
			&request.TicketID,
			&request.Message,
			&request.Status,
			&request.Archived,
			&request.CreatedAt,
			&request.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}

func (r *ticketRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketRequestStatus) error {
	const query = `
        UPDATE ticket_requests SET status=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRequestRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE ticket_requests SET archived=$1, updated_at=NOW() WHERE id=$2`, archived, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRequestRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
