package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markvl91/helpdesk-service/internal/domain"
)

// TicketSort captures listing sort parameters. Field names are whitelisted
// in sortColumn; anything unknown falls back to created_at.
type TicketSort struct {
	Field     string
	Ascending bool
}

// TicketRepository encapsulates ticket persistence, including the embedded
// log sequence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByCreator(ctx context.Context, creatorID string) ([]domain.Ticket, error)
	ListAll(ctx context.Context, archived bool, sort TicketSort) ([]domain.Ticket, error)
	UpdateFields(ctx context.Context, id, title, description string, priority domain.TicketPriority) error
	SetStatus(ctx context.Context, id string, status domain.TicketStatus) error
	AppendLog(ctx context.Context, ticketID string, log *domain.Log) error
	EditLog(ctx context.Context, ticketID, logID, description string, newStatus domain.TicketStatus) error
	DeleteLog(ctx context.Context, ticketID, logID string) error
	SetArchived(ctx context.Context, id string, archived bool) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (created_by_id, title, description, status, priority, archived)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.CreatedByID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Archived,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, created_by_id, title, description, status, priority, archived, created_at, updated_at
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.CreatedByID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Archived,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}

	logs, err := r.listLogs(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Logs = logs
	return &ticket, nil
}

func (r *ticketRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.Ticket, error) {
	const query = `
        SELECT t.id, t.created_by_id, t.title, t.description, t.status, t.priority, t.archived,
               t.created_at, t.updated_at, COUNT(l.id)
        FROM tickets t LEFT JOIN ticket_logs l ON l.ticket_id = t.id
        WHERE t.created_by_id=$1
        GROUP BY t.id
        ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTicketSummaries(rows)
}

func (r *ticketRepository) ListAll(ctx context.Context, archived bool, sort TicketSort) ([]domain.Ticket, error) {
	direction := "DESC"
	if sort.Ascending {
		direction = "ASC"
	}
	query := fmt.Sprintf(`
        SELECT t.id, t.created_by_id, t.title, t.description, t.status, t.priority, t.archived,
               t.created_at, t.updated_at, COUNT(l.id)
        FROM tickets t LEFT JOIN ticket_logs l ON l.ticket_id = t.id
        WHERE t.archived=$1
        GROUP BY t.id
        ORDER BY %s %s`, sortColumn(sort.Field), direction)

	rows, err := r.pool.Query(ctx, query, archived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTicketSummaries(rows)
}

func (r *ticketRepository) UpdateFields(ctx context.Context, id, title, description string, priority domain.TicketPriority) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, priority=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, title, description, priority, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) SetStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	const query = `
        UPDATE tickets SET status=$1, updated_at=NOW()
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

// AppendLog inserts the log entry, then moves the ticket to the log's status.
// The updated_at bump rides along with the status write.
func (r *ticketRepository) AppendLog(ctx context.Context, ticketID string, log *domain.Log) error {
	const insertLog = `
        INSERT INTO ticket_logs (id, ticket_id, created_by_id, description, new_status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := r.pool.Exec(ctx, insertLog,
		log.ID,
		ticketID,
		log.CreatedByID,
		log.Description,
		log.NewStatus,
		log.CreatedAt,
	); err != nil {
		return err
	}
	return r.SetStatus(ctx, ticketID, log.NewStatus)
}

func (r *ticketRepository) EditLog(ctx context.Context, ticketID, logID, description string, newStatus domain.TicketStatus) error {
	const query = `
        UPDATE ticket_logs SET description=$1, new_status=$2
        WHERE id=$3 AND ticket_id=$4`
	cmd, err := r.pool.Exec(ctx, query, description, newStatus, logID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) DeleteLog(ctx context.Context, ticketID, logID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_logs WHERE id=$1 AND ticket_id=$2`, logID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET archived=$1, updated_at=NOW() WHERE id=$2`, archived, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) listLogs(ctx context.Context, ticketID string) ([]domain.Log, error) {
	const query = `
        SELECT id, ticket_id, created_by_id, description, new_status, created_at
        FROM ticket_logs WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []domain.Log{}
	for rows.Next() {
		var log domain.Log
		if err := rows.Scan(
			&log.ID,
			&log.TicketID,
			&log.CreatedByID,
			&log.Description,
			&log.NewStatus,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// scanTicketSummaries reads listing rows where the log sequence is reduced
// to a count. The count is materialized as empty log slots so that
// len(ticket.Logs) stays meaningful for list views.
func scanTicketSummaries(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		var logCount int
		if err := rows.Scan(
			&ticket.ID,
			&ticket.CreatedByID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Archived,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&logCount,
		); err != nil {
			return nil, err
		}
		if logCount > 0 {
			ticket.Logs = make([]domain.Log, logCount)
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func sortColumn(field string) string {
	switch field {
	case "title":
		return "t.title"
	case "status":
		return "t.status"
	case "priority":
		return "t.priority"
	case "updated_at":
		return "t.updated_at"
	case "logs":
		return "COUNT(l.id)"
	default:
		return "t.created_at"
	}
}
