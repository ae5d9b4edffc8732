package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/markvl91/helpdesk-service/internal/domain"
	"github.com/markvl91/helpdesk-service/internal/repository"
)

// In-memory repository fakes. Writes can arrive concurrently from fanOut,
// so every method takes the store lock.

type memEmployeeRepo struct {
	mu    sync.Mutex
	order []string
	items map[string]domain.Employee
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{items: map[string]domain.Employee{}}
}

func (r *memEmployeeRepo) add(e domain.Employee) domain.Employee {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	r.order = append(r.order, e.ID)
	r.items[e.ID] = e
	return e
}

func (r *memEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	*employee = r.add(*employee)
	return nil
}

func (r *memEmployeeRepo) Update(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[employee.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.items[employee.ID] = *employee
	return nil
}

func (r *memEmployeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	employee, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &employee, nil
}

func (r *memEmployeeRepo) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if r.items[id].Email == email {
			employee := r.items[id]
			return &employee, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Employee
	for _, id := range r.order {
		employee := r.items[id]
		if filter.Capability != nil && employee.Capability != *filter.Capability {
			continue
		}
		if filter.Status != nil && employee.Status != *filter.Status {
			continue
		}
		result = append(result, employee)
	}
	return result, nil
}

func (r *memEmployeeRepo) GetByIDs(_ context.Context, ids []string) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Employee
	for _, id := range ids {
		if employee, ok := r.items[id]; ok {
			result = append(result, employee)
		}
	}
	return result, nil
}

func (r *memEmployeeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type memTicketRepo struct {
	mu    sync.Mutex
	items map[string]domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{items: map[string]domain.Ticket{}}
}

func (r *memTicketRepo) add(t domain.Ticket) domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = domain.TicketStatusOpen
	}
	r.items[t.ID] = t
	return t
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	*ticket = r.add(*ticket)
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket.Logs = append([]domain.Log{}, ticket.Logs...)
	return &ticket, nil
}

func (r *memTicketRepo) ListByCreator(_ context.Context, creatorID string) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.items {
		if ticket.CreatedByID == creatorID {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memTicketRepo) ListAll(_ context.Context, archived bool, _ repository.TicketSort) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.items {
		if ticket.Archived == archived {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memTicketRepo) UpdateFields(_ context.Context, id, title, description string, priority domain.TicketPriority) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Title = title
	ticket.Description = description
	ticket.Priority = priority
	r.items[id] = ticket
	return nil
}

func (r *memTicketRepo) SetStatus(_ context.Context, id string, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	r.items[id] = ticket
	return nil
}

func (r *memTicketRepo) AppendLog(_ context.Context, ticketID string, log *domain.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.items[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Logs = append(ticket.Logs, *log)
	ticket.Status = log.NewStatus
	r.items[ticketID] = ticket
	return nil
}

func (r *memTicketRepo) EditLog(_ context.Context, ticketID, logID, description string, newStatus domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.items[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	for i := range ticket.Logs {
		if ticket.Logs[i].ID == logID {
			ticket.Logs[i].Description = description
			ticket.Logs[i].NewStatus = newStatus
			r.items[ticketID] = ticket
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memTicketRepo) DeleteLog(_ context.Context, ticketID, logID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.items[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	for i := range ticket.Logs {
		if ticket.Logs[i].ID == logID {
			ticket.Logs = append(ticket.Logs[:i], ticket.Logs[i+1:]...)
			r.items[ticketID] = ticket
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memTicketRepo) SetArchived(_ context.Context, id string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Archived = archived
	r.items[id] = ticket
	return nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type memRequestRepo struct {
	mu    sync.Mutex
	order []string
	items map[string]domain.TicketRequest
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{items: map[string]domain.TicketRequest{}}
}

func (r *memRequestRepo) add(req domain.TicketRequest) domain.TicketRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = domain.RequestStatusOpen
	}
	r.order = append(r.order, req.ID)
	r.items[req.ID] = req
	return req
}

func (r *memRequestRepo) Insert(_ context.Context, request *domain.TicketRequest) error {
	*request = r.add(*request)
	return nil
}

func (r *memRequestRepo) GetByID(_ context.Context, id string) (*domain.TicketRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &request, nil
}

func (r *memRequestRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketRequest, error) {
	return r.listMatching(func(req domain.TicketRequest) bool { return req.TicketID == ticketID })
}

func (r *memRequestRepo) ListBySender(_ context.Context, senderID string) ([]domain.TicketRequest, error) {
	return r.listMatching(func(req domain.TicketRequest) bool { return req.SenderID == senderID })
}

func (r *memRequestRepo) ListByRecipient(_ context.Context, recipientID string) ([]domain.TicketRequest, error) {
	return r.listMatching(func(req domain.TicketRequest) bool { return req.RecipientID == recipientID })
}

func (r *memRequestRepo) listMatching(match func(domain.TicketRequest) bool) ([]domain.TicketRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketRequest
	for _, id := range r.order {
		if request, ok := r.items[id]; ok && match(request) {
			result = append(result, request)
		}
	}
	return result, nil
}

func (r *memRequestRepo) UpdateStatus(_ context.Context, id string, status domain.TicketRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	request.Status = status
	r.items[id] = request
	return nil
}

func (r *memRequestRepo) SetArchived(_ context.Context, id string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	request.Archived = archived
	r.items[id] = request
	return nil
}

func (r *memRequestRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

// failingTicketRepo fails selected writes so partial-failure paths can be
// exercised. Everything else behaves like the in-memory fake.
type failingTicketRepo struct {
	*memTicketRepo
	appendLogErr error
	setStatusErr error
}

func (r *failingTicketRepo) AppendLog(ctx context.Context, ticketID string, log *domain.Log) error {
	if r.appendLogErr != nil {
		return r.appendLogErr
	}
	return r.memTicketRepo.AppendLog(ctx, ticketID, log)
}

func (r *failingTicketRepo) SetStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	if r.setStatusErr != nil {
		return r.setStatusErr
	}
	return r.memTicketRepo.SetStatus(ctx, id, status)
}

type failingRequestRepo struct {
	*memRequestRepo
	insertErr       error
	updateStatusErr error
}

func (r *failingRequestRepo) Insert(ctx context.Context, request *domain.TicketRequest) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	return r.memRequestRepo.Insert(ctx, request)
}

func (r *failingRequestRepo) UpdateStatus(ctx context.Context, id string, status domain.TicketRequestStatus) error {
	if r.updateStatusErr != nil {
		return r.updateStatusErr
	}
	return r.memRequestRepo.UpdateStatus(ctx, id, status)
}

func serviceDeskEmployee(email string) domain.Employee {
	return domain.Employee{
		ID:         uuid.NewString(),
		FirstName:  "Desk",
		LastName:   "Agent",
		Email:      email,
		Capability: domain.CapabilityServiceDesk,
		Status:     domain.EmployeeStatusActive,
	}
}

func normalEmployee(email string) domain.Employee {
	return domain.Employee{
		ID:         uuid.NewString(),
		FirstName:  "Regular",
		LastName:   "Employee",
		Email:      email,
		Capability: domain.CapabilityNormal,
		Status:     domain.EmployeeStatusActive,
	}
}
