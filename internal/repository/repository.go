package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new dashboard user
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO crm.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM crm.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateClient creates a new client
func (r *Repository) CreateClient(client *models.Client) error {
	query := `
		INSERT INTO crm.clients (name, phone, stage, telegram_chat_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, client.Name, client.Phone, client.Stage, client.TelegramChatID, client.Notes).
		Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// FindClientByID retrieves a client by id
func (r *Repository) FindClientByID(id int64) (*models.Client, error) {
	client := &models.Client{}
	var phone, notes sql.NullString
	var chatID sql.NullInt64
	query := `
		SELECT id, name, phone, stage, telegram_chat_id, notes, created_at, updated_at
		FROM crm.clients
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&client.ID, &client.Name, &phone, &client.Stage, &chatID, &notes, &client.CreatedAt, &client.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	client.Phone = phone.String
	client.Notes = notes.String
	client.TelegramChatID = chatID.Int64
	return client, nil
}

// ListClients retrieves all clients ordered by most recent first
func (r *Repository) ListClients() ([]models.Client, error) {
	query := `
		SELECT id, name, phone, stage, telegram_chat_id, notes, created_at, updated_at
		FROM crm.clients
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		var phone, notes sql.NullString
		var chatID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &phone, &c.Stage, &chatID, &notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		c.Phone = phone.String
		c.Notes = notes.String
		c.TelegramChatID = chatID.Int64
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CreateSchedule creates an installment row for a client
func (r *Repository) CreateSchedule(s *models.Schedule) error {
	query := `
		INSERT INTO crm.schedules (client_id, amount, amount_due, amount_paid, is_paid, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	var due interface{}
	if !s.DueDate.IsZero() {
		due = s.DueDate
	}
	err := r.db.QueryRow(query, s.ClientID, s.Amount, s.AmountDue, s.AmountPaid, s.IsPaid, due).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

func scanSchedule(rows *sql.Rows) (models.Schedule, error) {
	var s models.Schedule
	var amount, amountDue, amountPaid sql.NullFloat64
	var dueDate sql.NullTime
	err := rows.Scan(&s.ID, &s.ClientID, &amount, &amountDue, &amountPaid, &s.IsPaid, &dueDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	// NULL amounts and dates coerce to zero values here so the computation
	// layer never sees database nullability.
	s.Amount = amount.Float64
	s.AmountDue = amountDue.Float64
	s.AmountPaid = amountPaid.Float64
	s.DueDate = dueDate.Time
	return s, nil
}

// SchedulesByClient retrieves all installment rows for a client
func (r *Repository) SchedulesByClient(clientID int64) ([]models.Schedule, error) {
	query := `
		SELECT id, client_id, amount, amount_due, amount_paid, is_paid, due_date, created_at, updated_at
		FROM crm.schedules
		WHERE client_id = $1
		ORDER BY due_date NULLS LAST, id`
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// PaymentsByClient retrieves recorded payments for a client, oldest first
func (r *Repository) PaymentsByClient(clientID int64) ([]models.Payment, error) {
	query := `
		SELECT id, client_id, COALESCE(schedule_id, 0), amount, paid_at, COALESCE(method, ''), created_at
		FROM crm.payments
		WHERE client_id = $1
		ORDER BY paid_at`
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var paidAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.ClientID, &p.ScheduleID, &p.Amount, &paidAt, &p.Method, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.PaidAt = paidAt.Time
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// RecordPayment inserts a payment and updates its schedule's paid fields in
// one transaction.
func (r *Repository) RecordPayment(p *models.Payment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO crm.payments (client_id, schedule_id, amount, paid_at, method, created_at)
		VALUES ($1, NULLIF($2, 0), $3, $4, NULLIF($5, ''), CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	if err := tx.QueryRow(query, p.ClientID, p.ScheduleID, p.Amount, p.PaidAt, p.Method).
		Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	if p.ScheduleID != 0 {
		update := `
			UPDATE crm.schedules
			SET amount_paid = COALESCE(amount_paid, 0) + $1,
			    is_paid = COALESCE(amount_paid, 0) + $1 >= COALESCE(NULLIF(amount_due, 0), amount, 0),
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = $2 AND client_id = $3`
		if _, err := tx.Exec(update, p.Amount, p.ScheduleID, p.ClientID); err != nil {
			return fmt.Errorf("failed to update schedule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}

// DueSchedules retrieves unpaid schedules due on or before the given day,
// with their client attached, for the daily reminder run.
func (r *Repository) DueSchedules(onOrBefore time.Time) ([]models.ReminderItem, error) {
	query := `
		SELECT s.id, s.client_id, s.amount, s.amount_due, s.amount_paid, s.is_paid, s.due_date, s.created_at, s.updated_at,
		       c.id, c.name, c.phone, c.stage, c.telegram_chat_id, c.notes, c.created_at, c.updated_at
		FROM crm.schedules s
		JOIN crm.clients c ON c.id = s.client_id
		WHERE s.is_paid = FALSE AND s.due_date IS NOT NULL AND s.due_date <= $1
		ORDER BY s.due_date, s.id`
	rows, err := r.db.Query(query, onOrBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}
	defer rows.Close()

	var items []models.ReminderItem
	for rows.Next() {
		var item models.ReminderItem
		var amount, amountDue, amountPaid sql.NullFloat64
		var dueDate sql.NullTime
		var phone, notes sql.NullString
		var chatID sql.NullInt64
		err := rows.Scan(
			&item.Schedule.ID, &item.Schedule.ClientID, &amount, &amountDue, &amountPaid,
			&item.Schedule.IsPaid, &dueDate, &item.Schedule.CreatedAt, &item.Schedule.UpdatedAt,
			&item.Client.ID, &item.Client.Name, &phone, &item.Client.Stage,
			&chatID, &notes, &item.Client.CreatedAt, &item.Client.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due schedule: %w", err)
		}
		item.Schedule.Amount = amount.Float64
		item.Schedule.AmountDue = amountDue.Float64
		item.Schedule.AmountPaid = amountPaid.Float64
		item.Schedule.DueDate = dueDate.Time
		item.Client.Phone = phone.String
		item.Client.Notes = notes.String
		item.Client.TelegramChatID = chatID.Int64
		items = append(items, item)
	}
	return items, rows.Err()
}

// LogOutreach records that a message draft was produced for a client.
func (r *Repository) LogOutreach(clientID int64, scenario, tone, channel string, maskedFields []string) error {
	query := `
		INSERT INTO crm.outreach_log (id, client_id, scenario, tone, channel, masked_fields, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)`
	_, err := r.db.Exec(query, uuid.NewString(), clientID, scenario, tone, channel, strings.Join(maskedFields, ","))
	if err != nil {
		return fmt.Errorf("failed to log outreach: %w", err)
	}
	return nil
}
