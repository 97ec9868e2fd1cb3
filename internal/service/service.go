package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/cache"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/config"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/draft"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/ledger"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/plan"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/risk"
)

// Store is the persistence surface the service depends on.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	CreateClient(client *models.Client) error
	FindClientByID(id int64) (*models.Client, error)
	ListClients() ([]models.Client, error)
	CreateSchedule(s *models.Schedule) error
	SchedulesByClient(clientID int64) ([]models.Schedule, error)
	PaymentsByClient(clientID int64) ([]models.Payment, error)
	RecordPayment(p *models.Payment) error
	DueSchedules(onOrBefore time.Time) ([]models.ReminderItem, error)
	LogOutreach(clientID int64, scenario, tone, channel string, maskedFields []string) error
}

// Notifier delivers a message to the business owner's chat.
type Notifier interface {
	NotifyOwner(text string) error
}

// DigestSender delivers the daily reminder digest.
type DigestSender interface {
	SendReminderDigest(day time.Time, items []models.ReminderItem) error
}

// RiskReport bundles the ledger metrics with the score derived from them.
type RiskReport struct {
	Metrics models.RiskMetrics `json:"metrics"`
	Score   models.RiskScore   `json:"score"`
}

// Service handles business logic
type Service struct {
	store    Store
	cache    cache.Cache
	notifier Notifier
	digest   DigestSender
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service
func NewService(store Store, c cache.Cache, notifier Notifier, digest DigestSender, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, cache: c, notifier: notifier, digest: digest, log: log, config: cfg}
}

// Register creates a new dashboard user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// CreateClient creates a new client
func (s *Service) CreateClient(client *models.Client) (*models.Client, error) {
	if client.Name == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if err := s.store.CreateClient(client); err != nil {
		return nil, err
	}
	s.log.Infof("Client created: %s (id %d)", client.Name, client.ID)
	return client, nil
}

// ListClients lists all clients
func (s *Service) ListClients() ([]models.Client, error) {
	return s.store.ListClients()
}

// GetClient retrieves one client
func (s *Service) GetClient(id int64) (*models.Client, error) {
	return s.store.FindClientByID(id)
}

// CreateSchedule adds an installment row to a client
func (s *Service) CreateSchedule(sched *models.Schedule) (*models.Schedule, error) {
	if sched.ClientID == 0 {
		return nil, fmt.Errorf("client id is required")
	}
	if sched.AmountDue <= 0 && sched.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if _, err := s.store.FindClientByID(sched.ClientID); err != nil {
		return nil, err
	}
	if err := s.store.CreateSchedule(sched); err != nil {
		return nil, err
	}
	s.invalidateRisk(sched.ClientID)
	s.log.Infof("Schedule created for client %d: %.2f TL", sched.ClientID, ledger.AmountDue(*sched))
	return sched, nil
}

// RecordPayment records a payment, refreshes the schedule it settles and
// notifies the owner.
func (s *Service) RecordPayment(p *models.Payment) (*models.Payment, error) {
	if p.ClientID == 0 {
		return nil, fmt.Errorf("client id is required")
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	client, err := s.store.FindClientByID(p.ClientID)
	if err != nil {
		return nil, err
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	p.Amount = ledger.Round2(p.Amount)

	if err := s.store.RecordPayment(p); err != nil {
		return nil, err
	}
	s.invalidateRisk(p.ClientID)

	if s.notifier != nil {
		text := fmt.Sprintf("Ödeme alındı: %s — %s", draft.MaskName(client.Name), draft.FormatAmount(p.Amount))
		if err := s.notifier.NotifyOwner(text); err != nil {
			s.log.Warnf("Failed to notify owner about payment %d: %v", p.ID, err)
		}
	}

	s.log.Infof("Payment recorded for client %d: %.2f TL", p.ClientID, p.Amount)
	return p, nil
}

func riskKey(clientID int64) string {
	return fmt.Sprintf("risk:%d", clientID)
}

func (s *Service) invalidateRisk(clientID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(riskKey(clientID)); err != nil {
		s.log.Warnf("Failed to invalidate risk cache for client %d: %v", clientID, err)
	}
}

// AnalyzeRisk computes metrics and a score over already-fetched rows.
func (s *Service) AnalyzeRisk(schedules []models.Schedule, payments []models.Payment, now time.Time) RiskReport {
	metrics := risk.ComputeMetrics(schedules, payments, now)
	return RiskReport{Metrics: metrics, Score: risk.Score(metrics)}
}

// ClientRisk computes (or serves from cache) the risk report for a client.
// The cache is only consulted for the default "now"; an explicit reference
// time always recomputes.
func (s *Service) ClientRisk(clientID int64, now time.Time) (*RiskReport, error) {
	useCache := now.IsZero() && s.cache != nil
	if useCache {
		if raw, ok := s.cache.Get(riskKey(clientID)); ok {
			var report RiskReport
			if err := json.Unmarshal([]byte(raw), &report); err == nil {
				return &report, nil
			}
			s.log.Warnf("Dropping unreadable cached risk for client %d", clientID)
		}
	}

	if _, err := s.store.FindClientByID(clientID); err != nil {
		return nil, err
	}
	schedules, err := s.store.SchedulesByClient(clientID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.PaymentsByClient(clientID)
	if err != nil {
		return nil, err
	}

	report := s.AnalyzeRisk(schedules, payments, now)

	if useCache {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(riskKey(clientID), string(raw), s.config.RiskCacheTTL); err != nil {
				s.log.Warnf("Failed to cache risk for client %d: %v", clientID, err)
			}
		}
	}
	return &report, nil
}

// SuggestPlan proposes a payment plan from explicit inputs.
func (s *Service) SuggestPlan(in plan.Input) (models.PaymentSuggestion, error) {
	if in.TotalAmount <= 0 {
		return models.PaymentSuggestion{}, fmt.Errorf("total amount must be positive")
	}
	return plan.Suggest(in), nil
}

// SuggestPlanForClient proposes a payment plan for a client, deriving risk
// level, stage and overdue history from stored rows.
func (s *Service) SuggestPlanForClient(clientID int64, totalAmount float64) (models.PaymentSuggestion, error) {
	if totalAmount <= 0 {
		return models.PaymentSuggestion{}, fmt.Errorf("total amount must be positive")
	}
	client, err := s.store.FindClientByID(clientID)
	if err != nil {
		return models.PaymentSuggestion{}, err
	}
	report, err := s.ClientRisk(clientID, time.Time{})
	if err != nil {
		return models.PaymentSuggestion{}, err
	}
	return plan.Suggest(plan.Input{
		TotalAmount:  totalAmount,
		RiskLevel:    report.Score.Level,
		Stage:        client.Stage,
		OverdueCount: report.Metrics.OverdueCount,
	}), nil
}

// Draft renders an outreach message from explicit inputs.
func (s *Service) Draft(in draft.Input) models.MessageDraft {
	return draft.Render(in)
}

// DraftForClient renders an outreach message for a client, deriving the
// ledger figures from stored rows, and logs the outreach.
func (s *Service) DraftForClient(clientID int64, scenario draft.Scenario, tone draft.Tone, channel draft.Channel) (models.MessageDraft, error) {
	client, err := s.store.FindClientByID(clientID)
	if err != nil {
		return models.MessageDraft{}, err
	}
	schedules, err := s.store.SchedulesByClient(clientID)
	if err != nil {
		return models.MessageDraft{}, err
	}
	payments, err := s.store.PaymentsByClient(clientID)
	if err != nil {
		return models.MessageDraft{}, err
	}

	now := time.Now()
	metrics := risk.ComputeMetrics(schedules, payments, now)
	figures := deriveFigures(schedules, now)

	d := draft.Render(draft.Input{
		Scenario:      scenario,
		Tone:          tone,
		Channel:       channel,
		ClientName:    client.Name,
		Phone:         client.Phone,
		NextDueDate:   figures.nextDueDate,
		NextDueAmount: figures.nextDueAmount,
		OverdueAmount: figures.overdueAmount,
		TotalPaid:     metrics.TotalPaid,
		Remaining:     metrics.Remaining,
	})

	if err := s.store.LogOutreach(clientID, string(scenario), string(tone), string(channel), d.MaskedFields); err != nil {
		s.log.Warnf("Failed to log outreach for client %d: %v", clientID, err)
	}
	return d, nil
}

type ledgerFigures struct {
	nextDueDate   time.Time
	nextDueAmount float64
	overdueAmount float64
}

// deriveFigures splits the open balance into "already overdue" and "next
// upcoming installment" the way the message templates expect.
func deriveFigures(schedules []models.Schedule, now time.Time) ledgerFigures {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var f ledgerFigures
	var overdue float64
	for _, row := range schedules {
		rem := ledger.Remaining(row)
		if rem <= 0 || row.DueDate.IsZero() {
			continue
		}
		due := time.Date(row.DueDate.Year(), row.DueDate.Month(), row.DueDate.Day(), 0, 0, 0, 0, row.DueDate.Location())
		if due.Before(today) {
			overdue += rem
			continue
		}
		if f.nextDueDate.IsZero() || due.Before(f.nextDueDate) {
			f.nextDueDate = due
			f.nextDueAmount = rem
		}
	}
	f.overdueAmount = ledger.Round2(overdue)
	return f
}

// RunDailyReminders drafts and delivers a reminder for every unpaid
// installment due today or earlier, then emails the owner a digest.
// Individual delivery failures are logged and skipped.
func (s *Service) RunDailyReminders(now time.Time) error {
	if now.IsZero() {
		now = time.Now()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	items, err := s.store.DueSchedules(today)
	if err != nil {
		return fmt.Errorf("failed to load due schedules: %w", err)
	}
	if len(items) == 0 {
		s.log.Info("Reminder run: nothing due")
		return nil
	}

	for _, item := range items {
		scenario := draft.ScenarioTodayDue
		due := item.Schedule.DueDate
		if time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location()).Before(today) {
			scenario = draft.ScenarioOverdue
		}

		d := draft.Render(draft.Input{
			Scenario:      scenario,
			Tone:          draft.ToneStandard,
			Channel:       draft.ChannelTelegram,
			ClientName:    item.Client.Name,
			Phone:         item.Client.Phone,
			NextDueDate:   item.Schedule.DueDate,
			NextDueAmount: ledger.Remaining(item.Schedule),
			OverdueAmount: ledger.Remaining(item.Schedule),
		})

		if s.notifier != nil {
			text := fmt.Sprintf("[%s] %s", draft.MaskName(item.Client.Name), d.Text)
			if err := s.notifier.NotifyOwner(text); err != nil {
				s.log.Warnf("Failed to deliver reminder for client %d: %v", item.Client.ID, err)
			}
		}
	}

	if s.digest != nil {
		if err := s.digest.SendReminderDigest(today, items); err != nil {
			s.log.Warnf("Failed to send reminder digest: %v", err)
		}
	}

	s.log.Infof("Reminder run complete: %d installments", len(items))
	return nil
}
