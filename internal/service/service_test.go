package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/cache"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/config"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/draft"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/ledger"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/service"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	nextID    int64
	users     map[string]*models.User
	clients   map[int64]*models.Client
	schedules map[int64][]models.Schedule
	payments  map[int64][]models.Payment
	outreach  []string
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*models.User),
		clients:   make(map[int64]*models.Client),
		schedules: make(map[int64][]models.Schedule),
		payments:  make(map[int64][]models.Payment),
	}
}

func (m *memStore) id() int64 { m.nextID++; return m.nextID }

func (m *memStore) CreateUser(u *models.User) error {
	u.ID = m.id()
	m.users[u.Email] = u
	return nil
}

func (m *memStore) FindUserByEmail(email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (m *memStore) CreateClient(c *models.Client) error {
	c.ID = m.id()
	m.clients[c.ID] = c
	return nil
}

func (m *memStore) FindClientByID(id int64) (*models.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client not found")
	}
	return c, nil
}

func (m *memStore) ListClients() ([]models.Client, error) {
	var out []models.Client
	for _, c := range m.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memStore) CreateSchedule(s *models.Schedule) error {
	s.ID = m.id()
	m.schedules[s.ClientID] = append(m.schedules[s.ClientID], *s)
	return nil
}

func (m *memStore) SchedulesByClient(clientID int64) ([]models.Schedule, error) {
	return m.schedules[clientID], nil
}

func (m *memStore) PaymentsByClient(clientID int64) ([]models.Payment, error) {
	return m.payments[clientID], nil
}

func (m *memStore) RecordPayment(p *models.Payment) error {
	p.ID = m.id()
	m.payments[p.ClientID] = append(m.payments[p.ClientID], *p)
	if p.ScheduleID != 0 {
		rows := m.schedules[p.ClientID]
		for i := range rows {
			if rows[i].ID == p.ScheduleID {
				rows[i].AmountPaid += p.Amount
				rows[i].IsPaid = ledger.Remaining(rows[i]) <= 0
			}
		}
	}
	return nil
}

func (m *memStore) DueSchedules(onOrBefore time.Time) ([]models.ReminderItem, error) {
	var items []models.ReminderItem
	for clientID, rows := range m.schedules {
		for _, row := range rows {
			if !row.IsPaid && !row.DueDate.IsZero() && !row.DueDate.After(onOrBefore) {
				items = append(items, models.ReminderItem{Client: *m.clients[clientID], Schedule: row})
			}
		}
	}
	return items, nil
}

func (m *memStore) LogOutreach(clientID int64, scenario, tone, channel string, maskedFields []string) error {
	m.outreach = append(m.outreach, fmt.Sprintf("%d:%s:%s:%s", clientID, scenario, tone, channel))
	return nil
}

type fakeNotifier struct{ msgs []string }

func (f *fakeNotifier) NotifyOwner(text string) error { f.msgs = append(f.msgs, text); return nil }

type fakeDigest struct{ sent [][]models.ReminderItem }

func (f *fakeDigest) SendReminderDigest(day time.Time, items []models.ReminderItem) error {
	f.sent = append(f.sent, items)
	return nil
}

func newTestService(t *testing.T) (*service.Service, *memStore, *fakeNotifier, *fakeDigest) {
	t.Helper()
	store := newMemStore()
	notifier := &fakeNotifier{}
	digest := &fakeDigest{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg := &config.Config{JWTSecret: "test-secret", RiskCacheTTL: time.Minute}
	svc := service.NewService(store, cache.NewMemory(), notifier, digest, logger, cfg)
	return svc, store, notifier, digest
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	user, err := svc.Register("owner", "owner@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	token, err := svc.Login("owner@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login("owner@example.com", "wrong")
	assert.Error(t, err)
}

func TestClientRiskCachesAndInvalidates(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	client := &models.Client{Name: "Ayşe Demir", Stage: 1}
	require.NoError(t, store.CreateClient(client))
	require.NoError(t, store.CreateSchedule(&models.Schedule{
		ClientID:  client.ID,
		AmountDue: 1000,
		DueDate:   time.Now().AddDate(0, 0, -10),
	}))

	first, err := svc.ClientRisk(client.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Metrics.OverdueCount)
	assert.GreaterOrEqual(t, first.Score.Score, 35)

	// A second schedule added behind the cache is not visible yet.
	require.NoError(t, store.CreateSchedule(&models.Schedule{
		ClientID:  client.ID,
		AmountDue: 500,
		DueDate:   time.Now().AddDate(0, 0, -30),
	}))
	cached, err := svc.ClientRisk(client.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, first.Metrics.OverdueCount, cached.Metrics.OverdueCount)

	// Recording a payment invalidates the cached report.
	_, err = svc.RecordPayment(&models.Payment{ClientID: client.ID, Amount: 200})
	require.NoError(t, err)
	fresh, err := svc.ClientRisk(client.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Metrics.OverdueCount)
}

func TestRecordPaymentValidatesAndNotifies(t *testing.T) {
	svc, store, notifier, _ := newTestService(t)
	client := &models.Client{Name: "Mehmet Kaya"}
	require.NoError(t, store.CreateClient(client))

	_, err := svc.RecordPayment(&models.Payment{ClientID: client.ID, Amount: 0})
	assert.Error(t, err)

	_, err = svc.RecordPayment(&models.Payment{ClientID: 999, Amount: 100})
	assert.Error(t, err)

	p, err := svc.RecordPayment(&models.Payment{ClientID: client.ID, Amount: 150.555})
	require.NoError(t, err)
	assert.Equal(t, 150.56, p.Amount)
	assert.False(t, p.PaidAt.IsZero())

	require.Len(t, notifier.msgs, 1)
	assert.Contains(t, notifier.msgs[0], "Mehmet") // masked name, not the full one
	assert.NotContains(t, notifier.msgs[0], "Kaya")
}

func TestSuggestPlanForClient(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	client := &models.Client{Name: "Ali Veli", Stage: 1}
	require.NoError(t, store.CreateClient(client))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateSchedule(&models.Schedule{
			ClientID:  client.ID,
			AmountDue: 500,
			DueDate:   time.Now().AddDate(0, 0, -30*(i+1)),
		}))
	}

	s, err := svc.SuggestPlanForClient(client.ID, 1200)
	require.NoError(t, err)
	assert.Equal(t, models.ModeFullUpfront, s.Mode, "three overdue installments force full payment")

	sum := s.DepositAmount
	for _, inst := range s.Installments {
		sum += inst.Amount
	}
	assert.InDelta(t, 1200, sum, 0.011)

	_, err = svc.SuggestPlanForClient(client.ID, 0)
	assert.Error(t, err)
}

func TestDraftForClientMasksAndLogs(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	client := &models.Client{Name: "Ahmet Yılmaz", Phone: "+905321112233"}
	require.NoError(t, store.CreateClient(client))
	require.NoError(t, store.CreateSchedule(&models.Schedule{
		ClientID:  client.ID,
		AmountDue: 800,
		DueDate:   time.Now().AddDate(0, 0, -5),
	}))

	d, err := svc.DraftForClient(client.ID, draft.ScenarioOverdue, draft.ToneFirm, draft.ChannelWhatsApp)
	require.NoError(t, err)
	assert.Contains(t, d.Text, "Ahmet Y.")
	assert.NotContains(t, d.Text, "Yılmaz")
	assert.Contains(t, d.MaskedFields, "phone")

	require.Len(t, store.outreach, 1)
	assert.Equal(t, fmt.Sprintf("%d:overdue:firm:whatsapp", client.ID), store.outreach[0])
}

func TestRunDailyReminders(t *testing.T) {
	svc, store, notifier, digest := newTestService(t)
	overdueClient := &models.Client{Name: "Ayşe Demir"}
	require.NoError(t, store.CreateClient(overdueClient))
	require.NoError(t, store.CreateSchedule(&models.Schedule{
		ClientID:  overdueClient.ID,
		AmountDue: 400,
		DueDate:   time.Now().AddDate(0, 0, -3),
	}))
	paidClient := &models.Client{Name: "Mehmet Kaya"}
	require.NoError(t, store.CreateClient(paidClient))
	require.NoError(t, store.CreateSchedule(&models.Schedule{
		ClientID:  paidClient.ID,
		AmountDue: 300,
		IsPaid:    true,
		DueDate:   time.Now().AddDate(0, 0, -3),
	}))

	require.NoError(t, svc.RunDailyReminders(time.Now()))

	require.Len(t, notifier.msgs, 1)
	assert.Contains(t, notifier.msgs[0], "Ayşe")
	assert.Contains(t, notifier.msgs[0], "gecikmiş")
	require.Len(t, digest.sent, 1)
	assert.Len(t, digest.sent[0], 1)
}
