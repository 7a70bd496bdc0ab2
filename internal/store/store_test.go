package store

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/Rakesh-6305/project-store/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Migrate())

	var n int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestProjectLifecycle(t *testing.T) {
	s := setupTestStore(t)

	p := &models.Project{
		Title:        "Smart Attendance",
		Price:        1500,
		ProjectFile:  "uploads/abc_attendance.zip",
		Technologies: "Go, SQLite",
		Photos:       []string{"uploads/a.jpg", "uploads/b.jpg"},
		Videos:       []string{"uploads/demo.mp4"},
	}
	id, err := s.CreateProject(p)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	got, err := s.GetProjectByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Smart Attendance", got.Title)
	assert.Equal(t, int64(1500), got.Price)
	assert.Equal(t, []string{"uploads/a.jpg", "uploads/b.jpg"}, got.Photos)
	assert.Equal(t, []string{"uploads/demo.mp4"}, got.Videos)

	list, err := s.ListProjects()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"uploads/a.jpg", "uploads/b.jpg"}, list[0].Photos)

	require.NoError(t, s.DeleteProject(id))
	_, err = s.GetProjectByID(id)
	assert.ErrorIs(t, err, ErrNotFound)

	var orphans int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM project_photos WHERE project_id = ?`, id).Scan(&orphans))
	assert.Zero(t, orphans)

	assert.ErrorIs(t, s.DeleteProject(id), ErrNotFound)
}

func TestSubmitOrderPaymentKeepsOneOrderPerStudent(t *testing.T) {
	s := setupTestStore(t)
	id, err := s.CreateProject(&models.Project{Title: "Chatbot", Price: 900})
	require.NoError(t, err)

	require.NoError(t, s.SubmitOrderPayment(id, "asha", "TXN1"))
	o, err := s.GetOrderFor(id, "asha")
	require.NoError(t, err)
	require.NoError(t, s.ConfirmOrder(o.ID))

	// resubmitting resets to Pending on the same row
	require.NoError(t, s.SubmitOrderPayment(id, "asha", "TXN2"))
	orders, err := s.ListOrdersByStudent("asha")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
	assert.Equal(t, models.OrderPending, orders[0].Status)
	assert.Equal(t, "TXN2", orders[0].TransactionID)
	assert.Equal(t, "Chatbot", orders[0].ProjectTitle)
	assert.Equal(t, int64(900), orders[0].ProjectPrice)
}

func TestSubmitOrderPaymentConcurrent(t *testing.T) {
	s := setupTestStore(t)
	id, err := s.CreateProject(&models.Project{Title: "Race", Price: 10})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.SubmitOrderPayment(id, "ravi", "T"))
		}()
	}
	wg.Wait()

	var n int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM orders WHERE project_id = ? AND student_username = ?`, id, "ravi").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOrdersSurviveProjectDeletion(t *testing.T) {
	s := setupTestStore(t)
	id, err := s.CreateProject(&models.Project{Title: "Gone", Price: 10})
	require.NoError(t, err)
	require.NoError(t, s.SubmitOrderPayment(id, "asha", "T"))
	require.NoError(t, s.DeleteProject(id))

	orders, err := s.ListOrders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Deleted project", orders[0].ProjectTitle)
}

func TestConfirmMissingOrder(t *testing.T) {
	s := setupTestStore(t)
	assert.ErrorIs(t, s.ConfirmOrder(42), ErrNotFound)
}

func TestRequestWorkflow(t *testing.T) {
	s := setupTestStore(t)

	req := &models.ProjectRequest{
		StudentUsername: "asha",
		Title:           "IoT Garden",
		Description:     "Soil sensors",
		Photos:          []string{"uploads/sketch.jpg"},
	}
	id, err := s.CreateRequest(req)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRequested, req.Status)

	// no price yet
	assert.ErrorIs(t, s.SubmitRequestPayment(id, "TXN"), ErrInvalidTransition)

	require.NoError(t, s.SetRequestPrice(id, 2500))
	got, err := s.GetRequest(id)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPriceSet, got.Status)
	assert.Equal(t, int64(2500), got.Price)
	assert.True(t, got.CanPay())

	require.NoError(t, s.SubmitRequestPayment(id, "TXN-9"))
	got, err = s.GetRequest(id)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, got.Status)
	assert.Equal(t, "TXN-9", got.TransactionID)

	assert.ErrorIs(t, s.CompleteRequest(id, ""), ErrInvalidTransition)
	require.NoError(t, s.CompleteRequest(id, "uploads/final.zip"))
	got, err = s.GetRequest(id)
	require.NoError(t, err)
	assert.True(t, got.Downloadable())

	assert.ErrorIs(t, s.SetRequestPrice(id, 10), ErrInvalidTransition)
	assert.ErrorIs(t, s.SetRequestPrice(999, 10), ErrNotFound)

	all, err := s.ListAllRequests()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"uploads/sketch.jpg"}, all[0].Photos)
	assert.Empty(t, all[0].Videos)

	mine, err := s.ListRequestsByStudent("asha")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	others, err := s.ListRequestsByStudent("ravi")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestMessagesAreReturnedInOrder(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.AddMessage(RequestThread, 1, "asha", "hello"))
	require.NoError(t, s.AddMessage(RequestThread, 1, models.AdminSender, "hi, what do you need?"))
	require.NoError(t, s.AddMessage(RequestThread, 2, "ravi", "other thread"))
	require.NoError(t, s.AddMessage(OrderThread, 1, "asha", "paid"))

	msgs, err := s.Messages(RequestThread, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Message)
	assert.Equal(t, models.AdminSender, msgs[1].Sender)
	assert.Equal(t, int64(1), msgs[0].ThreadID)
	assert.False(t, msgs[0].Timestamp.IsZero())

	orderMsgs, err := s.Messages(OrderThread, 1)
	require.NoError(t, err)
	require.Len(t, orderMsgs, 1)

	empty, err := s.Messages(OrderThread, 7)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestAccounts(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.CreateAccount(StudentAccounts, "asha", "hash"))
	assert.ErrorIs(t, s.CreateAccount(StudentAccounts, "asha", "other"), ErrDuplicate)

	u, err := s.GetAccount(StudentAccounts, "asha")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "hash", u.Password)

	// students are not admins
	admin, err := s.GetAccount(AdminAccounts, "asha")
	require.NoError(t, err)
	assert.Nil(t, admin)

	require.NoError(t, s.SetPassword(StudentAccounts, "asha", "new"))
	u, err = s.GetAccount(StudentAccounts, "asha")
	require.NoError(t, err)
	assert.Equal(t, "new", u.Password)
	assert.ErrorIs(t, s.SetPassword(AdminAccounts, "nobody", "x"), ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	s := setupTestStore(t)
	p1, err := s.CreateProject(&models.Project{Title: "A", Price: 1})
	require.NoError(t, err)
	_, err = s.CreateProject(&models.Project{Title: "B", Price: 2})
	require.NoError(t, err)
	require.NoError(t, s.SubmitOrderPayment(p1, "asha", "T1"))
	require.NoError(t, s.SubmitOrderPayment(p1, "ravi", "T2"))
	o, err := s.GetOrderFor(p1, "ravi")
	require.NoError(t, err)
	require.NoError(t, s.ConfirmOrder(o.ID))
	_, err = s.CreateRequest(&models.ProjectRequest{StudentUsername: "asha", Title: "X"})
	require.NoError(t, err)

	stats, err := s.GetDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProjects)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.OrdersByStatus[models.OrderPending])
	assert.Equal(t, 1, stats.OrdersByStatus[models.OrderConfirmed])
	assert.Equal(t, 1, stats.RequestsByStatus[models.RequestRequested])
	assert.Equal(t, 1, stats.TotalRequests)
}
