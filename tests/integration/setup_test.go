package integration

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/formgate/formgate-api/tests/testutil"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()
	os.Exit(code)
}

// setupTest creates a test database and returns cleanup function
func setupTest(t *testing.T) *testutil.TestDB {
	t.Helper()
	return testutil.SetupTestDB(t)
}

// recordSender stands in for the SMTP transport and records what would
// have gone out.
type recordSender struct {
	mu   sync.Mutex
	err  error
	sent []*models.Message
}

func (s *recordSender) SendMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

// deliveryServices bundles the real services wired over the test database.
type deliveryServices struct {
	keys     *services.APIKeyService
	routes   *services.RouteService
	messages *services.MessageService
	usage    *services.UsageService
	delivery *services.DeliveryService
	sender   *recordSender
}

func newDeliveryServices(t *testing.T, tdb *testutil.TestDB) *deliveryServices {
	t.Helper()
	sender := &recordSender{}
	keys := services.NewAPIKeyService(tdb.DB, "integration-test-secret")
	routes := services.NewRouteService(tdb.DB)
	messages := services.NewMessageService(tdb.DB)
	usage := services.NewUsageService(tdb.DB)
	delivery := services.NewDeliveryService(routes, messages, usage, keys,
		services.NewAttachmentStore(t.TempDir()), sender)

	return &deliveryServices{
		keys:     keys,
		routes:   routes,
		messages: messages,
		usage:    usage,
		delivery: delivery,
		sender:   sender,
	}
}
