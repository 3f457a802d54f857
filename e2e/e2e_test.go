package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MichalMitros/flyer-shopper/e2e/helpers"
	"github.com/MichalMitros/flyer-shopper/internal/apiclient"
	"github.com/MichalMitros/flyer-shopper/internal/catalog"
	"github.com/MichalMitros/flyer-shopper/internal/filter"
	"github.com/MichalMitros/flyer-shopper/internal/handler"
	"github.com/MichalMitros/flyer-shopper/internal/notify"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/internal/platform/rabbitmq"
	"github.com/MichalMitros/flyer-shopper/internal/shoppinglist"
	"github.com/MichalMitros/flyer-shopper/pkg/v1/events"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	userAgent = "flyer-shopper-e2e-test/0.0.1"
	exchange  = "flyer-shopper-e2e"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	os.Exit(m.Run())
}

func TestE2E(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}

type E2ETestSuite struct {
	suite.Suite
	backend *helpers.Backend
	client  *apiclient.Client
	list    *shoppinglist.List
	session *catalog.Session
	notices *bytes.Buffer
	logs    *syncBuffer
	logger  zerolog.Logger
}

func (s *E2ETestSuite) SetupTest() {
	cat := helpers.GenerateCatalog(s.T(), 3, "tnt_supermarket", "nofrills", "galleria")

	backend, httpSrv := helpers.PrepareBackend(s.T(), cat)
	s.backend = backend

	s.logs = &syncBuffer{}
	s.logger = zerolog.New(s.logs).With().Timestamp().Logger()
	s.notices = &bytes.Buffer{}
	notifier := notify.NewConsole(s.notices, &s.logger)

	s.client = apiclient.NewClient(&http.Client{Timeout: 5 * time.Second}, httpSrv.URL, userAgent, apiclient.WithLogger(&s.logger))
	s.list = shoppinglist.NewList(s.client, notifier, shoppinglist.WithLogger(&s.logger))
	s.session = catalog.NewSession(s.client, notifier, catalog.WithLogger(&s.logger))
}

func (s *E2ETestSuite) TestShoppingFlow() {
	ctx := context.Background()

	s.Require().NoError(s.session.Refresh(ctx), "should fetch catalog")
	s.Require().NoError(s.list.Load(ctx), "should load empty list")
	s.Equal([]string{"tnt_supermarket", "nofrills", "galleria"}, s.session.Stores(), "should keep backend store order")
	s.Equal("tnt_supermarket", s.session.ActiveStore(), "should select first store")

	apples := s.session.View()[0]
	milk := s.session.StoreItems("nofrills")[0]

	s.Require().NoError(s.list.Add(ctx, apples))
	s.Require().NoError(s.list.Add(ctx, milk))
	s.Require().NoError(s.list.Add(ctx, apples), "should increment listed item")
	helpers.RequireEntryIDs(s.T(), []string{apples.Slug(), milk.Slug()}, s.backend.List())
	s.Equal(3, s.list.TotalItemCount(), "should count quantities")

	s.Require().NoError(s.list.IncrementQuantity(ctx, milk.Slug(), 500))
	entry, ok := s.list.Find(milk.Slug())
	s.Require().True(ok)
	s.Equal(shoppinglist.DefaultMaxQuantity, entry.Quantity, "should clamp to max quantity")

	s.Require().NoError(s.list.IncrementQuantity(ctx, milk.Slug(), -500))
	entry, _ = s.list.Find(milk.Slug())
	s.Equal(1, entry.Quantity, "should clamp to 1")

	groups := s.list.GroupByStore()
	s.Require().Len(groups, 2)
	s.Equal("tnt_supermarket", groups[0].Store)
	s.Equal("nofrills", groups[1].Store)

	text := s.list.ExportAsText()
	s.True(strings.HasPrefix(text, "Your Shopping List\n\n--- TNT SUPERMARKET ---\n"), "should start with first store")
	s.Contains(text, "--- NOFRILLS ---")
	s.Contains(text, "Total items: 3")

	qr, err := s.client.GenerateQR(ctx, text)
	s.Require().NoError(err)
	mediaType, png, err := apiclient.DecodeDataURI(qr)
	s.Require().NoError(err)
	s.Equal("image/png", mediaType)
	s.Equal(helpers.PNG, png, "should decode QR image")
	s.Equal(text, s.backend.QRContent(), "should send exported list")

	s.Require().NoError(s.list.Remove(ctx, apples.Slug()))
	helpers.RequireEntryIDs(s.T(), []string{milk.Slug()}, s.list.Entries())
	helpers.RequireEntryIDs(s.T(), []string{milk.Slug()}, s.backend.List())
}

func (s *E2ETestSuite) TestRollbackOnFailure() {
	ctx := context.Background()
	s.Require().NoError(s.session.Refresh(ctx))
	item := s.session.View()[0]
	s.Require().NoError(s.list.Load(ctx))

	s.backend.FailNext(http.MethodPost, "/api/shopping-list", 1)
	err := s.list.Add(ctx, item)

	s.Require().ErrorIs(err, apiclient.ErrStatusNotOK, "should return status error")
	s.Empty(s.list.Entries(), "should roll back optimistic add")
	s.Contains(s.notices.String(), "error: Failed to add item to shopping list. Please try again.")

	s.Require().NoError(s.list.Add(ctx, item), "should add after backend recovers")
	s.backend.FailNext(http.MethodDelete, "/api/shopping-list", 1)
	s.Require().ErrorIs(s.list.Remove(ctx, item.Slug()), apiclient.ErrStatusNotOK)
	helpers.RequireEntryIDs(s.T(), []string{item.Slug()}, s.list.Entries())
}

func (s *E2ETestSuite) TestClear() {
	ctx := context.Background()
	s.backend.SetList([]models.Entry{
		{FlyerItem: models.FlyerItem{Name: "Milk", Store: "nofrills", Price: "$4.99"}, ID: "nofrills-milk", Quantity: 2},
		{FlyerItem: models.FlyerItem{Name: "Tofu", Store: "galleria", Price: "$1.99"}, Quantity: 0},
	})
	s.Require().NoError(s.list.Load(ctx))
	helpers.RequireEntryIDs(s.T(), []string{"nofrills-milk", "galleria-tofu"}, s.list.Entries())
	s.Equal(3, s.list.TotalItemCount(), "should normalize zero quantity")

	s.Require().NoError(s.list.Clear(ctx, func(string) bool { return false }))
	s.Len(s.backend.List(), 2, "shouldn't clear without confirmation")

	s.Require().NoError(s.list.Clear(ctx, func(prompt string) bool { return prompt == shoppinglist.ClearPrompt }))
	s.Empty(s.backend.List())
	s.Empty(s.list.Entries())
	s.Equal("Your Shopping List\n\nYour shopping list is empty.\n", s.list.ExportAsText())
}

func (s *E2ETestSuite) TestSearch() {
	ctx := context.Background()
	s.Require().NoError(s.session.Refresh(ctx))
	target := s.session.StoreItems("galleria")[2]

	s.session.SetSearch(ctx, target.Name)
	s.Require().True(s.session.Flush(), "should have scheduled refresh")

	s.Equal([]string{"tnt_supermarket", "nofrills", "galleria"}, s.session.Stores(), "should keep stores without matches")
	s.Equal("tnt_supermarket", s.session.ActiveStore(), "should keep listed active store")
	s.Empty(s.session.View(), "should show no items of store without matches")
	s.Require().NoError(s.session.SelectStore("galleria"))
	s.Require().Len(s.session.View(), 1)
	s.Equal(target.Slug(), s.session.View()[0].Slug())

	s.session.UpdateFilter(ctx, func(state *filter.State) { *state = filter.Default() })
	s.Require().True(s.session.Flush())
	s.Len(s.session.StoreItems("galleria"), 3, "should list all items after reset")
}

func (s *E2ETestSuite) TestDataUpdatedEvent() {
	rmqURL := os.Getenv("RABBITMQ_URL")
	if rmqURL == "" {
		s.T().Skip("please provide RabbitMQ URL via RABBITMQ_URL environment variable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connection, err := amqp.Dial(rmqURL)
	s.Require().NoError(err, "can't open RabbitMQ connection")
	defer connection.Close()

	mq, err := rabbitmq.NewRabbitMQ(connection, exchange)
	s.Require().NoError(err)
	routingKey := fmt.Sprintf("flyers.e2e.%d", rand.Int63n(100000))
	queue, err := mq.BindQueue("", routingKey)
	s.Require().NoError(err)

	s.Require().NoError(s.session.Refresh(ctx))
	s.Len(s.session.Stores(), 3)

	received := make(chan events.DataUpdated, 1)
	han := handler.NewHandler(mq, s.session, &s.logger, func(e events.DataUpdated) { received <- e })
	done, err := han.Start(ctx, queue)
	s.Require().NoError(err)

	s.backend.SetCatalog(helpers.GenerateCatalog(s.T(), 1, "foodbasics"))
	updated := s.backend.LastUpdated()
	publisher, err := events.NewDataUpdatedRabbitMQPublisher(mq, routingKey)
	s.Require().NoError(err)
	s.Require().NoError(publisher.SendDataUpdated(ctx, updated.LastUpdated, updated.HumanReadable))

	select {
	case event := <-received:
		s.Equal(updated.LastUpdated, event.LastUpdated)
	case <-time.After(10 * time.Second):
		s.FailNow("data updated event not handled")
	}

	s.Equal([]string{"foodbasics"}, s.session.Stores(), "should refresh catalog")
	s.Equal("foodbasics", s.session.ActiveStore())
	assertLogsMessages(s.T(), []string{"refreshing catalog after data update"}, s.logs.Lines())

	cancel()
	<-done
}

// assertLogsMessages is helper function which unmarshals log json and asserts messages are logged in order.
func assertLogsMessages(t *testing.T, expected []string, actual []string) {
	t.Helper()

	messages := make([]string, 0, len(actual))
	for _, line := range actual {
		var log struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(line), &log); err != nil {
			require.FailNow(t, "can't unmarshal json log", err)
		}
		messages = append(messages, log.Message)
	}

	assert.Subset(t, messages, expected, "should log messages")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

// Lines returns written lines without the trailing empty one.
func (b *syncBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}
