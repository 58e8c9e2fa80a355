package order_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/MikeMC777/evercart/internal/order"
)

type pgRepoSuite struct {
	suite.Suite

	container testcontainers.Container
	pool      *pgxpool.Pool
	repo      *order.PGRepo
	svc       *order.Service
}

// entry point to run the tests in the suite
func TestPGRepoSuite(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(pgRepoSuite))
}

// before all tests in the suite
func (s *pgRepoSuite) SetupSuite() {
	ctx := s.T().Context()

	var (
		connStr string
		err     error
	)
	s.container, connStr, err = startPostgres(ctx)
	s.Require().NoError(err)

	s.pool, err = pgxpool.New(ctx, connStr)
	s.Require().NoError(err)

	s.Require().NoError(order.Migrate(ctx, s.pool))
	// applying the schema twice is harmless
	s.Require().NoError(order.Migrate(ctx, s.pool))

	s.repo = order.NewPGRepo(s.pool)
	s.svc = order.NewService(s.repo, "INR")
}

// after all tests in the suite
func (s *pgRepoSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *pgRepoSuite) TearDownTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE orders CASCADE`)
	s.NoError(err)
}

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	c, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("evercart"),
		postgres.WithUsername("evercart"),
		postgres.WithPassword("evercart"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", err
	}
	connStr, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return c, "", err
	}
	return c, connStr, nil
}

func (s *pgRepoSuite) TestCreateAndGet() {
	ctx := s.T().Context()

	in := randomInput(order.MethodOnline)
	created, err := s.svc.Create(ctx, in)
	s.Require().NoError(err)

	byID, err := s.repo.GetByID(ctx, created.ID)
	s.Require().NoError(err)
	byNumber, err := s.repo.GetByNumber(ctx, created.Number)
	s.Require().NoError(err)

	opts := cmp.Options{decimalEqual, cmpopts.EquateApproxTime(time.Millisecond)}
	if diff := cmp.Diff(*created, *byID, opts); diff != "" {
		s.Failf("stored order differs", "(-want +got):\n%s", diff)
	}
	s.Empty(cmp.Diff(*byID, *byNumber, opts))
	s.Len(byID.Items, len(in.Items))
	for i := range in.Items {
		s.Equal(in.Items[i].ProductID, byID.Items[i].ProductID, "items keep their order")
	}
}

func (s *pgRepoSuite) TestGetUnknown() {
	ctx := s.T().Context()

	_, err := s.repo.GetByID(ctx, uuid.NewString())
	s.ErrorIs(err, order.ErrNotFound)
	_, err = s.repo.GetByNumber(ctx, "EVR-unknown")
	s.ErrorIs(err, order.ErrNotFound)
}

func (s *pgRepoSuite) TestListByOwner() {
	ctx := s.T().Context()
	owner := gofakeit.UUID()

	for range 3 {
		in := randomInput(order.MethodCOD)
		in.OwnerID = owner
		_, err := s.svc.Create(ctx, in)
		s.Require().NoError(err)
	}
	_, err := s.svc.Create(ctx, randomInput(order.MethodCOD))
	s.Require().NoError(err)

	got, err := s.repo.ListByOwner(ctx, owner, 10, 0)
	s.Require().NoError(err)
	s.Len(got, 3)
	for _, o := range got {
		s.Equal(owner, o.OwnerID)
		s.NotEmpty(o.Items)
	}

	all, err := s.repo.List(ctx, 2, 0)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *pgRepoSuite) TestPaymentTransitionsAreConditional() {
	ctx := s.T().Context()

	o, err := s.svc.Create(ctx, randomInput(order.MethodOnline))
	s.Require().NoError(err)

	applied, err := s.repo.SetPaymentIntent(ctx, o.ID, order.Intent{RemoteOrderID: "order_abc", Amount: o.Total, Currency: "INR"})
	s.Require().NoError(err)
	s.True(applied)

	applied, err = s.repo.CompletePayment(ctx, o.ID, order.Completion{RemoteOrderID: "order_other", RemotePaymentID: "pay_1", Amount: o.Total, Currency: "INR", At: time.Now()})
	s.Require().NoError(err)
	s.False(applied, "remote order id must match")

	var (
		wins atomic.Int32
		wg   sync.WaitGroup
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.repo.CompletePayment(ctx, o.ID, order.Completion{
				RemoteOrderID: "order_abc", RemotePaymentID: "pay_xyz", Amount: o.Total, Currency: "INR", At: time.Now(),
			})
			s.NoError(err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.EqualValues(1, wins.Load())

	got, err := s.repo.GetByID(ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(order.PaymentCompleted, got.Payment.Status)
	s.Equal(order.StatusProcessing, got.Status)
	s.Equal("pay_xyz", got.Payment.RemotePaymentID)
	s.True(got.Payment.Amount.Valid && got.Payment.Amount.Decimal.Equal(o.Total))
	s.NotNil(got.Payment.CompletedAt)

	applied, err = s.repo.SetPaymentIntent(ctx, o.ID, order.Intent{RemoteOrderID: "order_new", Amount: o.Total, Currency: "INR"})
	s.Require().NoError(err)
	s.False(applied, "a paid order takes no new intent")

	applied, err = s.repo.FailPayment(ctx, o.ID, "order_abc", "late decline", time.Now())
	s.Require().NoError(err)
	s.False(applied, "a paid order cannot fail")
}

func (s *pgRepoSuite) TestFailAndRetry() {
	ctx := s.T().Context()

	o, err := s.svc.Create(ctx, randomInput(order.MethodOnline))
	s.Require().NoError(err)
	_, err = s.repo.SetPaymentIntent(ctx, o.ID, order.Intent{RemoteOrderID: "order_1", Amount: o.Total, Currency: "INR"})
	s.Require().NoError(err)

	applied, err := s.repo.FailPayment(ctx, o.ID, "order_1", "card declined", time.Now())
	s.Require().NoError(err)
	s.True(applied)

	got, err := s.repo.GetByID(ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(order.PaymentFailed, got.Payment.Status)
	s.Equal("card declined", got.Payment.FailureReason)
	s.Equal(order.StatusPending, got.Status)

	applied, err = s.repo.SetPaymentIntent(ctx, o.ID, order.Intent{RemoteOrderID: "order_2", Amount: o.Total, Currency: "INR"})
	s.Require().NoError(err)
	s.True(applied)

	got, err = s.repo.GetByID(ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(order.PaymentPending, got.Payment.Status)
	s.Equal("order_2", got.Payment.RemoteOrderID)
	s.Empty(got.Payment.FailureReason)
}

func (s *pgRepoSuite) TestUpdateStatus() {
	ctx := s.T().Context()

	o, err := s.svc.Create(ctx, randomInput(order.MethodCOD))
	s.Require().NoError(err)

	s.ErrorIs(s.repo.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusShipped), order.ErrConflict)
	s.ErrorIs(s.repo.UpdateStatus(ctx, uuid.NewString(), order.StatusPending, order.StatusShipped), order.ErrNotFound)

	got, err := s.svc.UpdateStatus(ctx, o.Number, string(order.StatusShipped))
	s.Require().NoError(err)
	s.Equal(order.StatusShipped, got.Status)
}

func (s *pgRepoSuite) TestCancelStalePayments() {
	ctx := s.T().Context()

	stale, err := s.svc.Create(ctx, randomInput(order.MethodOnline))
	s.Require().NoError(err)
	cod, err := s.svc.Create(ctx, randomInput(order.MethodCOD))
	s.Require().NoError(err)

	at := time.Now().UTC()
	ids, err := s.repo.CancelStalePayments(ctx, at.Add(time.Minute), at)
	s.Require().NoError(err)
	s.Equal([]string{stale.ID}, ids)

	got, err := s.repo.GetByID(ctx, stale.ID)
	s.Require().NoError(err)
	s.Equal(order.StatusCancelled, got.Status)
	s.Equal(order.PaymentCancelled, got.Payment.Status)

	got, err = s.repo.GetByID(ctx, cod.ID)
	s.Require().NoError(err)
	s.Equal(order.StatusConfirmed, got.Status)
}
