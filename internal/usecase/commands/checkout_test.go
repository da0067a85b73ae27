//go:build unit

package commands_test

import (
	"context"
	"testing"

	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/infra/payment"
	"mathsandmelody-api/internal/pkg/config"
	"mathsandmelody-api/internal/usecase/commands"
	"mathsandmelody-api/tests/common/builder"
	commandsmock "mathsandmelody-api/tests/mock/commands"
	paymentmock "mathsandmelody-api/tests/mock/payment"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CheckoutCommandsTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	bookings *commandsmock.MockBookingRepository
	provider *paymentmock.MockProvider
	cfg      config.PaymentConfig
	commands commands.CheckoutCommands
}

func (s *CheckoutCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.bookings = commandsmock.NewMockBookingRepository(s.ctrl)
	s.provider = paymentmock.NewMockProvider(s.ctrl)
	s.cfg = config.NewTestConfig().Payment
	s.commands = commands.NewCheckoutCommands(s.bookings, s.provider, s.cfg)
}

func (s *CheckoutCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestCheckoutCommandsSuite(t *testing.T) {
	suite.Run(t, new(CheckoutCommandsTestSuite))
}

func (s *CheckoutCommandsTestSuite) TestCreateSession() {
	ctx := context.Background()
	b := builder.NewBookingBuilder()
	owner := builder.NewUserBuilder().WithID(b.UserID).BuildIdentity()
	snap := b.BuildSnapshot()
	params := commands.CreateSessionParams{BookingID: snap.ID}

	s.Run("success: owner starts a session correlated to the booking", func() {
		s.SetupTest()
		s.bookings.EXPECT().FindSnapshotByID(gomock.Any(), snap.ID).Return(snap, nil)
		s.provider.EXPECT().
			CreateCheckoutSession(gomock.Any(), payment.CreateSessionRequest{
				BookingID:   snap.ID.String(),
				AmountCents: snap.PriceCents,
				Currency:    s.cfg.Currency,
				SuccessURL:  s.cfg.SuccessURL,
				CancelURL:   s.cfg.CancelURL,
			}).
			Return(payment.Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"}, nil)

		session, err := s.commands.CreateSession(ctx, owner, params)

		s.Require().NoError(err)
		s.Equal("cs_1", session.SessionID)
		s.Equal("https://pay.example.com/cs_1", session.RedirectURL)
	})

	s.Run("success: admin may start a session for another user's booking", func() {
		s.SetupTest()
		admin := builder.NewUserBuilder().AsAdmin().BuildIdentity()

		s.bookings.EXPECT().FindSnapshotByID(gomock.Any(), snap.ID).Return(snap, nil)
		s.provider.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
			Return(payment.Session{ID: "cs_2", URL: "https://pay.example.com/cs_2"}, nil)

		_, err := s.commands.CreateSession(ctx, admin, params)
		s.Require().NoError(err)
	})

	s.Run("error: another customer's booking is forbidden", func() {
		s.SetupTest()
		stranger := builder.NewUserBuilder().BuildIdentity()

		s.bookings.EXPECT().FindSnapshotByID(gomock.Any(), snap.ID).Return(snap, nil)

		_, err := s.commands.CreateSession(ctx, stranger, params)
		s.Require().ErrorIs(err, commands.ErrCheckoutForbidden)
	})

	s.Run("error: unknown booking", func() {
		s.SetupTest()
		notFound := infra.WrapRepoErr("booking not found", pgx.ErrNoRows, infra.KindNotFound)
		s.bookings.EXPECT().FindSnapshotByID(gomock.Any(), snap.ID).Return(nil, notFound)

		_, err := s.commands.CreateSession(ctx, owner, params)
		s.Require().ErrorIs(err, commands.ErrBookingNotFound)
	})

	s.Run("error: non-pending bookings are not payable", func() {
		s.SetupTest()
		for _, status := range []string{"confirmed", "cancelled", "completed"} {
			confirmed := b.WithStatus(status).BuildSnapshot()
			s.bookings.EXPECT().FindSnapshotByID(gomock.Any(), snap.ID).Return(confirmed, nil)

			_, err := s.commands.CreateSession(ctx, owner, params)
			s.Require().ErrorIs(err, commands.ErrBookingNotPayable, status)
		}
		b.WithStatus("pending")
	})

	s.Run("error: zero-amount bookings are not payable", func() {
		s.SetupTest()
		free := builder.NewBookingBuilder().WithID(snap.ID).WithUserID(owner.UserID).WithPriceCents(0).BuildSnapshot()
		s.bookings.EXPECT().FindSnapshotByID(gomock.Any(), snap.ID).Return(free, nil)

		_, err := s.commands.CreateSession(ctx, owner, params)
		s.Require().ErrorIs(err, commands.ErrBookingNotPayable)
	})

	s.Run("error: currency other than the configured one", func() {
		s.SetupTest()
		s.bookings.EXPECT().FindSnapshotByID(gomock.Any(), snap.ID).Return(snap, nil)

		_, err := s.commands.CreateSession(ctx, owner, commands.CreateSessionParams{
			BookingID: snap.ID,
			Currency:  "eur",
		})
		s.Require().ErrorIs(err, commands.ErrCurrencyUnsupported)
	})

	s.Run("error: provider failure", func() {
		s.SetupTest()
		s.bookings.EXPECT().FindSnapshotByID(gomock.Any(), snap.ID).Return(snap, nil)
		s.provider.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
			Return(payment.Session{}, payment.ErrProviderFailure)

		_, err := s.commands.CreateSession(ctx, owner, params)
		s.Require().ErrorIs(err, commands.ErrPaymentProvider)
	})
}
