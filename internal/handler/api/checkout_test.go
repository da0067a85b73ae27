//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"mathsandmelody-api/internal/domain/user"
	"mathsandmelody-api/internal/handler/api"
	resdto "mathsandmelody-api/internal/handler/dto/response"
	"mathsandmelody-api/internal/usecase/commands"
	"mathsandmelody-api/tests/common/httptest"
	"mathsandmelody-api/tests/common/testutil"
	commandsmock "mathsandmelody-api/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CheckoutHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCheckoutCommands
	handler      *api.CheckoutHandler

	actorID uuid.UUID
	actor   user.Identity
}

func (s *CheckoutHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCheckoutCommands(s.mockCtrl)
	s.handler = api.NewCheckoutHandler(s.mockCommands)

	s.actorID = uuid.New()
	s.actor = user.Identity{UserID: s.actorID, Role: user.RoleCustomer}

	s.router.POST("/checkout/sessions", func(c *gin.Context) {
		c.Set("user_id", s.actorID)
		c.Set("user_role", user.RoleCustomer)
		s.handler.CreateSession(c)
	})
}

func (s *CheckoutHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCheckoutHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckoutHandlerTestSuite))
}

func (s *CheckoutHandlerTestSuite) TestCreateSession() {
	url := "/checkout/sessions"
	bookingID := uuid.New()
	reqBody := map[string]any{"booking_id": bookingID.String()}

	s.Run("success: returns 201 Created with redirect URL", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().
			CreateSession(gomock.Any(), s.actor, commands.CreateSessionParams{BookingID: bookingID}).
			Return(&commands.CheckoutSession{
				SessionID:   "cs_test_abc123",
				RedirectURL: "https://pay.example.com/cs_test_abc123",
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.CheckoutSessionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal("cs_test_abc123", response.SessionID)
		s.Equal("https://pay.example.com/cs_test_abc123", response.RedirectURL)
	})

	s.Run("success: currency override is forwarded", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().
			CreateSession(gomock.Any(), s.actor, commands.CreateSessionParams{BookingID: bookingID, Currency: "usd"}).
			Return(&commands.CheckoutSession{SessionID: "cs_1", RedirectURL: "https://pay.example.com/cs_1"}, nil).Times(1)

		body := testutil.DtoMap(s.T(), reqBody, testutil.Field("currency", "usd"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	})

	s.Run("error: 400 Bad Request when booking_id is missing", func() {
		s.SetupTest()
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: command failures map to HTTP statuses", func() {
		cases := []struct {
			name       string
			err        error
			expectCode int
			expectMsg  string
		}{
			{name: "unknown booking", err: commands.ErrBookingNotFound, expectCode: http.StatusNotFound, expectMsg: "Booking not found"},
			{name: "another customer's booking", err: commands.ErrCheckoutForbidden, expectCode: http.StatusForbidden, expectMsg: "not allowed"},
			{name: "booking not pending", err: commands.ErrBookingNotPayable, expectCode: http.StatusUnprocessableEntity, expectMsg: "not payable"},
			{name: "unsupported currency", err: commands.ErrCurrencyUnsupported, expectCode: http.StatusBadRequest, expectMsg: "Unsupported currency"},
			{name: "provider down", err: commands.ErrPaymentProvider, expectCode: http.StatusBadGateway, expectMsg: "unavailable"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.SetupTest()
				s.mockCommands.EXPECT().
					CreateSession(gomock.Any(), s.actor, gomock.Any()).
					Return(nil, tc.err).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectMsg)
			})
		}
	})
}
