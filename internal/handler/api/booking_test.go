//go:build unit

package api_test

import (
	"net/http"
	stdhttptest "net/http/httptest"
	"testing"

	"mathsandmelody-api/internal/domain/booking"
	"mathsandmelody-api/internal/domain/user"
	"mathsandmelody-api/internal/handler/api"
	resdto "mathsandmelody-api/internal/handler/dto/response"
	"mathsandmelody-api/internal/usecase/commands"
	"mathsandmelody-api/internal/usecase/queries"
	"mathsandmelody-api/tests/common/builder"
	"mathsandmelody-api/tests/common/httptest"
	"mathsandmelody-api/tests/common/testutil"
	commandsmock "mathsandmelody-api/tests/mock/commands"
	queriesmock "mathsandmelody-api/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler

	actorID uuid.UUID
	actor   user.Identity
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries)

	s.actorID = uuid.New()
	s.actor = user.Identity{UserID: s.actorID, Role: user.RoleCustomer}

	// Mock middleware behavior: inject the authenticated identity the way
	// AuthMiddleware.RequireAuth does.
	authed := func(next gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set("user_id", s.actorID)
			c.Set("user_role", user.RoleCustomer)
			next(c)
		}
	}

	s.router.POST("/bookings", authed(s.handler.CreateBooking))
	s.router.GET("/bookings", authed(s.handler.ListMyBookings))
	s.router.GET("/bookings/:id", authed(s.handler.GetBooking))
	s.router.GET("/admin/bookings", authed(s.handler.ListBookingsByStatus))
	s.router.POST("/admin/bookings/:id/complete", authed(s.handler.CompleteBooking))
	s.router.DELETE("/admin/bookings/:id", authed(s.handler.DeleteBooking))
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) performCreate(body any, idempotencyKey string) *stdhttptest.ResponseRecorder {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	return httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/bookings", body, "", headers)
}

func (s *BookingHandlerTestSuite) TestCreateBooking() {
	b := builder.NewBookingBuilder().WithUserID(s.actorID)
	reqBody := b.BuildCreateRequestDTO()
	key := uuid.New()

	s.Run("success: returns 201 Created with booking view", func() {
		s.SetupTest()
		view := b.BuildViewQuery()
		s.mockCommands.EXPECT().
			Create(gomock.Any(), s.actor, key, b.BuildCreateParams()).
			Return(view, nil).Times(1)

		rec := s.performCreate(reqBody, key.String())

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(view.ID, response.ID)
		s.Equal("pending", response.Status)
		s.Equal(view.PriceCents, response.PriceCents)
	})

	s.Run("error: 400 Bad Request when Idempotency-Key header is missing", func() {
		s.SetupTest()
		rec := s.performCreate(reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key header is required")
	})

	s.Run("error: 400 Bad Request when Idempotency-Key is not a UUID", func() {
		s.SetupTest()
		rec := s.performCreate(reqBody, "not-a-uuid")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key must be a valid UUID")
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []struct {
			name       string
			mutate     func(m map[string]any)
			expectCode int
		}{
			{name: "missing field: service_id (required)", mutate: testutil.Field("service_id", nil), expectCode: http.StatusBadRequest},
			{name: "missing field: scheduled_at (required)", mutate: testutil.Field("scheduled_at", nil), expectCode: http.StatusBadRequest},
			{name: "duration below minimum (29)", mutate: testutil.Field("duration_minutes", 29), expectCode: http.StatusBadRequest},
			{name: "duration above maximum (481)", mutate: testutil.Field("duration_minutes", 481), expectCode: http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.SetupTest()
				body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := s.performCreate(body, uuid.NewString())
				s.Equal(tc.expectCode, rec.Code, rec.Body.String())
			})
		}
	})

	s.Run("error: command failures map to HTTP statuses", func() {
		cases := []struct {
			name       string
			err        error
			expectCode int
			expectMsg  string
		}{
			{name: "unknown service", err: queries.ErrServiceNotFound, expectCode: http.StatusNotFound, expectMsg: "Service not found"},
			{name: "inactive service", err: commands.ErrServiceUnavailable, expectCode: http.StatusUnprocessableEntity, expectMsg: "not available"},
			{name: "schedule in past", err: commands.ErrScheduleInPast, expectCode: http.StatusBadRequest, expectMsg: "future"},
			{name: "invalid booking data", err: commands.ErrInvalidBookingInput, expectCode: http.StatusUnprocessableEntity, expectMsg: "Invalid booking data"},
			{name: "idempotency key reused", err: commands.ErrIdempotencyKeyReused, expectCode: http.StatusConflict, expectMsg: "already used"},
			{name: "request in progress", err: commands.ErrRequestInProgress, expectCode: http.StatusConflict, expectMsg: "being processed"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.SetupTest()
				s.mockCommands.EXPECT().
					Create(gomock.Any(), s.actor, gomock.Any(), gomock.Any()).
					Return(nil, tc.err).Times(1)
				rec := s.performCreate(reqBody, uuid.NewString())
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectMsg)
			})
		}
	})
}

func (s *BookingHandlerTestSuite) TestGetBooking() {
	b := builder.NewBookingBuilder().WithUserID(s.actorID)

	s.Run("success: returns 200 OK for owner", func() {
		s.SetupTest()
		view := builder.NewBookingBuilder().WithUserID(s.actorID).BuildViewQuery()
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actor, view.ID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+view.ID.String(), nil, "")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(view.ID, response.ID)
		s.Equal(view.UserEmail, response.UserEmail)
	})

	s.Run("error: 400 Bad Request for malformed id", func() {
		s.SetupTest()
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/not-a-uuid", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid booking ID format")
	})

	s.Run("error: 404 Not Found for unknown booking", func() {
		s.SetupTest()
		id := uuid.New()
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actor, id).
			Return(nil, queries.ErrBookingNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+id.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Booking not found")
	})

	s.Run("error: 403 Forbidden for another customer's booking", func() {
		s.SetupTest()
		id := b.BuildViewQuery().ID
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actor, id).
			Return(nil, queries.ErrBookingAccessDenied).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+id.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "not allowed")
	})
}

func (s *BookingHandlerTestSuite) TestListMyBookings() {
	s.Run("success: returns 200 OK with the caller's bookings", func() {
		s.SetupTest()
		items := []*queries.BookingListItem{
			builder.NewBookingBuilder().WithUserID(s.actorID).BuildListItem(),
			builder.NewBookingBuilder().WithUserID(s.actorID).AsConfirmed("pi_123").BuildListItem(),
		}
		s.mockQueries.EXPECT().
			ListByUser(gomock.Any(), s.actorID).
			Return(items, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings", nil, "")

		var response []*resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response, 2)
		s.Equal(items[0].ID, response[0].ID)
		s.Equal("confirmed", response[1].Status)
	})

	s.Run("success: returns 200 OK with empty list", func() {
		s.SetupTest()
		s.mockQueries.EXPECT().
			ListByUser(gomock.Any(), s.actorID).
			Return([]*queries.BookingListItem{}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings", nil, "")

		var response []*resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Empty(response)
	})
}

func (s *BookingHandlerTestSuite) TestListBookingsByStatus() {
	s.Run("success: returns 200 OK with matching bookings", func() {
		s.SetupTest()
		items := []*queries.BookingListItem{
			builder.NewBookingBuilder().AsConfirmed("pi_123").BuildListItem(),
		}
		s.mockQueries.EXPECT().
			ListByStatus(gomock.Any(), "confirmed").
			Return(items, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/bookings?status=confirmed", nil, "")

		var response []*resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response, 1)
	})

	s.Run("success: empty status defaults to pending", func() {
		s.SetupTest()
		s.mockQueries.EXPECT().
			ListByStatus(gomock.Any(), booking.StatusPending.String()).
			Return([]*queries.BookingListItem{}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/bookings", nil, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: 400 Bad Request for unknown status", func() {
		s.SetupTest()
		s.mockQueries.EXPECT().
			ListByStatus(gomock.Any(), "refunded").
			Return(nil, queries.ErrInvalidStatusFilter).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/bookings?status=refunded", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid status filter")
	})
}

func (s *BookingHandlerTestSuite) TestCompleteBooking() {
	id := uuid.New()

	s.Run("success: returns 204 No Content", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().
			CompleteLesson(gomock.Any(), id).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/bookings/"+id.String()+"/complete", nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 400 Bad Request for malformed id", func() {
		s.SetupTest()
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/bookings/nope/complete", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid booking ID format")
	})

	s.Run("error: 404 Not Found for unknown booking", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().
			CompleteLesson(gomock.Any(), id).
			Return(commands.ErrBookingNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/bookings/"+id.String()+"/complete", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Booking not found")
	})

	s.Run("error: 422 Unprocessable Entity for non-confirmed booking", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().
			CompleteLesson(gomock.Any(), id).
			Return(booking.ErrNotConfirmed).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/bookings/"+id.String()+"/complete", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "confirmed bookings")
	})
}

func (s *BookingHandlerTestSuite) TestDeleteBooking() {
	id := uuid.New()

	s.Run("success: returns 204 No Content", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().
			Delete(gomock.Any(), id).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin/bookings/"+id.String(), nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 404 Not Found for unknown booking", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().
			Delete(gomock.Any(), id).
			Return(commands.ErrBookingNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin/bookings/"+id.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Booking not found")
	})
}
