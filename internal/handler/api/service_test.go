//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"mathsandmelody-api/internal/handler/api"
	resdto "mathsandmelody-api/internal/handler/dto/response"
	"mathsandmelody-api/internal/usecase/queries"
	"mathsandmelody-api/tests/common/httptest"
	queriesmock "mathsandmelody-api/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ServiceHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockQueries *queriesmock.MockServiceQueries
	handler     *api.ServiceHandler
}

func (s *ServiceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueries = queriesmock.NewMockServiceQueries(s.mockCtrl)
	s.handler = api.NewServiceHandler(s.mockQueries)

	s.router.GET("/services", s.handler.ListServices)
	s.router.GET("/services/:id", s.handler.GetService)
}

func (s *ServiceHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestServiceHandlerSuite(t *testing.T) {
	suite.Run(t, new(ServiceHandlerTestSuite))
}

func serviceView(serviceType, title string, rate int64) *queries.ServiceView {
	now := time.Now().UTC()
	return &queries.ServiceView{
		ID:              uuid.New(),
		Type:            serviceType,
		Title:           title,
		HourlyRateCents: rate,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *ServiceHandlerTestSuite) TestListServices() {
	s.Run("success: returns 200 OK with the catalog", func() {
		s.SetupTest()
		views := []*queries.ServiceView{
			serviceView("math", "Math Tutoring", 6000),
			serviceView("music", "Melody Lessons", 8000),
		}
		s.mockQueries.EXPECT().List(gomock.Any()).Return(views, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/services", nil, "")

		var response []*resdto.ServiceResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response, 2)
		s.Equal("math", response[0].Type)
		s.Equal(int64(8000), response[1].HourlyRateCents)
	})
}

func (s *ServiceHandlerTestSuite) TestGetService() {
	s.Run("success: returns 200 OK", func() {
		s.SetupTest()
		view := serviceView("sports", "Sports Coaching", 7000)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/services/"+view.ID.String(), nil, "")

		var response resdto.ServiceResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(view.Title, response.Title)
	})

	s.Run("error: 400 Bad Request for malformed id", func() {
		s.SetupTest()
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/services/abc", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid service ID format")
	})

	s.Run("error: 404 Not Found for unknown service", func() {
		s.SetupTest()
		id := uuid.New()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), id).Return(nil, queries.ErrServiceNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/services/"+id.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Service not found")
	})
}
