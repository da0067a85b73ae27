//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mathsandmelody-api/internal/pkg/jwt"
	"mathsandmelody-api/internal/pkg/password"
	"mathsandmelody-api/internal/usecase/commands"
	"mathsandmelody-api/internal/usecase/queries"
	"mathsandmelody-api/tests/common/builder"
	queriesmock "mathsandmelody-api/tests/mock/queries"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthCommandsTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	readStore *queriesmock.MockUserReadStore
	commands  commands.AuthCommands
	hash      string
}

func (s *AuthCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.readStore = queriesmock.NewMockUserReadStore(s.ctrl)
	jwtService := jwt.NewService("test-secret-key-for-unit-tests", time.Hour)
	s.commands = commands.NewAuthCommands(s.readStore, jwtService)

	hash, err := password.HashPassword("password123")
	s.Require().NoError(err)
	s.hash = hash
}

func (s *AuthCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthCommandsSuite(t *testing.T) {
	suite.Run(t, new(AuthCommandsTestSuite))
}

func (s *AuthCommandsTestSuite) TestLogin() {
	ctx := context.Background()
	view := builder.NewUserBuilder().BuildReadModel()

	s.Run("success: returns a signed access token", func() {
		s.SetupTest()
		s.readStore.EXPECT().FindByEmail(gomock.Any(), view.Email).Return(view, s.hash, nil)

		result, err := s.commands.Login(ctx, view.Email, "password123")

		s.Require().NoError(err)
		s.Equal(view.ID, result.UserID)
		s.NotEmpty(result.AccessToken)
	})

	s.Run("error: malformed email fails validation before lookup", func() {
		s.SetupTest()
		_, err := s.commands.Login(ctx, "not-an-email", "password123")
		s.Require().ErrorIs(err, commands.ErrAuthenticationFailed)
	})

	s.Run("error: short password fails validation before lookup", func() {
		s.SetupTest()
		_, err := s.commands.Login(ctx, view.Email, "short")
		s.Require().ErrorIs(err, commands.ErrAuthenticationFailed)
	})

	s.Run("error: lookup failure maps to invalid credentials", func() {
		s.SetupTest()
		s.readStore.EXPECT().FindByEmail(gomock.Any(), view.Email).
			Return(nil, "", errors.New("connection refused"))

		_, err := s.commands.Login(ctx, view.Email, "password123")
		s.Require().ErrorIs(err, commands.ErrInvalidCredentials)
	})

	s.Run("error: unknown user", func() {
		s.SetupTest()
		s.readStore.EXPECT().FindByEmail(gomock.Any(), view.Email).Return(nil, "", nil)

		_, err := s.commands.Login(ctx, view.Email, "password123")
		s.Require().ErrorIs(err, queries.ErrUserNotFound)
	})

	s.Run("error: inactive account", func() {
		s.SetupTest()
		inactive := builder.NewUserBuilder().AsInactive().BuildReadModel()
		s.readStore.EXPECT().FindByEmail(gomock.Any(), inactive.Email).Return(inactive, s.hash, nil)

		_, err := s.commands.Login(ctx, inactive.Email, "password123")
		s.Require().ErrorIs(err, queries.ErrUserInactive)
	})

	s.Run("error: wrong password maps to invalid credentials", func() {
		s.SetupTest()
		s.readStore.EXPECT().FindByEmail(gomock.Any(), view.Email).Return(view, s.hash, nil)

		_, err := s.commands.Login(ctx, view.Email, "wrong-password")
		s.Require().ErrorIs(err, commands.ErrInvalidCredentials)
	})
}
