package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"hotel/config"
	"hotel/infras/jwt"
	jwtMocks "hotel/infras/jwt/mocks"
	otelMocks "hotel/infras/otel/mocks"
	"hotel/internal/domains/auth/model/dto"
	"hotel/internal/domains/auth/service"
	userMocks "hotel/internal/domains/user/mocks"
	userModel "hotel/internal/domains/user/model"
	userDto "hotel/internal/domains/user/model/dto"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/clock"
	"hotel/shared/constant"
	"hotel/shared/failure"
	"hotel/shared/password"
	passwordMocks "hotel/shared/password/mocks"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const userID = "3d1f6c1a-2b4e-4c8d-9a7f-0e1d2c3b4a59"

var (
	now          = time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	errCacheMiss = errors.New("redis: nil")
)

type fixture struct {
	repo   *userMocks.MockUser
	hasher *passwordMocks.MockHasher
	jwt    *jwtMocks.MockJWT
	cache  *cacheMocks.MockRedisCache
	svc    service.Auth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:   userMocks.NewMockUser(ctrl),
		hasher: passwordMocks.NewMockHasher(ctrl),
		jwt:    jwtMocks.NewMockJWT(ctrl),
		cache:  cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.hasher, f.jwt, f.cache, clock.Fixed{At: now}, &config.Config{}, otelMocks.NewOtel())

	return f
}

func admin() userModel.User {
	return userModel.User{ID: userID, Username: "frontdesk", Password: "$2a$10$hash", Role: constant.RoleAdmin, Active: true}
}

func tokens() *jwt.TokenPair {
	return &jwt.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", ExpiresIn: 3600}
}

func TestAuth_Register(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.RegisterRequest
		setupMock func(f *fixture)
		wantCode  int
		wantMsg   string
	}{
		{
			name: "success",
			req:  dto.RegisterRequest{Username: "  frontdesk ", Password: "secret1"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().UsernameTaken(gomock.Any(), gomock.Any()).Return(false, nil)
				f.hasher.EXPECT().Hash("secret1").Return("$2a$10$hash", nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user userModel.User) error {
						assert.Equal(t, "frontdesk", user.Username)
						assert.Equal(t, "$2a$10$hash", user.Password)
						assert.Equal(t, constant.RoleAdmin, user.Role)
						assert.True(t, user.Active)

						return nil
					})
				f.jwt.EXPECT().GenerateTokenPair(gomock.Any(), "frontdesk", constant.RoleAdmin).Return(tokens(), nil)
			},
		},
		{
			name:      "blank credentials",
			req:       dto.RegisterRequest{Username: "   ", Password: "secret1"},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusBadRequest,
			wantMsg:   dto.MessageRegisterRequired,
		},
		{
			name:      "short password",
			req:       dto.RegisterRequest{Username: "frontdesk", Password: "abc"},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "username taken",
			req:  dto.RegisterRequest{Username: "frontdesk", Password: "secret1"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().UsernameTaken(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  userModel.MessageUsernameTaken,
		},
		{
			name: "username taken concurrently",
			req:  dto.RegisterRequest{Username: "frontdesk", Password: "secret1"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().UsernameTaken(gomock.Any(), gomock.Any()).Return(false, nil)
				f.hasher.EXPECT().Hash(gomock.Any()).Return("$2a$10$hash", nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation, Constraint: userModel.ConstraintUsername})
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  userModel.MessageUsernameTaken,
		},
		{
			name: "store error",
			req:  dto.RegisterRequest{Username: "frontdesk", Password: "secret1"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().UsernameTaken(gomock.Any(), gomock.Any()).Return(false, errors.New("connection refused"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Register(context.Background(), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, err.Error())
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "frontdesk", res.User.Username)
			assert.Equal(t, "access", res.Token)
		})
	}
}

func TestAuth_Login(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(f *fixture)
		wantCode  int
		wantMsg   string
	}{
		{
			name: "success",
			req:  dto.LoginRequest{Username: "frontdesk", Password: "secret1"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetByUsername(gomock.Any(), "frontdesk").Return(admin(), nil)
				f.hasher.EXPECT().Verify("secret1", "$2a$10$hash").Return(nil)
				f.jwt.EXPECT().GenerateTokenPair(userID, "frontdesk", constant.RoleAdmin).Return(tokens(), nil)
				f.hasher.EXPECT().NeedsRehash(gomock.Any()).Return(false)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
						assert.Equal(t, now, fields[userModel.FieldLastLogin])
						assert.NotContains(t, fields, userModel.FieldPassword)

						return nil
					})
			},
		},
		{
			name: "weak hash is upgraded",
			req:  dto.LoginRequest{Username: "frontdesk", Password: "secret1"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(admin(), nil)
				f.hasher.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(nil)
				f.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any()).Return(tokens(), nil)
				f.hasher.EXPECT().NeedsRehash(gomock.Any()).Return(true)
				f.hasher.EXPECT().Hash("secret1").Return("$2a$12$stronger", nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
						assert.Equal(t, "$2a$12$stronger", fields[userModel.FieldPassword])

						return nil
					})
			},
		},
		{
			name: "last login failure does not block login",
			req:  dto.LoginRequest{Username: "frontdesk", Password: "secret1"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(admin(), nil)
				f.hasher.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(nil)
				f.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any()).Return(tokens(), nil)
				f.hasher.EXPECT().NeedsRehash(gomock.Any()).Return(false)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout"))
			},
		},
		{
			name:      "missing credentials",
			req:       dto.LoginRequest{Username: "frontdesk"},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusUnauthorized,
			wantMsg:   dto.MessageLoginRequired,
		},
		{
			name: "unknown username",
			req:  dto.LoginRequest{Username: "ghost", Password: "secret1"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusUnauthorized,
			wantMsg:  dto.MessageInvalidLogin,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Username: "frontdesk", Password: "wrong"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(admin(), nil)
				f.hasher.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(password.ErrInvalidPassword)
			},
			wantCode: http.StatusUnauthorized,
			wantMsg:  dto.MessageInvalidLogin,
		},
		{
			name: "deactivated account",
			req:  dto.LoginRequest{Username: "frontdesk", Password: "secret1"},
			setupMock: func(f *fixture) {
				user := admin()
				user.Active = false

				f.repo.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(user, nil)
				f.hasher.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusUnauthorized,
			wantMsg:  userModel.MessageInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Login(context.Background(), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
				assert.Equal(t, tt.wantMsg, err.Error())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access", res.Token)
			assert.Equal(t, "refresh", res.RefreshToken)
			assert.Equal(t, int64(3600), res.ExpiresIn)
		})
	}
}

func TestAuth_RefreshToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		f.jwt.EXPECT().RefreshTokens("refresh").Return(tokens(), nil)

		res, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "refresh"})

		require.NoError(t, err)
		assert.Equal(t, "access", res.Token)
	})

	t.Run("rejected token", func(t *testing.T) {
		f := newFixture(t)
		f.jwt.EXPECT().RefreshTokens(gomock.Any()).Return(nil, jwt.ErrExpiredToken)

		_, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "stale"})

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("missing token", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestAuth_ChangePassword(t *testing.T) {
	req := dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}

	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "success",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(admin(), nil)
				f.hasher.EXPECT().Verify("secret1", gomock.Any()).Return(nil)
				f.hasher.EXPECT().Hash("secret2").Return("$2a$10$new", nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
						assert.Equal(t, "$2a$10$new", fields[userModel.FieldPassword])

						return nil
					})
			},
		},
		{
			name: "wrong current password",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(admin(), nil)
				f.hasher.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(password.ErrInvalidPassword)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "user gone",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.ChangePassword(context.Background(), userID, req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestAuth_CurrentUser(t *testing.T) {
	t.Run("cache hit", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, dest any) error {
				*dest.(*userDto.UserResponse) = userDto.UserResponse{ID: userID, Username: "frontdesk"}

				return nil
			})

		res, err := f.svc.CurrentUser(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, "frontdesk", res.Username)
	})

	t.Run("loaded from store", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(admin(), nil)

		res, err := f.svc.CurrentUser(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, constant.RoleAdmin, res.Role)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)

		_, err := f.svc.CurrentUser(context.Background(), userID)

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
		assert.Equal(t, userModel.MessageNotFound, err.Error())
	})

	t.Run("deactivated user", func(t *testing.T) {
		f := newFixture(t)
		user := admin()
		user.Active = false

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

		_, err := f.svc.CurrentUser(context.Background(), userID)

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}
