package middleware_test

import (
	"context"
	"errors"
	"hotel/config"
	"hotel/infras/jwt"
	jwtMocks "hotel/infras/jwt/mocks"
	otelMocks "hotel/infras/otel/mocks"
	authMocks "hotel/internal/domains/auth/service/mocks"
	userDto "hotel/internal/domains/user/model/dto"
	"hotel/permissions"
	"hotel/shared"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	"hotel/shared/failure"
	"hotel/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const (
	userID      = "7c2d8f1e-4b6a-4c3e-9d2f-1a5b6c7d8e9f"
	internalKey = "internal-key"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Actor", shared.Actor(r.Context()))
	w.WriteHeader(http.StatusOK)
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		setupMock func(cache *cacheMocks.MockRedisCache)
		wantCode  int
		wantLeft  string
	}{
		{
			name:      "disabled limiter never counts",
			enabled:   false,
			setupMock: func(_ *cacheMocks.MockRedisCache) {},
			wantCode:  http.StatusOK,
		},
		{
			name:    "within the window",
			enabled: true,
			setupMock: func(cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Increment(gomock.Any(), "limiter:192.0.2.1:hotel-test", 60).Return(int64(3), nil)
			},
			wantCode: http.StatusOK,
			wantLeft: "2",
		},
		{
			name:    "over the limit",
			enabled: true,
			setupMock: func(cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Increment(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(6), nil)
			},
			wantCode: http.StatusTooManyRequests,
			wantLeft: "0",
		},
		{
			name:    "counter store down lets requests through",
			enabled: true,
			setupMock: func(cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Increment(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("connection refused"))
			},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cache := cacheMocks.NewMockRedisCache(ctrl)
			tt.setupMock(cache)

			cfg := &config.Config{}
			cfg.App.RateLimiter.Enable = tt.enabled
			cfg.App.RateLimiter.MaxRequests = 5
			cfg.App.RateLimiter.WindowSeconds = 60

			app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, cache)
			handler := app.RateLimit()(http.HandlerFunc(okHandler))

			req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
			req.RemoteAddr = "192.0.2.1:54321"
			req.Header.Set(constant.RequestHeaderUserAgent, "hotel-test")

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLeft, rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
		})
	}
}

type authFixture struct {
	jwt  *jwtMocks.MockJWT
	auth *authMocks.MockAuth
}

func authRouter(t *testing.T) (authFixture, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := authFixture{
		jwt:  jwtMocks.NewMockJWT(ctrl),
		auth: authMocks.NewMockAuth(ctrl),
	}

	cfg := &config.Config{}
	cfg.JWT.CookieName = "token"
	cfg.App.APIKey = internalKey

	authRole := middleware.NewAuthRoleMiddleware(f.jwt, f.auth, otelMocks.NewOtel(), permissions.Get(), cfg)

	router := chi.NewRouter()
	router.Route("/api", func(group chi.Router) {
		group.Use(authRole.APIKey, authRole.Auth, authRole.RBAC)
		group.Post("/auth/login", okHandler)
		group.Get("/auth/me", okHandler)
		group.Get("/rooms", okHandler)
		group.Delete("/rooms/{id}", okHandler)
	})

	return f, router
}

func account(role string) userDto.UserResponse {
	return userDto.UserResponse{ID: userID, Username: "frontdesk", Role: role, Active: true}
}

func TestAuthAndRBAC(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		header    string
		cookie    string
		apiKey    string
		setupMock func(f authFixture)
		wantCode  int
		wantActor string
	}{
		{
			name:      "public route needs no token",
			method:    http.MethodPost,
			path:      "/api/auth/login",
			setupMock: func(_ authFixture) {},
			wantCode:  http.StatusOK,
		},
		{
			name:      "missing token",
			method:    http.MethodGet,
			path:      "/api/rooms",
			setupMock: func(_ authFixture) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:      "malformed authorization header",
			method:    http.MethodGet,
			path:      "/api/rooms",
			header:    "Token abc",
			setupMock: func(_ authFixture) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			method: http.MethodGet,
			path:   "/api/rooms",
			header: "Bearer expired",
			setupMock: func(f authFixture) {
				f.jwt.EXPECT().ValidateToken("expired", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "admin bearer token reaches rooms",
			method: http.MethodDelete,
			path:   "/api/rooms/" + userID,
			header: "Bearer good",
			setupMock: func(f authFixture) {
				f.jwt.EXPECT().ValidateToken("good", jwt.AccessToken).Return(&jwt.Claims{UserID: userID, TokenID: "t1"}, nil)
				f.auth.EXPECT().CurrentUser(gomock.Any(), userID).Return(account(constant.RoleAdmin), nil)
			},
			wantCode:  http.StatusOK,
			wantActor: userID,
		},
		{
			name:   "token cookie is accepted",
			method: http.MethodGet,
			path:   "/api/rooms",
			cookie: "from-cookie",
			setupMock: func(f authFixture) {
				f.jwt.EXPECT().ValidateToken("from-cookie", jwt.AccessToken).Return(&jwt.Claims{UserID: userID}, nil)
				f.auth.EXPECT().CurrentUser(gomock.Any(), userID).Return(account(constant.RoleAdmin), nil)
			},
			wantCode:  http.StatusOK,
			wantActor: userID,
		},
		{
			name:   "staff cannot manage rooms",
			method: http.MethodGet,
			path:   "/api/rooms",
			header: "Bearer good",
			setupMock: func(f authFixture) {
				f.jwt.EXPECT().ValidateToken("good", jwt.AccessToken).Return(&jwt.Claims{UserID: userID}, nil)
				f.auth.EXPECT().CurrentUser(gomock.Any(), userID).Return(account(constant.RoleStaff), nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "staff reads own account",
			method: http.MethodGet,
			path:   "/api/auth/me",
			header: "Bearer good",
			setupMock: func(f authFixture) {
				f.jwt.EXPECT().ValidateToken("good", jwt.AccessToken).Return(&jwt.Claims{UserID: userID}, nil)
				f.auth.EXPECT().CurrentUser(gomock.Any(), userID).Return(account(constant.RoleStaff), nil)
			},
			wantCode:  http.StatusOK,
			wantActor: userID,
		},
		{
			name:   "deactivated account",
			method: http.MethodGet,
			path:   "/api/rooms",
			header: "Bearer good",
			setupMock: func(f authFixture) {
				f.jwt.EXPECT().ValidateToken("good", jwt.AccessToken).Return(&jwt.Claims{UserID: userID}, nil)
				f.auth.EXPECT().CurrentUser(gomock.Any(), userID).Return(userDto.UserResponse{}, failure.Unauthorized("User account is deactivated"))
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:      "internal key skips user authentication",
			method:    http.MethodGet,
			path:      "/api/rooms",
			apiKey:    internalKey,
			setupMock: func(_ authFixture) {},
			wantCode:  http.StatusOK,
		},
		{
			name:      "wrong internal key",
			method:    http.MethodGet,
			path:      "/api/rooms",
			apiKey:    "guess",
			setupMock: func(_ authFixture) {},
			wantCode:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, router := authRouter(t)
			tt.setupMock(f)

			req := httptest.NewRequestWithContext(context.Background(), tt.method, tt.path, nil)
			if tt.header != constant.Empty {
				req.Header.Set(constant.RequestHeaderAuthorization, tt.header)
			}

			if tt.cookie != constant.Empty {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}

			if tt.apiKey != constant.Empty {
				req.Header.Set(constant.RequestHeaderAPIKey, tt.apiKey)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantActor != constant.Empty {
				assert.Equal(t, tt.wantActor, rec.Header().Get("X-Actor"))
			}
		})
	}
}
