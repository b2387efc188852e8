package permissions_test

import (
	"hotel/permissions"
	"hotel/shared/constant"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name   string
		path   string
		method string
		role   string
		want   bool
	}{
		{name: "login is public", path: "/api/auth/login", method: http.MethodPost, want: true},
		{name: "register is public", path: "/api/auth/register", method: http.MethodPost, want: true},
		{name: "staff reads own account", path: "/api/auth/me", method: http.MethodGet, role: constant.RoleStaff, want: true},
		{name: "admin creates rooms", path: "/api/rooms", method: http.MethodPost, role: constant.RoleAdmin, want: true},
		{name: "staff cannot create rooms", path: "/api/rooms", method: http.MethodPost, role: constant.RoleStaff, want: false},
		{name: "admin checks out", path: "/api/bookings/{id}/checkout", method: http.MethodPost, role: constant.RoleAdmin, want: true},
		{name: "staff cannot read history", path: "/api/bookings/history", method: http.MethodGet, role: constant.RoleStaff, want: false},
		{name: "method match ignores case", path: "/api/rooms/{id}", method: "delete", role: constant.RoleAdmin, want: true},
		{name: "unlisted route falls back to admin", path: "/api/unknown", method: http.MethodGet, role: constant.RoleAdmin, want: true},
		{name: "unlisted route refuses staff", path: "/api/unknown", method: http.MethodGet, role: constant.RoleStaff, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.want, permission.Allows(tt.role))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name: "valid",
			data: `{"endpoints":[{"path":"/api/rooms","method":"GET","permissions":["admin"]}]}`,
		},
		{
			name:    "protected route without roles",
			data:    `{"endpoints":[{"path":"/api/rooms","method":"GET"}]}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			data:    `{"endpoints":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := permissions.Parse([]byte(tt.data))

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, data)

				return
			}

			require.NoError(t, err)
			assert.Len(t, data.Endpoints, 1)
		})
	}
}
