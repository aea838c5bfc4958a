package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/campus-delivery-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"super_admin", "campus_admin", "restaurant_manager", "user"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}

	_, err := ParseRole("admin")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestCan(t *testing.T) {
	super := Principal{Role: RoleSuperAdmin}
	campus := Principal{Role: RoleCampusAdmin, CampusID: 3}
	manager := Principal{Role: RoleRestaurantManager, CampusID: 3, RestaurantID: 9}
	student := Principal{Role: RoleUser}

	tests := []struct {
		name   string
		p      Principal
		action Action
		scope  Scope
		want   bool
	}{
		{"super sets global fee", super, ActionManageGlobalFees, Scope{}, true},
		{"campus admin own campus", campus, ActionUpdateOrderStatus, Scope{CampusID: 3}, true},
		{"campus admin other campus", campus, ActionUpdateOrderStatus, Scope{CampusID: 4}, false},
		{"campus admin global fee", campus, ActionManageGlobalFees, Scope{}, false},
		{"campus admin campus fee", campus, ActionManageCampusFees, Scope{CampusID: 3}, true},
		{"manager own restaurant", manager, ActionUpdateOrderStatus, Scope{CampusID: 3, RestaurantIDs: []uint{2, 9}}, true},
		{"manager foreign restaurant", manager, ActionUpdateOrderStatus, Scope{CampusID: 3, RestaurantIDs: []uint{2}}, false},
		{"manager cannot manage fees", manager, ActionManageCampusFees, Scope{CampusID: 3}, false},
		{"manager lists orders", manager, ActionViewOrders, Scope{}, true},
		{"manager lists own campus", manager, ActionViewOrders, Scope{CampusID: 3}, true},
		{"manager unowned order", manager, ActionViewOrders, Scope{CampusID: 3, Resource: true}, false},
		{"manager unowned order status", manager, ActionUpdateOrderStatus, Scope{CampusID: 3, Resource: true}, false},
		{"campus admin unowned order", campus, ActionViewOrders, Scope{CampusID: 3, Resource: true}, true},
		{"user views orders", student, ActionViewOrders, Scope{}, false},
		{"unknown role", Principal{Role: "root"}, ActionViewOrders, Scope{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Can(tt.action, tt.scope))
		})
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())
	want := Principal{UserID: "uid-42", Email: "ops@campus.pk", Role: RoleCampusAdmin, CampusID: 3}

	token, err := m.GenerateToken(want, time.Hour)
	require.NoError(t, err)

	got, err := m.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAuthenticateRejects(t *testing.T) {
	m := NewJWTManager(testConfig())

	expired, err := m.GenerateToken(Principal{UserID: "u", Role: RoleUser}, -time.Minute)
	require.NoError(t, err)
	_, err = m.Authenticate(expired)
	assert.Error(t, err)

	unknownRole, err := m.GenerateToken(Principal{UserID: "u", Role: "owner"}, time.Hour)
	require.NoError(t, err)
	_, err = m.Authenticate(unknownRole)
	assert.Error(t, err)

	other := NewJWTManager(&config.Config{JWT: config.JWTConfig{Secret: "ffffffffffffffffffffffffffffffff"}})
	foreign, err := other.GenerateToken(Principal{UserID: "u", Role: RoleUser}, time.Hour)
	require.NoError(t, err)
	_, err = m.Authenticate(foreign)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u", "role": "super_admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Authenticate(unsigned)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
}
