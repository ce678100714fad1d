package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_RequiresAdmin(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	_, userToken := api.seedUser("ana@example.com", false)
	target, _ := api.seedUser("bo@example.com", false)

	rec := api.do(http.MethodPost, "/api/admin/ban/"+target.ID.String(), userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin access required", errorMessage(t, rec))
	assert.False(t, api.users.isBanned(target.ID))

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/admin/dashboard", "", nil).Code)
}

func TestAdmin_BanAndUnban(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	admin, adminToken := api.seedUser("root@example.com", true)
	target, _ := api.seedUser("bo@example.com", false)

	rec := api.do(http.MethodPost, "/api/admin/ban/"+target.ID.String(), adminToken, map[string]string{"reason": "spam"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	banned := decodeBody[BanResponse](t, rec)
	assert.True(t, banned.Success)
	assert.Equal(t, "bo@example.com has been banned", banned.Message)
	assert.True(t, banned.User.IsBanned)
	require.NotNil(t, banned.User.BannedBy)
	assert.Equal(t, admin.ID, *banned.User.BannedBy)
	require.NotNil(t, banned.User.BanReason)
	assert.Equal(t, "spam", *banned.User.BanReason)

	rec = api.do(http.MethodGet, "/api/admin/users?banned=true", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]types.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, target.ID, users[0].ID)

	rec = api.do(http.MethodGet, "/api/admin/users?banned=maybe", adminToken, nil)
	assert.Len(t, decodeBody[[]types.User](t, rec), 2)

	rec = api.do(http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.Dashboard{TotalUsers: 2, ActiveUsers: 1, BannedUsers: 1}, decodeBody[types.Dashboard](t, rec))

	rec = api.do(http.MethodPost, "/api/admin/unban/"+target.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	unbanned := decodeBody[UnbanResponse](t, rec)
	assert.Equal(t, "bo@example.com has been unbanned", unbanned.Message)
	assert.False(t, unbanned.User.IsBanned)
	assert.Nil(t, unbanned.User.BanReason)
	assert.False(t, api.users.isBanned(target.ID))
}

func TestAdmin_BanWithoutBody(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	_, adminToken := api.seedUser("root@example.com", true)
	target, _ := api.seedUser("bo@example.com", false)

	rec := api.do(http.MethodPost, "/api/admin/ban/"+target.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[BanResponse](t, rec).User.BanReason)
}

func TestAdmin_BanErrors(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	_, adminToken := api.seedUser("root@example.com", true)

	rec := api.do(http.MethodPost, "/api/admin/ban/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed id", errorMessage(t, rec))

	rec = api.do(http.MethodPost, "/api/admin/ban/"+uuid.NewString(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", errorMessage(t, rec))

	rec = api.do(http.MethodPost, "/api/admin/unban/"+uuid.NewString(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, api.users.count())
}
