package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"direction":"left"}`},
		{name: "trailing object", body: `{"direction":"left"}{"direction":"up"}`, wantErr: true},
		{name: "unknown field", body: `{"dir":"left"}`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MoveRequest
			r := httptest.NewRequest(http.MethodPost, "/move/1", strings.NewReader(tt.body))
			err := decodeJSON(httptest.NewRecorder(), r, &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "left", req.Direction)
		})
	}
}

func TestPathID(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"characterID": "42"})
	id, err := pathID(r, "characterID")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	r = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"characterID": "99999999999999999999"})
	_, err = pathID(r, "characterID")
	assert.Error(t, err)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/characters/?skip=5", nil)
	skip, err := queryInt(r, "skip", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, skip)

	limit, err := queryInt(r, "limit", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, limit)
}

func TestHandleGetCharacter_badID(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/characters/x", nil), map[string]string{"characterID": "x"})
	rec := httptest.NewRecorder()
	HandleGetCharacter(nil)(rec, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttackRequest_gameRequest(t *testing.T) {
	one, two, three := int64(1), int64(2), int64(3)
	hp := 30

	got, ok := AttackRequest{AttackerID: &one, TargetID: &two, SessionHP: &hp}.gameRequest()
	require.True(t, ok)
	assert.Equal(t, int64(1), got.AttackerID)
	assert.Equal(t, int64(2), got.TargetID)
	assert.Equal(t, 30, *got.SessionHP)

	got, ok = AttackRequest{AttackerIDSnake: &one, TargetIDSnake: &two}.gameRequest()
	require.True(t, ok)
	assert.Equal(t, int64(2), got.TargetID)
	assert.Nil(t, got.SessionHP)

	got, ok = AttackRequest{AttackerID: &one, TargetID: &three, TargetIDSnake: &two}.gameRequest()
	require.True(t, ok)
	assert.Equal(t, int64(3), got.TargetID)

	_, ok = AttackRequest{TargetID: &two}.gameRequest()
	assert.False(t, ok)
}
