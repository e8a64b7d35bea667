package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	mocks "github.com/cbodonnell/minimmo/mocks/github.com/cbodonnell/minimmo/pkg/repositories"
	"github.com/cbodonnell/minimmo/pkg/game"
	"github.com/cbodonnell/minimmo/pkg/repositories"
	"github.com/cbodonnell/minimmo/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler    http.Handler
	repository repositories.Repository
}

func newTestServer(t *testing.T, repository repositories.Repository) *testServer {
	t.Helper()
	if repository == nil {
		repository = repositories.NewInMemoryRepository()
	}
	gm := game.NewGameManager(game.NewGameManagerOptions{
		Repository: repository,
		Rand:       rand.New(rand.NewSource(1)),
	})
	return &testServer{
		handler: NewHandler(NewAPIServerOptions{
			AllowOrigin: "*",
			Repository:  repository,
			GameManager: gm,
		}),
		repository: repository,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) place(t *testing.T, name string, mana, x, y int) *models.Character {
	t.Helper()
	create := models.NewCharacterCreate()
	create.Name = name
	create.Image = game.CharacterImage(name)
	create.Mana = mana
	c, err := s.repository.CreateCharacter(context.Background(), create)
	require.NoError(t, err)
	_, err = s.repository.UpsertPosition(context.Background(), c.ID, x, y)
	require.NoError(t, err)
	return c
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Mini-MMORPG Backend is running!"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCharacters(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/characters/", `{"name":"Uther12","image":"https://robohash.org/uther12?set=set2","mana":40}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[models.Character](t, rec)
	assert.Equal(t, models.Character{ID: created.ID, Name: "Uther12", Image: "https://robohash.org/uther12?set=set2", Health: 100, Mana: 40}, created)

	rec = s.do(t, http.MethodGet, "/characters/"+itoa(created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[models.Character](t, rec))

	rec = s.do(t, http.MethodPut, "/characters/"+itoa(created.ID), `{"armor":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Character](t, rec)
	assert.Equal(t, 12, updated.Armor)
	assert.Equal(t, 40, updated.Mana)

	rec = s.do(t, http.MethodGet, "/characters/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Character](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/characters/"+itoa(created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, updated, decode[models.Character](t, rec))

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = s.do(t, method, "/characters/"+itoa(created.ID), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Character not found\n", rec.Body.String())
	}
	rec = s.do(t, http.MethodPut, "/characters/"+itoa(created.ID), `{"armor":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/characters/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCharacters_badRequests(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "malformed json", method: http.MethodPost, path: "/characters/", body: `{"name":`, want: http.StatusBadRequest},
		{name: "missing image", method: http.MethodPost, path: "/characters/", body: `{"name":"Anduin"}`, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/characters/", body: `{"name":"a","image":"b","level":3}`, want: http.StatusBadRequest},
		{name: "wrong type", method: http.MethodPut, path: "/characters/1", body: `{"mana":"lots"}`, want: http.StatusBadRequest},
		{name: "negative skip", method: http.MethodGet, path: "/characters/?skip=-1", want: http.StatusBadRequest},
		{name: "non numeric limit", method: http.MethodGet, path: "/characters/?limit=ten", want: http.StatusBadRequest},
		{name: "non numeric id", method: http.MethodGet, path: "/characters/abc", want: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPatch, path: "/characters/1", want: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestCharacters_pagination(t *testing.T) {
	s := newTestServer(t, nil)
	for _, name := range []string{"a", "b", "c"} {
		s.place(t, name, 0, 0, 0)
	}

	rec := s.do(t, http.MethodGet, "/characters/?skip=1&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[[]models.Character](t, rec)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Name)
}

func TestCharacterStats(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/characters/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0,"avg_health":0,"avg_armor":0,"avg_mana":0,"avg_kills":0}`, rec.Body.String())

	s.place(t, "a", 3, 0, 0)
	s.place(t, "b", 4, 1, 0)
	rec = s.do(t, http.MethodGet, "/characters/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":2,"avg_health":100,"avg_armor":0,"avg_mana":3.5,"avg_kills":0}`, rec.Body.String())
}

func TestCreateRandomCharacter(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/characters/random", "")
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[models.Character](t, rec)
	assert.NotZero(t, c.ID)
	assert.Equal(t, game.CharacterImage(c.Name), c.Image)
	assert.GreaterOrEqual(t, c.Health, 60)
}

func TestSpawn(t *testing.T) {
	s := newTestServer(t, nil)
	c := s.place(t, "Valeera3", 0, 0, 0)

	rec := s.do(t, http.MethodPost, "/spawn/"+itoa(c.ID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[models.Position](t, rec)
	assert.Equal(t, c.ID, p.CharacterID)

	rec = s.do(t, http.MethodPost, "/spawn/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMove(t *testing.T) {
	s := newTestServer(t, nil)
	c := s.place(t, "Illidan8", 0, 3, 0)

	rec := s.do(t, http.MethodPost, "/move/"+itoa(c.ID), `{"direction":"up"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[models.Position](t, rec)
	assert.Equal(t, 3, p.X)
	assert.Equal(t, 0, p.Y)

	rec = s.do(t, http.MethodPost, "/move/"+itoa(c.ID), `{"direction":"down"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[models.Position](t, rec).Y)

	rec = s.do(t, http.MethodPost, "/move/"+itoa(c.ID), `{"direction":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/move/"+itoa(c.ID), `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	create := models.NewCharacterCreate()
	create.Name, create.Image = "Guldan4", "img"
	unplaced, err := s.repository.CreateCharacter(context.Background(), create)
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/move/"+itoa(unplaced.ID), `{"direction":"up"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttack(t *testing.T) {
	s := newTestServer(t, nil)
	attacker := s.place(t, "Sylvanas1", 100, 2, 2)
	neighbour := s.place(t, "Rexxar2", 0, 3, 3)
	distant := s.place(t, "Uther3", 0, 5, 5)
	a, n := itoa(attacker.ID), itoa(neighbour.ID)

	rec := s.do(t, http.MethodPost, "/attack", `{"attackerId":`+a+`,"targetId":`+n+`,"sessionHp":30}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"attackerId":`+a+`,"targetId":`+n+`,"damage":35,"targetHealth":0,"killed":true}`, rec.Body.String())

	after, err := s.repository.GetCharacter(context.Background(), attacker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Kills)

	rec = s.do(t, http.MethodPost, "/attack", `{"attackerId":`+a+`,"targetId":`+n+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"attackerId":`+a+`,"targetId":`+n+`,"damage":35,"targetHealth":null,"killed":false}`, rec.Body.String())

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "snake case keys", body: `{"attacker_id":` + a + `,"target_id":` + n + `,"session_hp":100}`, want: http.StatusOK},
		{name: "out of range", body: `{"attackerId":` + a + `,"targetId":` + itoa(distant.ID) + `,"sessionHp":100}`, want: http.StatusBadRequest},
		{name: "unknown target", body: `{"attackerId":` + a + `,"targetId":999,"sessionHp":100}`, want: http.StatusNotFound},
		{name: "missing attacker", body: `{"targetId":` + n + `}`, want: http.StatusBadRequest},
		{name: "attacking itself", body: `{"attackerId":` + a + `,"targetId":` + a + `,"sessionHp":30}`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/attack", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	after, err = s.repository.GetCharacter(context.Background(), attacker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Kills, "only the first lethal hit counts")
}

func TestPositions(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	c := s.place(t, "Anduin5", 0, 7, 2)
	rec = s.do(t, http.MethodGet, "/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.PositionView{{ID: c.ID, Name: "Anduin5", Image: c.Image, X: 7, Y: 2}}, decode[[]models.PositionView](t, rec))
}

func TestEnemies(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/enemies", `{"x":4,"y":6}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	enemy := decode[models.Enemy](t, rec)
	assert.Equal(t, models.Enemy{ID: enemy.ID, X: 4, Y: 6, Health: 100}, enemy)

	rec = s.do(t, http.MethodGet, "/enemies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Enemy{enemy}, decode[[]models.Enemy](t, rec))
}

func TestStorageFailure(t *testing.T) {
	repository := mocks.NewRepository(t)
	repository.On("ListPositionViews", mock.Anything).Return(nil, assert.AnError).Once()
	repository.On("GetCharacter", mock.Anything, int64(3)).Return(nil, assert.AnError).Once()
	s := newTestServer(t, repository)

	rec := s.do(t, http.MethodGet, "/positions", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = s.do(t, http.MethodGet, "/characters/3", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/attack", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestGzip(t *testing.T) {
	s := newTestServer(t, nil)
	for i := 0; i < 40; i++ {
		s.place(t, "Malfurion"+itoa(int64(i)), 0, i%10, i/10)
	}

	req := httptest.NewRequest(http.MethodGet, "/positions", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
