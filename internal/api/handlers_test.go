package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/badgedex/internal/catalog"
	"github.com/verte-zerg/badgedex/internal/github"
	"github.com/verte-zerg/badgedex/internal/model"
	"github.com/verte-zerg/badgedex/internal/progress"
)

type memStore struct {
	ids     []string
	loadErr error
}

func (m *memStore) LoadOwned(context.Context) ([]string, error) {
	return append([]string(nil), m.ids...), m.loadErr
}

func (m *memStore) SaveOwned(_ context.Context, ids []string) error {
	m.ids = append([]string(nil), ids...)
	return nil
}

type stubFetcher struct {
	stats model.UserStats
	err   error
}

func (f stubFetcher) FetchUserStats(_ context.Context, username string) (model.UserStats, error) {
	if f.err != nil {
		return model.UserStats{}, f.err
	}
	st := f.stats
	st.Username = username
	return st, nil
}

type stubResponder struct{}

func (stubResponder) Respond(_ context.Context, q string) string { return "answer: " + q }

func newTestServer(t *testing.T, st *memStore, f StatsFetcher) http.Handler {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return NewRouter(NewHandler(Deps{
		Catalog:   cat,
		Evaluator: progress.NewEvaluator(cat.Trackers()),
		Store:     st,
		Fetcher:   f,
		Guide:     stubResponder{},
		Version:   "test",
	}))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, &memStore{}, nil), http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestListAchievementsSearch(t *testing.T) {
	rec := do(t, newTestServer(t, &memStore{}, nil), http.MethodGet, "/api/v1/achievements?q=shark", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ListResponse](t, rec)
	require.Len(t, resp.Earnable, 1)
	assert.Equal(t, "pull-shark", resp.Earnable[0].ID)
	assert.Empty(t, resp.Retired)
}

func TestListAchievementsGroupsRetired(t *testing.T) {
	rec := do(t, newTestServer(t, &memStore{}, nil), http.MethodGet, "/api/v1/achievements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ListResponse](t, rec)
	require.NotEmpty(t, resp.Retired)
	for _, v := range resp.Retired {
		assert.Equal(t, "Retired", v.Status)
	}
	for _, v := range resp.Earnable {
		assert.NotEqual(t, "Retired", v.Status)
	}
	assert.Equal(t, len(resp.Earnable)+len(resp.Retired), resp.Summary.Total)
}

func TestListAchievementsOwnedFilterWithUser(t *testing.T) {
	srv := newTestServer(t, &memStore{ids: []string{"yolo"}}, stubFetcher{stats: model.UserStats{MergedPRs: 16}})
	rec := do(t, srv, http.MethodGet, "/api/v1/achievements?filter=owned&user=octocat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ListResponse](t, rec)

	ids := map[string]AchievementView{}
	for _, v := range resp.Earnable {
		ids[v.ID] = v
	}
	require.Contains(t, ids, "yolo")
	require.Contains(t, ids, "pull-shark")
	assert.True(t, ids["yolo"].Manual)
	assert.False(t, ids["pull-shark"].Manual)
	require.NotNil(t, ids["pull-shark"].Progress)
	assert.Equal(t, model.ProgressSnapshot{Current: 16, Target: 128, Percent: 13, NextTierName: "Gold"}, *ids["pull-shark"].Progress)
}

func TestListAchievementsRejectsBadParams(t *testing.T) {
	srv := newTestServer(t, &memStore{}, nil)
	for _, target := range []string{
		"/api/v1/achievements?filter=mine",
		"/api/v1/achievements?sort=date",
		"/api/v1/achievements?status=legendary",
	} {
		rec := do(t, srv, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	}
}

func TestGetAchievementIncludesRelated(t *testing.T) {
	rec := do(t, newTestServer(t, &memStore{}, nil), http.MethodGet, "/api/v1/achievements/pull-shark", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[DetailResponse](t, rec)
	assert.Equal(t, "Pull Shark", resp.Achievement.Name)
	assert.NotEmpty(t, resp.Achievement.GuideSteps)
	assert.LessOrEqual(t, len(resp.Related), 3)
	for _, r := range resp.Related {
		assert.NotEqual(t, "pull-shark", r.ID)
		assert.Equal(t, resp.Achievement.Status, r.Status)
	}
}

func TestGetAchievementUnknownSuggests(t *testing.T) {
	rec := do(t, newTestServer(t, &memStore{}, nil), http.MethodGet, "/api/v1/achievements/pull-shrk", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	p := decode[Problem](t, rec)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Contains(t, p.Detail, "pull-shark")
	assert.Equal(t, "/api/v1/achievements/pull-shrk", p.Instance)
}

func TestToggleAchievementPersists(t *testing.T) {
	st := &memStore{}
	srv := newTestServer(t, st, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/achievements/quickdraw/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[AchievementView](t, rec).Owned)
	assert.Equal(t, []string{"quickdraw"}, st.ids)

	rec = do(t, srv, http.MethodPost, "/api/v1/achievements/quickdraw/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[AchievementView](t, rec).Owned)
	assert.Empty(t, st.ids)
}

func TestStoreFailureIsProblem(t *testing.T) {
	srv := newTestServer(t, &memStore{loadErr: errors.New("disk gone")}, nil)
	rec := do(t, srv, http.MethodGet, "/api/v1/achievements", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk gone")
}

func TestGetProfile(t *testing.T) {
	srv := newTestServer(t, &memStore{}, stubFetcher{stats: model.UserStats{MergedPRs: 200, TotalStars: 3}})
	rec := do(t, srv, http.MethodGet, "/api/v1/profiles/octocat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ProfileResponse](t, rec)
	assert.Equal(t, "octocat", resp.Profile.Username)
	require.Len(t, resp.Progress, 2)
	for _, v := range resp.Progress {
		require.NotNil(t, v.Progress)
		if v.ID == "pull-shark" {
			assert.True(t, v.Progress.IsMaxed)
			assert.True(t, v.Owned)
		}
	}
}

func TestGetProfileErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{name: "not found", err: github.ErrUserNotFound, code: http.StatusNotFound, msg: "User not found"},
		{name: "upstream", err: github.ErrFetchFailed, code: http.StatusBadGateway, msg: "Failed to fetch user profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &memStore{}, stubFetcher{err: tt.err})
			rec := do(t, srv, http.MethodGet, "/api/v1/profiles/octocat", "")
			require.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, decode[Problem](t, rec).Detail)
		})
	}
}

func TestAsk(t *testing.T) {
	srv := newTestServer(t, &memStore{}, nil)
	rec := do(t, srv, http.MethodPost, "/api/v1/guide", `{"question":"pull shark?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "answer: pull shark?", decode[GuideResponse](t, rec).Answer)

	rec = do(t, srv, http.MethodPost, "/api/v1/guide", `{"question":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/v1/guide", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleAchievementWithUserReportsProgress(t *testing.T) {
	st := &memStore{}
	srv := newTestServer(t, st, stubFetcher{stats: model.UserStats{MergedPRs: 16}})

	rec := do(t, srv, http.MethodPost, "/api/v1/achievements/pull-shark/toggle?user=octocat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[AchievementView](t, rec)
	assert.True(t, v.Manual)
	assert.True(t, v.Owned)
	require.NotNil(t, v.Progress)
	assert.Equal(t, 16, v.Progress.Current)

	rec = do(t, srv, http.MethodPost, "/api/v1/achievements/pull-shark/toggle?user=octocat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[AchievementView](t, rec)
	assert.False(t, v.Manual)
	assert.True(t, v.Owned, "16 merged PRs still own pull-shark")
}

func TestToggleAchievementFetchFailureLeavesSetUnchanged(t *testing.T) {
	st := &memStore{ids: []string{"yolo"}}
	srv := newTestServer(t, st, stubFetcher{err: github.ErrUserNotFound})

	rec := do(t, srv, http.MethodPost, "/api/v1/achievements/pull-shark/toggle?user=ghost", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []string{"yolo"}, st.ids)
}
