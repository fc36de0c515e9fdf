// Package api serves the catalog, ownership and guide over a local JSON API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/verte-zerg/badgedex/internal/catalog"
	"github.com/verte-zerg/badgedex/internal/github"
	"github.com/verte-zerg/badgedex/internal/guide"
	"github.com/verte-zerg/badgedex/internal/model"
	"github.com/verte-zerg/badgedex/internal/progress"
	"github.com/verte-zerg/badgedex/internal/query"
	"github.com/verte-zerg/badgedex/internal/stats"
)

// OwnedStore loads and saves the manually owned ids.
type OwnedStore interface {
	LoadOwned(ctx context.Context) ([]string, error)
	SaveOwned(ctx context.Context, ids []string) error
}

// StatsFetcher loads profile statistics.
type StatsFetcher interface {
	FetchUserStats(ctx context.Context, username string) (model.UserStats, error)
}

// Deps wires a Handler.
type Deps struct {
	Catalog   *catalog.Catalog
	Evaluator *progress.Evaluator
	Store     OwnedStore
	Fetcher   StatsFetcher
	Guide     guide.Responder
	Logger    *zap.Logger
	Version   string
}

// Handler holds the collaborators shared by every route.
type Handler struct {
	catalog   *catalog.Catalog
	evaluator *progress.Evaluator
	store     OwnedStore
	fetcher   StatsFetcher
	responder guide.Responder
	logger    *zap.Logger
	version   string

	// mu serializes toggles so concurrent requests do not lose updates.
	mu sync.Mutex
}

// NewHandler creates a Handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:   d.Catalog,
		evaluator: d.Evaluator,
		store:     d.Store,
		fetcher:   d.Fetcher,
		responder: d.Guide,
		logger:    logger,
		version:   d.Version,
	}
}

// AchievementView is an achievement with its resolved state.
type AchievementView struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Emoji       string                  `json:"emoji"`
	Description string                  `json:"description"`
	HowToEarn   string                  `json:"howToEarn"`
	Status      string                  `json:"status"`
	Tiers       []TierView              `json:"tiers,omitempty"`
	GuideSteps  []string                `json:"guideSteps,omitempty"`
	ImageURL    string                  `json:"imageUrl,omitempty"`
	Owned       bool                    `json:"owned"`
	Manual      bool                    `json:"manual"`
	Progress    *model.ProgressSnapshot `json:"progress,omitempty"`
}

// TierView is one tier of an achievement.
type TierView struct {
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Criteria  string `json:"criteria"`
	Threshold *int   `json:"threshold,omitempty"`
}

// SummaryView reports how much of the catalog is owned.
type SummaryView struct {
	Total   int `json:"total"`
	Owned   int `json:"owned"`
	Percent int `json:"percent"`
}

// ListResponse is returned by GET /api/v1/achievements.
type ListResponse struct {
	Earnable []AchievementView `json:"earnable"`
	Retired  []AchievementView `json:"retired"`
	Summary  SummaryView       `json:"summary"`
}

// DetailResponse is returned by GET /api/v1/achievements/{id}.
type DetailResponse struct {
	Achievement AchievementView   `json:"achievement"`
	Related     []AchievementView `json:"related"`
}

// ProfileResponse is returned by GET /api/v1/profiles/{username}.
type ProfileResponse struct {
	Profile  model.UserStats   `json:"profile"`
	Progress []AchievementView `json:"progress"`
}

// GuideRequest is the body of POST /api/v1/guide.
type GuideRequest struct {
	Question string `json:"question"`
}

// GuideResponse is returned by POST /api/v1/guide.
type GuideResponse struct {
	Answer string `json:"answer"`
}

// Health returns the health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"version":      h.version,
		"achievements": h.catalog.Len(),
	})
}

// ListAchievements handles GET /api/v1/achievements.
func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	owned, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	user, ok := h.optionalUser(w, r, r.URL.Query().Get("user"))
	if !ok {
		return
	}

	sorted := query.Run(h.catalog.All(), opts, h.evaluator.Resolver(owned, user))
	earnable, retired := query.Partition(sorted)
	summary := stats.Summarize(h.catalog.All(), h.evaluator.Resolver(owned, user))
	writeJSON(w, http.StatusOK, ListResponse{
		Earnable: h.views(earnable, owned, user),
		Retired:  h.views(retired, owned, user),
		Summary:  SummaryView{Total: summary.Total, Owned: summary.Owned, Percent: summary.Percent},
	})
}

// GetAchievement handles GET /api/v1/achievements/{id}.
func (h *Handler) GetAchievement(w http.ResponseWriter, r *http.Request) {
	a, err := h.catalog.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		WriteProblem(w, r, http.StatusNotFound, err.Error())
		return
	}
	owned, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	user, ok := h.optionalUser(w, r, r.URL.Query().Get("user"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, DetailResponse{
		Achievement: h.view(a, owned, user),
		Related:     h.views(h.catalog.Related(a.ID, 3), owned, user),
	})
}

// ToggleAchievement handles POST /api/v1/achievements/{id}/toggle. The
// profile is fetched before the toggle so a failed fetch changes nothing.
func (h *Handler) ToggleAchievement(w http.ResponseWriter, r *http.Request) {
	a, err := h.catalog.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		WriteProblem(w, r, http.StatusNotFound, err.Error())
		return
	}

	user, ok := h.optionalUser(w, r, r.URL.Query().Get("user"))
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	owned, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	owned = owned.Toggle(a.ID)
	if err := h.store.SaveOwned(r.Context(), owned.IDs()); err != nil {
		h.logger.Error("failed to save owned achievements", zap.Error(err))
		WriteProblem(w, r, http.StatusInternalServerError, "failed to save owned achievements")
		return
	}
	writeJSON(w, http.StatusOK, h.view(a, owned, user))
}

// GetProfile handles GET /api/v1/profiles/{username}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.optionalUser(w, r, chi.URLParam(r, "username"))
	if !ok {
		return
	}
	owned, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	report := stats.Resolve(h.catalog.All(), owned, h.evaluator, user)
	progressViews := make([]AchievementView, 0)
	for _, row := range report.Rows {
		if row.Progress == nil {
			continue
		}
		progressViews = append(progressViews, rowView(row))
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: *user, Progress: progressViews})
}

// Ask handles POST /api/v1/guide.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req GuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		WriteProblem(w, r, http.StatusBadRequest, "question is required")
		return
	}
	if h.responder == nil {
		WriteProblem(w, r, http.StatusServiceUnavailable, guide.ServiceUnavailableMessage)
		return
	}
	writeJSON(w, http.StatusOK, GuideResponse{Answer: h.responder.Respond(r.Context(), req.Question)})
}

func parseOptions(r *http.Request) (query.Options, error) {
	q := r.URL.Query()
	filter, err := model.ParseOwnershipFilter(q.Get("filter"))
	if err != nil {
		return query.Options{}, err
	}
	sortKey, err := model.ParseSortKey(q.Get("sort"))
	if err != nil {
		return query.Options{}, err
	}
	opts := query.Options{Search: q.Get("q"), Filter: filter, Sort: sortKey}
	if raw := q.Get("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			return query.Options{}, err
		}
		opts.Status = &status
	}
	return opts, nil
}

func (h *Handler) loadOwned(w http.ResponseWriter, r *http.Request) (progress.OwnedSet, bool) {
	ids, err := h.store.LoadOwned(r.Context())
	if err != nil {
		h.logger.Error("failed to load owned achievements", zap.Error(err))
		WriteProblem(w, r, http.StatusInternalServerError, "failed to load owned achievements")
		return progress.OwnedSet{}, false
	}
	return progress.NewOwnedSet(ids...), true
}

// optionalUser fetches stats for username. An empty name yields nil stats.
func (h *Handler) optionalUser(w http.ResponseWriter, r *http.Request, username string) (*model.UserStats, bool) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, true
	}
	if h.fetcher == nil {
		WriteProblem(w, r, http.StatusServiceUnavailable, "profile lookup is not configured")
		return nil, false
	}
	st, err := h.fetcher.FetchUserStats(r.Context(), username)
	if err != nil {
		h.logger.Warn("profile fetch failed", zap.String("user", username), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, github.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		WriteProblem(w, r, status, github.UserMessage(err))
		return nil, false
	}
	return &st, true
}

func (h *Handler) view(a model.Achievement, owned progress.OwnedSet, user *model.UserStats) AchievementView {
	row := stats.Row{Achievement: a, Manual: owned.Has(a.ID)}
	if snap, ok := h.evaluator.Evaluate(a, user); ok {
		row.Progress = &snap
	}
	row.Owned = h.evaluator.IsOwned(a.ID, owned, row.Progress)
	return rowView(row)
}

func (h *Handler) views(items []model.Achievement, owned progress.OwnedSet, user *model.UserStats) []AchievementView {
	out := make([]AchievementView, 0, len(items))
	for _, a := range items {
		out = append(out, h.view(a, owned, user))
	}
	return out
}

func rowView(row stats.Row) AchievementView {
	a := row.Achievement
	v := AchievementView{
		ID:          a.ID,
		Name:        a.Name,
		Emoji:       a.Emoji,
		Description: a.Description,
		HowToEarn:   a.HowToEarn,
		Status:      a.Status.String(),
		GuideSteps:  a.GuideSteps,
		ImageURL:    a.ImageURL,
		Owned:       row.Owned,
		Manual:      row.Manual,
		Progress:    row.Progress,
	}
	for _, t := range a.Tiers {
		v.Tiers = append(v.Tiers, TierView{Name: t.Name, Color: t.Color, Criteria: t.Criteria, Threshold: t.Threshold})
	}
	return v
}
