package matches

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/youyuan/match-engine/internal/app"
	apperrors "github.com/youyuan/match-engine/internal/errors"
)

// Registrar ties the matches service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the matches service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the matches endpoints to the router.
func (r *Registrar) Register(router chi.Router) {
	h := &handler{service: NewService(r.appCtx)}

	router.Route("/matches", func(rt chi.Router) {
		rt.Get("/", h.browse)
		rt.Post("/", h.decide)
		rt.Get("/mutual", h.mutual)
	})
}

type handler struct {
	service *Service
}

// --- wire types ---

type candidatePayload struct {
	ID                uint64   `json:"id"`
	Name              string   `json:"name"`
	Age               *int     `json:"age,omitempty"`
	Location          string   `json:"location,omitempty"`
	Occupation        string   `json:"occupation,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	MatchScore        int      `json:"matchScore"`
	DistanceKm        *float64 `json:"distance_km,omitempty"`
	DistanceFormatted string   `json:"distance_formatted,omitempty"`
	IsMutualMatch     bool     `json:"isMutualMatch"`
}

type browsePayload struct {
	Candidates []candidatePayload `json:"candidates"`
	HasMore    bool               `json:"hasMore"`
}

type decideRequest struct {
	TargetID uint64 `json:"targetId"`
	Action   string `json:"action"`
}

type actionPayload struct {
	ID        uint64  `json:"id"`
	ActorID   uint64  `json:"actorId"`
	TargetID  uint64  `json:"targetId"`
	Status    string  `json:"status"`
	Score     float64 `json:"score"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

type decidePayload struct {
	IsMatch bool          `json:"isMatch"`
	Match   actionPayload `json:"match"`
}

type mutualMatchPayload struct {
	UserID    uint64  `json:"userId"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	MatchedAt int64   `json:"matchedAt"`
}

type mutualPagePayload struct {
	Matches []mutualMatchPayload `json:"matches"`
	Total   int64                `json:"total"`
	HasMore bool                 `json:"hasMore"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- handlers ---

func (h *handler) browse(w http.ResponseWriter, r *http.Request) {
	userID, err := authUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	page, err := h.service.Browse(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := browsePayload{
		Candidates: make([]candidatePayload, 0, len(page.Candidates)),
		HasMore:    page.HasMore,
	}
	for _, c := range page.Candidates {
		payload.Candidates = append(payload.Candidates, candidatePayload{
			ID:                c.UserID,
			Name:              c.Username,
			Age:               c.Age,
			Location:          c.Location,
			Occupation:        c.Occupation,
			Interests:         c.Interests,
			MatchScore:        c.MatchScore,
			DistanceKm:        c.DistanceKm,
			DistanceFormatted: c.DistanceFormatted,
			IsMutualMatch:     c.IsMutualMatch,
		})
	}

	writeJSON(w, http.StatusOK, payload)
}

func (h *handler) decide(w http.ResponseWriter, r *http.Request) {
	userID, err := authUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validationf("invalid request body"))
		return
	}

	result, err := h.service.Decide(r.Context(), userID, req.TargetID, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, decidePayload{
		IsMatch: result.MutualMatch,
		Match: actionPayload{
			ID:        result.Action.ID,
			ActorID:   result.Action.ActorID,
			TargetID:  result.Action.TargetID,
			Status:    result.Action.Status,
			Score:     result.Action.Score,
			CreatedAt: result.Action.CreatedAt.UnixMilli(),
			UpdatedAt: result.Action.UpdatedAt.UnixMilli(),
		},
	})
}

func (h *handler) mutual(w http.ResponseWriter, r *http.Request) {
	userID, err := authUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := h.service.MutualMatches(r.Context(), userID, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := mutualPagePayload{
		Matches: make([]mutualMatchPayload, 0, len(page.Matches)),
		Total:   page.Total,
		HasMore: page.HasMore,
	}
	for _, m := range page.Matches {
		payload.Matches = append(payload.Matches, mutualMatchPayload{
			UserID:    m.UserID,
			Name:      m.Username,
			Score:     m.Score,
			MatchedAt: m.MatchedAt.UnixMilli(),
		})
	}

	writeJSON(w, http.StatusOK, payload)
}

// --- helpers ---

// authUserID reads the identity injected by the gateway. Session issuance
// lives outside this service.
func authUserID(r *http.Request) (uint64, error) {
	raw := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if raw == "" {
		return 0, apperrors.Validationf("missing auth context")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validationf("invalid auth context")
	}
	return id, nil
}

func queryInt(r *http.Request, key string) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.HTTPStatus(err), errorPayload{
		Code:    apperrors.Code(err),
		Message: err.Error(),
	})
}
