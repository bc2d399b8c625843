package http

import (
	"errors"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"bollette/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type periodRequest struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
	Cost  float64   `json:"cost"`
}

type paymentRequest struct {
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
	Amount  float64   `json:"amount"`
	Date    core.Date `json:"date"`
}

type roomView struct {
	Name      string   `json:"name"`
	Area      float64  `json:"area"`
	Occupants []string `json:"occupants"`
}

type utilityView struct {
	Name      string       `json:"name"`
	Sharing   string       `json:"sharing"`
	Periods   []periodView `json:"periods"`
	TotalCost float64      `json:"total_cost"`
}

type periodView struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
	Cost  float64   `json:"cost"`
}

type propertyView struct {
	CommonArea float64       `json:"common_area"`
	TotalArea  float64       `json:"total_area"`
	Rooms      []roomView    `json:"rooms"`
	Utilities  []utilityView `json:"utilities"`
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	from, err := core.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid 'from' date, expected YYYY-MM-DD")
		return
	}
	to, err := core.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid 'to' date, expected YYYY-MM-DD")
		return
	}

	cacheKey := from.String() + ".." + to.String()
	if st, ok := s.statementCache.Get(cacheKey); ok {
		w.Header().Set("X-Cache", "HIT")
		respondJSON(w, http.StatusOK, st)
		return
	}

	st, err := s.svc.Statement(r.Context(), from, to)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.statementCache.Set(cacheKey, st)
	w.Header().Set("X-Cache", "MISS")
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleProperty(w http.ResponseWriter, r *http.Request) {
	prop, err := s.svc.Property(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	view := propertyView{
		CommonArea: prop.CommonArea,
		TotalArea:  prop.TotalArea(),
		Rooms:      make([]roomView, 0, len(prop.Rooms)),
		Utilities:  make([]utilityView, 0, len(prop.Utilities)),
	}
	for _, room := range prop.Rooms {
		rv := roomView{Name: room.Name, Area: room.Area, Occupants: make([]string, 0, len(room.Occupants))}
		for _, occ := range room.Occupants {
			rv.Occupants = append(rv.Occupants, occ.FullName())
		}
		view.Rooms = append(view.Rooms, rv)
	}
	for _, u := range prop.Utilities {
		uv := utilityView{
			Name:      u.Name,
			Sharing:   string(u.Sharing),
			TotalCost: u.TotalCost(),
		}
		for _, p := range u.Periods() {
			uv.Periods = append(uv.Periods, periodView{Start: p.Start, End: p.End, Cost: p.Cost})
		}
		view.Utilities = append(view.Utilities, uv)
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddPeriod(w http.ResponseWriter, r *http.Request) {
	utility := r.PathValue("name")

	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	period, err := core.NewCostPeriod(req.Start, req.End, req.Cost)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	if err := s.svc.AddCostPeriod(r.Context(), utility, period); err != nil {
		respondDomainError(w, r, err)
		return
	}

	// Any cached window may include the new period
	s.statementCache.Purge()

	respondJSON(w, http.StatusCreated, periodView{Start: period.Start, End: period.End, Cost: period.Cost})
}

func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" || req.Surname == "" {
		respondError(w, http.StatusBadRequest, "name and surname are required")
		return
	}
	if req.Date.IsZero() {
		respondError(w, http.StatusBadRequest, "date is required, expected YYYY-MM-DD")
		return
	}

	payment := core.Payment{Amount: req.Amount, Date: req.Date}
	if err := s.svc.RecordPayment(r.Context(), req.Name, req.Surname, payment); err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.statementCache.Purge()

	respondJSON(w, http.StatusCreated, req)
}

// respondDomainError maps domain errors onto HTTP statuses: lookup misses are
// 404, timeline conflicts 409, semantically invalid input 422.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound     *core.NotFoundError
		overlap      *core.OverlapError
		adjacency    *core.AdjacencyError
		coverage     *core.CoverageGapError
		invalidRange *core.InvalidRangeError
		invalidPer   *core.InvalidPeriodError
		noOccupants  *core.NoOccupantsError
		zeroArea     *core.ZeroAreaError
		noRooms      *core.NoOccupiedRoomsError
		unknownShare *core.UnknownSharingTypeError
	)

	var status int
	var kind string
	switch {
	case errors.As(err, &notFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.As(err, &overlap):
		status, kind = http.StatusConflict, "overlap"
	case errors.As(err, &adjacency):
		status, kind = http.StatusConflict, "adjacency"
	case errors.As(err, &coverage):
		status, kind = http.StatusConflict, "coverage_gap"
	case errors.As(err, &invalidRange):
		status, kind = http.StatusUnprocessableEntity, "invalid_range"
	case errors.As(err, &invalidPer):
		status, kind = http.StatusUnprocessableEntity, "invalid_period"
	case errors.As(err, &noOccupants):
		status, kind = http.StatusUnprocessableEntity, "no_occupants"
	case errors.As(err, &zeroArea):
		status, kind = http.StatusUnprocessableEntity, "zero_area"
	case errors.As(err, &noRooms):
		status, kind = http.StatusUnprocessableEntity, "no_occupied_rooms"
	case errors.As(err, &unknownShare):
		status, kind = http.StatusUnprocessableEntity, "unknown_sharing_type"
	default:
		slog.ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "internal"})
		return
	}

	respondJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
