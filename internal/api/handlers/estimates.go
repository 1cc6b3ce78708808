// Package handlers contains the HTTP handlers for the estimates API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonseok/quarters/internal/calendar"
	"github.com/wonseok/quarters/internal/entity"
	"github.com/wonseok/quarters/internal/estimates"
	"github.com/wonseok/quarters/pkg/logger"
)

// Engine is the slice of the estimates service the handlers need.
type Engine interface {
	Run(ctx context.Context, policy string, q estimates.Query) (*estimates.Table, error)
	Reload(ctx context.Context) error
	Status() estimates.Status
}

// EstimatesHandler serves point-in-time estimate queries over HTTP.
type EstimatesHandler struct {
	engine   Engine
	calendar *calendar.Calendar
	registry *entity.Registry
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewEstimatesHandler creates the handler.
func NewEstimatesHandler(engine Engine, cal *calendar.Calendar, reg *entity.Registry, log *logger.Logger) *EstimatesHandler {
	return &EstimatesHandler{
		engine:   engine,
		calendar: cal,
		registry: reg,
		logger:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// QueryRequest is the body of POST /api/estimates/query.
type QueryRequest struct {
	Policy      string   `json:"policy"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Entities    []string `json:"entities"`
	QuartersOut int      `json:"quarters_out"`
}

// QueryResponse is the dense materialization, one row per (day, entity).
type QueryResponse struct {
	Policy   string     `json:"policy"`
	Days     []string   `json:"days"`
	Entities []string   `json:"entities"`
	Columns  []string   `json:"columns"`
	Rows     []QueryRow `json:"rows"`
}

// QueryRow carries every column's cell for one (day, entity) pair.
type QueryRow struct {
	Day    string                     `json:"day"`
	Entity string                     `json:"entity"`
	Cells  map[string]estimates.Value `json:"cells"`
}

const dayLayout = "2006-01-02"

// Query handles POST /api/estimates/query.
func (h *EstimatesHandler) Query(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := h.engine.Run(r.Context(), req.Policy, req.query)
	if err != nil {
		respondError(w, queryErrorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, buildResponse(req.Policy, table))
}

// Stream handles GET /api/estimates/stream: it upgrades to a websocket, reads
// one query request, and pushes one message per trading day in order.
func (h *EstimatesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	var body QueryRequest
	if err := conn.ReadJSON(&body); err != nil {
		conn.WriteJSON(map[string]string{"error": "invalid query: " + err.Error()})
		return
	}

	req, err := h.buildQuery(body)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	table, err := h.engine.Run(r.Context(), req.Policy, req.query)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	for i, d := range table.Days {
		msg := struct {
			Day  string     `json:"day"`
			Rows []QueryRow `json:"rows"`
		}{Day: d.Format(dayLayout)}

		for _, entity := range table.Entities {
			msg.Rows = append(msg.Rows, QueryRow{
				Day:    msg.Day,
				Entity: entity,
				Cells:  table.Row(i, entity),
			})
		}

		if err := conn.WriteJSON(msg); err != nil {
			h.logger.WithError(err).Debug("Websocket write failed, closing stream")
			return
		}
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}

// Reload handles POST /api/estimates/reload.
func (h *EstimatesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Reload(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.engine.Status())
}

// Health handles GET /health.
func (h *EstimatesHandler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Status()
	status := http.StatusOK
	if !st.Loaded {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]interface{}{
		"status":   healthWord(st.Loaded),
		"loaded":   st.Loaded,
		"reports":  st.Reports,
		"entities": st.Entities,
	})
}

func healthWord(loaded bool) string {
	if loaded {
		return "healthy"
	}
	return "loading"
}

type parsedQuery struct {
	Policy string
	query  estimates.Query
}

func (h *EstimatesHandler) parseQuery(r *http.Request) (parsedQuery, error) {
	var body QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return parsedQuery{}, errors.New("invalid request body: " + err.Error())
	}
	return h.buildQuery(body)
}

func (h *EstimatesHandler) buildQuery(body QueryRequest) (parsedQuery, error) {
	if body.Policy != "next" && body.Policy != "previous" {
		return parsedQuery{}, errors.New(`policy must be "next" or "previous"`)
	}

	start, err := time.Parse(dayLayout, body.Start)
	if err != nil {
		return parsedQuery{}, errors.New("invalid start date: " + body.Start)
	}
	end, err := time.Parse(dayLayout, body.End)
	if err != nil {
		return parsedQuery{}, errors.New("invalid end date: " + body.End)
	}
	if end.Before(start) {
		return parsedQuery{}, errors.New("end date before start date")
	}

	ids := body.Entities
	if len(ids) == 0 {
		ids = h.registry.IDs()
	}
	entities, err := h.registry.Resolve(ids)
	if err != nil {
		return parsedQuery{}, err
	}

	return parsedQuery{
		Policy: body.Policy,
		query: estimates.Query{
			Days:        h.calendar.Sessions(start, end),
			Entities:    entities,
			QuartersOut: body.QuartersOut,
		},
	}, nil
}

func buildResponse(policy string, table *estimates.Table) QueryResponse {
	resp := QueryResponse{
		Policy:   policy,
		Entities: table.Entities,
		Columns:  table.Columns(),
		Days:     make([]string, len(table.Days)),
	}
	for i, d := range table.Days {
		resp.Days[i] = d.Format(dayLayout)
		for _, entity := range table.Entities {
			resp.Rows = append(resp.Rows, QueryRow{
				Day:    resp.Days[i],
				Entity: entity,
				Cells:  table.Row(i, entity),
			})
		}
	}
	return resp
}

func queryErrorStatus(err error) int {
	if errors.Is(err, estimates.ErrInvalidQuantity) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
