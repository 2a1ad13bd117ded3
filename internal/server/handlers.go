package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/graph"
	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
	"github.com/matzehuels/ghgraph/pkg/render/svg"
	"github.com/matzehuels/ghgraph/pkg/session"
)

type createRequest struct {
	Repo string `json:"repo"`
}

type graphInfo struct {
	ID        string    `json:"id"`
	Repo      string    `json:"repo"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// dragRequest moves a node to (X, Y) while a drag lasts; Drop ends it.
type dragRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Drop bool    `json:"drop"`
}

type toggleResponse struct {
	Action   string         `json:"action"`
	Snapshot graph.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) listGraphs(w http.ResponseWriter, r *http.Request) {
	list := s.registry.List()
	out := make([]graphInfo, len(list))
	for i, sess := range list {
		out[i] = info(sess)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	sess, err := s.registry.Create(r.Context(), req.Repo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("Created graph", "graph", sess.ID, "repo", sess.Repo)
	w.Header().Set("Location", "/api/graphs/"+sess.ID)
	writeJSON(w, http.StatusCreated, sess.Controller.Snapshot())
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Controller.Snapshot())
}

func (s *Server) deleteGraph(w http.ResponseWriter, r *http.Request) {
	s.registry.Delete(chi.URLParam(r, "graph"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	action, err := sess.Controller.Toggle(r.Context(), chi.URLParam(r, "node"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Action: action.String(), Snapshot: sess.Controller.Snapshot()})
}

func (s *Server) dragNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req dragRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<12)).Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	id := chi.URLParam(r, "node")
	var err error
	if req.Drop {
		err = sess.Controller.Drop(id)
	} else {
		err = sess.Controller.Drag(id, req.X, req.Y)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Controller.Snapshot())
}

func (s *Server) step(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ticks := 1
	if v := r.URL.Query().Get("ticks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxStepTicks {
			s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "ticks must be between 1 and %d", maxStepTicks))
			return
		}
		ticks = n
	}
	for i := 0; i < ticks && sess.Controller.Step(); i++ {
	}
	writeJSON(w, http.StatusOK, sess.Controller.Snapshot())
}

func (s *Server) settle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), settleTimeout)
	defer cancel()
	if _, err := sess.Controller.Settle(ctx, nil); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Controller.Snapshot())
}

func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	opts := []svg.Option{svg.WithTooltips()}
	if r.URL.Query().Get("labels") == "true" {
		opts = append(opts, svg.WithLabels())
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg.Render(sess.Controller.Snapshot(), opts...))
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	dot := nodelink.ToDOT(sess.Controller.Snapshot(), nodelink.Options{Labels: r.URL.Query().Get("labels") == "true"})
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	io.WriteString(w, dot)
}

// lookup resolves the {graph} parameter, answering 404 itself when the
// instance is gone.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "graph")
	sess, err := s.registry.Get(id)
	if err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInstanceNotFound, err, "graph %s", id))
		return nil, false
	}
	return sess, true
}

func info(sess *session.Session) graphInfo {
	return graphInfo{ID: sess.ID, Repo: sess.Repo, CreatedAt: sess.CreatedAt, ExpiresAt: sess.ExpiresAt}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	code := string(errs.GetCode(err))
	if errors.Is(err, session.ErrFull) {
		status, code = http.StatusServiceUnavailable, "TOO_MANY_GRAPHS"
	}
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("Request failed", "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errs.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if snap, ok := v.(graph.Snapshot); ok {
		graph.WriteSnapshot(snap, w)
		return
	}
	json.NewEncoder(w).Encode(v)
}
