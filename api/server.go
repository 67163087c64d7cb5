// Package api exposes the match controller over HTTP and streams frames of
// running matches over a websocket.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

var (
	// SocketPollInterval is how often a websocket checks for new frames.
	SocketPollInterval = 50 * time.Millisecond

	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	openSockets int64
)

func init() {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "engine",
			Subsystem: "api",
			Name:      "open_sockets",
			Help:      "Websockets currently streaming frames.",
		},
		func() float64 { return float64(atomic.LoadInt64(&openSockets)) },
	))
}

// CreateResponse is returned by POST /matches.
type CreateResponse struct {
	ID string
}

// StatusResponse is returned by GET /matches/:id.
type StatusResponse struct {
	Match     *rules.Match
	LastFrame *rules.Frame
}

// FramesResponse is returned by GET /matches/:id/frames.
type FramesResponse struct {
	Count  int
	Frames []*rules.Frame
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP front of a controller.
type Server struct {
	hs   *http.Server
	ctrl *controller.Controller
}

// New creates a server listening on addr once WaitForExit is called.
func New(addr string, ctrl *controller.Controller) *Server {
	s := &Server{ctrl: ctrl}
	s.hs = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	return s
}

// Handler returns the routes of the server wrapped in a permissive CORS
// handler.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.POST("/matches", s.create)
	router.POST("/matches/:id/start", s.start)
	router.GET("/matches/:id", s.status)
	router.GET("/matches/:id/frames", s.frames)
	router.GET("/socket/:id", s.socket)
	router.Handler("GET", "/metrics", promhttp.Handler())
	return cors.Default().Handler(router)
}

// WaitForExit serves until the server is shut down.
func (s *Server) WaitForExit() error {
	log.WithField("addr", s.hs.Addr).Info("cycles api listening")
	err := s.hs.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for open requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.hs.Shutdown(ctx)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := &rules.CreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid create request"))
		return
	}
	match, err := s.ctrl.Create(r.Context(), req)
	if err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CreateResponse{ID: match.ID})
}

func (s *Server) start(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.ctrl.Start(r.Context(), ps.ByName("id")); err != nil {
		writeControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	match, frame, err := s.ctrl.Status(r.Context(), ps.ByName("id"))
	if err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Match: match, LastFrame: frame})
}

func (s *Server) frames(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	frames, err := s.ctrl.Frames(r.Context(), ps.ByName("id"), offset, limit)
	if err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FramesResponse{Count: len(frames), Frames: frames})
}

// socket sends every frame of the match, oldest first, and closes once the
// match has stopped running and nothing is left to send.
func (s *Server) socket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	if _, err := s.ctrl.Store.GetMatch(ctx, id); err != nil {
		writeControllerError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("unable to upgrade websocket")
		return
	}
	defer conn.Close()
	atomic.AddInt64(&openSockets, 1)
	defer atomic.AddInt64(&openSockets, -1)

	// Clients never send anything, reading only notices them going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logger := log.WithField("MatchID", id)
	offset := 0
	for {
		if ctx.Err() != nil {
			logger.Debug("websocket closed by client")
			return
		}
		// The status is read before the frames so a finished match never
		// loses its final frames.
		match, err := s.ctrl.Store.GetMatch(ctx, id)
		if err != nil {
			logger.WithError(err).Error("unable to load match for websocket")
			return
		}
		frames, err := s.ctrl.Frames(ctx, id, offset, controller.MaxFrames)
		if err != nil {
			logger.WithError(err).Error("unable to load frames for websocket")
			return
		}
		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				logger.WithError(err).Debug("websocket closed by client")
				return
			}
		}
		offset += len(frames)

		if len(frames) == 0 && match.Status != rules.MatchStatusRunning {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(match.Status))
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
		if len(frames) < controller.MaxFrames {
			select {
			case <-ctx.Done():
			case <-time.After(SocketPollInterval):
			}
		}
	}
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return i, nil
}

func writeControllerError(w http.ResponseWriter, err error) {
	switch errors.Cause(err) {
	case controller.ErrNotFound:
		writeError(w, http.StatusNotFound, err)
	case controller.ErrNotStartable:
		writeError(w, http.StatusConflict, err)
	case rules.ErrPlayerCount, rules.ErrInvalidBoard, rules.ErrInvalidArena, rules.ErrInvalidDriver:
		writeError(w, http.StatusBadRequest, err)
	default:
		log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("unable to write response")
	}
}
