package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/MagicGod/shly/internal/review"
	"github.com/MagicGod/shly/internal/runtime"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

const ssePingInterval = 15 * time.Second

// ReviewController exposes the consumer control surface of the review
// engine. Every endpoint requires the caller identity.
type ReviewController struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// NewReviewController creates a new review controller.
func NewReviewController(rt *runtime.Runtime, logger logpkg.Logger) *ReviewController {
	return &ReviewController{rt: rt, logger: logger}
}

// RegisterRoutes registers review routes with the given mux.
func (c *ReviewController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/review/start", c.withConsumer(http.MethodPost, c.handleStart))
	mux.HandleFunc("/v1/review/skip", c.withConsumer(http.MethodPost, c.handleSkip))
	mux.HandleFunc("/v1/review/verdict", c.withConsumer(http.MethodPost, c.handleVerdict))
	mux.HandleFunc("/v1/review/status", c.withConsumer(http.MethodGet, c.handleStatus))
	mux.HandleFunc("/v1/review/current", c.withConsumer(http.MethodGet, c.handleCurrent))
	mux.HandleFunc("/v1/review/accepted", c.withConsumer(http.MethodGet, c.handleAccepted))
	mux.HandleFunc("/v1/review/events", c.withConsumer(http.MethodGet, c.handleEvents))
}

type consumerHandler func(w http.ResponseWriter, r *http.Request, consumer string)

// withConsumer enforces the method and resolves the caller identity.
func (c *ReviewController) withConsumer(method string, next consumerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, method) {
			return
		}
		id := consumerID(r)
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing "+ConsumerHeader)
			return
		}
		next(w, r, id)
	}
}

// handleStart (re)builds the caller's queue and presents the first item.
func (c *ReviewController) handleStart(w http.ResponseWriter, r *http.Request, consumer string) {
	n := c.rt.Engine().Start(r.Context(), consumer)
	resp := startResp{Queued: n}
	if n == 0 {
		resp.Message = "no items available"
	}
	writeJSON(w, resp)
}

// handleSkip moves past the current item without judging it. The body is
// optional; a presentation_id in it must match the outstanding presentation.
func (c *ReviewController) handleSkip(w http.ResponseWriter, r *http.Request, consumer string) {
	var req skipReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	resp := skipResp{Status: "applied"}
	if err := c.rt.Engine().Skip(r.Context(), consumer, req.PresentationID); err != nil {
		if !errors.Is(err, review.ErrStaleAction) {
			writeReviewError(w, err)
			return
		}
		resp.Status = "ignored"
	}
	resp.Queue = c.rt.Engine().Status(consumer)
	writeJSON(w, resp)
}

// handleVerdict applies accept or reject to the owner's current item.
func (c *ReviewController) handleVerdict(w http.ResponseWriter, r *http.Request, consumer string) {
	var req verdictReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	action, err := review.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}
	owner := req.Owner
	if owner == "" {
		owner = consumer
	}
	err = c.rt.Engine().Judge(r.Context(), review.Verdict{
		Owner:          owner,
		Actor:          consumer,
		Action:         action,
		PresentationID: req.PresentationID,
	})
	if err != nil {
		if !errors.Is(err, review.ErrStaleAction) {
			c.logger.Debug("verdict refused", logpkg.Consumer(consumer), logpkg.Err(err))
		}
		writeReviewError(w, err)
		return
	}
	writeJSON(w, verdictResp{Status: "applied", Action: string(action)})
}

// handleStatus returns queue sizes and the current item.
func (c *ReviewController) handleStatus(w http.ResponseWriter, r *http.Request, consumer string) {
	writeJSON(w, c.rt.Engine().Status(consumer))
}

// handleCurrent returns the latest presentation delivered to the caller.
func (c *ReviewController) handleCurrent(w http.ResponseWriter, r *http.Request, consumer string) {
	p, ok := c.rt.Hub().Outstanding(consumer)
	if !ok {
		writeError(w, http.StatusNotFound, "no outstanding presentation")
		return
	}
	writeJSON(w, p)
}

// handleAccepted returns the caller's accepted keys.
func (c *ReviewController) handleAccepted(w http.ResponseWriter, r *http.Request, consumer string) {
	list := c.rt.Engine().Accepted(consumer)
	if list == nil {
		list = []string{}
	}
	writeJSON(w, acceptedResp{ConsumerID: consumer, Count: len(list), Accepted: list})
}

// handleEvents streams the caller's notifications until the client goes
// away. An outstanding presentation is sent first.
func (c *ReviewController) handleEvents(w http.ResponseWriter, r *http.Request, consumer string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sink := sseSink{w: w, r: r}
	_ = sink.Flush()

	sub := c.rt.Hub().Subscribe(consumer)
	defer sub.Close()
	c.logger.Debug("event stream opened", logpkg.Consumer(consumer))
	defer c.logger.Debug("event stream closed", logpkg.Consumer(consumer))

	ping := time.NewTicker(ssePingInterval)
	defer ping.Stop()
	for {
		select {
		case <-sink.Context().Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := sink.Send(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := sink.Ping(); err != nil {
				return
			}
		}
	}
}
