package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/revenue-middleware/pkg/app/errors"
	apphttp "github.com/chainsafe/revenue-middleware/pkg/app/http"
	"github.com/chainsafe/revenue-middleware/pkg/auth"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

const (
	heartbeatInterval = 15 * time.Second
	maxBodyBytes      = 1 << 20
)

type httpHandler struct {
	svc    Service
	logger *zap.Logger
}

type acceptedResponse struct {
	Status string `json:"status"`
}

var accepted = acceptedResponse{Status: "accepted"}

// RegisterRoutes mounts the revenue API on r. The routes expect the
// authenticated account in the request context (see auth.Middleware).
func RegisterRoutes(r chi.Router, svc Service, logger *zap.Logger) {
	h := &httpHandler{svc: svc, logger: logger}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/events", apphttp.HandleError(h.events))

		r.Route("/entities/{entityID}", func(r chi.Router) {
			r.Get("/snapshot", apphttp.HandleError(h.getSnapshot))
			r.Post("/snapshot/refresh", apphttp.HandleError(h.refreshSnapshot))
			r.Post("/snapshot/live", apphttp.HandleError(h.liveUpdate))
			r.Get("/snapshot/history", apphttp.HandleError(h.snapshotHistory))
			r.Get("/withdrawal", apphttp.HandleError(h.withdrawal))

			r.Post("/transactions/invalidate", apphttp.HandleError(h.invalidateStreams))
			r.Post("/transactions/preload", apphttp.HandleError(h.preloadStreams))
			r.Get("/transactions/{stream}", apphttp.HandleError(h.getStream))
			r.Post("/transactions/{stream}/load", apphttp.HandleError(h.loadStream))
		})
	})
}

func accountOf(r *http.Request) (revenue.AccountID, error) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		return 0, apperrors.UnAuthorizedError(nil, "authentication required")
	}
	return account, nil
}

// target resolves the authenticated account and the entity in the path.
func target(r *http.Request) (revenue.AccountID, revenue.EntityID, error) {
	account, err := accountOf(r)
	if err != nil {
		return 0, 0, err
	}
	entity, err := revenue.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		return 0, 0, apperrors.BadRequestError(err, "invalid entity id")
	}
	return account, entity, nil
}

func streamParam(r *http.Request) (revenue.StreamType, error) {
	st, err := revenue.ParseStreamType(chi.URLParam(r, "stream"))
	if err != nil {
		return 0, apperrors.BadRequestError(err, "unknown stream")
	}
	return st, nil
}

func boolQuery(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.BadRequestError(err, fmt.Sprintf("invalid %s parameter", name))
	}
	return v, nil
}

func (h *httpHandler) getSnapshot(w http.ResponseWriter, r *http.Request) error {
	account, entity, err := target(r)
	if err != nil {
		return err
	}
	read, err := boolQuery(r, "read")
	if err != nil {
		return err
	}

	view, err := h.svc.GetSnapshot(r.Context(), account, entity, read)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, view)
	return nil
}

func (h *httpHandler) refreshSnapshot(w http.ResponseWriter, r *http.Request) error {
	account, entity, err := target(r)
	if err != nil {
		return err
	}
	force, err := boolQuery(r, "force")
	if err != nil {
		return err
	}
	preload, err := boolQuery(r, "preload")
	if err != nil {
		return err
	}

	mode := RefreshDefault
	switch {
	case force && preload:
		return apperrors.BadRequestError(nil, "force and preload are mutually exclusive")
	case force:
		mode = RefreshForce
	case preload:
		mode = RefreshPreload
	}

	if err := h.svc.RefreshSnapshot(r.Context(), account, entity, mode); err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusAccepted, accepted)
	return nil
}

func (h *httpHandler) liveUpdate(w http.ResponseWriter, r *http.Request) error {
	account, entity, err := target(r)
	if err != nil {
		return err
	}

	var update revenue.BalanceUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&update); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	update.EntityID = entity
	if update.Kind == 0 {
		update.Kind = revenue.PeerBot
	}

	if err := h.svc.HandleBalanceUpdate(r.Context(), account, update); err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusAccepted, accepted)
	return nil
}

func (h *httpHandler) snapshotHistory(w http.ResponseWriter, r *http.Request) error {
	account, entity, err := target(r)
	if err != nil {
		return err
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			return apperrors.BadRequestError(err, "invalid limit parameter")
		}
	}

	records, err := h.svc.SnapshotHistory(r.Context(), account, entity, limit)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"entity_id": entity, "records": records})
	return nil
}

func (h *httpHandler) withdrawal(w http.ResponseWriter, r *http.Request) error {
	account, entity, err := target(r)
	if err != nil {
		return err
	}
	check, err := h.svc.CheckWithdrawal(r.Context(), account, entity)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, check)
	return nil
}

func (h *httpHandler) getStream(w http.ResponseWriter, r *http.Request) error {
	account, entity, err := target(r)
	if err != nil {
		return err
	}
	st, err := streamParam(r)
	if err != nil {
		return err
	}

	view, err := h.svc.GetStream(r.Context(), account, entity, st)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, view)
	return nil
}

func (h *httpHandler) loadStream(w http.ResponseWriter, r *http.Request) error {
	account, entity, err := target(r)
	if err != nil {
		return err
	}
	st, err := streamParam(r)
	if err != nil {
		return err
	}

	if err := h.svc.LoadStream(r.Context(), account, entity, st); err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusAccepted, accepted)
	return nil
}

func (h *httpHandler) invalidateStreams(w http.ResponseWriter, r *http.Request) error {
	account, entity, err := target(r)
	if err != nil {
		return err
	}
	reload, err := boolQuery(r, "reload")
	if err != nil {
		return err
	}

	if err := h.svc.InvalidateStreams(r.Context(), account, entity, reload); err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusAccepted, accepted)
	return nil
}

func (h *httpHandler) preloadStreams(w http.ResponseWriter, r *http.Request) error {
	account, entity, err := target(r)
	if err != nil {
		return err
	}
	if err := h.svc.PreloadStreams(r.Context(), account, entity); err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusAccepted, accepted)
	return nil
}

// events streams the account's bus events as server-sent events until the
// client disconnects or the bus closes.
func (h *httpHandler) events(w http.ResponseWriter, r *http.Request) error {
	account, err := accountOf(r)
	if err != nil {
		return err
	}
	rc := http.NewResponseController(w)

	sub, err := h.svc.Subscribe(r.Context(), account)
	if err != nil {
		return err
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("event stream not flushable", zap.Error(err))
		return nil
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.logger.Warn("failed to encode event", zap.String("topic", string(ev.Topic)), zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, payload); err != nil {
				return nil
			}
		}
		if err := rc.Flush(); err != nil {
			return nil
		}
	}
}
