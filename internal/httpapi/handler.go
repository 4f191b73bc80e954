// Package httpapi отдаёт инструменты расчёта и пересчёт записей по HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cloud-ru/erp-finance-summary/internal/access"
	"github.com/cloud-ru/erp-finance-summary/internal/engine"
	"github.com/cloud-ru/erp-finance-summary/internal/entities"
	"github.com/cloud-ru/erp-finance-summary/internal/metrics"
	"github.com/cloud-ru/erp-finance-summary/internal/navigation"
	"github.com/cloud-ru/erp-finance-summary/internal/tools"
	"github.com/cloud-ru/erp-finance-summary/internal/upstream"
	"github.com/cloud-ru/erp-finance-summary/internal/validators"
)

// UserHeader идентифицирует вызывающего; аутентификация выполняется до сервиса
const UserHeader = "X-User-ID"

const maxBodySize = 1 << 20

// RecordStore сохраняет пересчитанные записи
type RecordStore interface {
	Create(ctx context.Context, resource, envelope string, record map[string]any) (map[string]any, error)
	Update(ctx context.Context, resource, envelope, id string, record map[string]any) (map[string]any, error)
}

// AccessResolver получает и сбрасывает наборы разрешённых модулей
type AccessResolver interface {
	Resolve(ctx context.Context, userID string) (*access.Context, error)
	Invalidate(ctx context.Context, userID string) error
}

// Handler обслуживает API
type Handler struct {
	log    *zap.Logger
	limits validators.Limits
	tools  tools.Registry
	store  RecordStore
	access AccessResolver
	menu   []navigation.NavNode
}

// NewHandler собирает обработчик API
func NewHandler(log *zap.Logger, limits validators.Limits, registry tools.Registry, store RecordStore, resolver AccessResolver) *Handler {
	return &Handler{
		log:    log,
		limits: limits,
		tools:  registry,
		store:  store,
		access: resolver,
		menu:   navigation.Menu(),
	}
}

type profileKey struct{}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) runTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tool")
	tool, ok := h.tools[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown tool "+name)
		return
	}

	params, err := decodeObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := tool(r.Context(), params)
	var verr *tools.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(verr.Errors, verr.Warnings))
		return
	case err != nil:
		h.log.Error("tool failed", zap.String("tool", name), zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	profile := profileFrom(r)
	record, err := decodeRecord(w, r, profile.Envelope)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := engine.Summarize(profile, record, h.limits)
	writeJSON(w, http.StatusOK, map[string]any{
		profile.Envelope: res.Record,
		"errors":         res.Errors,
		"warnings":       res.Warnings,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string) {
	profile := profileFrom(r)
	record, err := decodeRecord(w, r, profile.Envelope)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := engine.Summarize(profile, record, h.limits)
	if !res.OK() {
		for _, f := range res.Errors.Fields() {
			metrics.ValidationFailures.WithLabelValues(profile.Resource, f).Inc()
		}
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(res.Errors, res.Warnings))
		return
	}

	ctx := upstream.WithAuthorization(r.Context(), r.Header.Get("Authorization"))
	var stored map[string]any
	status := http.StatusCreated
	if id == "" {
		stored, err = h.store.Create(ctx, profile.Resource, profile.Envelope, res.Record)
	} else {
		status = http.StatusOK
		stored, err = h.store.Update(ctx, profile.Resource, profile.Envelope, id, res.Record)
	}
	if err != nil {
		h.writeUpstreamError(w, profile.Resource, err)
		return
	}

	body := map[string]any{profile.Envelope: stored}
	if !res.Warnings.OK() {
		body["warnings"] = res.Warnings
	}
	writeJSON(w, status, body)
}

func (h *Handler) navigation(w http.ResponseWriter, r *http.Request) {
	ac := access.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"navigation": navigation.ForAccess(h.menu, ac),
		"modules":    ac.Modules(),
	})
}

// invalidateAccess сбрасывает кэш прав; пользователь может сбросить только свой
func (h *Handler) invalidateAccess(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if access.FromContext(r.Context()).UserID() != userID {
		writeError(w, http.StatusForbidden, "cannot invalidate access of another user")
		return
	}
	if err := h.access.Invalidate(r.Context(), userID); err != nil {
		h.log.Error("invalidate access", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not invalidate access")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// withAccess получает разрешённые модули вызывающего
func (h *Handler) withAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing "+UserHeader+" header")
			return
		}
		ctx := upstream.WithAuthorization(r.Context(), r.Header.Get("Authorization"))
		ac, err := h.access.Resolve(ctx, userID)
		if err != nil {
			h.log.Error("resolve access", zap.String("user_id", userID), zap.Error(err))
			h.writeUpstreamError(w, "access", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(access.WithContext(r.Context(), ac)))
	})
}

// requireModule находит профиль ресурса и проверяет доступ к модулю
func (h *Handler) requireModule(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resource := chi.URLParam(r, "resource")
		profile, ok := entities.Lookup(resource)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown resource "+resource)
			return
		}
		if !access.FromContext(r.Context()).HasModuleAccess(profile.Module) {
			writeError(w, http.StatusForbidden, "no access to module "+profile.Module)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey{}, profile)))
	})
}

func (h *Handler) writeUpstreamError(w http.ResponseWriter, resource string, err error) {
	var upErr *upstream.Error
	if errors.As(err, &upErr) {
		writeError(w, upErr.Status, upErr.Message)
		return
	}
	h.log.Error("upstream unavailable", zap.String("resource", resource), zap.Error(err))
	writeError(w, http.StatusBadGateway, "upstream service unavailable")
}

func profileFrom(r *http.Request) entities.Profile {
	p, _ := r.Context().Value(profileKey{}).(entities.Profile)
	return p
}

func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if body == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return body, nil
}

// decodeRecord принимает запись как есть или в обёртке {<envelope>: {...}}
func decodeRecord(w http.ResponseWriter, r *http.Request, envelope string) (map[string]any, error) {
	body, err := decodeObject(w, r)
	if err != nil {
		return nil, err
	}
	if len(body) == 1 {
		if inner, ok := body[envelope].(map[string]any); ok {
			return inner, nil
		}
	}
	return body, nil
}

func validationBody(errs, warnings validators.Errors) map[string]any {
	if warnings == nil {
		warnings = validators.Errors{}
	}
	return map[string]any{
		"error":    "validation failed",
		"errors":   errs,
		"warnings": warnings,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
