package lists

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	authapi "taskboard/cmd/internal/auth/api"
)

// Handler exposes the list/task CRUD surface. Every route runs behind the
// stateless access-token guard and operates on the guard's user id only.
type Handler struct {
	log   *slog.Logger
	store Store
}

// NewHandler constructs a lists Handler.
func NewHandler(log *slog.Logger, store Store) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, errors.New("lists: nil store")
	}
	return &Handler{log: log, store: store}, nil
}

// Register wires list/task routes onto the mux, each wrapped in guard.
func (h *Handler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	if h == nil || mux == nil || guard == nil {
		return
	}

	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, guard(fn))
	}

	route("GET /lists", h.handleGetLists)
	route("POST /lists", h.handleCreateList)
	route("PATCH /lists/{id}", h.handleUpdateList)
	route("DELETE /lists/{id}", h.handleDeleteList)

	route("GET /lists/{listId}/tasks", h.handleGetTasks)
	route("POST /lists/{listId}/tasks", h.handleCreateTask)
	route("PATCH /lists/{listId}/tasks/{taskId}", h.handleUpdateTask)
	route("DELETE /lists/{listId}/tasks/{taskId}", h.handleDeleteTask)
}

// Wire documents keep the field names existing clients already parse.

type listDoc struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"_userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type taskDoc struct {
	ID        string    `json:"_id"`
	ListID    string    `json:"_listId"`
	UserID    string    `json:"_userId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

type titleRequest struct {
	Title string `json:"title"`
}

type taskPatchRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func toListDoc(l List) listDoc {
	return listDoc{ID: l.ID, UserID: l.UserID, Title: l.Title, CreatedAt: l.CreatedAt}
}

func toTaskDoc(t Task) taskDoc {
	return taskDoc{
		ID:        t.ID,
		ListID:    t.ListID,
		UserID:    t.UserID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
}

// ---- list handlers ----

func (h *Handler) handleGetLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	all, err := h.store.ListsByUser(r.Context(), userID)
	if err != nil {
		h.fail(w, "lists.get.fail", err)
		return
	}

	docs := make([]listDoc, 0, len(all))
	for _, l := range all {
		docs = append(docs, toListDoc(l))
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) handleCreateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	var req titleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.store.CreateList(r.Context(), userID, req.Title, time.Now().UTC())
	if err != nil {
		h.fail(w, "lists.create.fail", err)
		return
	}

	h.log.Info("lists.create", "user_id", userID, "list_id", l.ID)
	writeJSON(w, http.StatusOK, toListDoc(l))
}

func (h *Handler) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	var req titleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.store.UpdateList(r.Context(), userID, r.PathValue("id"), req.Title)
	if err != nil {
		h.fail(w, "lists.update.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, toListDoc(l))
}

func (h *Handler) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	l, err := h.store.DeleteList(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.fail(w, "lists.delete.fail", err)
		return
	}

	h.log.Info("lists.delete", "user_id", userID, "list_id", l.ID)
	writeJSON(w, http.StatusOK, toListDoc(l))
}

// ---- task handlers ----

func (h *Handler) handleGetTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	all, err := h.store.TasksByList(r.Context(), userID, r.PathValue("listId"))
	if err != nil {
		h.fail(w, "tasks.get.fail", err)
		return
	}

	docs := make([]taskDoc, 0, len(all))
	for _, t := range all {
		docs = append(docs, toTaskDoc(t))
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	var req titleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.store.CreateTask(r.Context(), userID, r.PathValue("listId"), req.Title, time.Now().UTC())
	if err != nil {
		h.fail(w, "tasks.create.fail", err)
		return
	}

	h.log.Info("tasks.create", "user_id", userID, "task_id", t.ID)
	writeJSON(w, http.StatusOK, toTaskDoc(t))
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	var req taskPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.store.UpdateTask(r.Context(), userID,
		r.PathValue("listId"), r.PathValue("taskId"),
		TaskPatch{Title: req.Title, Completed: req.Completed})
	if err != nil {
		h.fail(w, "tasks.update.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDoc(t))
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	t, err := h.store.DeleteTask(r.Context(), userID, r.PathValue("listId"), r.PathValue("taskId"))
	if err != nil {
		h.fail(w, "tasks.delete.fail", err)
		return
	}

	h.log.Info("tasks.delete", "user_id", userID, "task_id", t.ID)
	writeJSON(w, http.StatusOK, toTaskDoc(t))
}

// ---- helpers ----

func (h *Handler) fail(w http.ResponseWriter, event string, err error) {
	switch {
	case IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found")
	case IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		h.log.Error(event, "err", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}
