package httpserver

import (
	"net/http"

	taskhttp "kanvas/contexts/collaboration/task-service/transport/http"

	"github.com/go-chi/chi/v5"
)

// Task routes carry their board in X-Board-Id, set by the gateway together
// with X-Board-Role.
func (s *Server) mountTaskRoutes(r chi.Router) {
	r.Route("/columns", func(r chi.Router) {
		r.Get("/", s.handleListBoardColumns)
		r.Post("/", s.handleCreateColumn)
		r.Patch("/{columnId}", s.handleRenameColumn)
		r.Post("/{columnId}/move", s.handleMoveColumn)
		r.Delete("/{columnId}", s.handleDeleteColumn)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", s.handleCreateTask)
		r.Get("/{taskId}", s.handleGetTask)
		r.Patch("/{taskId}", s.handleUpdateTask)
		r.Post("/{taskId}/move", s.handleMoveTask)
		r.Delete("/{taskId}", s.handleDeleteTask)
		r.Post("/{taskId}/assignees", s.handleAssignTask)
		r.Delete("/{taskId}/assignees", s.handleUnassignTask)
	})
}

func (s *Server) handleListBoardColumns(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	resp, err := s.services.Task.Handler.ListBoardHandler(r.Context(), actor)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateColumn(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	var req taskhttp.CreateColumnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Task.Handler.CreateColumnHandler(r.Context(), actor, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRenameColumn(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	columnID, ok := pathID(w, r, "columnId")
	if !ok {
		return
	}
	var req taskhttp.RenameColumnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Task.Handler.RenameColumnHandler(r.Context(), actor, columnID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMoveColumn(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	columnID, ok := pathID(w, r, "columnId")
	if !ok {
		return
	}
	var req taskhttp.MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Task.Handler.MoveColumnHandler(r.Context(), actor, columnID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	columnID, ok := pathID(w, r, "columnId")
	if !ok {
		return
	}
	if err := s.services.Task.Handler.DeleteColumnHandler(r.Context(), actor, columnID); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	var req taskhttp.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Task.Handler.CreateTaskHandler(r.Context(), actor, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}
	resp, err := s.services.Task.Handler.GetTaskHandler(r.Context(), actor, taskID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}
	var req taskhttp.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Task.Handler.UpdateTaskHandler(r.Context(), actor, taskID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}
	var req taskhttp.MoveTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Task.Handler.MoveTaskHandler(r.Context(), actor, taskID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}
	if err := s.services.Task.Handler.DeleteTaskHandler(r.Context(), actor, taskID); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}
	var req taskhttp.AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Task.Handler.AssignTaskHandler(r.Context(), actor, taskID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUnassignTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := boardActor(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}
	var req taskhttp.AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.services.Task.Handler.UnassignTaskHandler(r.Context(), actor, taskID, req); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
