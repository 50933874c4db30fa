package httpserver

import (
	"net/http"
	"strconv"

	boardentities "kanvas/contexts/collaboration/board-service/domain/entities"
	boardhttp "kanvas/contexts/collaboration/board-service/transport/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountBoardRoutes(r chi.Router) {
	r.Route("/workspaces", func(r chi.Router) {
		r.Post("/", s.handleCreateWorkspace)
		r.Get("/", s.handleListWorkspaces)
		r.Get("/guest", s.handleListGuestWorkspaces)
		r.Get("/{workspaceId}", s.handleGetWorkspace)
		r.Patch("/{workspaceId}", s.handleUpdateWorkspace)
		r.Delete("/{workspaceId}", s.handleDeleteWorkspace)
		r.Get("/{workspaceId}/members", s.handleListWorkspaceMembers)
		r.Patch("/{workspaceId}/members/{memberId}", s.handleChangeWorkspaceMemberRole)
		r.Delete("/{workspaceId}/members/{memberId}", s.handleRemoveWorkspaceMember)
		r.Post("/{workspaceId}/boards", s.handleCreateBoard)
		r.Post("/{workspaceId}/invitations", s.handleCreateInvitation(boardentities.ScopeWorkspace, "workspaceId"))
	})

	r.Route("/boards", func(r chi.Router) {
		r.Get("/roles/lookup", s.handleLookupBoardRole)
		r.Get("/{boardId}", s.handleGetBoard)
		r.Patch("/{boardId}", s.handleUpdateBoard)
		r.Delete("/{boardId}", s.handleDeleteBoard)
		r.Get("/{boardId}/members", s.handleListBoardMembers)
		r.Patch("/{boardId}/members/{memberId}", s.handleChangeBoardMemberRole)
		r.Delete("/{boardId}/members/{memberId}", s.handleRemoveBoardMember)
		r.Post("/{boardId}/leave", s.handleLeaveBoard)
		r.Post("/{boardId}/invitations", s.handleCreateInvitation(boardentities.ScopeBoard, "boardId"))
	})

	r.Route("/invitations", func(r chi.Router) {
		r.Get("/", s.handleListInvitations)
		r.Post("/{invitationId}/accept", s.handleRespondInvitation(true))
		r.Post("/{invitationId}/decline", s.handleRespondInvitation(false))
	})
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	var req boardhttp.CreateWorkspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Board.Handler.CreateWorkspaceHandler(r.Context(), actorID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	resp, err := s.services.Board.Handler.ListWorkspacesHandler(r.Context(), actorID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListGuestWorkspaces(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	resp, err := s.services.Board.Handler.ListGuestWorkspacesHandler(r.Context(), actorID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	resp, err := s.services.Board.Handler.GetWorkspaceHandler(r.Context(), actorID, workspaceID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	var req boardhttp.UpdateWorkspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Board.Handler.UpdateWorkspaceHandler(r.Context(), actorID, workspaceID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	if err := s.services.Board.Handler.DeleteWorkspaceHandler(r.Context(), actorID, workspaceID); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWorkspaceMembers(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	resp, err := s.services.Board.Handler.ListWorkspaceMembersHandler(r.Context(), actorID, workspaceID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChangeWorkspaceMemberRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}
	var req boardhttp.ChangeRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Board.Handler.ChangeWorkspaceMemberRoleHandler(r.Context(), actorID, workspaceID, memberID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveWorkspaceMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}
	if err := s.services.Board.Handler.RemoveWorkspaceMemberHandler(r.Context(), actorID, workspaceID, memberID); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	var req boardhttp.CreateBoardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Board.Handler.CreateBoardHandler(r.Context(), actorID, workspaceID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}
	resp, err := s.services.Board.Handler.GetBoardHandler(r.Context(), actorID, boardID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}
	var req boardhttp.UpdateBoardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Board.Handler.UpdateBoardHandler(r.Context(), actorID, boardID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}
	if err := s.services.Board.Handler.DeleteBoardHandler(r.Context(), actorID, boardID); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBoardMembers(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}
	resp, err := s.services.Board.Handler.ListBoardMembersHandler(r.Context(), actorID, boardID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChangeBoardMemberRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}
	var req boardhttp.ChangeRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Board.Handler.ChangeBoardMemberRoleHandler(r.Context(), actorID, boardID, memberID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveBoardMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}
	if err := s.services.Board.Handler.RemoveBoardMemberHandler(r.Context(), actorID, boardID, memberID); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaveBoard(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(w, r, "boardId")
	if !ok {
		return
	}
	if err := s.services.Board.Handler.LeaveBoardHandler(r.Context(), actorID, boardID); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLookupBoardRole answers the gateway with the bare role token. It is
// never routed from outside the cluster.
func (s *Server) handleLookupBoardRole(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	principalID, err := strconv.ParseInt(query.Get("principal"), 10, 64)
	if err != nil || principalID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "principal must be a positive integer")
		return
	}
	boardID, err := strconv.ParseInt(query.Get("container"), 10, 64)
	if err != nil || boardID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "container must be a positive integer")
		return
	}
	role, err := s.services.Board.Handler.LookupBoardRoleHandler(r.Context(), principalID, boardID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(role))
}

func (s *Server) handleCreateInvitation(scope boardentities.InvitationScope, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := principal(w, r)
		if !ok {
			return
		}
		containerID, ok := pathID(w, r, param)
		if !ok {
			return
		}
		var req boardhttp.CreateInvitationRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := s.services.Board.Handler.CreateInvitationHandler(r.Context(), actorID, scope, containerID, req)
		if err != nil {
			writeDomainError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	actorID, ok := principal(w, r)
	if !ok {
		return
	}
	resp, err := s.services.Board.Handler.ListInvitationsHandler(r.Context(), actorID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRespondInvitation(accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := principal(w, r)
		if !ok {
			return
		}
		invitationID, ok := pathID(w, r, "invitationId")
		if !ok {
			return
		}
		resp, err := s.services.Board.Handler.RespondInvitationHandler(r.Context(), actorID, invitationID, accept)
		if err != nil {
			writeDomainError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
