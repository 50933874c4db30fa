package boardservice

import (
	"log/slog"
	"time"

	httpadapter "kanvas/contexts/collaboration/board-service/adapters/http"
	"kanvas/contexts/collaboration/board-service/adapters/memory"
	"kanvas/contexts/collaboration/board-service/application"
	"kanvas/contexts/collaboration/board-service/application/commands"
	"kanvas/contexts/collaboration/board-service/application/queries"
	"kanvas/contexts/collaboration/board-service/application/workers"
	"kanvas/contexts/collaboration/board-service/ports"
	"kanvas/internal/shared/events"
	"kanvas/internal/shared/outbox"

	"github.com/go-playground/validator/v10"
)

type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.UserReplicaConsumer
	Relay    outbox.Relay
	Store    *memory.Store
}

// Repository is the full persistence surface the module needs. Both the
// memory store and the postgres repository satisfy it.
type Repository interface {
	ports.MembershipReader
	ports.WorkspaceRepository
	ports.BoardRepository
	ports.InvitationRepository
	ports.UserReplica
	ports.OutboxWriter
	outbox.Store
}

type Dependencies struct {
	Repository    Repository
	Tx            ports.TxRunner
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Subscriber    ports.EventSubscriber
	Publisher     events.Publisher
	InvitationTTL time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	repo := deps.Repository
	access := application.AccessEvaluator{Reader: repo}
	emitter := application.Emitter{Outbox: repo, IDs: deps.IDGenerator, Clock: deps.Clock}
	logger := deps.Logger

	handler := httpadapter.Handler{
		CreateWorkspace: commands.CreateWorkspaceUseCase{
			Workspaces: repo, Tx: deps.Tx, Clock: deps.Clock, Logger: logger,
		},
		UpdateWorkspace: commands.UpdateWorkspaceUseCase{
			Access: access, Workspaces: repo, Tx: deps.Tx, Clock: deps.Clock, Logger: logger,
		},
		DeleteWorkspace: commands.DeleteWorkspaceUseCase{
			Access: access, Workspaces: repo, Boards: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
		},
		ChangeWorkspaceRole: commands.ChangeWorkspaceMemberRoleUseCase{
			Access: access, Workspaces: repo, Reader: repo, Tx: deps.Tx, Logger: logger,
		},
		RemoveWorkspaceMember: commands.RemoveWorkspaceMemberUseCase{
			Access: access, Workspaces: repo, Boards: repo, Reader: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
		},
		CreateBoard: commands.CreateBoardUseCase{
			Access: access, Workspaces: repo, Boards: repo, Reader: repo, Users: repo, Tx: deps.Tx, Emitter: emitter, Clock: deps.Clock, Logger: logger,
		},
		UpdateBoard: commands.UpdateBoardUseCase{
			Access: access, Boards: repo, Tx: deps.Tx, Emitter: emitter, Clock: deps.Clock, Logger: logger,
		},
		DeleteBoard: commands.DeleteBoardUseCase{
			Access: access, Boards: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
		},
		ChangeBoardRole: commands.ChangeBoardMemberRoleUseCase{
			Access: access, Boards: repo, Reader: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
		},
		RemoveBoardMember: commands.RemoveBoardMemberUseCase{
			Access: access, Boards: repo, Reader: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
		},
		LeaveBoard: commands.LeaveBoardUseCase{
			Boards: repo, Reader: repo, Tx: deps.Tx, Emitter: emitter, Logger: logger,
		},
		CreateInvitation: commands.CreateInvitationUseCase{
			Access:      access,
			Reader:      repo,
			Workspaces:  repo,
			Boards:      repo,
			Invitations: repo,
			Users:       repo,
			Tx:          deps.Tx,
			Emitter:     emitter,
			Clock:       deps.Clock,
			TTL:         deps.InvitationTTL,
			Logger:      logger,
		},
		RespondInvitation: commands.RespondInvitationUseCase{
			Workspaces:  repo,
			Boards:      repo,
			Invitations: repo,
			Users:       repo,
			Tx:          deps.Tx,
			Emitter:     emitter,
			Clock:       deps.Clock,
			Logger:      logger,
		},
		GetWorkspace:         queries.GetWorkspaceUseCase{Access: access, Reader: repo, Boards: repo, Logger: logger},
		ListWorkspaces:       queries.ListWorkspacesUseCase{Workspaces: repo},
		ListGuestWorkspaces:  queries.ListGuestWorkspacesUseCase{Reader: repo, Workspaces: repo, Boards: repo},
		ListWorkspaceMembers: queries.ListWorkspaceMembersUseCase{Access: access, Workspaces: repo, Users: repo},
		GetBoard:             queries.GetBoardUseCase{Access: access},
		ListBoardMembers:     queries.ListBoardMembersUseCase{Access: access, Boards: repo, Users: repo},
		LookupBoardRole:      queries.LookupBoardRoleUseCase{Access: access, Logger: logger},
		ListInvitations:      queries.ListInvitationsUseCase{Invitations: repo, Clock: deps.Clock},
		Validate:             validator.New(),
		Logger:               logger,
	}

	return Module{
		Handler: handler,
		Consumer: workers.UserReplicaConsumer{
			Subscriber: deps.Subscriber,
			Users:      repo,
			Logger:     logger,
		},
		Relay: outbox.Relay{
			Store:     repo,
			Publisher: deps.Publisher,
			Module:    "collaboration/board-service",
			Now:       deps.Clock.Now,
			Logger:    logger,
		},
	}
}

// NewInMemoryModule wires the module on a fresh memory store. The event
// bus is optional; without one the consumer and relay stay idle.
func NewInMemoryModule(bus events.Bus, logger *slog.Logger) Module {
	store := memory.NewStore()
	deps := Dependencies{
		Repository:    store,
		Tx:            store,
		Clock:         store,
		IDGenerator:   store,
		InvitationTTL: 14 * 24 * time.Hour,
		Logger:        logger,
	}
	if bus != nil {
		deps.Subscriber = bus
		deps.Publisher = bus
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
