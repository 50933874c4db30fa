package services

import (
	"kanvas/contexts/engagement/realtime-service/domain/entities"
	eventsv1 "kanvas/contracts/events/v1"
)

// Outbound is a translated event ready to be appended to a channel.
type Outbound struct {
	Channel entities.Channel
	Type    string
	Body    any
}

// Message types pushed on board channels.
const (
	MessageBoardUpdated        = "BOARD_UPDATED"
	MessageBoardDeleted        = "BOARD_DELETED"
	MessageMemberJoined        = "MEMBER_JOINED"
	MessageMemberRemoved       = "MEMBER_REMOVED"
	MessageRoleChanged         = "ROLE_CHANGED"
	MessageColumnCreated       = "COLUMN_CREATED"
	MessageColumnUpdated       = "COLUMN_UPDATED"
	MessageColumnMoved         = "COLUMN_MOVED"
	MessageColumnDeleted       = "COLUMN_DELETED"
	MessageTaskCreated         = "TASK_CREATED"
	MessageTaskUpdated         = "TASK_UPDATED"
	MessageTaskMoved           = "TASK_MOVED"
	MessageTaskDeleted         = "TASK_DELETED"
	MessageTaskAssigned        = "TASK_ASSIGNED"
	MessageTaskUnassigned      = "TASK_UNASSIGNED"
	MessagePositionsRebalanced = "POSITIONS_REBALANCED"
)

// TranslateBoardEvent maps a board.events payload onto its board channel.
// A member who leaves is announced the same way as one who is removed.
func TranslateBoardEvent(event eventsv1.BoardEvent) (Outbound, bool) {
	switch e := event.(type) {
	case *eventsv1.BoardUpdated:
		return board(e.BoardID, MessageBoardUpdated, entities.BoardUpdatedFrame{
			Name:        e.Name,
			Description: e.Description,
			Visibility:  e.Visibility,
		}), true
	case *eventsv1.BoardDeleted:
		return board(e.BoardID, MessageBoardDeleted, entities.BoardDeletedFrame{BoardID: e.BoardID}), true
	case *eventsv1.BoardMemberJoined:
		return board(e.BoardID, MessageMemberJoined, entities.MemberJoinedFrame{
			MemberID:    e.MemberID,
			UserID:      e.UserID,
			Firstname:   e.Firstname,
			Lastname:    e.Lastname,
			Username:    e.Username,
			AvatarColor: e.AvatarColor,
			BoardRole:   e.Role,
			JoinedAt:    e.JoinedAt,
		}), true
	case *eventsv1.BoardMemberRemoved:
		return board(e.BoardID, MessageMemberRemoved, entities.MemberRemovedFrame{MemberID: e.MemberID, UserID: e.UserID}), true
	case *eventsv1.BoardMemberLeft:
		return board(e.BoardID, MessageMemberRemoved, entities.MemberRemovedFrame{MemberID: e.MemberID, UserID: e.UserID}), true
	case *eventsv1.BoardRoleChanged:
		return board(e.BoardID, MessageRoleChanged, entities.RoleChangedFrame{MemberID: e.MemberID, Role: e.Role}), true
	default:
		return Outbound{}, false
	}
}

func TranslateTaskEvent(event eventsv1.TaskEvent) (Outbound, bool) {
	switch e := event.(type) {
	case *eventsv1.ColumnCreated:
		index := e.OrderIndex
		return board(e.BoardID, MessageColumnCreated, entities.ColumnFrame{ColumnID: e.ColumnID, Name: e.Name, OrderIndex: &index}), true
	case *eventsv1.ColumnUpdated:
		return board(e.BoardID, MessageColumnUpdated, entities.ColumnFrame{ColumnID: e.ColumnID, Name: e.Name}), true
	case *eventsv1.ColumnMoved:
		index := e.OrderIndex
		return board(e.BoardID, MessageColumnMoved, entities.ColumnFrame{ColumnID: e.ColumnID, OrderIndex: &index}), true
	case *eventsv1.ColumnDeleted:
		return board(e.BoardID, MessageColumnDeleted, entities.ColumnFrame{ColumnID: e.ColumnID}), true
	case *eventsv1.TaskCreated:
		return board(e.BoardID, MessageTaskCreated, entities.TaskCreatedFrame{
			ColumnID:   e.ColumnID,
			TaskID:     e.TaskID,
			Title:      e.Title,
			OrderIndex: e.OrderIndex,
		}), true
	case *eventsv1.TaskUpdated:
		return board(e.BoardID, MessageTaskUpdated, entities.TaskUpdatedFrame{
			TaskID:      e.TaskID,
			Title:       e.Title,
			Description: e.Description,
			Deadline:    e.Deadline,
			Priority:    e.Priority,
			Status:      e.Status,
			Expired:     e.Expired,
		}), true
	case *eventsv1.TaskMoved:
		return board(e.BoardID, MessageTaskMoved, entities.TaskMovedFrame{
			BeforeColumnID: e.FromColumnID,
			TargetColumnID: e.ToColumnID,
			TaskID:         e.TaskID,
			NewOrderIndex:  e.OrderIndex,
		}), true
	case *eventsv1.TaskDeleted:
		return board(e.BoardID, MessageTaskDeleted, entities.TaskDeletedFrame{TaskID: e.TaskID, ColumnID: e.ColumnID}), true
	case *eventsv1.TaskAssigned:
		return board(e.BoardID, MessageTaskAssigned, assignmentFrame(e.TaskAssignment)), true
	case *eventsv1.TaskUnassigned:
		return board(e.BoardID, MessageTaskUnassigned, assignmentFrame(e.TaskAssignment)), true
	case *eventsv1.PositionsRebalanced:
		positions := make([]entities.PositionFrame, 0, len(e.Positions))
		for _, p := range e.Positions {
			positions = append(positions, entities.PositionFrame{ID: p.ID, OrderIndex: p.OrderIndex})
		}
		return board(e.BoardID, MessagePositionsRebalanced, entities.PositionsRebalancedFrame{
			Scope:     e.Scope,
			ColumnID:  e.ColumnID,
			Positions: positions,
		}), true
	default:
		return Outbound{}, false
	}
}

// TranslateNotificationEvent routes notification changes to the
// recipient's user channel under the event's own type.
func TranslateNotificationEvent(event eventsv1.NotificationEvent) (Outbound, bool) {
	switch e := event.(type) {
	case *eventsv1.NotificationCreated:
		sentAt := e.SentAt
		return Outbound{
			Channel: entities.UserChannel(e.UserID),
			Type:    eventsv1.TypeNotificationCreated,
			Body: entities.NotificationFrame{
				NotificationID: e.NotificationID,
				UserID:         e.UserID,
				Type:           e.Type,
				Status:         e.Status,
				SentAt:         &sentAt,
				Payload:        e.Payload,
			},
		}, true
	case *eventsv1.NotificationUpdated:
		return Outbound{
			Channel: entities.UserChannel(e.UserID),
			Type:    eventsv1.TypeNotificationUpdated,
			Body: entities.NotificationFrame{
				NotificationID: e.NotificationID,
				UserID:         e.UserID,
				Status:         e.Status,
			},
		}, true
	default:
		return Outbound{}, false
	}
}

func board(boardID int64, messageType string, body any) Outbound {
	return Outbound{Channel: entities.BoardChannel(boardID), Type: messageType, Body: body}
}

func assignmentFrame(a eventsv1.TaskAssignment) entities.TaskAssignmentFrame {
	return entities.TaskAssignmentFrame{TaskID: a.TaskID, BoardMemberID: a.BoardMemberID, UserID: a.UserID}
}
