package v1

import "time"

// BoardEvent is the union of payloads carried on board.events.
type BoardEvent interface {
	Event
	isBoardEvent()
}

var boardEvents = map[string]func() BoardEvent{
	TypeBoardDeleted:       func() BoardEvent { return &BoardDeleted{} },
	TypeBoardUpdated:       func() BoardEvent { return &BoardUpdated{} },
	TypeBoardMemberJoined:  func() BoardEvent { return &BoardMemberJoined{} },
	TypeBoardMemberLeft:    func() BoardEvent { return &BoardMemberLeft{} },
	TypeBoardMemberRemoved: func() BoardEvent { return &BoardMemberRemoved{} },
	TypeBoardRoleChanged:   func() BoardEvent { return &BoardRoleChanged{} },
}

// DecodeBoardEvent returns a pointer to the concrete payload for env.
func DecodeBoardEvent(env Envelope) (BoardEvent, error) {
	return decode(boardEvents, env)
}

type BoardDeleted struct {
	BoardID     int64 `json:"boardId"`
	WorkspaceID int64 `json:"workspaceId,omitempty"`
}

func (BoardDeleted) EventType() string { return TypeBoardDeleted }
func (BoardDeleted) Topic() string     { return TopicBoard }
func (BoardDeleted) isBoardEvent()     {}

func (e BoardDeleted) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID})
}

type BoardUpdated struct {
	BoardID     int64  `json:"boardId"`
	WorkspaceID int64  `json:"workspaceId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility"`
}

func (BoardUpdated) EventType() string { return TypeBoardUpdated }
func (BoardUpdated) Topic() string     { return TopicBoard }
func (BoardUpdated) isBoardEvent()     {}

func (e BoardUpdated) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID})
}

type BoardMemberJoined struct {
	BoardID     int64     `json:"boardId"`
	MemberID    int64     `json:"memberId"`
	UserID      int64     `json:"userId"`
	Role        string    `json:"boardRole"`
	Username    string    `json:"username,omitempty"`
	Firstname   string    `json:"firstname,omitempty"`
	Lastname    string    `json:"lastname,omitempty"`
	AvatarColor string    `json:"avatarColor,omitempty"`
	JoinedAt    time.Time `json:"joinedAt"`
}

func (BoardMemberJoined) EventType() string { return TypeBoardMemberJoined }
func (BoardMemberJoined) Topic() string     { return TopicBoard }
func (BoardMemberJoined) isBoardEvent()     {}

func (e BoardMemberJoined) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "memberId": e.MemberID, "userId": e.UserID})
}

// BoardMembership identifies a board member that left or was removed.
type BoardMembership struct {
	BoardID   int64  `json:"boardId"`
	MemberID  int64  `json:"memberId"`
	UserID    int64  `json:"userId"`
	BoardName string `json:"boardName,omitempty"`
}

func (m BoardMembership) Validate() error {
	return requireIDs(map[string]int64{"boardId": m.BoardID, "memberId": m.MemberID, "userId": m.UserID})
}

type BoardMemberRemoved struct {
	BoardMembership
	RemovedBy int64 `json:"removedBy,omitempty"`
}

func (BoardMemberRemoved) EventType() string { return TypeBoardMemberRemoved }
func (BoardMemberRemoved) Topic() string     { return TopicBoard }
func (BoardMemberRemoved) isBoardEvent()     {}

type BoardMemberLeft struct {
	BoardMembership
}

func (BoardMemberLeft) EventType() string { return TypeBoardMemberLeft }
func (BoardMemberLeft) Topic() string     { return TopicBoard }
func (BoardMemberLeft) isBoardEvent()     {}

type BoardRoleChanged struct {
	BoardID  int64  `json:"boardId"`
	MemberID int64  `json:"memberId"`
	UserID   int64  `json:"userId"`
	Role     string `json:"boardRole"`
}

func (BoardRoleChanged) EventType() string { return TypeBoardRoleChanged }
func (BoardRoleChanged) Topic() string     { return TopicBoard }
func (BoardRoleChanged) isBoardEvent()     {}

func (e BoardRoleChanged) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "memberId": e.MemberID})
}

// WorkspaceEvent is the union of payloads carried on workspace.events.
type WorkspaceEvent interface {
	Event
	isWorkspaceEvent()
}

var workspaceEvents = map[string]func() WorkspaceEvent{
	TypeWorkspaceDeleted: func() WorkspaceEvent { return &WorkspaceDeleted{} },
}

func DecodeWorkspaceEvent(env Envelope) (WorkspaceEvent, error) {
	return decode(workspaceEvents, env)
}

type WorkspaceDeleted struct {
	WorkspaceID int64   `json:"workspaceId"`
	BoardIDs    []int64 `json:"boardIds"`
}

func (WorkspaceDeleted) EventType() string { return TypeWorkspaceDeleted }
func (WorkspaceDeleted) Topic() string     { return TopicWorkspace }
func (WorkspaceDeleted) isWorkspaceEvent() {}

func (e WorkspaceDeleted) Validate() error {
	return requireIDs(map[string]int64{"workspaceId": e.WorkspaceID})
}
