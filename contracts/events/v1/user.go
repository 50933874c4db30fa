package v1

type UserEvent interface {
	Event
	isUserEvent()
	// Profile returns the replicated user fields.
	Profile() UserProfile
}

var userEvents = map[string]func() UserEvent{
	TypeUserCreated: func() UserEvent { return &UserCreated{} },
	TypeUserUpdated: func() UserEvent { return &UserUpdated{} },
}

func DecodeUserEvent(env Envelope) (UserEvent, error) {
	return decode(userEvents, env)
}

// UserProfile is the user replica each service keeps locally.
type UserProfile struct {
	UserID      int64  `json:"id"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	AvatarColor string `json:"avatarColor"`
}

func (p UserProfile) Profile() UserProfile { return p }

func (p UserProfile) Validate() error {
	return requireIDs(map[string]int64{"id": p.UserID})
}

type UserCreated struct {
	UserProfile
}

func (UserCreated) EventType() string { return TypeUserCreated }
func (UserCreated) Topic() string     { return TopicUser }
func (UserCreated) isUserEvent()      {}

type UserUpdated struct {
	UserProfile
}

func (UserUpdated) EventType() string { return TypeUserUpdated }
func (UserUpdated) Topic() string     { return TopicUser }
func (UserUpdated) isUserEvent()      {}
