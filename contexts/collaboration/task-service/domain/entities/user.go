package entities

// User is the local replica of an identity owned by user-service.
type User struct {
	ID          int64
	Firstname   string
	Lastname    string
	Email       string
	Username    string
	AvatarColor string
}
