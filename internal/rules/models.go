package rules

// User is the sender of a chat message.
type User struct {
	ID        int64
	Username  string
	FirstName string
}

// Chat is where a message was posted.
type Chat struct {
	ID   int64
	Type string
}

// MessageContext is everything a filter expression can look at.
type MessageContext struct {
	User    User
	Chat    Chat
	Text    string
	Command string
}
