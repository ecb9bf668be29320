package main

// Account represents a registered user.
type Account struct {
	ID       int    `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"password"`
}

// Message represents a post authored by an account.
type Message struct {
	ID          int    `db:"id" json:"id"`
	PostedBy    int    `db:"posted_by" json:"postedBy"`
	MessageText string `db:"message_text" json:"messageText"`
	TimePosted  int64  `db:"time_posted" json:"timePosted"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateMessageRequest struct {
	MessageText string `json:"messageText"`
}
