package domain

import "strconv"

// User is the account a session belongs to. The server may omit the id.
type User struct {
	ID       *int64 `json:"id,omitempty"`
	Username string `json:"username"`
}

// String returns the username, with the id when known.
func (u User) String() string {
	if u.ID == nil {
		return u.Username
	}
	return u.Username + " (#" + strconv.FormatInt(*u.ID, 10) + ")"
}
