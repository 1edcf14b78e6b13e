package deriver

import "time"

// User is the session's user object.
type User struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name,omitempty"`
	Email      string `json:"email"`
	Image      string `json:"image"`
}

// Session is the object exposed to the client once sign-in completes.
type Session struct {
	User        User      `json:"user"`
	AccessToken string    `json:"access_token,omitempty"`
	JWTToken    string    `json:"jwt_token,omitempty"`
	UserOrg     []string  `json:"userOrg,omitempty"`
	Expires     time.Time `json:"expires"`
}

// Empty reports whether s is the anonymous session.
func (s Session) Empty() bool {
	return s.User.ID == ""
}

// EmptySession is the anonymous session. Its expiry is the epoch, which
// forces the client to authenticate again.
func EmptySession() Session {
	return Session{Expires: time.Unix(0, 0).UTC()}
}
