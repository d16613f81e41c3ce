package api

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// Me is the current-session view. Advisory carries the reason for a forced
// sign-out so the client can explain it instead of showing a bare login form.
type Me struct {
	State    string `json:"state"`
	User     *User  `json:"user,omitempty"`
	Advisory string `json:"advisory,omitempty"`
}

type Error struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
