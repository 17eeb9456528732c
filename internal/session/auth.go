package session

import "catalogconsole/internal/domain"

// AuthState tracks who the operator is. IsAuthenticated implies User != nil.
type AuthState struct {
	User            *domain.User
	IsAuthenticated bool
	Loading         bool
	Err             string
	// Resolved is false until the first who-am-i, login or logout settles.
	Resolved bool
}

// Role is empty when nobody is logged in.
func (a AuthState) Role() string {
	if !a.IsAuthenticated || a.User == nil {
		return ""
	}
	return a.User.Role
}

func (a *AuthState) begin() {
	a.Loading = true
	a.Err = ""
}

func (a *AuthState) BeginResolve() { a.begin() }

func (a *AuthState) ResolveFulfilled(u *domain.User) {
	a.Loading = false
	a.Resolved = true
	a.Err = ""
	a.User = u
	a.IsAuthenticated = u != nil
}

// ResolveRejected treats any who-am-i failure as logged out.
func (a *AuthState) ResolveRejected(msg string) {
	a.Loading = false
	a.Resolved = true
	a.User = nil
	a.IsAuthenticated = false
	a.Err = msg
}

func (a *AuthState) BeginLogin() { a.begin() }

func (a *AuthState) LoginFulfilled(u *domain.User) {
	a.Loading = false
	a.Resolved = true
	a.Err = ""
	a.User = u
	a.IsAuthenticated = u != nil
}

// LoginRejected keeps whoever was logged in before.
func (a *AuthState) LoginRejected(msg string) {
	a.Loading = false
	a.Err = msg
}

func (a *AuthState) BeginLogout() { a.begin() }

// LogoutFulfilled resets to the initial state, known to be logged out.
func (a *AuthState) LogoutFulfilled() {
	*a = AuthState{Resolved: true}
}

func (a *AuthState) LogoutRejected(msg string) {
	a.Loading = false
	a.Err = msg
}

// Unresolve forces the next request to ask the API again.
func (a *AuthState) Unresolve() {
	a.Resolved = false
	a.Loading = false
}
