package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           string `json:"_id" validate:"required"`
	Username     string `json:"username,omitempty"`
	Name         string `json:"name,omitempty"`
	CompanyEmail string `json:"companyEmail,omitempty"`
	Role         string `json:"role"`
}

// DisplayName picks the friendliest identity the API gave us.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return u.CompanyEmail
	}
}

type LoginPayload struct {
	CompanyEmail string `json:"companyEmail"`
	Password     string `json:"password"`
}
