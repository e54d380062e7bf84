package models

// Account represents a LinkedIn account with email and password
type Account struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Cookie is a single browser cookie as persisted between runs
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
	Expiry   float64 `json:"expiry,omitempty"`
}

// Stripped returns a copy without the sameSite and expiry attributes.
// Chrome rejects many restored cookies when those are set.
func (c Cookie) Stripped() Cookie {
	c.SameSite = ""
	c.Expiry = 0
	return c
}
