package models

import "strconv"

// Identity is the authenticated player as reported by the auth service.
type Identity struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
	IsAdmin  bool    `json:"is_admin"`
}

// Key returns the identity id in the string form used by result winner maps.
func (i Identity) Key() string {
	return strconv.FormatInt(i.ID, 10)
}
