package model

// User is one row of the users sheet. Password holds whatever the sheet
// stores: plaintext for rows written by the original app, or a bcrypt hash.
type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
	FullName string `json:"full_name"`
}
