package models

type Team struct {
	ID      int     `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Code    string  `json:"code" db:"code"`
	FlagKey *string `json:"-" db:"flag_key"`
	FlagURL *string `json:"flag_url,omitempty" db:"-"`
}
