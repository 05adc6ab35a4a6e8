package models

import (
	"encoding/json"
	"time"
)

type Chat struct {
	ID        uint32    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Msgs      string    `db:"msgs" json:"msgs"` // []RoleMsg as json string
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (c Chat) ToHistory() ([]RoleMsg, error) {
	resp := []RoleMsg{}
	if c.Msgs == "" {
		return resp, nil
	}
	if err := json.Unmarshal([]byte(c.Msgs), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
