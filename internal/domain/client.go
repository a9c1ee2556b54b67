// Package domain contains core business types and interfaces.
//
// This file defines the Client record mirrored from the backend and the
// closed input types used by the client forms.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ClientID identifies a client on the backend. The backend may encode it as
// a JSON number or a JSON string; both decode to the same value.
type ClientID string

// UnmarshalJSON accepts numeric and string identifiers.
func (id *ClientID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ClientID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("client id: %w", err)
	}
	*id = ClientID(n.String())
	return nil
}

func (id ClientID) String() string {
	return string(id)
}

// Client is a read-only copy of a backend client record.
type Client struct {
	ID      ClientID `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone,omitempty"`
	Company string   `json:"company,omitempty"`
}

// ClientInput is the validated payload for creating or updating a client.
type ClientInput struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,phone_br"`
	Company string `json:"company,omitempty" validate:"omitempty,min=2"`
}

// Normalize trims surrounding whitespace from every field.
func (in ClientInput) Normalize() ClientInput {
	return ClientInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   strings.TrimSpace(in.Phone),
		Company: strings.TrimSpace(in.Company),
	}
}

// InputFromClient pre-fills an edit form from an existing record.
func InputFromClient(c Client) ClientInput {
	return ClientInput{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Company: c.Company,
	}
}

// FindClient returns the client with the given ID, if present.
func FindClient(clients []Client, id ClientID) (Client, bool) {
	for _, c := range clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

// ClientPage is one page of the client collection plus the numbers
// needed to render its pagination controls.
type ClientPage struct {
	Clients     []Client
	Total       int
	CurrentPage int
	TotalPages  int
	PerPage     int
}
