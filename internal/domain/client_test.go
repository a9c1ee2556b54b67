package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ClientID
	}{
		{"number", `{"id": 42}`, "42"},
		{"string", `{"id": "c-7"}`, "c-7"},
		{"null", `{"id": null}`, ""},
		{"large number", `{"id": 1719850000000}`, "1719850000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Client
			require.NoError(t, json.Unmarshal([]byte(tt.in), &c))
			assert.Equal(t, tt.want, c.ID)
		})
	}
}

func TestClientID_UnmarshalJSON_RejectsObjects(t *testing.T) {
	var c Client
	err := json.Unmarshal([]byte(`{"id": {"nested": true}}`), &c)
	assert.Error(t, err)
}

func TestClientInput_Normalize(t *testing.T) {
	in := ClientInput{
		Name:    "  Maria Souza ",
		Email:   " Maria@Email.COM ",
		Phone:   " (11) 99999-9999",
		Company: " Acme  ",
	}

	got := in.Normalize()

	assert.Equal(t, "Maria Souza", got.Name)
	assert.Equal(t, "maria@email.com", got.Email)
	assert.Equal(t, "(11) 99999-9999", got.Phone)
	assert.Equal(t, "Acme", got.Company)
}

func TestFindClient(t *testing.T) {
	clients := []Client{{ID: "1", Name: "João"}, {ID: "2", Name: "Maria"}}

	c, ok := FindClient(clients, "2")
	assert.True(t, ok)
	assert.Equal(t, "Maria", c.Name)

	_, ok = FindClient(clients, "3")
	assert.False(t, ok)
}

func TestUser_Initial(t *testing.T) {
	assert.Equal(t, "J", User{Name: "joão"}.Initial())
	assert.Equal(t, "É", User{Name: "élida"}.Initial())
	assert.Equal(t, "U", User{Name: "   "}.Initial())
	assert.Equal(t, "U", User{}.Initial())
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ana", User{Name: "Ana", Email: "ana@x.com"}.DisplayName())
	assert.Equal(t, "ana@x.com", User{Email: "ana@x.com"}.DisplayName())
	assert.Equal(t, "Usuário", User{}.DisplayName())
}
