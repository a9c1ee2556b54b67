package validation

import (
	"testing"

	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_ClientInput(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		input  domain.ClientInput
		fields map[string]string
	}{
		{
			name:  "valid with optional fields empty",
			input: domain.ClientInput{Name: "João Silva", Email: "joao@email.com"},
		},
		{
			name: "valid with phone and company",
			input: domain.ClientInput{
				Name: "Maria", Email: "maria@email.com", Phone: "(11) 99999-9999", Company: "Acme",
			},
		},
		{
			name:  "missing name and bad email",
			input: domain.ClientInput{Email: "not-an-email"},
			fields: map[string]string{
				"name":  "Nome é obrigatório",
				"email": "Email inválido",
			},
		},
		{
			name:   "short name",
			input:  domain.ClientInput{Name: "J", Email: "j@email.com"},
			fields: map[string]string{"name": "Nome deve ter pelo menos 2 caracteres"},
		},
		{
			name:   "bad phone",
			input:  domain.ClientInput{Name: "Ana", Email: "ana@email.com", Phone: "123"},
			fields: map[string]string{"phone": "Telefone inválido (ex: (11) 99999-9999)"},
		},
		{
			name:   "short company",
			input:  domain.ClientInput{Name: "Ana", Email: "ana@email.com", Company: "A"},
			fields: map[string]string{"company": "Empresa deve ter pelo menos 2 caracteres"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct("client.create", tt.input)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			assert.Equal(t, tt.fields, domain.FieldErrors(err))
		})
	}
}

func TestStruct_RegisterInput_PasswordMismatch(t *testing.T) {
	v := New()

	err := v.Struct("auth.register", domain.RegisterInput{
		Name:            "Ana",
		Email:           "ana@email.com",
		Password:        "secret1",
		ConfirmPassword: "secret2",
	})

	require.Error(t, err)
	assert.Equal(t, map[string]string{"confirmPassword": "Senhas não coincidem"}, domain.FieldErrors(err))
}

func TestStruct_LoginInput_ShortPassword(t *testing.T) {
	v := New()

	err := v.Struct("auth.login", domain.LoginInput{Email: "ana@email.com", Password: "123"})

	require.Error(t, err)
	assert.Equal(t, "Senha deve ter pelo menos 6 caracteres", domain.FieldErrors(err)["password"])
}

func TestPhonePattern(t *testing.T) {
	for _, ok := range []string{"(11) 99999-9999", "11999999999", "11 3333-4444", "(21)3333.4444"} {
		assert.True(t, phonePattern.MatchString(ok), ok)
	}
	for _, bad := range []string{"", "999", "(1) 9999-9999", "11 99999-999a"} {
		assert.False(t, phonePattern.MatchString(bad), bad)
	}
}
