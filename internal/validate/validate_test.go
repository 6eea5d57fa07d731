package validate

import (
	"testing"

	"github.com/mhotoys/shopctl/internal/models"
	"github.com/mhotoys/shopctl/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   session.Credentials
		wantErr bool
	}{
		{"valid", session.Credentials{Username: "casey", Password: "opensesame"}, false},
		{"missing username", session.Credentials{Password: "opensesame"}, true},
		{"short username", session.Credentials{Username: "ab", Password: "opensesame"}, true},
		{"short password", session.Credentials{Username: "casey", Password: "short"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Credentials(tt.creds)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSignup(t *testing.T) {
	valid := session.Signup{Username: "casey", Email: "casey@example.com", Password: "opensesame"}

	assert.NoError(t, Signup(valid))

	bad := valid
	bad.Email = "not-an-email"
	assert.Error(t, Signup(bad))

	bad = valid
	bad.Email = ""
	assert.Error(t, Signup(bad))
}

func TestProduct(t *testing.T) {
	valid := models.Product{
		Name:        "Wooden Train",
		Description: "A small wooden train.",
		Price:       19.99,
		AgeRange:    "3-5",
		ImageURL:    "https://cdn.example.com/train.png",
	}

	assert.NoError(t, Product(valid))

	bad := valid
	bad.Name = ""
	assert.Error(t, Product(bad))

	bad = valid
	bad.ImageURL = "::not a url::"
	assert.Error(t, Product(bad))
}
