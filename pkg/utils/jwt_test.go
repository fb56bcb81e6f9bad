package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/seguro/backend/internal/models"
)

func TestGenerateAndValidateToken(t *testing.T) {
	ConfigureJWT("test-secret", 24)

	user := &models.User{
		BaseModel:       models.BaseModel{ID: uuid.New()},
		Email:           "user@test.com",
		IsSecurityAdmin: true,
	}

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || !claims.IsSecurityAdmin {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	ConfigureJWT("test-secret", 24)

	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	ConfigureJWT("secret-one", 24)
	user := &models.User{BaseModel: models.BaseModel{ID: uuid.New()}, Email: "user@test.com"}
	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	ConfigureJWT("secret-two", 24)
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with a different secret accepted")
	}
}
