package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJWTRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()

	token, err := GenerateJWT(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), claims["userId"])
}

func TestVerifyJWTRejectsTamperedToken(t *testing.T) {
	token, err := GenerateJWT(primitive.NewObjectID())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = VerifyJWT(tampered)
	assert.Error(t, err)
}

func TestVerifyJWTRejectsGarbage(t *testing.T) {
	_, err := VerifyJWT("not-a-token")
	assert.Error(t, err)
}
