package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeComment(t *testing.T) {
	content, ok := NormalizeComment("  hi  ")
	assert.True(t, ok)
	assert.Equal(t, "hi", content)

	_, ok = NormalizeComment("")
	assert.False(t, ok)

	_, ok = NormalizeComment("   \t\n ")
	assert.False(t, ok)
}

func TestValidateProfileUpdate(t *testing.T) {
	err := ValidateProfileUpdate(
		[]string{"Go", "MongoDB"},
		[]Education{{College: "MIT", Degree: "BSc", FieldOfStudy: "CS"}},
		[]Experience{{Title: "Engineer", Company: "Acme", Description: "Backend work"}},
	)
	assert.NoError(t, err)

	// College es obligatorio
	err = ValidateProfileUpdate(nil, []Education{{Degree: "BSc"}}, nil)
	assert.Error(t, err)

	// Experience requiere título y empresa
	err = ValidateProfileUpdate(nil, nil, []Experience{{Description: "no title"}})
	assert.Error(t, err)

	// Un skill vacío o demasiado largo se rechaza
	err = ValidateProfileUpdate([]string{""}, nil, nil)
	assert.Error(t, err)
	err = ValidateProfileUpdate([]string{strings.Repeat("x", 81)}, nil, nil)
	assert.Error(t, err)
}

func TestConnectionPairKey(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()

	// La clave es la misma sin importar quién envía
	assert.Equal(t, ConnectionPairKey(a, b), ConnectionPairKey(b, a))

	// Pares distintos producen claves distintas
	assert.NotEqual(t, ConnectionPairKey(a, b), ConnectionPairKey(a, c))
	assert.NotEqual(t, ConnectionPairKey(a, b), ConnectionPairKey(b, c))
}

func TestRelationDerivation(t *testing.T) {
	viewer := primitive.NewObjectID()
	other := primitive.NewObjectID()

	assert.Equal(t, RelationConnected, Relation(viewer, true, nil))
	assert.Equal(t, RelationNotConnected, Relation(viewer, false, nil))

	outgoing := &Connection{Sender: viewer, Receiver: other, Status: ConnectionStatusPending}
	assert.Equal(t, RelationPending, Relation(viewer, false, outgoing))

	incoming := &Connection{Sender: other, Receiver: viewer, Status: ConnectionStatusPending}
	assert.Equal(t, RelationReceived, Relation(viewer, false, incoming))
}

func TestUserDtoStripsPrivateFields(t *testing.T) {
	user := User{
		Id:        primitive.NewObjectID(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		UserName:  "ada",
		Email:     "ada@example.com",
		Password:  "secret-hash",
		Headline:  "Engineer",
	}

	dto := user.Dto()
	assert.Equal(t, user.Id, dto.ID)
	assert.Equal(t, "Ada", dto.FirstName)
	assert.Equal(t, "ada", dto.UserName)
	assert.Equal(t, "Engineer", dto.Headline)
}

func TestIsConnectedTo(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	user := User{Connections: []primitive.ObjectID{a}}
	assert.True(t, user.IsConnectedTo(a))
	assert.False(t, user.IsConnectedTo(b))

	empty := User{}
	assert.False(t, empty.IsConnectedTo(a))
}
