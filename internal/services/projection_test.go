package services

import (
	"testing"

	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func msgs(n int) []models.Message {
	out := make([]models.Message, n)
	for i := range out {
		out[i] = models.Message{ID: primitive.NewObjectID(), Message: "m"}
	}
	return out
}

func TestProjectLatest(t *testing.T) {
	three := msgs(3)
	uc := &models.UserChats{
		Chats: []models.ChatView{
			{ID: primitive.NewObjectID(), Messages: three},
			{ID: primitive.NewObjectID(), Messages: []models.Message{}},
		},
		PendingChats: []models.ChatView{
			{ID: primitive.NewObjectID(), Messages: msgs(2)},
		},
	}

	ProjectLatest(uc)
	assert.Equal(t, []models.Message{three[0]}, uc.Chats[0].Messages)
	assert.Empty(t, uc.Chats[1].Messages)
	assert.Len(t, uc.PendingChats[0].Messages, 1)

	once := *uc
	ProjectLatest(uc)
	assert.Equal(t, once, *uc)
}

func TestProjectLatestNil(t *testing.T) {
	assert.NotPanics(t, func() { ProjectLatest(nil) })
}
