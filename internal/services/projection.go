package services

import "github.com/Dias221467/chatterbox/internal/models"

// ProjectLatest trims every chat of uc to its most recent message. Messages are
// expected newest first, as returned by MessageStore. Applying it twice is the
// same as applying it once.
func ProjectLatest(uc *models.UserChats) {
	if uc == nil {
		return
	}
	trim(uc.Chats)
	trim(uc.PendingChats)
}

func trim(chats []models.ChatView) {
	for i := range chats {
		if len(chats[i].Messages) > 1 {
			chats[i].Messages = chats[i].Messages[:1]
		}
	}
}
