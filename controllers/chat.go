package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	middlewares "farmlink/middleware"
	"farmlink/models"
	"farmlink/ws"
)

var chatHub *ws.Hub

// InitChatHub wires the websocket hub used for realtime delivery.
func InitChatHub(hub *ws.Hub) {
	chatHub = hub
}

// Participant is the slice of an account shown in chat listings.
type Participant struct {
	ID       primitive.ObjectID `json:"id"`
	FullName string             `json:"fullName"`
	Image    string             `json:"image"`
	Role     string             `json:"role"`
}

// ChatSummary shapes a chat for the caller: the other participant up
// front, plus the last message.
type ChatSummary struct {
	ID               primitive.ObjectID `json:"id"`
	OtherParticipant *Participant       `json:"otherParticipant"`
	LastMessage      *models.Message    `json:"lastMessage"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

func summarizeChat(ctx context.Context, chat models.Chat, callerID primitive.ObjectID) ChatSummary {
	summary := ChatSummary{ID: chat.ID, UpdatedAt: chat.UpdatedAt}

	for _, p := range chat.Participants {
		if p == callerID {
			continue
		}
		if user, err := models.FindUserByID(ctx, p, ""); err == nil {
			summary.OtherParticipant = &Participant{
				ID:       user.ID,
				FullName: user.FullName,
				Image:    user.Image,
				Role:     user.Role,
			}
		}
	}

	if !chat.LastMessage.IsZero() {
		if message, err := models.GetMessageByID(ctx, chat.LastMessage); err == nil {
			summary.LastMessage = &message
		}
	}

	return summary
}

// GetChats lists the caller's chats, most recently active first.
func GetChats(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chats, err := models.ListChatsForUser(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch chats"})
		return
	}

	data := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		data = append(data, summarizeChat(ctx, chat, user.ID))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

// CreateChat opens a chat with the receiver, or returns the existing
// one: the same pair always maps to the same chat.
func CreateChat(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var input struct {
		ReceiverID string `json:"receiverId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Receiver ID is required"})
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(input.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid receiver ID"})
		return
	}
	if receiverID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cannot open a chat with yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chat, created, err := models.GetOrCreateChat(ctx, user.ID, receiverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create chat"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"success": true, "data": summarizeChat(ctx, chat, user.ID)})
}

// GetMessages returns a chat's messages in send order. Participants
// only.
func GetMessages(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	chatID, ok := parseObjectID(c, "chatId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chat, err := models.GetChatByID(ctx, chatID)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch chat"})
		return
	}
	if !chatIncludes(chat, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not a participant of this chat"})
		return
	}

	messages, err := models.ListMessagesByChat(ctx, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(messages), "data": messages})
}

// SendMessage stores a message and relays it to the recipient's live
// connection when one exists. Delivery is fire and forget; the stored
// message is the source of truth.
func SendMessage(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	chatID, ok := parseObjectID(c, "chatId")
	if !ok {
		return
	}

	var input struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chat, err := models.GetChatByID(ctx, chatID)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch chat"})
		return
	}
	if !chatIncludes(chat, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not a participant of this chat"})
		return
	}

	message, err := models.CreateMessage(ctx, chatID, user.ID, input.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to send message"})
		return
	}

	if chatHub != nil {
		for _, p := range chat.Participants {
			if p == user.ID {
				continue
			}
			chatHub.SendToUser(p.Hex(), gin.H{"type": "message", "data": message})
			chatHub.SendToUser(p.Hex(), gin.H{"type": "notification", "data": gin.H{
				"chatId":   chatID.Hex(),
				"senderId": user.ID.Hex(),
				"sender":   user.FullName,
				"text":     message.Text,
			}})
		}
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": message})
}

func chatIncludes(chat models.Chat, userID primitive.ObjectID) bool {
	for _, p := range chat.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
