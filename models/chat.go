package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	db "farmlink/database"
)

// Chat groups exactly two participants and tracks the most recent
// message for inbox-style listings.
type Chat struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Participants []primitive.ObjectID `json:"participants" bson:"participants"`
	LastMessage  primitive.ObjectID   `json:"lastMessage,omitempty" bson:"lastMessage,omitempty"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Chat      primitive.ObjectID `json:"chat" bson:"chat"`
	Sender    primitive.ObjectID `json:"sender" bson:"sender"`
	Text      string             `json:"text" bson:"text"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// GetOrCreateChat returns the chat between the two accounts, creating
// it on first contact. Requesting the same pair twice yields the same
// chat.
func GetOrCreateChat(ctx context.Context, a, b primitive.ObjectID) (Chat, bool, error) {
	var chat Chat
	err := db.ChatCollection.FindOne(ctx,
		bson.M{"participants": bson.M{"$all": []primitive.ObjectID{a, b}}}).Decode(&chat)
	if err == nil {
		return chat, false, nil
	}
	if err != mongo.ErrNoDocuments {
		return Chat{}, false, err
	}

	now := time.Now()
	chat = Chat{
		ID:           primitive.NewObjectID(),
		Participants: []primitive.ObjectID{a, b},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = db.ChatCollection.InsertOne(ctx, chat)
	if err != nil {
		return Chat{}, false, err
	}
	return chat, true, nil
}

// GetChatByID loads a chat.
func GetChatByID(ctx context.Context, id primitive.ObjectID) (Chat, error) {
	var chat Chat
	err := db.ChatCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Chat{}, ErrNotFound
		}
		return Chat{}, err
	}
	return chat, nil
}

// ListChatsForUser returns the user's chats, most recently active
// first.
func ListChatsForUser(ctx context.Context, userID primitive.ObjectID) ([]Chat, error) {
	cursor, err := db.ChatCollection.Find(ctx,
		bson.M{"participants": userID},
		options.Find().SetSort(bson.M{"updatedAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	chats := []Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateMessage stores a message and bumps the parent chat's last
// message pointer and activity timestamp.
func CreateMessage(ctx context.Context, chatID, senderID primitive.ObjectID, text string) (Message, error) {
	message := Message{
		ID:        primitive.NewObjectID(),
		Chat:      chatID,
		Sender:    senderID,
		Text:      text,
		Read:      false,
		CreatedAt: time.Now(),
	}

	_, err := db.MessageCollection.InsertOne(ctx, message)
	if err != nil {
		return Message{}, err
	}

	_, err = db.ChatCollection.UpdateOne(ctx,
		bson.M{"_id": chatID},
		bson.M{"$set": bson.M{"lastMessage": message.ID, "updatedAt": time.Now()}})
	if err != nil {
		return Message{}, err
	}

	return message, nil
}

// GetMessageByID loads a message.
func GetMessageByID(ctx context.Context, id primitive.ObjectID) (Message, error) {
	var message Message
	err := db.MessageCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Message{}, ErrNotFound
		}
		return Message{}, err
	}
	return message, nil
}

// ListMessagesByChat returns a chat's messages in send order.
func ListMessagesByChat(ctx context.Context, chatID primitive.ObjectID) ([]Message, error) {
	cursor, err := db.MessageCollection.Find(ctx, bson.M{"chat": chatID},
		options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
