package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/repository"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) FindByParticipantAndProduct(ctx context.Context, userID, productID string) ([]*entity.Chat, error) {
	docs, err := r.client.Collection(chatsCollection).
		Where("participants", "array-contains", userID).
		Where("productId", "==", productID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, storeFailure("Failed to look up chats", chatsCollection, events.OpList, nil, err)
	}

	chats := r.decodeChats(docs)
	sort.Slice(chats, func(i, j int) bool { return chats[i].ID < chats[j].ID })
	return chats, nil
}

func (r *firestoreChatRepository) CreateIfAbsent(ctx context.Context, chat *entity.Chat) (bool, error) {
	chat.CreatedAt = time.Time{}
	_, err := r.client.Collection(chatsCollection).Doc(chat.ID).Create(ctx, chat)
	if status.Code(err) == codes.AlreadyExists {
		return false, nil
	}
	if err != nil {
		return false, storeFailure("Failed to create chat", docPath(chatsCollection, chat.ID), events.OpCreate, chat, err)
	}
	chat.CreatedAt = time.Now().UTC()
	return true, nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection(chatsCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, storeFailure("Failed to get chat", docPath(chatsCollection, id), events.OpGet, nil, err)
	}

	chat, err := decodeChat(doc)
	if err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}
	return chat, nil
}

// ListByUserID returns the user's chats, most recent activity first.
// Sorting happens here because ordering on lastMessage.timestamp in the
// query would drop chats that have no messages yet.
func (r *firestoreChatRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.Chat, error) {
	docs, err := r.client.Collection(chatsCollection).
		Where("participants", "array-contains", userID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, storeFailure("Failed to list chats", chatsCollection, events.OpList, nil, err)
	}

	chats := r.decodeChats(docs)
	sort.SliceStable(chats, func(i, j int) bool {
		return activity(chats[i]).After(activity(chats[j]))
	})
	return chats, nil
}

func activity(c *entity.Chat) time.Time {
	if c.LastMessage != nil && !c.LastMessage.Timestamp.IsZero() {
		return c.LastMessage.Timestamp
	}
	return c.CreatedAt
}

func (r *firestoreChatRepository) decodeChats(docs []*firestore.DocumentSnapshot) []*entity.Chat {
	chats := make([]*entity.Chat, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeChat(doc)
		if err != nil {
			logger.Warn("Skipping malformed chat document: %v", err)
			continue
		}
		chats = append(chats, c)
	}
	return chats
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	chatRef := r.client.Collection(chatsCollection).Doc(message.ChatID)
	msgRef := chatRef.Collection(messagesCollection).NewDoc()
	message.ID = msgRef.ID
	message.Timestamp = time.Time{}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(msgRef, message); err != nil {
			return err
		}
		return tx.Update(chatRef, []firestore.Update{
			{Path: "lastMessage.text", Value: message.Text},
			{Path: "lastMessage.timestamp", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Chat", err)
		}
		return storeFailure("Failed to send message", docPath(chatsCollection, message.ChatID)+"/"+docPath(messagesCollection, msgRef.ID), events.OpCreate, message, err)
	}
	message.Timestamp = time.Now().UTC()
	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, chatID string, limit int) ([]*entity.Message, error) {
	q := r.client.Collection(chatsCollection).Doc(chatID).Collection(messagesCollection).
		OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, storeFailure("Failed to list messages", docPath(chatsCollection, chatID)+"/"+messagesCollection, events.OpList, nil, err)
	}

	messages := make([]*entity.Message, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		m, err := decodeMessage(docs[i])
		if err != nil {
			logger.Warn("Skipping malformed message document: %v", err)
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (r *firestoreChatRepository) WatchMessages(ctx context.Context, chatID string, fn func(*entity.Message) error) error {
	it := r.client.Collection(chatsCollection).Doc(chatID).Collection(messagesCollection).
		OrderBy("timestamp", firestore.Asc).
		Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if ctx.Err() != nil {
			return nil
		}
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return storeFailure("Message stream failed", docPath(chatsCollection, chatID)+"/"+messagesCollection, events.OpList, nil, err)
		}

		for _, change := range snap.Changes {
			if change.Kind != firestore.DocumentAdded {
				continue
			}
			m, err := decodeMessage(change.Doc)
			if err != nil {
				logger.Warn("Skipping malformed message document: %v", err)
				continue
			}
			if err := fn(m); err != nil {
				return err
			}
		}
	}
}
