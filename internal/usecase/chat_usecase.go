package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/repository"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/internal/infrastructure/ratelimit"
	"tijuanashop/internal/infrastructure/telemetry"
	ws "tijuanashop/internal/infrastructure/websocket"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/logger"
)

const (
	DefaultMessagePage = 50
	MaxMessagePage     = 200
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
	emitter     *events.Emitter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	wsManager *ws.Manager,
	rateLimiter *ratelimit.RateLimiter,
	emitter *events.Emitter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
		emitter:     emitter,
	}
}

// ChatKey derives the document id of the chat between two users about a
// product. It does not depend on argument order.
func ChatKey(userA, userB, productID string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	sum := sha256.Sum256([]byte(pair[0] + "\x00" + pair[1] + "\x00" + productID))
	return hex.EncodeToString(sum[:16])
}

// ContactSeller opens (or reuses) the buyer's chat with the seller of a
// product.
func (uc *ChatUseCase) ContactSeller(ctx context.Context, buyerID, productID string) (string, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return "", err
	}
	return uc.GetOrCreateChat(ctx, buyerID, product.SellerID, productID)
}

// GetOrCreateChat returns the id of the single chat between userA and
// userB about productID, creating it when there is none.
func (uc *ChatUseCase) GetOrCreateChat(ctx context.Context, userA, userB, productID string) (chatID string, err error) {
	if userA == "" || userB == "" || productID == "" {
		return "", errors.BadRequest("Both participants and a product are required", nil)
	}
	if userA == userB {
		logger.Warn("GetOrCreateChat: user %s attempted to chat with themselves", userA)
		return "", errors.BadRequest("You cannot start a chat with yourself", nil)
	}

	ctx, end := telemetry.StartSpan(ctx, "chats.get_or_create", attribute.String("product.id", productID))
	defer func() { end(err) }()

	existing, err := uc.chatRepo.FindByParticipantAndProduct(ctx, userA, productID)
	if err != nil {
		logger.Error("GetOrCreateChat Error: lookup for %s/%s failed: %v", userA, productID, err)
		reportIfDenied(ctx, uc.emitter, userA, err)
		return "", err
	}
	if id := lowestMatchingChat(existing, userB); id != "" {
		telemetry.ChatsCreated.WithLabelValues("existing").Inc()
		return id, nil
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(userA, ratelimit.ActionContactSeller); !allowed {
			logger.Info("GetOrCreateChat Rate Limited: user %s must wait %v", userA, wait)
			return "", errors.TooManyRequests(fmt.Sprintf("Too many new conversations. Try again in %s", wait.Round(time.Second)))
		}
	}

	chat, err := uc.newChat(ctx, userA, userB, productID)
	if err != nil {
		return "", err
	}

	created, err := uc.chatRepo.CreateIfAbsent(ctx, chat)
	if err != nil {
		logger.Error("GetOrCreateChat Error: failed to create chat %s: %v", chat.ID, err)
		reportStoreError(ctx, uc.emitter, userA, err)
		return "", err
	}
	if created {
		telemetry.ChatsCreated.WithLabelValues("created").Inc()
	} else {
		telemetry.ChatsCreated.WithLabelValues("raced").Inc()
	}

	return chat.ID, nil
}

// lowestMatchingChat picks the smallest id among chats that include
// other, so a pair with legacy duplicates always resolves the same way.
func lowestMatchingChat(chats []*entity.Chat, other string) string {
	best := ""
	for _, c := range chats {
		if !c.HasParticipant(other) {
			continue
		}
		if best == "" || c.ID < best {
			best = c.ID
		}
	}
	return best
}

// newChat loads both profiles and the product and snapshots their display
// fields. Any missing record aborts before a write.
func (uc *ChatUseCase) newChat(ctx context.Context, userA, userB, productID string) (*entity.Chat, error) {
	var (
		a, b    *entity.User
		product *entity.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := uc.userRepo.GetByID(gctx, userA)
		if err != nil {
			return precondition("user "+userA, err)
		}
		a = u
		return nil
	})
	g.Go(func() error {
		u, err := uc.userRepo.GetByID(gctx, userB)
		if err != nil {
			return precondition("user "+userB, err)
		}
		b = u
		return nil
	})
	g.Go(func() error {
		p, err := uc.productRepo.GetByID(gctx, productID)
		if err != nil {
			return precondition("product "+productID, err)
		}
		product = p
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("GetOrCreateChat Error: %v", err)
		return nil, err
	}

	return &entity.Chat{
		ID:           ChatKey(userA, userB, productID),
		Participants: []string{userA, userB},
		ParticipantDetails: map[string]entity.ParticipantDetail{
			a.ID: {Name: a.Name, Avatar: a.Avatar},
			b.ID: {Name: b.Name, Avatar: b.Avatar},
		},
		ProductID:    product.ID,
		ProductTitle: product.Title,
		ProductImage: product.CoverImage(),
	}, nil
}

func precondition(what string, err error) error {
	if errors.Is(err, "NOT_FOUND") {
		return errors.PreconditionFailed(fmt.Sprintf("Cannot start chat: %s does not exist", what), err)
	}
	return err
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID, chatID, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.BadRequest("Message text cannot be empty", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage); !allowed {
			logger.Info("SendMessage Rate Limited: user %s must wait %v", senderID, wait)
			return nil, errors.TooManyRequests(fmt.Sprintf("You are sending messages too fast. Try again in %s", wait.Round(time.Second)))
		}
	}

	chat, err := uc.participantChat(ctx, senderID, chatID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ChatID:   chat.ID,
		SenderID: senderID,
		Text:     text,
	}
	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		logger.Error("SendMessage Error: chat %s: %v", chatID, err)
		reportStoreError(ctx, uc.emitter, senderID, err)
		return nil, err
	}

	if uc.wsManager != nil {
		recipient := chat.OtherParticipant(senderID)
		uc.wsManager.SendToUser(recipient, ws.Encode(ws.TypeNewMessage, chat.ID, message))
		uc.wsManager.SendToUser(senderID, ws.Encode(ws.TypeChatMessage, chat.ID, message))
		summary := map[string]interface{}{"last_message": message.Text, "timestamp": message.Timestamp}
		uc.wsManager.SendToUser(recipient, ws.Encode(ws.TypeChatListPing, chat.ID, summary))
	}

	return message, nil
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, chatID string, limit int) ([]*entity.Message, error) {
	if _, err := uc.participantChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMessagePage
	}
	if limit > MaxMessagePage {
		limit = MaxMessagePage
	}

	messages, err := uc.chatRepo.ListMessages(ctx, chatID, limit)
	if err != nil {
		logger.Error("ListMessages Error: chat %s: %v", chatID, err)
		reportIfDenied(ctx, uc.emitter, userID, err)
		return nil, err
	}
	return messages, nil
}

// ListChatsForUser returns the user's chats, most recent activity first.
func (uc *ChatUseCase) ListChatsForUser(ctx context.Context, userID string) ([]*entity.Chat, error) {
	chats, err := uc.chatRepo.ListByUserID(ctx, userID)
	if err != nil {
		logger.Error("ListChatsForUser Error: user %s: %v", userID, err)
		reportIfDenied(ctx, uc.emitter, userID, err)
		return nil, err
	}
	return chats, nil
}

func (uc *ChatUseCase) GetChat(ctx context.Context, userID, chatID string) (*entity.Chat, error) {
	return uc.participantChat(ctx, userID, chatID)
}

// StreamMessages calls fn with each new message of the chat until ctx is
// done.
func (uc *ChatUseCase) StreamMessages(ctx context.Context, userID, chatID string, fn func(*entity.Message) error) error {
	if _, err := uc.participantChat(ctx, userID, chatID); err != nil {
		return err
	}
	err := uc.chatRepo.WatchMessages(ctx, chatID, fn)
	if err != nil {
		reportIfDenied(ctx, uc.emitter, userID, err)
	}
	return err
}

func (uc *ChatUseCase) participantChat(ctx context.Context, userID, chatID string) (*entity.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		reportIfDenied(ctx, uc.emitter, userID, err)
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}
	return chat, nil
}
