package repository

import (
	"fmt"

	"cloud.google.com/go/firestore"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/pkg/logger"
)

// Snapshots are decoded into the tagged entity types here and checked
// before they leave the adapter. Documents that fail are skipped in lists
// and reported as errors for single reads.

func decodeProduct(doc *firestore.DocumentSnapshot) (*entity.Product, error) {
	var p entity.Product
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", doc.Ref.ID, err)
	}
	p.ID = doc.Ref.ID
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func decodeUser(doc *firestore.DocumentSnapshot) (*entity.User, error) {
	var u entity.User
	if err := doc.DataTo(&u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", doc.Ref.ID, err)
	}
	u.ID = doc.Ref.ID
	u.Normalize()
	return &u, nil
}

func decodeChat(doc *firestore.DocumentSnapshot) (*entity.Chat, error) {
	var c entity.Chat
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode chat %s: %w", doc.Ref.ID, err)
	}
	c.ID = doc.Ref.ID
	if len(c.Participants) != 2 || c.Participants[0] == c.Participants[1] {
		return nil, fmt.Errorf("chat %s: expected two distinct participants, got %v", c.ID, c.Participants)
	}
	if c.ParticipantDetails == nil {
		c.ParticipantDetails = map[string]entity.ParticipantDetail{}
	}
	return &c, nil
}

func decodeMessage(doc *firestore.DocumentSnapshot) (*entity.Message, error) {
	var m entity.Message
	if err := doc.DataTo(&m); err != nil {
		return nil, fmt.Errorf("decode message %s: %w", doc.Ref.ID, err)
	}
	m.ID = doc.Ref.ID
	if m.Text == "" || m.SenderID == "" {
		return nil, fmt.Errorf("message %s: missing text or sender", m.ID)
	}
	return &m, nil
}

func decodeProducts(docs []*firestore.DocumentSnapshot) []*entity.Product {
	products := make([]*entity.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProduct(doc)
		if err != nil {
			logger.Warn("Skipping malformed product document: %v", err)
			continue
		}
		products = append(products, p)
	}
	return products
}
