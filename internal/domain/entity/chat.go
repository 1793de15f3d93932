package entity

import "time"

type ParticipantDetail struct {
	Name   string `json:"name" firestore:"name"`
	Avatar string `json:"avatar" firestore:"avatar"`
}

type LastMessage struct {
	Text      string    `json:"text" firestore:"text"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

type Chat struct {
	ID                 string                       `json:"id" firestore:"-"`
	Participants       []string                     `json:"participants" firestore:"participants"`
	ParticipantDetails map[string]ParticipantDetail `json:"participant_details" firestore:"participantDetails"`
	ProductID          string                       `json:"product_id" firestore:"productId"`
	ProductTitle       string                       `json:"product_title" firestore:"productTitle"`
	ProductImage       string                       `json:"product_image" firestore:"productImage"`
	LastMessage        *LastMessage                 `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	CreatedAt          time.Time                    `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not userID.
func (c *Chat) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
