package entity

import "time"

type Message struct {
	ID        string    `json:"id" firestore:"-"`
	ChatID    string    `json:"chat_id" firestore:"chatId"`
	SenderID  string    `json:"sender_id" firestore:"senderId"`
	Text      string    `json:"text" firestore:"text"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`
}
