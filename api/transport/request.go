package transport

import "encoding/json"

type EventRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type RatingSubmitRequest struct {
	Type   string `json:"type"`
	ItemID string `json:"id"`
	Score  int    `json:"score"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Lang    string `json:"lang"`
}

type NewsletterRequest struct {
	Email string `json:"email"`
	Lang  string `json:"lang"`
}

type FeedbackRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

type LiveCreateRequest struct {
	TitleSV       string `json:"titleSv"`
	TitleEN       string `json:"titleEn"`
	StartISO      string `json:"startIso"`
	LinkedAuction *int   `json:"linkedAuction"`
}

type MarkSoldRequest struct {
	FinalPrice string `json:"finalPrice"`
}

type AdminLoginRequest struct {
	Key string `json:"key"`
}
