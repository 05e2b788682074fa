package dto

type TaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time"`                    // HH:MM
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high"`
	Subject     string `json:"subject"`
}
