package dto

type NoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Color   *string `json:"color"`
	Folder  *string `json:"folder"`
}
