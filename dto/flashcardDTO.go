package dto

import (
	"encoding/json"
	"errors"
)

type DeckRequest struct {
	Name string `json:"name" binding:"required"`
}

type CardRequest struct {
	Front string `json:"front" binding:"required"`
	Back  string `json:"back" binding:"required"`
	Tags  Tags   `json:"tags"`
}

type MarkRequest struct {
	Difficulty string `json:"difficulty" binding:"required,oneof=hard good easy"`
}

// Tags accepts either "a, b" or ["a", "b"].
type Tags struct {
	Text string
	List []string
}

func (t *Tags) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, &t.Text); err == nil {
		return nil
	}
	if err := json.Unmarshal(b, &t.List); err != nil {
		return errors.New("tags must be a string or a list of strings")
	}
	if t.List == nil {
		t.List = []string{}
	}
	return nil
}
