package entities

import "fmt"

type KBItem struct {
	ID            uint64 `json:"id"`
	Title         string `json:"title"`
	CategoryTitle string `json:"category_title"`
}

func (k KBItem) String() string {
	if k.CategoryTitle == "" {
		return k.Title
	}
	return fmt.Sprintf("%s: %s", k.CategoryTitle, k.Title)
}
