package entities

// SavedSearch - сохранённый пользователем запрос к списку тикетов.
// Query хранит токен, иногда в старом виде b'...'.
type SavedSearch struct {
	ID     uint64 `json:"id"`
	UserID uint64 `json:"user_id"`
	Title  string `json:"title"`
	Shared bool   `json:"shared"`
	Query  string `json:"query"`
}

func (s SavedSearch) VisibleTo(userID uint64) bool {
	return s.Shared || s.UserID == userID
}
