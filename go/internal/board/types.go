package board

// CreateBoardRequest creates a board.
type CreateBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Background  string `json:"background"`
}

// UpdateBoardRequest carries plain field edits.
type UpdateBoardRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Background  *string `json:"background,omitempty"`
}
