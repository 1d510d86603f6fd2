package model

import "time"

// CorrectionAudit is an append-only record of a manual category
// correction: the query as seen at correction time plus the category the
// operator assigned.
type CorrectionAudit struct {
	CreatedAt    time.Time    `json:"created_at"`
	ID           string       `json:"id"`
	Query        ProductQuery `json:"query"`
	CategoryID   string       `json:"category_id"`
	CategoryName string       `json:"category_name"`
	Success      bool         `json:"success"`
}
