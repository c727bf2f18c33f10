package entity

import "time"

// Digest is a persisted fetch result for one district and date.
// At most one digest exists per (district, date) pair; a refetch replaces it.
type Digest struct {
	ID           int64
	District     string
	Date         string
	Provider     string
	IsMock       bool
	ArticleCount int
	Articles     []Article
	CreatedAt    time.Time
}

// Validate validates the Digest entity fields.
func (d *Digest) Validate() error {
	if err := ValidateDistrict(d.District); err != nil {
		return err
	}
	if !dateRe.MatchString(d.Date) {
		return &ValidationError{Field: "date", Message: "date must use YYYY-MM-DD format"}
	}
	if d.Provider == "" {
		return &ValidationError{Field: "provider", Message: "provider is required"}
	}
	return nil
}
