package domain

import (
	"regexp"
	"time"
)

const (
	DefaultCategoryColor = "#10b981"
	DefaultCategoryIcon  = "Tag"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidColor reports whether color has the #RRGGBB form.
func ValidColor(color string) bool {
	return hexColorPattern.MatchString(color)
}

// Category groups tickets by topic.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	CreatedDate time.Time `json:"created_date"`
	UpdatedDate time.Time `json:"updated_date"`
}

// CategoryPatch carries partial category updates. Nil fields are left untouched.
type CategoryPatch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}
