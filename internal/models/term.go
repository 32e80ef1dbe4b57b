package models

import (
	"time"
)

// Term is a glossary entry. Any signed-in member may revise it,
// EditorID remembers who touched the definition last. Seeded house
// entries carry no author.
type Term struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"uniqueIndex;not null" json:"name"`
	Definition string    `gorm:"type:text;not null" json:"definition"`
	AuthorID   *uint     `gorm:"index" json:"author_id"`
	Author     *Account  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"author"`
	EditorID   *uint     `gorm:"index" json:"editor_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t Term) OwnedBy() uint {
	if t.AuthorID == nil {
		return 0
	}
	return *t.AuthorID
}
