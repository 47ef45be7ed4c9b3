package models

// Group is a named collection of posts. Title and slug are globally unique;
// groups are created out of band and never modified by the request flows.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:varchar(200);uniqueIndex;not null" json:"title"`
	Slug        string `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}
