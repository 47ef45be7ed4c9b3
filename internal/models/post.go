package models

import "time"

// Post is a single authored text entry. The author reference is set at
// creation and never changes; removing the author removes their posts, while
// removing a group only clears the reference on its posts.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index:idx_posts_pub_date,sort:desc" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id"`
	Group    *Group    `gorm:"constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image    string    `gorm:"type:varchar(255)" json:"image,omitempty"`
}
