package models

// DefaultProfilePicture is the sentinel asset served when a user has
// never uploaded a picture. Media replacement must never delete it.
const DefaultProfilePicture = "media/profile_pics/default.png"

type Profile struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	ProfilePicture string `gorm:"size:255;default:'media/profile_pics/default.png'" json:"profile_picture"`
	Location       string `gorm:"size:100" json:"location,omitempty"`
	Bio            string `gorm:"type:text" json:"bio,omitempty"`
}
