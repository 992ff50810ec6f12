package entity

import "time"

// Follow is a directed edge: UserFollowingID follows UserBeingFollowedID.
type Follow struct {
	UserBeingFollowedID uint      `gorm:"primaryKey;autoIncrement:false" json:"user_being_followed_id"`
	UserFollowingID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_following_id"`
	UserBeingFollowed   User      `gorm:"foreignKey:UserBeingFollowedID;constraint:OnDelete:CASCADE" json:"-"`
	UserFollowing       User      `gorm:"foreignKey:UserFollowingID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Follow) TableName() string {
	return "follows"
}
