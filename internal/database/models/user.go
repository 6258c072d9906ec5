package models

// User is an account able to join teams and projects
type User struct {
	SoftDeleteModel
	Name         string   `json:"name" gorm:"size:255;not null"`
	Username     string   `json:"username" gorm:"size:255;not null;uniqueIndex:idx_users_username,where:deleted_at IS NULL"`
	Email        string   `json:"email" gorm:"size:255;not null;uniqueIndex:idx_users_email,where:deleted_at IS NULL"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	Role         UserRole `json:"role" gorm:"size:20;not null;default:'Member'"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}
