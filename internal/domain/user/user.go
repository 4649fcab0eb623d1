package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleStaff      Role = "staff"
	RoleMember     Role = "member"
)

// Division is the production team a staff member belongs to.
type Division string

const (
	DivisionCopywriter   Division = "copywriter"
	DivisionDesigner     Division = "designer"
	DivisionVideographer Division = "videographer"
	DivisionPublisher    Division = "publisher"
	DivisionGeneral      Division = "general"
)

// ElevatedRoles are the roles that validate, assign, review and force.
var ElevatedRoles = []Role{RoleAdmin, RoleSuperadmin}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Role     Role      `gorm:"not null;column:role;index" json:"role"`
	Division Division  `gorm:"column:division" json:"division,omitempty"`
	IsActive bool      `gorm:"not null;column:is_active;index" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u User) IsElevated() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperadmin
}
