package requests

import "github.com/google/uuid"

// ProductionRole is a slot on the production team of a request.
type ProductionRole string

const (
	RoleCopywriter   ProductionRole = "copywriter"
	RoleDesigner     ProductionRole = "designer"
	RoleVideographer ProductionRole = "videographer"
	RolePublisher    ProductionRole = "publisher"
)

var ProductionRoles = []ProductionRole{RoleCopywriter, RoleDesigner, RoleVideographer, RolePublisher}

// Assignment maps each production role to at most one user.
type Assignment struct {
	Copywriter   *uuid.UUID `gorm:"type:uuid;column:copywriter" json:"copywriter,omitempty"`
	Designer     *uuid.UUID `gorm:"type:uuid;column:designer" json:"designer,omitempty"`
	Videographer *uuid.UUID `gorm:"type:uuid;column:videographer" json:"videographer,omitempty"`
	Publisher    *uuid.UUID `gorm:"type:uuid;column:publisher" json:"publisher,omitempty"`
}

func (a Assignment) Get(role ProductionRole) (uuid.UUID, bool) {
	var p *uuid.UUID
	switch role {
	case RoleCopywriter:
		p = a.Copywriter
	case RoleDesigner:
		p = a.Designer
	case RoleVideographer:
		p = a.Videographer
	case RolePublisher:
		p = a.Publisher
	}
	if p == nil || *p == uuid.Nil {
		return uuid.Nil, false
	}
	return *p, true
}

// Set assigns id to role; uuid.Nil clears the slot.
func (a *Assignment) Set(role ProductionRole, id uuid.UUID) {
	var p *uuid.UUID
	if id != uuid.Nil {
		v := id
		p = &v
	}
	switch role {
	case RoleCopywriter:
		a.Copywriter = p
	case RoleDesigner:
		a.Designer = p
	case RoleVideographer:
		a.Videographer = p
	case RolePublisher:
		a.Publisher = p
	}
}

// Members lists the distinct assigned users in role order.
func (a Assignment) Members() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ProductionRoles))
	seen := make(map[uuid.UUID]struct{}, len(ProductionRoles))
	for _, role := range ProductionRoles {
		id, ok := a.Get(role)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (a Assignment) IsEmpty() bool { return len(a.Members()) == 0 }

func (a Assignment) Includes(id uuid.UUID) bool {
	for _, m := range a.Members() {
		if m == id {
			return true
		}
	}
	return false
}

func (a Assignment) Clone() Assignment {
	var out Assignment
	for _, role := range ProductionRoles {
		if id, ok := a.Get(role); ok {
			out.Set(role, id)
		}
	}
	return out
}
