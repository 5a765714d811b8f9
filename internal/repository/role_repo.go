package repository

import (
	"context"

	"invoicer/internal/model"

	"gorm.io/gorm"
)

// RoleRepository manages role reference data. FirstOrCreate backs the lazy
// default-role creation at registration: a concurrent create races on the
// unique name constraint and the loser re-reads.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*model.Role, error)
	FindOrCreate(ctx context.Context, name string) (*model.Role, error)
}

type roleRepo struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) RoleRepository { return &roleRepo{db: db} }

func (r *roleRepo) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindOrCreate(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).
		Where(model.Role{Name: name}).
		FirstOrCreate(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}
