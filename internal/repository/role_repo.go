package repository

import (
	"context"
	"errors"

	"go-insumos-ws/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	// SeedDefaults creates missing default roles and grants them their privileges.
	SeedDefaults(ctx context.Context) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.WithContext(ctx).Preload("Privileges").Order("id ASC").Find(&roles).Error; err != nil {
		return nil, translate(err, "role")
	}
	return roles, nil
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error; err != nil {
		return nil, translate(err, "role")
	}
	return &role, nil
}

func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range model.DefaultRoles {
			var role model.Role
			err := tx.Where("code = ?", def.Code).First(&role).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				role = model.Role{Code: def.Code, Name: def.Name, Description: def.Description}
				err = tx.Create(&role).Error
			}
			if err != nil {
				return translate(err, "role")
			}

			var privileges []model.Privilege
			if err := tx.Where("code IN ?", model.RolePrivilegeCodes(def.Code)).Find(&privileges).Error; err != nil {
				return translate(err, "privilege")
			}
			if err := tx.Model(&role).Association("Privileges").Replace(privileges); err != nil {
				return translate(err, "role")
			}
		}
		return nil
	})
}
