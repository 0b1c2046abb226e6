package repository

import (
	"context"
	"errors"

	"github.com/romeolab/agenda-notify/internal/domain"
	"gorm.io/gorm"
)

type ClientRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
}

type GormClientRepo struct {
	db *gorm.DB
}

func NewGormClientRepo(db *gorm.DB) *GormClientRepo {
	return &GormClientRepo{db: db}
}

func (r *GormClientRepo) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	var model ClientModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return clientModelToDomain(&model), nil
}
