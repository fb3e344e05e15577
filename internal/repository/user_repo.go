package repository

import (
	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
	"github.com/Mujanati13/Qabalan-sub006/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// StaffIDs returns the ids of all admin and staff users.
func (r *UserRepository) StaffIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.User{}).
		Where("role IN ?", []string{domain.RoleAdmin, domain.RoleStaff}).
		Pluck("id", &ids).Error
	return ids, err
}
