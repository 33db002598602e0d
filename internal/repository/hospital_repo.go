package repository

import (
	"errors"
	"fmt"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/pkg/apperrors"

	"gorm.io/gorm"
)

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// GetAllHospitals retrieves all active hospitals
func (r *HospitalRepository) GetAllHospitals() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&hospitals).Error
	return hospitals, err
}

// GetHospitalByID retrieves an active hospital by ID
func (r *HospitalRepository) GetHospitalByID(id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: hospital %d", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return &hospital, nil
}

// GetHospitalsByUserID retrieves hospitals an authority user is assigned to
func (r *HospitalRepository) GetHospitalsByUserID(userID uint) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.
		Joins("INNER JOIN user_hospitals ON user_hospitals.hospital_id = hospitals.id").
		Where("user_hospitals.user_id = ? AND hospitals.is_active = ?", userID, true).
		Order("hospitals.name ASC").
		Find(&hospitals).Error
	return hospitals, err
}

// CreateHospital creates a new hospital
func (r *HospitalRepository) CreateHospital(hospital *models.Hospital) error {
	return r.db.Create(hospital).Error
}
