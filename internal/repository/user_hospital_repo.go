package repository

import (
	"hospital-resource-booking/internal/models"

	"gorm.io/gorm"
)

type UserHospitalRepository struct {
	db *gorm.DB
}

func NewUserHospitalRepo(db *gorm.DB) *UserHospitalRepository {
	return &UserHospitalRepository{db: db}
}

// AssignUserToHospital grants an authority user access to a hospital
func (r *UserHospitalRepository) AssignUserToHospital(userID, hospitalID uint) error {
	userHospital := &models.UserHospital{
		UserID:     userID,
		HospitalID: hospitalID,
	}
	// Use FirstOrCreate to avoid duplicate entries
	return r.db.Where("user_id = ? AND hospital_id = ?", userID, hospitalID).
		FirstOrCreate(userHospital).Error
}

// RemoveUserFromHospital revokes an authority user's access to a hospital
func (r *UserHospitalRepository) RemoveUserFromHospital(userID, hospitalID uint) error {
	return r.db.Where("user_id = ? AND hospital_id = ?", userID, hospitalID).
		Delete(&models.UserHospital{}).Error
}

// HasAccess reports whether the user is assigned to the hospital
func (r *UserHospitalRepository) HasAccess(userID, hospitalID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.UserHospital{}).
		Where("user_id = ? AND hospital_id = ?", userID, hospitalID).
		Count(&count).Error
	return count > 0, err
}

// GetUserHospitals retrieves all hospital IDs a user has access to
func (r *UserHospitalRepository) GetUserHospitals(userID uint) ([]uint, error) {
	var hospitalIDs []uint
	err := r.db.Model(&models.UserHospital{}).
		Where("user_id = ?", userID).
		Pluck("hospital_id", &hospitalIDs).Error
	return hospitalIDs, err
}
