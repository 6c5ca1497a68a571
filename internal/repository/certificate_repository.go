package repository

import (
	"eduai_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(certificate *model.Certificate) error {
	return r.DB.Create(certificate).Error
}

func (r *CertificateRepository) FindByID(id string) (*model.Certificate, error) {
	var certificate model.Certificate
	err := r.DB.Where("id = ?", id).First(&certificate).Error
	return &certificate, err
}

func (r *CertificateRepository) FindBySerial(serial string) (*model.Certificate, error) {
	var certificate model.Certificate
	err := r.DB.Where("serial = ?", serial).First(&certificate).Error
	return &certificate, err
}

func (r *CertificateRepository) FindByUserAndCourse(userID, courseID uint) (*model.Certificate, error) {
	var certificate model.Certificate
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&certificate).Error
	return &certificate, err
}

func (r *CertificateRepository) ListByUser(userID uint) ([]model.Certificate, error) {
	var certificates []model.Certificate
	err := r.DB.Where("user_id = ?", userID).Order("issued_at desc").Find(&certificates).Error
	return certificates, err
}
