package repository

import (
	"eduai_backend/internal/model"

	"gorm.io/gorm"
)

type RoadmapRepository struct {
	DB *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) *RoadmapRepository {
	return &RoadmapRepository{DB: db}
}

func (r *RoadmapRepository) Create(roadmap *model.Roadmap) error {
	return r.DB.Create(roadmap).Error
}

func (r *RoadmapRepository) FindByID(id uint) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("`order` asc, created_at asc")
	}).First(&roadmap, id).Error
	return &roadmap, err
}

func (r *RoadmapRepository) ListByUser(userID uint) ([]model.Roadmap, error) {
	var roadmaps []model.Roadmap
	err := r.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("`order` asc, created_at asc")
	}).Where("user_id = ?", userID).Order("created_at desc").Find(&roadmaps).Error
	return roadmaps, err
}

func (r *RoadmapRepository) Update(roadmap *model.Roadmap) error {
	return r.DB.Save(roadmap).Error
}

func (r *RoadmapRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("roadmap_id = ?", id).Delete(&model.RoadmapStep{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Roadmap{}, id).Error
	})
}

// Step related methods

func (r *RoadmapRepository) CreateStep(step *model.RoadmapStep) error {
	return r.DB.Create(step).Error
}

func (r *RoadmapRepository) FindStepByID(id uint) (*model.RoadmapStep, error) {
	var step model.RoadmapStep
	err := r.DB.First(&step, id).Error
	return &step, err
}

func (r *RoadmapRepository) ListSteps(roadmapID uint) ([]model.RoadmapStep, error) {
	var steps []model.RoadmapStep
	err := r.DB.Where("roadmap_id = ?", roadmapID).
		Order("`order` asc, created_at asc").
		Find(&steps).Error
	return steps, err
}

func (r *RoadmapRepository) UpdateStep(step *model.RoadmapStep) error {
	return r.DB.Save(step).Error
}

func (r *RoadmapRepository) DeleteStep(id uint) error {
	return r.DB.Delete(&model.RoadmapStep{}, id).Error
}

// ReorderSteps 按给定ID顺序重排步骤
func (r *RoadmapRepository) ReorderSteps(roadmapID uint, stepIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i, stepID := range stepIDs {
			if err := tx.Model(&model.RoadmapStep{}).
				Where("id = ? AND roadmap_id = ?", stepID, roadmapID).
				Update("order", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
