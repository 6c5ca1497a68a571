package service

import (
	"errors"
	"time"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/util"

	"gorm.io/gorm"
)

// RoadmapService 负责个人学习路线与步骤管理
type RoadmapService struct {
	RoadmapRepo *repository.RoadmapRepository
}

func NewRoadmapService(roadmapRepo *repository.RoadmapRepository) *RoadmapService {
	return &RoadmapService{RoadmapRepo: roadmapRepo}
}

type RoadmapStepRequest struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	Order          int    `json:"order"`
	ResourceURL    string `json:"resourceUrl"`
	EstimatedHours int    `json:"estimatedHours"`
}

type RoadmapRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	Goal        string               `json:"goal"`
	TargetDate  *time.Time           `json:"targetDate"`
	Steps       []RoadmapStepRequest `json:"steps"`
}

func (s *RoadmapService) CreateRoadmap(userID uint, req RoadmapRequest) (*model.Roadmap, error) {
	roadmap := &model.Roadmap{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Goal:        req.Goal,
		TargetDate:  req.TargetDate,
		Status:      model.RoadmapActive,
	}
	for i, step := range req.Steps {
		order := step.Order
		if order == 0 {
			order = i + 1
		}
		roadmap.Steps = append(roadmap.Steps, model.RoadmapStep{
			Title:          step.Title,
			Description:    step.Description,
			Order:          order,
			Status:         model.StepNotStarted,
			ResourceURL:    step.ResourceURL,
			EstimatedHours: step.EstimatedHours,
		})
	}

	if err := s.RoadmapRepo.Create(roadmap); err != nil {
		return nil, err
	}
	return roadmap, nil
}

type RoadmapView struct {
	*model.Roadmap
	Progress       float64 `json:"progress"`
	CompletedSteps int     `json:"completedSteps"`
	TotalSteps     int     `json:"totalSteps"`
}

func (s *RoadmapService) ListMine(userID uint) ([]RoadmapView, error) {
	roadmaps, err := s.RoadmapRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	views := make([]RoadmapView, len(roadmaps))
	for i := range roadmaps {
		views[i] = buildRoadmapView(&roadmaps[i])
	}
	return views, nil
}

func (s *RoadmapService) GetRoadmap(userID, roadmapID uint) (*RoadmapView, error) {
	roadmap, err := s.findOwnedRoadmap(userID, roadmapID)
	if err != nil {
		return nil, err
	}
	view := buildRoadmapView(roadmap)
	return &view, nil
}

func (s *RoadmapService) UpdateRoadmap(userID, roadmapID uint, req RoadmapRequest) (*model.Roadmap, error) {
	roadmap, err := s.findOwnedRoadmap(userID, roadmapID)
	if err != nil {
		return nil, err
	}

	roadmap.Title = req.Title
	roadmap.Description = req.Description
	roadmap.Goal = req.Goal
	roadmap.TargetDate = req.TargetDate

	if err := s.RoadmapRepo.Update(roadmap); err != nil {
		return nil, err
	}
	return roadmap, nil
}

func (s *RoadmapService) DeleteRoadmap(userID, roadmapID uint) error {
	if _, err := s.findOwnedRoadmap(userID, roadmapID); err != nil {
		return err
	}
	return s.RoadmapRepo.Delete(roadmapID)
}

func (s *RoadmapService) AddStep(userID, roadmapID uint, req RoadmapStepRequest) (*model.RoadmapStep, error) {
	roadmap, err := s.findOwnedRoadmap(userID, roadmapID)
	if err != nil {
		return nil, err
	}

	order := req.Order
	if order == 0 {
		order = len(roadmap.Steps) + 1
	}
	step := &model.RoadmapStep{
		RoadmapID:      roadmapID,
		Title:          req.Title,
		Description:    req.Description,
		Order:          order,
		Status:         model.StepNotStarted,
		ResourceURL:    req.ResourceURL,
		EstimatedHours: req.EstimatedHours,
	}
	if err := s.RoadmapRepo.CreateStep(step); err != nil {
		return nil, err
	}

	// 新增步骤后路线不再是完成状态
	if roadmap.Status == model.RoadmapCompleted {
		roadmap.Status = model.RoadmapActive
		_ = s.RoadmapRepo.Update(roadmap)
	}
	return step, nil
}

type StepUpdateRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Order          int              `json:"order"`
	Status         model.StepStatus `json:"status"`
	ResourceURL    string           `json:"resourceUrl"`
	EstimatedHours int              `json:"estimatedHours"`
}

// UpdateStep 更新步骤。全部步骤完成时路线自动置为完成。
func (s *RoadmapService) UpdateStep(userID, stepID uint, req StepUpdateRequest) (*model.RoadmapStep, error) {
	step, err := s.RoadmapRepo.FindStepByID(stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStepNotFound
		}
		return nil, err
	}
	roadmap, err := s.findOwnedRoadmap(userID, step.RoadmapID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		step.Title = req.Title
	}
	if req.Description != "" {
		step.Description = req.Description
	}
	if req.Order != 0 {
		step.Order = req.Order
	}
	if req.Status != "" {
		step.Status = req.Status
	}
	if req.ResourceURL != "" {
		step.ResourceURL = req.ResourceURL
	}
	if req.EstimatedHours != 0 {
		step.EstimatedHours = req.EstimatedHours
	}

	if err := s.RoadmapRepo.UpdateStep(step); err != nil {
		return nil, err
	}

	if err := s.reconcileStatus(roadmap); err != nil {
		return nil, err
	}
	return step, nil
}

func (s *RoadmapService) DeleteStep(userID, stepID uint) error {
	step, err := s.RoadmapRepo.FindStepByID(stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrStepNotFound
		}
		return err
	}
	roadmap, err := s.findOwnedRoadmap(userID, step.RoadmapID)
	if err != nil {
		return err
	}

	if err := s.RoadmapRepo.DeleteStep(stepID); err != nil {
		return err
	}
	return s.reconcileStatus(roadmap)
}

// ReorderSteps 按给定步骤ID顺序重排，要求覆盖该路线的全部步骤
func (s *RoadmapService) ReorderSteps(userID, roadmapID uint, stepIDs []uint) ([]model.RoadmapStep, error) {
	if _, err := s.findOwnedRoadmap(userID, roadmapID); err != nil {
		return nil, err
	}

	steps, err := s.RoadmapRepo.ListSteps(roadmapID)
	if err != nil {
		return nil, err
	}
	if len(stepIDs) != len(steps) {
		return nil, errors.New("步骤列表不完整")
	}
	known := make(map[uint]bool, len(steps))
	for _, step := range steps {
		known[step.ID] = true
	}
	for _, id := range stepIDs {
		if !known[id] {
			return nil, util.ErrStepNotFound
		}
	}

	if err := s.RoadmapRepo.ReorderSteps(roadmapID, stepIDs); err != nil {
		return nil, err
	}
	return s.RoadmapRepo.ListSteps(roadmapID)
}

func (s *RoadmapService) findOwnedRoadmap(userID, roadmapID uint) (*model.Roadmap, error) {
	roadmap, err := s.RoadmapRepo.FindByID(roadmapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRoadmapNotFound
		}
		return nil, err
	}
	if roadmap.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return roadmap, nil
}

// reconcileStatus 根据步骤完成情况同步路线状态
func (s *RoadmapService) reconcileStatus(roadmap *model.Roadmap) error {
	steps, err := s.RoadmapRepo.ListSteps(roadmap.ID)
	if err != nil {
		return err
	}

	status := model.RoadmapActive
	if len(steps) > 0 {
		completed := 0
		for _, step := range steps {
			if step.Status == model.StepCompleted {
				completed++
			}
		}
		if completed == len(steps) {
			status = model.RoadmapCompleted
		}
	}

	if roadmap.Status != status && roadmap.Status != model.RoadmapArchived {
		roadmap.Status = status
		return s.RoadmapRepo.Update(roadmap)
	}
	return nil
}

func buildRoadmapView(roadmap *model.Roadmap) RoadmapView {
	view := RoadmapView{
		Roadmap:    roadmap,
		TotalSteps: len(roadmap.Steps),
	}
	for _, step := range roadmap.Steps {
		if step.Status == model.StepCompleted {
			view.CompletedSteps++
		}
	}
	if view.TotalSteps > 0 {
		view.Progress = roundScore(float64(view.CompletedSteps) / float64(view.TotalSteps) * 100)
	}
	return view
}
