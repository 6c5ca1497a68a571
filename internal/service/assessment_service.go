package service

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/util"
	"eduai_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// AssessmentService 负责测评与题目管理、作答流程和统计快照刷新
type AssessmentService struct {
	AssessmentRepo *repository.AssessmentRepository
	AttemptRepo    *repository.AttemptRepository
	Gamification   *GamificationService
	Achievements   *AchievementService
}

func NewAssessmentService(
	assessmentRepo *repository.AssessmentRepository,
	attemptRepo *repository.AttemptRepository,
	gamification *GamificationService,
	achievements *AchievementService,
) *AssessmentService {
	return &AssessmentService{
		AssessmentRepo: assessmentRepo,
		AttemptRepo:    attemptRepo,
		Gamification:   gamification,
		Achievements:   achievements,
	}
}

type AssessmentRequest struct {
	Title           string                 `json:"title" binding:"required"`
	Description     string                 `json:"description"`
	Field           string                 `json:"field"`
	SkillsAssessed  []string               `json:"skillsAssessed"`
	Difficulty      model.CourseDifficulty `json:"difficulty"`
	DurationMinutes int                    `json:"durationMinutes"`
	PassingScore    *int                   `json:"passingScore"`
}

func (s *AssessmentService) CreateAssessment(creatorID uint, req AssessmentRequest) (*model.Assessment, error) {
	skills, _ := json.Marshal(req.SkillsAssessed)

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyBeginner
	}
	durationMinutes := req.DurationMinutes
	if durationMinutes <= 0 {
		durationMinutes = 30
	}
	passingScore := 70
	if req.PassingScore != nil {
		passingScore = *req.PassingScore
	}

	a := &model.Assessment{
		Title:           req.Title,
		Description:     req.Description,
		Field:           req.Field,
		SkillsAssessed:  skills,
		Difficulty:      difficulty,
		DurationMinutes: durationMinutes,
		PassingScore:    passingScore,
		Status:          model.AssessmentDraft,
		CreatedByID:     creatorID,
		TopSkillGaps:    json.RawMessage("[]"),
	}
	if err := s.AssessmentRepo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) UpdateAssessment(userID uint, role model.UserRole, id uint, req AssessmentRequest) (*model.Assessment, error) {
	a, err := s.findManagedAssessment(userID, role, id)
	if err != nil {
		return nil, err
	}

	a.Title = req.Title
	a.Description = req.Description
	a.Field = req.Field
	if req.SkillsAssessed != nil {
		a.SkillsAssessed, _ = json.Marshal(req.SkillsAssessed)
	}
	if req.Difficulty != "" {
		a.Difficulty = req.Difficulty
	}
	if req.DurationMinutes > 0 {
		a.DurationMinutes = req.DurationMinutes
	}
	if req.PassingScore != nil {
		a.PassingScore = *req.PassingScore
	}

	if err := s.AssessmentRepo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

// PublishAssessment 发布测评，至少需要一道题目
func (s *AssessmentService) PublishAssessment(userID uint, role model.UserRole, id uint) (*model.Assessment, error) {
	a, err := s.findManagedAssessment(userID, role, id)
	if err != nil {
		return nil, err
	}

	count, err := s.AssessmentRepo.CountQuestions(id)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, util.ErrAssessmentNoQuestions
	}

	a.Status = model.AssessmentPublished
	if err := s.AssessmentRepo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) DeleteAssessment(userID uint, role model.UserRole, id uint) error {
	if _, err := s.findManagedAssessment(userID, role, id); err != nil {
		return err
	}
	return s.AssessmentRepo.Delete(id)
}

func (s *AssessmentService) ListPublished(page, limit int, field string) ([]model.Assessment, int64, error) {
	return s.AssessmentRepo.List(page, limit, string(model.AssessmentPublished), field)
}

func (s *AssessmentService) ListByCreator(creatorID uint, page, limit int) ([]model.Assessment, int64, error) {
	return s.AssessmentRepo.ListByCreator(creatorID, page, limit)
}

func (s *AssessmentService) GetAssessment(userID uint, role model.UserRole, id uint) (*model.Assessment, error) {
	a, err := s.AssessmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}
	if a.Status != model.AssessmentPublished && !canManageAssessment(userID, role, a) {
		return nil, util.ErrAssessmentNotFound
	}
	return a, nil
}

type QuestionRequest struct {
	Text          string                   `json:"text" binding:"required"`
	Options       []model.Option           `json:"options" binding:"required,min=2"`
	SkillCategory string                   `json:"skillCategory"`
	Difficulty    model.QuestionDifficulty `json:"difficulty"`
	Points        int                      `json:"points"`
	Explanation   string                   `json:"explanation"`
	Order         int                      `json:"order"`
}

func (s *AssessmentService) AddQuestion(userID uint, role model.UserRole, assessmentID uint, req QuestionRequest) (*model.Question, error) {
	if _, err := s.findManagedAssessment(userID, role, assessmentID); err != nil {
		return nil, err
	}

	options, _ := json.Marshal(req.Options)
	points := req.Points
	if points < 1 {
		points = 1
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.QuestionMedium
	}
	order := req.Order
	if order == 0 {
		count, err := s.AssessmentRepo.CountQuestions(assessmentID)
		if err != nil {
			return nil, err
		}
		order = int(count) + 1
	}

	q := &model.Question{
		AssessmentID:  assessmentID,
		Text:          req.Text,
		Options:       options,
		SkillCategory: req.SkillCategory,
		Difficulty:    difficulty,
		Points:        points,
		Explanation:   req.Explanation,
		Order:         order,
	}
	if err := s.AssessmentRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) UpdateQuestion(userID uint, role model.UserRole, questionID uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.AssessmentRepo.FindQuestionByID(questionID)
	if err != nil {
		return nil, errors.New("题目不存在")
	}
	if _, err := s.findManagedAssessment(userID, role, q.AssessmentID); err != nil {
		return nil, err
	}

	q.Text = req.Text
	q.Options, _ = json.Marshal(req.Options)
	q.SkillCategory = req.SkillCategory
	if req.Difficulty != "" {
		q.Difficulty = req.Difficulty
	}
	if req.Points >= 1 {
		q.Points = req.Points
	}
	q.Explanation = req.Explanation
	if req.Order != 0 {
		q.Order = req.Order
	}

	if err := s.AssessmentRepo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) DeleteQuestion(userID uint, role model.UserRole, questionID uint) error {
	q, err := s.AssessmentRepo.FindQuestionByID(questionID)
	if err != nil {
		return errors.New("题目不存在")
	}
	if _, err := s.findManagedAssessment(userID, role, q.AssessmentID); err != nil {
		return err
	}
	return s.AssessmentRepo.DeleteQuestion(questionID)
}

// ListQuestions 讲师视角的完整题目列表，含正确答案与解析
func (s *AssessmentService) ListQuestions(userID uint, role model.UserRole, assessmentID uint) ([]model.Question, error) {
	if _, err := s.findManagedAssessment(userID, role, assessmentID); err != nil {
		return nil, err
	}
	return s.AssessmentRepo.ListQuestions(assessmentID)
}

// StudentQuestion 学生作答视角的题目，不暴露正确答案与解析
type StudentQuestion struct {
	ID            uint                     `json:"id"`
	Text          string                   `json:"text"`
	Options       []string                 `json:"options"`
	SkillCategory string                   `json:"skillCategory"`
	Difficulty    model.QuestionDifficulty `json:"difficulty"`
	Points        int                      `json:"points"`
	Order         int                      `json:"order"`
}

type AttemptSession struct {
	AttemptID       uint              `json:"attemptId"`
	AssessmentID    uint              `json:"assessmentId"`
	Title           string            `json:"title"`
	DurationMinutes int               `json:"durationMinutes"`
	PassingScore    int               `json:"passingScore"`
	StartedAt       time.Time         `json:"startedAt"`
	Questions       []StudentQuestion `json:"questions"`
}

// StartAttempt 开始一次作答。已有进行中的作答时直接返回该次作答。
func (s *AssessmentService) StartAttempt(userID, assessmentID uint) (*AttemptSession, error) {
	a, err := s.AssessmentRepo.FindByIDWithQuestions(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}
	if a.Status != model.AssessmentPublished {
		return nil, util.ErrAssessmentNotFound
	}
	if len(a.Questions) == 0 {
		return nil, util.ErrAssessmentNoQuestions
	}

	attempt, err := s.AttemptRepo.FindInProgress(userID, assessmentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		attempt = &model.Attempt{
			UserID:       userID,
			AssessmentID: assessmentID,
			Status:       model.AttemptInProgress,
			StartedAt:    time.Now(),
		}
		if err := s.AttemptRepo.Create(attempt); err != nil {
			return nil, err
		}
	}

	questions := make([]StudentQuestion, len(a.Questions))
	for i, q := range a.Questions {
		options := q.ParsedOptions()
		texts := make([]string, len(options))
		for j, opt := range options {
			texts[j] = opt.Text
		}
		questions[i] = StudentQuestion{
			ID:            q.ID,
			Text:          q.Text,
			Options:       texts,
			SkillCategory: q.SkillCategory,
			Difficulty:    q.Difficulty,
			Points:        q.Points,
			Order:         q.Order,
		}
	}

	return &AttemptSession{
		AttemptID:       attempt.ID,
		AssessmentID:    a.ID,
		Title:           a.Title,
		DurationMinutes: a.DurationMinutes,
		PassingScore:    a.PassingScore,
		StartedAt:       attempt.StartedAt,
		Questions:       questions,
	}, nil
}

type SubmitRequest struct {
	Answers   map[string]interface{} `json:"answers" binding:"required"`
	TimeTaken int                    `json:"timeTaken"`
}

type SubmitResult struct {
	AttemptID    uint               `json:"attemptId"`
	Score        float64            `json:"score"`
	Passed       bool               `json:"passed"`
	PassingScore int                `json:"passingScore"`
	EarnedPoints int                `json:"earnedPoints"`
	TotalPoints  int                `json:"totalPoints"`
	SkillScores  []model.SkillScore `json:"skillScores"`
	XPEarned     int                `json:"xpEarned"`
	TimeTaken    int                `json:"timeTaken"`
}

// SubmitAttempt 提交作答并评分。
// 结果作为快照写入本次作答，随后刷新测评统计并发放经验值。
func (s *AssessmentService) SubmitAttempt(userID, assessmentID uint, req SubmitRequest) (*SubmitResult, error) {
	attempt, err := s.AttemptRepo.FindInProgress(userID, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNoAttemptInProgress
		}
		return nil, err
	}

	a, err := s.AssessmentRepo.FindByID(assessmentID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	questions, err := s.AssessmentRepo.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}

	result := ScoreAttempt(questions, req.Answers, a.PassingScore)

	now := time.Now()
	attempt.Status = model.AttemptCompleted
	attempt.Score = result.Score
	attempt.Passed = result.Passed
	attempt.TimeTaken = req.TimeTaken
	attempt.Answers, _ = json.Marshal(req.Answers)
	attempt.SkillScores, _ = json.Marshal(result.SkillScores)
	attempt.CompletedAt = &now
	if err := s.AttemptRepo.Update(attempt); err != nil {
		return nil, err
	}

	if err := s.RefreshStatistics(assessmentID); err != nil {
		return nil, err
	}
	monitoring.AssessmentSubmissions.WithLabelValues(strconv.FormatBool(result.Passed)).Inc()

	xp := XPQuizBase
	if result.Passed {
		xp += XPQuizPassBonus
	}
	if _, err := s.Gamification.AwardXP(userID, xp, XPSourceAssessment, "完成测评："+a.Title); err != nil {
		return nil, err
	}

	if _, err := s.Achievements.Evaluate(userID, model.RequirementQuizzesTaken, model.RequirementPerfectScores); err != nil {
		return nil, err
	}

	return &SubmitResult{
		AttemptID:    attempt.ID,
		Score:        result.Score,
		Passed:       result.Passed,
		PassingScore: a.PassingScore,
		EarnedPoints: result.EarnedPoints,
		TotalPoints:  result.TotalPoints,
		SkillScores:  result.SkillScores,
		XPEarned:     xp,
		TimeTaken:    req.TimeTaken,
	}, nil
}

// RefreshStatistics 重算测评的统计快照并整体覆写。
// 快照包含完成次数、平均分和平均差距最大的技能榜单。
func (s *AssessmentService) RefreshStatistics(assessmentID uint) error {
	attempts, err := s.AttemptRepo.ListCompletedByAssessment(assessmentID)
	if err != nil {
		return err
	}

	totalAttempts := len(attempts)
	averageScore := 0.0
	skillScores := make([][]model.SkillScore, 0, totalAttempts)
	for _, attempt := range attempts {
		averageScore += attempt.Score
		skillScores = append(skillScores, attempt.ParsedSkillScores())
	}
	if totalAttempts > 0 {
		averageScore = roundScore(averageScore / float64(totalAttempts))
	}

	gaps := AggregateSkillGaps(skillScores)
	payload, err := json.Marshal(gaps)
	if err != nil {
		return err
	}
	return s.AssessmentRepo.UpdateStatistics(assessmentID, totalAttempts, averageScore, payload)
}

type AssessmentStatistics struct {
	AssessmentID  uint             `json:"assessmentId"`
	TotalAttempts int              `json:"totalAttempts"`
	AverageScore  float64          `json:"averageScore"`
	TopSkillGaps  []model.SkillGap `json:"topSkillGaps"`
}

// GetStatistics 读取统计快照，不触发重算
func (s *AssessmentService) GetStatistics(userID uint, role model.UserRole, assessmentID uint) (*AssessmentStatistics, error) {
	a, err := s.findManagedAssessment(userID, role, assessmentID)
	if err != nil {
		return nil, err
	}

	gaps := []model.SkillGap{}
	if len(a.TopSkillGaps) > 0 {
		_ = json.Unmarshal(a.TopSkillGaps, &gaps)
	}
	return &AssessmentStatistics{
		AssessmentID:  a.ID,
		TotalAttempts: a.TotalAttempts,
		AverageScore:  a.AverageScore,
		TopSkillGaps:  gaps,
	}, nil
}

func (s *AssessmentService) MyAttempts(userID uint, status string) ([]model.Attempt, error) {
	return s.AttemptRepo.ListByUser(userID, status)
}

// MyAssessmentAttempts 用户在某测评下的历史作答
func (s *AssessmentService) MyAssessmentAttempts(userID, assessmentID uint) ([]model.Attempt, error) {
	return s.AttemptRepo.ListByUserAndAssessment(userID, assessmentID)
}

type AttemptDetail struct {
	*model.Attempt
	Questions []model.Question `json:"questions,omitempty"`
}

// GetAttempt 作答详情，完成后附带题目解析
func (s *AssessmentService) GetAttempt(userID uint, attemptID uint) (*AttemptDetail, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	detail := &AttemptDetail{Attempt: attempt}
	if attempt.Status == model.AttemptCompleted {
		questions, err := s.AssessmentRepo.ListQuestions(attempt.AssessmentID)
		if err == nil {
			detail.Questions = questions
		}
	}
	return detail, nil
}

// ListAttempts 讲师查看某测评的全部作答记录
func (s *AssessmentService) ListAttempts(userID uint, role model.UserRole, assessmentID uint, page, limit int) ([]model.Attempt, int64, error) {
	if _, err := s.findManagedAssessment(userID, role, assessmentID); err != nil {
		return nil, 0, err
	}
	return s.AttemptRepo.ListByAssessment(assessmentID, page, limit)
}

func (s *AssessmentService) findManagedAssessment(userID uint, role model.UserRole, id uint) (*model.Assessment, error) {
	a, err := s.AssessmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}
	if !canManageAssessment(userID, role, a) {
		return nil, util.ErrPermissionDenied
	}
	return a, nil
}

func canManageAssessment(userID uint, role model.UserRole, a *model.Assessment) bool {
	return role == model.Admin || (userID != 0 && a.CreatedByID == userID)
}

// ParseSkillsAssessed 解码测评宣称考察的技能列表
func ParseSkillsAssessed(a *model.Assessment) []string {
	var skills []string
	if len(a.SkillsAssessed) == 0 {
		return skills
	}
	if err := json.Unmarshal(a.SkillsAssessed, &skills); err != nil {
		return nil
	}
	return skills
}

// AnswerKey 返回每道题的标准答案下标，按存储顺序取第一个标记为正确的选项
func AnswerKey(questions []model.Question) map[string]int {
	key := make(map[string]int, len(questions))
	for _, q := range questions {
		for idx, opt := range q.ParsedOptions() {
			if opt.IsCorrect {
				key[strconv.FormatUint(uint64(q.ID), 10)] = idx
				break
			}
		}
	}
	return key
}
