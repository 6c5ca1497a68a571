package repository

import (
	"eduai_backend/internal/model"

	"gorm.io/gorm"
)

type GamificationRepository struct {
	DB *gorm.DB
}

func NewGamificationRepository(db *gorm.DB) *GamificationRepository {
	return &GamificationRepository{DB: db}
}

func (r *GamificationRepository) Create(g *model.UserGamification) error {
	return r.DB.Create(g).Error
}

func (r *GamificationRepository) FindByUser(userID uint) (*model.UserGamification, error) {
	var g model.UserGamification
	err := r.DB.Where("user_id = ?", userID).First(&g).Error
	return &g, err
}

// FindOrCreateByUser 不存在时初始化一条成长档案
func (r *GamificationRepository) FindOrCreateByUser(userID uint) (*model.UserGamification, error) {
	g, err := r.FindByUser(userID)
	if err == nil {
		return g, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	g = &model.UserGamification{
		UserID: userID,
		Level:  1,
		Rank:   "Novice",
	}
	if err := r.DB.Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GamificationRepository) Update(g *model.UserGamification) error {
	return r.DB.Save(g).Error
}

// LeaderboardRow 排行榜行，联表携带用户名和头像
type LeaderboardRow struct {
	UserID   uint   `json:"userId"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	TotalXP  int    `json:"totalXp"`
	Level    int    `json:"level"`
	Rank     string `json:"rank"`
	Position int    `json:"position"`
}

func (r *GamificationRepository) TopByXP(limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.DB.Model(&model.UserGamification{}).
		Select("user_gamifications.user_id, users.name, users.avatar, user_gamifications.total_xp, user_gamifications.level, user_gamifications.`rank`").
		Joins("JOIN users ON users.id = user_gamifications.user_id AND users.deleted_at IS NULL").
		Where("users.disabled = ?", false).
		Order("user_gamifications.total_xp desc, user_gamifications.user_id asc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CountAhead 比指定经验值更高的用户数，名次 = CountAhead + 1
func (r *GamificationRepository) CountAhead(totalXP int) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserGamification{}).
		Joins("JOIN users ON users.id = user_gamifications.user_id AND users.deleted_at IS NULL").
		Where("users.disabled = ? AND user_gamifications.total_xp > ?", false, totalXP).
		Count(&count).Error
	return count, err
}

// XPEvent related methods

func (r *GamificationRepository) CreateXPEvent(event *model.XPEvent) error {
	return r.DB.Create(event).Error
}

func (r *GamificationRepository) ListXPEvents(userID uint, page, limit int) ([]model.XPEvent, int64, error) {
	var events []model.XPEvent
	var total int64

	query := r.DB.Model(&model.XPEvent{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&events).Error
	return events, total, err
}
