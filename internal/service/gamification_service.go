package service

import (
	"context"
	"encoding/json"
	"time"

	"eduai_backend/internal/config"
	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
)

// XP 发放数额
const (
	XPQuizBase         = 20
	XPQuizPassBonus    = 30
	XPCourseCompletion = 100
)

// XP 事件来源
const (
	XPSourceStreak      = "streak"
	XPSourceAssessment  = "assessment"
	XPSourceCourse      = "course"
	XPSourceAchievement = "achievement"
)

const leaderboardCacheKey = "leaderboard:top"

// GamificationService 负责经验值、等级称号、连续学习与排行榜
type GamificationService struct {
	GamificationRepo *repository.GamificationRepository
	Redis            *redis.Client
	Cfg              *config.Config
}

func NewGamificationService(gamificationRepo *repository.GamificationRepository, rdb *redis.Client, cfg *config.Config) *GamificationService {
	return &GamificationService{
		GamificationRepo: gamificationRepo,
		Redis:            rdb,
		Cfg:              cfg,
	}
}

type GamificationProfile struct {
	TotalXP          int        `json:"totalXp"`
	Level            int        `json:"level"`
	Rank             string     `json:"rank"`
	XPToNextLevel    int        `json:"xpToNextLevel"`
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
}

func (s *GamificationService) GetProfile(userID uint) (*GamificationProfile, error) {
	g, err := s.GamificationRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	return &GamificationProfile{
		TotalXP:          g.TotalXP,
		Level:            g.Level,
		Rank:             g.Rank,
		XPToNextLevel:    XPToNextLevel(g.Level, g.TotalXP),
		CurrentStreak:    g.CurrentStreak,
		LongestStreak:    g.LongestStreak,
		LastActivityDate: g.LastActivityDate,
	}, nil
}

// AwardXP 增加经验值并重算等级与称号，同时记录一条经验流水
func (s *GamificationService) AwardXP(userID uint, amount int, source, description string) (*model.UserGamification, error) {
	g, err := s.GamificationRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	g.TotalXP += amount
	g.Level = LevelForXP(g.TotalXP)
	g.Rank = RankForXP(g.TotalXP)
	if err := s.GamificationRepo.Update(g); err != nil {
		return nil, err
	}

	_ = s.GamificationRepo.CreateXPEvent(&model.XPEvent{
		UserID:      userID,
		Amount:      amount,
		Source:      source,
		Description: description,
	})

	monitoring.XPAwarded.WithLabelValues(source).Add(float64(amount))
	s.invalidateLeaderboard()
	return g, nil
}

type StreakStatus struct {
	CurrentStreak int  `json:"currentStreak"`
	LongestStreak int  `json:"longestStreak"`
	XPEarned      int  `json:"xpEarned"`
	Recorded      bool `json:"recorded"` // 今天是否首次记录
}

// RecordDailyActivity 记录当日学习活动并推进连续天数。
// 同一天重复调用只在首次发放奖励。
func (s *GamificationService) RecordDailyActivity(userID uint) (*StreakStatus, error) {
	g, err := s.GamificationRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	current, longest, advanced := AdvanceStreak(g.LastActivityDate, g.CurrentStreak, g.LongestStreak, now)
	if !advanced {
		return &StreakStatus{
			CurrentStreak: g.CurrentStreak,
			LongestStreak: g.LongestStreak,
		}, nil
	}

	bonus := StreakBonusXP(current)
	g.CurrentStreak = current
	g.LongestStreak = longest
	g.LastActivityDate = &now
	g.TotalXP += bonus
	g.Level = LevelForXP(g.TotalXP)
	g.Rank = RankForXP(g.TotalXP)
	if err := s.GamificationRepo.Update(g); err != nil {
		return nil, err
	}

	_ = s.GamificationRepo.CreateXPEvent(&model.XPEvent{
		UserID:      userID,
		Amount:      bonus,
		Source:      XPSourceStreak,
		Description: "每日学习打卡",
	})

	s.invalidateLeaderboard()
	return &StreakStatus{
		CurrentStreak: current,
		LongestStreak: longest,
		XPEarned:      bonus,
		Recorded:      true,
	}, nil
}

func (s *GamificationService) GetStreak(userID uint) (*StreakStatus, error) {
	g, err := s.GamificationRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	return &StreakStatus{
		CurrentStreak: g.CurrentStreak,
		LongestStreak: g.LongestStreak,
	}, nil
}

// GetLeaderboard 查询 XP 排行榜，优先走 Redis 缓存
func (s *GamificationService) GetLeaderboard() ([]repository.LeaderboardRow, error) {
	ctx := context.Background()

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var rows []repository.LeaderboardRow
			if json.Unmarshal([]byte(cached), &rows) == nil {
				return rows, nil
			}
		}
	}

	size := s.Cfg.Leaderboard.Size
	if size <= 0 {
		size = 10
	}
	rows, err := s.GamificationRepo.TopByXP(size)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Position = i + 1
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(rows); err == nil {
			ttl := time.Duration(s.Cfg.Leaderboard.CacheTTLSeconds) * time.Second
			if ttl <= 0 {
				ttl = time.Minute
			}
			s.Redis.Set(ctx, leaderboardCacheKey, payload, ttl)
		}
	}
	return rows, nil
}

type LeaderboardPosition struct {
	Position int    `json:"position"`
	TotalXP  int    `json:"totalXp"`
	Level    int    `json:"level"`
	Rank     string `json:"rank"`
}

func (s *GamificationService) GetMyPosition(userID uint) (*LeaderboardPosition, error) {
	g, err := s.GamificationRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	ahead, err := s.GamificationRepo.CountAhead(g.TotalXP)
	if err != nil {
		return nil, err
	}
	return &LeaderboardPosition{
		Position: int(ahead) + 1,
		TotalXP:  g.TotalXP,
		Level:    g.Level,
		Rank:     g.Rank,
	}, nil
}

func (s *GamificationService) ListXPEvents(userID uint, page, limit int) ([]model.XPEvent, int64, error) {
	return s.GamificationRepo.ListXPEvents(userID, page, limit)
}

func (s *GamificationService) invalidateLeaderboard() {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), leaderboardCacheKey)
}
