package database

import (
	"eduai_backend/internal/config"
	"eduai_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := SeedDefaults(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate 同步全部表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Course{},
		&model.CourseModule{},
		&model.CourseRating{},
		&model.Enrollment{},
		&model.Assessment{},
		&model.Question{},
		&model.Attempt{},
		&model.UserGamification{},
		&model.XPEvent{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.Badge{},
		&model.Certificate{},
		&model.Roadmap{},
		&model.RoadmapStep{},
	)
}

// SeedDefaults 预置成就、徽章与课程分类，表非空时跳过
func SeedDefaults(db *gorm.DB) error {
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count == 0 {
		defaultAchievements := []model.Achievement{
			{Name: "First Steps", Description: "完成第一门课程", Icon: "trophy", Category: model.AchievementCourse, RequirementType: model.RequirementCoursesCompleted, RequirementValue: 1, XPReward: 100},
			{Name: "Dedicated Learner", Description: "完成 5 门课程", Icon: "star", Category: model.AchievementCourse, RequirementType: model.RequirementCoursesCompleted, RequirementValue: 5, XPReward: 500},
			{Name: "Knowledge Seeker", Description: "完成 10 门课程", Icon: "book-open", Category: model.AchievementCourse, RequirementType: model.RequirementCoursesCompleted, RequirementValue: 10, XPReward: 1000},
			{Name: "Course Master", Description: "完成 25 门课程", Icon: "crown", Category: model.AchievementCourse, RequirementType: model.RequirementCoursesCompleted, RequirementValue: 25, XPReward: 2500},
			{Name: "Getting Started", Description: "连续学习 3 天", Icon: "fire", Category: model.AchievementStreak, RequirementType: model.RequirementStreakDays, RequirementValue: 3, XPReward: 50},
			{Name: "Week Warrior", Description: "连续学习 7 天", Icon: "fire", Category: model.AchievementStreak, RequirementType: model.RequirementStreakDays, RequirementValue: 7, XPReward: 150},
			{Name: "Consistency Champion", Description: "连续学习 30 天", Icon: "fire", Category: model.AchievementStreak, RequirementType: model.RequirementStreakDays, RequirementValue: 30, XPReward: 500},
			{Name: "Unstoppable", Description: "连续学习 100 天", Icon: "fire", Category: model.AchievementStreak, RequirementType: model.RequirementStreakDays, RequirementValue: 100, XPReward: 2000},
			{Name: "First Hour", Description: "累计学习 1 小时", Icon: "clock", Category: model.AchievementTime, RequirementType: model.RequirementLearningHours, RequirementValue: 1, XPReward: 50},
			{Name: "Time Investor", Description: "累计学习 10 小时", Icon: "clock", Category: model.AchievementTime, RequirementType: model.RequirementLearningHours, RequirementValue: 10, XPReward: 300},
			{Name: "Learning Marathon", Description: "累计学习 50 小时", Icon: "clock", Category: model.AchievementTime, RequirementType: model.RequirementLearningHours, RequirementValue: 50, XPReward: 1000},
			{Name: "Quiz Taker", Description: "完成第一次技能测评", Icon: "clipboard-check", Category: model.AchievementQuiz, RequirementType: model.RequirementQuizzesTaken, RequirementValue: 1, XPReward: 75},
			{Name: "Assessment Pro", Description: "完成 10 次技能测评", Icon: "clipboard-check", Category: model.AchievementQuiz, RequirementType: model.RequirementQuizzesTaken, RequirementValue: 10, XPReward: 500},
			{Name: "Perfect Score", Description: "测评获得满分", Icon: "target", Category: model.AchievementSpecial, RequirementType: model.RequirementPerfectScores, RequirementValue: 1, XPReward: 200},
			{Name: "Perfectionist", Description: "5 次测评获得满分", Icon: "target", Category: model.AchievementSpecial, RequirementType: model.RequirementPerfectScores, RequirementValue: 5, XPReward: 1000},
		}
		for _, a := range defaultAchievements {
			db.Create(&a)
		}
	}

	// 徽章等级阶梯与段位晋升的经验门槛对齐
	var badgeCount int64
	db.Model(&model.Badge{}).Count(&badgeCount)
	if badgeCount == 0 {
		defaultBadges := []model.Badge{
			{Name: "Newcomer", Description: "踏上学习之旅", Icon: "user-plus", RequiredLevel: 1},
			{Name: "Rising Star", Description: "晋升入门段位", Icon: "zap", RequiredLevel: 2},
			{Name: "Bookworm", Description: "晋升学徒段位", Icon: "book", RequiredLevel: 3},
			{Name: "Pathfinder", Description: "晋升学员段位", Icon: "compass", RequiredLevel: 4},
			{Name: "Scholar", Description: "晋升学者段位", Icon: "graduation-cap", RequiredLevel: 6},
			{Name: "Expert", Description: "晋升专家段位", Icon: "award", RequiredLevel: 8},
			{Name: "Master", Description: "晋升大师段位", Icon: "medal", RequiredLevel: 11},
			{Name: "Grandmaster", Description: "晋升宗师段位", Icon: "gem", RequiredLevel: 16},
			{Name: "Legend", Description: "晋升传奇段位", Icon: "crown", RequiredLevel: 23},
		}
		for _, b := range defaultBadges {
			db.Create(&b)
		}
	}

	var categoryCount int64
	db.Model(&model.Category{}).Count(&categoryCount)
	if categoryCount == 0 {
		defaultCategories := []model.Category{
			{Name: "编程开发", Slug: "programming", Description: "编程语言与软件工程", Icon: "code"},
			{Name: "数据科学", Slug: "data-science", Description: "数据分析、机器学习与人工智能", Icon: "bar-chart"},
			{Name: "前端开发", Slug: "frontend", Description: "Web 前端与用户界面", Icon: "layout"},
			{Name: "后端开发", Slug: "backend", Description: "服务端开发与系统架构", Icon: "server"},
			{Name: "数据库", Slug: "database", Description: "关系型与非关系型数据库", Icon: "database"},
			{Name: "云计算与运维", Slug: "devops", Description: "云平台、容器与持续交付", Icon: "cloud"},
		}
		for _, c := range defaultCategories {
			db.Create(&c)
		}
	}

	return nil
}
