package service

import (
	"testing"
	"time"

	"eduai_backend/internal/config"
	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/testutil"

	"gorm.io/gorm"
)

func newGamificationService(t *testing.T, cfg *config.Config) (*gorm.DB, *GamificationService) {
	t.Helper()
	db := testutil.DB(t)
	if cfg == nil {
		cfg = &config.Config{}
	}
	return db, NewGamificationService(repository.NewGamificationRepository(db), nil, cfg)
}

func TestAwardXP_LevelAndRank(t *testing.T) {
	db, svc := newGamificationService(t, nil)
	user := testutil.SeedUser(t, db, "student@test.dev", model.Student)

	g, err := svc.AwardXP(user.ID, 150, XPSourceCourse, "完成课程：Go 入门")
	if err != nil {
		t.Fatalf("award xp: %v", err)
	}
	if g.TotalXP != 150 {
		t.Errorf("total xp = %d, want 150", g.TotalXP)
	}
	if g.Level != 2 {
		t.Errorf("level = %d, want 2", g.Level)
	}
	if g.Rank != "Beginner" {
		t.Errorf("rank = %q, want Beginner", g.Rank)
	}

	g, err = svc.AwardXP(user.ID, 4850, XPSourceCourse, "完成课程：Go 进阶")
	if err != nil {
		t.Fatalf("award xp: %v", err)
	}
	if g.TotalXP != 5000 || g.Level != 8 || g.Rank != "Expert" {
		t.Errorf("after 5000 xp: level %d rank %q, want 8 Expert", g.Level, g.Rank)
	}

	events, total, err := svc.ListXPEvents(user.ID, 1, 10)
	if err != nil {
		t.Fatalf("list xp events: %v", err)
	}
	if total != 2 || len(events) != 2 {
		t.Fatalf("xp events = %d (total %d), want 2", len(events), total)
	}

	profile, err := svc.GetProfile(user.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	// 9 级需要 8100，当前 5000
	if profile.XPToNextLevel != 8*8*100-5000 {
		t.Errorf("xp to next level = %d, want %d", profile.XPToNextLevel, 8*8*100-5000)
	}
}

func TestRecordDailyActivity_SameDayOnce(t *testing.T) {
	db, svc := newGamificationService(t, nil)
	user := testutil.SeedUser(t, db, "student@test.dev", model.Student)

	first, err := svc.RecordDailyActivity(user.ID)
	if err != nil {
		t.Fatalf("record activity: %v", err)
	}
	if !first.Recorded {
		t.Fatal("first activity not recorded")
	}
	if first.CurrentStreak != 1 || first.LongestStreak != 1 {
		t.Errorf("streak = %d/%d, want 1/1", first.CurrentStreak, first.LongestStreak)
	}
	if first.XPEarned != 5 {
		t.Errorf("xp earned = %d, want 5", first.XPEarned)
	}

	second, err := svc.RecordDailyActivity(user.ID)
	if err != nil {
		t.Fatalf("repeat activity: %v", err)
	}
	if second.Recorded {
		t.Error("same-day activity recorded twice")
	}
	if second.XPEarned != 0 {
		t.Errorf("repeat xp earned = %d, want 0", second.XPEarned)
	}
	if second.CurrentStreak != 1 {
		t.Errorf("repeat streak = %d, want 1", second.CurrentStreak)
	}

	profile, err := svc.GetProfile(user.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.TotalXP != 5 {
		t.Errorf("total xp = %d, want 5", profile.TotalXP)
	}
}

func TestRecordDailyActivity_ContinuesFromYesterday(t *testing.T) {
	db, svc := newGamificationService(t, nil)
	user := testutil.SeedUser(t, db, "student@test.dev", model.Student)

	if _, err := svc.RecordDailyActivity(user.ID); err != nil {
		t.Fatalf("seed activity: %v", err)
	}
	yesterday := time.Now().AddDate(0, 0, -1)
	if err := db.Model(&model.UserGamification{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]interface{}{
			"last_activity_date": yesterday,
			"current_streak":     6,
			"longest_streak":     6,
		}).Error; err != nil {
		t.Fatalf("backdate activity: %v", err)
	}

	status, err := svc.RecordDailyActivity(user.ID)
	if err != nil {
		t.Fatalf("record activity: %v", err)
	}
	if !status.Recorded {
		t.Fatal("next-day activity not recorded")
	}
	if status.CurrentStreak != 7 || status.LongestStreak != 7 {
		t.Errorf("streak = %d/%d, want 7/7", status.CurrentStreak, status.LongestStreak)
	}
	// 连续 7 天档位的奖励
	if status.XPEarned != 15 {
		t.Errorf("xp earned = %d, want 15", status.XPEarned)
	}
}

func TestRecordDailyActivity_GapResetsStreak(t *testing.T) {
	db, svc := newGamificationService(t, nil)
	user := testutil.SeedUser(t, db, "student@test.dev", model.Student)

	if _, err := svc.RecordDailyActivity(user.ID); err != nil {
		t.Fatalf("seed activity: %v", err)
	}
	lastWeek := time.Now().AddDate(0, 0, -5)
	if err := db.Model(&model.UserGamification{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]interface{}{
			"last_activity_date": lastWeek,
			"current_streak":     30,
			"longest_streak":     30,
		}).Error; err != nil {
		t.Fatalf("backdate activity: %v", err)
	}

	status, err := svc.RecordDailyActivity(user.ID)
	if err != nil {
		t.Fatalf("record activity: %v", err)
	}
	if status.CurrentStreak != 1 {
		t.Errorf("streak after gap = %d, want 1", status.CurrentStreak)
	}
	if status.LongestStreak != 30 {
		t.Errorf("longest streak = %d, want 30 preserved", status.LongestStreak)
	}
}

func TestGetLeaderboard_OrdersAndLimits(t *testing.T) {
	cfg := &config.Config{}
	cfg.Leaderboard.Size = 2
	db, svc := newGamificationService(t, cfg)

	alice := testutil.SeedUser(t, db, "alice@test.dev", model.Student)
	bob := testutil.SeedUser(t, db, "bob@test.dev", model.Student)
	carol := testutil.SeedUser(t, db, "carol@test.dev", model.Student)
	for _, award := range []struct {
		userID uint
		xp     int
	}{{alice.ID, 300}, {bob.ID, 500}, {carol.ID, 100}} {
		if _, err := svc.AwardXP(award.userID, award.xp, XPSourceCourse, "测试"); err != nil {
			t.Fatalf("award xp: %v", err)
		}
	}

	rows, err := svc.GetLeaderboard()
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("leaderboard rows = %d, want 2", len(rows))
	}
	if rows[0].UserID != bob.ID || rows[0].Position != 1 {
		t.Errorf("row[0] = user %d position %d, want user %d position 1", rows[0].UserID, rows[0].Position, bob.ID)
	}
	if rows[1].UserID != alice.ID || rows[1].Position != 2 {
		t.Errorf("row[1] = user %d position %d, want user %d position 2", rows[1].UserID, rows[1].Position, alice.ID)
	}
	if rows[0].Name == "" {
		t.Error("leaderboard row missing user name")
	}

	position, err := svc.GetMyPosition(carol.ID)
	if err != nil {
		t.Fatalf("get my position: %v", err)
	}
	if position.Position != 3 {
		t.Errorf("carol position = %d, want 3", position.Position)
	}
	if position.TotalXP != 100 {
		t.Errorf("carol total xp = %d, want 100", position.TotalXP)
	}
}

func TestGetLeaderboard_ExcludesDisabledUsers(t *testing.T) {
	db, svc := newGamificationService(t, nil)
	active := testutil.SeedUser(t, db, "active@test.dev", model.Student)
	banned := testutil.SeedUser(t, db, "banned@test.dev", model.Student)

	for _, id := range []uint{active.ID, banned.ID} {
		if _, err := svc.AwardXP(id, 200, XPSourceCourse, "测试"); err != nil {
			t.Fatalf("award xp: %v", err)
		}
	}
	if err := db.Model(&model.User{}).Where("id = ?", banned.ID).Update("disabled", true).Error; err != nil {
		t.Fatalf("disable user: %v", err)
	}

	rows, err := svc.GetLeaderboard()
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("leaderboard rows = %d, want 1", len(rows))
	}
	if rows[0].UserID != active.ID {
		t.Errorf("row[0] user = %d, want %d", rows[0].UserID, active.ID)
	}
}

func TestListXPEvents_Paginates(t *testing.T) {
	db, svc := newGamificationService(t, nil)
	user := testutil.SeedUser(t, db, "student@test.dev", model.Student)

	for i := 0; i < 3; i++ {
		if _, err := svc.AwardXP(user.ID, 10, XPSourceAssessment, "完成测评：分页"); err != nil {
			t.Fatalf("award xp: %v", err)
		}
	}

	events, total, err := svc.ListXPEvents(user.ID, 1, 2)
	if err != nil {
		t.Fatalf("list xp events: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(events) != 2 {
		t.Errorf("page size = %d, want 2", len(events))
	}
}
