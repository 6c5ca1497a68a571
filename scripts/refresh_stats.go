// 手动触发测评统计快照重算脚本
//
// 统计刷新已集成到主应用的后台定时任务中（每小时自动执行一次）。
// 此脚本仅用于手动触发，例如批量导入历史作答数据后。
//
// 用法: go run scripts/refresh_stats.go

package main

import (
	"eduai_backend/internal/config"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/service"
	"eduai_backend/pkg/database"
	"eduai_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	assessmentRepo := repository.NewAssessmentRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	assessments := service.NewAssessmentService(assessmentRepo, attemptRepo, nil, nil)

	log.Println("手动触发测评统计重算...")
	list, total, err := assessmentRepo.List(1, 1000, "", "")
	if err != nil {
		log.Fatalf("读取测评列表失败: %v", err)
	}
	for _, a := range list {
		if err := assessments.RefreshStatistics(a.ID); err != nil {
			log.Printf("测评 %d 统计重算失败: %v", a.ID, err)
		}
	}
	log.Printf("完成！共处理 %d 个测评", total)
}
