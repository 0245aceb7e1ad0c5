package profile

import (
	"fmt"

	"github.com/lootradar/lootradar-backend/internal/platform/database"
)

// PrimeCachedDB 负责初始化profile模块的数据库表，并预热Redis镜像
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Profile{}); err != nil {
		return fmt.Errorf("无法迁移profile表: %w", err)
	}
	fmt.Println("Profile数据库表迁移成功。")
	return nil
}

// WarmupCache 把SQLite中的全部偏好重建到Redis镜像。
// 镜像只是尽力而为的副本，重建失败不阻止启动，只记录日志。
// 注意：此函数不包含锁，调用方需要确保在安全的时机调用。
func WarmupCache() error {
	var rows []Profile
	if err := database.DB.Find(&rows).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取偏好数据: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, MirrorKey)
	for _, row := range rows {
		pipe.HSet(database.Ctx, MirrorKey, row.UUID, row.Data)
	}

	if _, err := pipe.Exec(database.Ctx); err != nil {
		fmt.Printf("警告: 偏好镜像预热失败: %v\n", err)
		return nil
	}
	fmt.Printf("成功预热 %d 条偏好镜像到Redis。\n", len(rows))
	return nil
}
