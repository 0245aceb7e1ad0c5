package profile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lootradar/lootradar-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateProvisionalUser 生成一个临时的、尚未持久化的新用户UUID。
// 这个UUID将被设置到cookie中，首次保存偏好时才会落库。
func CreateProvisionalUser() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// IsValidUUID 检查字符串是否是合法的UUID格式
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// decodePreferences 把持久化的JSON blob解码到默认值之上。
// 解码天然实现了"持久化字段覆盖默认值"的合并语义：缺失字段保持默认。
// blob损坏时静默回退到默认值，不向上层暴露错误。
func decodePreferences(data string) Preferences {
	prefs := DefaultPreferences()
	if data == "" {
		return prefs
	}
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return DefaultPreferences()
	}
	// 反序列化可能把集合字段置为nil，补齐以保证后续修改安全
	if prefs.Likes == nil {
		prefs.Likes = map[string]bool{}
	}
	if prefs.Dislikes == nil {
		prefs.Dislikes = map[string]bool{}
	}
	if prefs.Mode == "" {
		prefs.Mode = ModeAll
	}
	return prefs
}

// Load 装载一个用户的偏好。
// 记录不存在或数据损坏时返回默认偏好，调用方无需区分这两种情况。
func Load(userID string) Preferences {
	if userID == "" {
		return DefaultPreferences()
	}

	var row Profile
	err := database.DB.First(&row, "uuid = ?", userID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("警告: 读取用户 %s 的偏好失败: %v，使用默认值\n", userID, err)
		}
		return DefaultPreferences()
	}
	return decodePreferences(row.Data)
}

// Save 同步持久化一个用户的偏好到SQLite，并尽力而为地镜像到Redis。
// 镜像是fire-and-forget的：失败只记录日志，绝不阻塞或向调用方抛错。
func Save(userID string, prefs Preferences) error {
	if userID == "" {
		return errors.New("缺少用户标识，无法保存偏好")
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("无法序列化偏好: %w", err)
	}

	row := Profile{UUID: userID, Data: string(data)}
	err = database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("无法持久化用户 %s 的偏好: %w", userID, err)
	}

	// 本地持久化已经成功，远端镜像异步进行且失败可忽略
	go mirrorToRedis(userID, string(data))

	return nil
}

// Reset 把一个用户的偏好恢复为默认值并持久化
func Reset(userID string) (Preferences, error) {
	prefs := DefaultPreferences()
	if err := Save(userID, prefs); err != nil {
		return prefs, err
	}
	return prefs, nil
}

// mirrorToRedis 把偏好JSON写入Redis镜像。
// Redis不可用或写入失败都只打印日志；本地数据此时已经安全落盘。
func mirrorToRedis(userID string, data string) {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return
	}

	RLockRepository()
	defer RUnlockRepository()

	if err := database.RDB.HSet(database.Ctx, MirrorKey, userID, data).Err(); err != nil {
		fmt.Printf("警告: 偏好镜像写入Redis失败 (用户 %s): %v\n", userID, err)
	}
}
