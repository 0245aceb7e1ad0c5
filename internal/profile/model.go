package profile

import (
	"time"

	"gorm.io/gorm"
)

// --- 偏好模式 ---

const (
	// ModeAll 表示推荐所有条目，不要求处于促销中
	ModeAll = "all"
	// ModeOnSale 表示只推荐处于促销中的条目
	ModeOnSale = "on-sale"
)

// Profile 定义了用户偏好在SQLite数据库中的持久化模型。
// 偏好整体作为一个JSON blob存储，缺失字段在装载时由默认值补齐。
type Profile struct {
	// UUID 是用户的主键，来自客户端Cookie。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// Data 是Preferences结构体的JSON序列化字符串
	Data string

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Preferences 是内存中的用户偏好，评分引擎直接消费这个形状。
type Preferences struct {
	// BudgetCeiling 是预算上限，售价高于它的条目被排除
	BudgetCeiling float64 `json:"budget"`

	// MinRating / MinDiscount 是硬性下限(0-100)
	MinRating   int `json:"minRating"`
	MinDiscount int `json:"minDiscount"`

	// Mode 是推荐模式: all | on-sale
	Mode string `json:"mode"`

	// Genres 是选中的类型标签。空集合表示不做类型过滤（全部匹配）。
	Genres []string `json:"genres"`

	// Likes / Dislikes 是条目标识的集合，互斥：
	// 同一标识不可能同时出现在两个集合中。
	Likes    map[string]bool `json:"likes"`
	Dislikes map[string]bool `json:"dislikes"`
}

// DefaultPreferences 返回硬编码的默认偏好
func DefaultPreferences() Preferences {
	return Preferences{
		BudgetCeiling: 70,
		MinRating:     0,
		MinDiscount:   0,
		Mode:          ModeAll,
		Genres:        []string{"RPG", "Action", "Indie"},
		Likes:         map[string]bool{},
		Dislikes:      map[string]bool{},
	}
}

// FeedbackLike 和 FeedbackDislike 是反馈接口接受的两种动作
const (
	FeedbackLike    = "like"
	FeedbackDislike = "dislike"
)

// ApplyFeedback 把一次喜欢/不喜欢反馈应用到偏好上。
// 互斥不变量在这里统一维护：喜欢会清除同标识的不喜欢，反之亦然。
func ApplyFeedback(prefs *Preferences, identity string, action string) bool {
	if identity == "" {
		return false
	}
	if prefs.Likes == nil {
		prefs.Likes = map[string]bool{}
	}
	if prefs.Dislikes == nil {
		prefs.Dislikes = map[string]bool{}
	}

	switch action {
	case FeedbackLike:
		prefs.Likes[identity] = true
		delete(prefs.Dislikes, identity)
	case FeedbackDislike:
		prefs.Dislikes[identity] = true
		delete(prefs.Likes, identity)
	default:
		return false
	}
	return true
}
