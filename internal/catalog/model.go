package catalog

import "gorm.io/gorm"

// GameEntry 是规范化后的目录条目，是评分和展示逻辑唯一认识的数据形状。
// 所有来源格式的字段回退链都在loader中解析完毕，这里不再有歧义。
type GameEntry struct {
	// Identity 是条目的稳定标识：优先dealID，其次"app-"+steamAppID，最后兜底。
	// 用于去重和喜欢/不喜欢查找。
	Identity string `json:"identity"`

	// Title 是展示名称
	Title string `json:"title"`

	// SalePrice 是当前售价。nil表示未知，0表示免费。
	SalePrice *float64 `json:"salePrice"`

	// NormalPrice 是原价
	NormalPrice float64 `json:"normalPrice"`

	// DiscountPercent 是折扣百分比，已被钳制到[0,100]
	DiscountPercent int `json:"discountPercent"`

	// RatingPercent 是社区好评率(0-100)，nil表示未知
	RatingPercent *int `json:"ratingPercent"`

	// ReviewCount 是评价数量
	ReviewCount int `json:"reviewCount"`

	// Genres 是结构化元数据提供的类型标签，为空时由分类器按关键词推断
	Genres []string `json:"genres"`

	// Tags 是自由文本标签，来源规则与Genres相同
	Tags []string `json:"tags"`

	// RatingText 是上游附带的评价描述文本，仅用于关键词推断的补充语料
	RatingText string `json:"ratingText,omitempty"`

	// StoreID 是上游商店标识
	StoreID string `json:"storeID,omitempty"`

	// DealID 是上游折扣记录的标识，存在时说明条目处于促销中
	DealID string `json:"dealID,omitempty"`

	// SteamAppID 是平台应用标识
	SteamAppID string `json:"steamAppID,omitempty"`

	// ThumbnailURL 和 LinkURL 仅用于展示，无不变量
	ThumbnailURL string `json:"thumb"`
	LinkURL      string `json:"link"`
}

// OnSale 判断条目是否处于促销中：有正折扣，或带有折扣记录标识。
func (e *GameEntry) OnSale() bool {
	return e.DiscountPercent > 0 || e.DealID != ""
}

// StoreInfo 描述一个上游商店，来自快照的stores映射
type StoreInfo struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Entry 定义了目录条目在SQLite中的持久化模型。
// 它是内存目录的落盘快照，用于快照文件缺失时的温启动。
type Entry struct {
	gorm.Model

	// Identity 是业务主键，与GameEntry.Identity一致
	Identity string `gorm:"uniqueIndex;not null"`

	Title           string
	SalePrice       *float64
	NormalPrice     float64
	DiscountPercent int
	RatingPercent   *int
	ReviewCount     int

	// Genres/Tags 以JSON数组的形式序列化存储
	Genres string
	Tags   string

	RatingText   string
	StoreID      string
	DealID       string
	SteamAppID   string
	ThumbnailURL string
	LinkURL      string

	// Position 记录条目在目录中的原始顺序，温启动时据此还原排序
	Position int `gorm:"index"`
}
