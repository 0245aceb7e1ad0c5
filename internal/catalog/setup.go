package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lootradar/lootradar-backend/internal/platform/config"
	"github.com/lootradar/lootradar-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrimeCachedDB 负责初始化catalog模块：迁移表结构、装载快照、预热Redis。
// 快照文件不可用时回退到SQLite中的上一次落盘目录（温启动）。
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}

	version := NextLoadVersion()
	entries, stores, err := BuildCatalog(config.Cfg.Snapshot.Dir)
	if err != nil {
		fmt.Printf("警告: 无法从快照装载目录: %v，尝试从SQLite温启动...\n", err)
		entries, err = loadEntriesFromDB()
		if err != nil {
			// 快照和SQLite都不可用时以空目录启动，
			// 各接口返回空列表，等待下一次重载补充数据
			fmt.Printf("警告: SQLite温启动也失败: %v，以空目录启动。\n", err)
			entries = nil
		}
		stores = nil
	}

	ReplaceCatalog(version, entries, stores)
	fmt.Printf("目录仓库初始化成功，装载了 %d 个条目。\n", len(entries))

	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}

// ReloadFromSnapshots 在运行时重新装载快照文件。
// 每次重载领取一个新版本号；结果过期（期间有更新的重载完成）时被丢弃。
func ReloadFromSnapshots() (int, error) {
	version := NextLoadVersion()
	entries, stores, err := BuildCatalog(config.Cfg.Snapshot.Dir)
	if err != nil {
		return 0, fmt.Errorf("重载快照失败: %w", err)
	}
	if !ReplaceCatalog(version, entries, stores) {
		return 0, fmt.Errorf("重载结果已过期，被更新的装载取代")
	}
	if err := WarmupCache(); err != nil {
		fmt.Printf("警告: 重载后预热Redis失败: %v\n", err)
	}
	return len(entries), nil
}

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("无法迁移catalog表: %w", err)
	}
	fmt.Println("Catalog数据库表迁移成功。")
	return nil
}

// WarmupCache 把当前内存目录预热到Redis。
// 注意：此函数不包含锁，调用方需要确保在安全的时机调用。
func WarmupCache() error {
	entries, _ := Snapshot()
	if len(entries) == 0 {
		return nil
	}

	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, InfoKey, ByDiscountKey)

	for _, e := range entries {
		infoJSON, err := json.Marshal(e)
		if err != nil {
			continue
		}
		pipe.HSet(database.Ctx, InfoKey, e.Identity, infoJSON)
		if e.OnSale() {
			pipe.ZAdd(database.Ctx, ByDiscountKey, redis.Z{
				Score:  float64(e.DiscountPercent),
				Member: e.Identity,
			})
		}
	}

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热目录数据到Redis失败: %w", err)
	}
	fmt.Printf("成功预热 %d 条目录数据到Redis。\n", len(entries))
	return nil
}

// PersistCatalogInDB 把当前内存目录落盘到SQLite，作为温启动快照。
// 在优雅停机的最终步骤中调用。
func PersistCatalogInDB(ctx context.Context) error {
	entries, _ := Snapshot()
	if len(entries) == 0 {
		return nil
	}

	rows := make([]Entry, 0, len(entries))
	for i, e := range entries {
		genresJSON, _ := json.Marshal(e.Genres)
		tagsJSON, _ := json.Marshal(e.Tags)
		rows = append(rows, Entry{
			Identity:        e.Identity,
			Title:           e.Title,
			SalePrice:       e.SalePrice,
			NormalPrice:     e.NormalPrice,
			DiscountPercent: e.DiscountPercent,
			RatingPercent:   e.RatingPercent,
			ReviewCount:     e.ReviewCount,
			Genres:          string(genresJSON),
			Tags:            string(tagsJSON),
			RatingText:      e.RatingText,
			StoreID:         e.StoreID,
			DealID:          e.DealID,
			SteamAppID:      e.SteamAppID,
			ThumbnailURL:    e.ThumbnailURL,
			LinkURL:         e.LinkURL,
			Position:        i,
		})
	}

	// 整体替换：旧快照先清空，再按Identity冲突更新写入
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("无法清空旧目录快照: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("无法写入目录快照: %w", err)
		}
		return nil
	})
}

// loadEntriesFromDB 从SQLite还原上一次落盘的目录，按原始顺序排列
func loadEntriesFromDB() ([]GameEntry, error) {
	var rows []Entry
	if err := database.DB.Order("position asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法从SQLite读取目录快照: %w", err)
	}

	entries := make([]GameEntry, 0, len(rows))
	for _, r := range rows {
		var genres, tags []string
		_ = json.Unmarshal([]byte(r.Genres), &genres)
		_ = json.Unmarshal([]byte(r.Tags), &tags)
		entries = append(entries, GameEntry{
			Identity:        r.Identity,
			Title:           r.Title,
			SalePrice:       r.SalePrice,
			NormalPrice:     r.NormalPrice,
			DiscountPercent: r.DiscountPercent,
			RatingPercent:   r.RatingPercent,
			ReviewCount:     r.ReviewCount,
			Genres:          genres,
			Tags:            tags,
			RatingText:      r.RatingText,
			StoreID:         r.StoreID,
			DealID:          r.DealID,
			SteamAppID:      r.SteamAppID,
			ThumbnailURL:    r.ThumbnailURL,
			LinkURL:         r.LinkURL,
		})
	}
	return entries, nil
}
