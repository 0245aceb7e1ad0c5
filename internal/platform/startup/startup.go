package startup

import (
	"fmt"

	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/profile"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := catalog.PrimeCachedDB(); err != nil {
		return err
	}
	if err := profile.PrimeCachedDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// 在健康检查发现Redis重启后被调用，把内存目录和SQLite中的偏好重新预热。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := catalog.WarmupCache(); err != nil {
		return err
	}

	err := func() error {
		profile.LockRepository()
		defer profile.UnlockRepository()
		return profile.WarmupCache()
	}()
	if err != nil {
		return err
	}

	fmt.Println("缓存热重建完成。")
	return nil
}
