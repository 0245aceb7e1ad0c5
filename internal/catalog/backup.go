package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/lootradar/lootradar-backend/pkg/lifecycle"
)

const persistInterval = 10 * time.Minute // 定时落盘频率

// StartPersistScheduler 启动一个后台Goroutine来定期把内存目录落盘到SQLite。
// 它接收一个lifecycle.Handle来管理其生命周期。
func StartPersistScheduler(handle *lifecycle.Handle) {
	defer handle.Close() // 确保在退出时通知管理器
	fmt.Println("目录落盘调度器已启动。")

	for {
		// 使用可中断的休眠来代替ticker。
		// 这使得整个循环可以在收到停机信号时立刻从休眠中唤醒并退出。
		if err := handle.Sleep(persistInterval); err != nil {
			fmt.Printf("落盘调度器: 休眠被中断，正在关闭... (%v)\n", err)
			return
		}

		fmt.Println("落盘调度器: 正在执行定时落盘...")
		if err := PersistCatalogInDB(handle.Ctx()); err != nil {
			// 停机信号导致的取消静默退出
			if err != context.Canceled && err != context.DeadlineExceeded {
				fmt.Printf("落盘调度器错误: 目录落盘失败: %v\n", err)
			}
		} else {
			fmt.Println("落盘调度器: 目录落盘成功。")
		}
	}
}
