package profile

import (
	"sync"
)

// --- Redis 键名常量 ---

const (
	// MirrorKey 是一个 Redis Hash 的键，作为偏好数据的尽力而为远端镜像。
	// Field: 用户的UUID
	// Value: Preferences 结构体的JSON序列化字符串
	// 镜像写入失败会被忽略，SQLite中的本地持久化才是事实来源。
	MirrorKey = "profile:data"
)

// --- 并发控制 ---

// repoMutex 是一个模块内部的、不导出的全局读写锁，
// 用于保护对本模块管理的Redis键的并发访问。
var repoMutex sync.RWMutex

// LockRepository 封装了对模块全局锁的写锁定操作。
func LockRepository() {
	repoMutex.Lock()
}

// UnlockRepository 封装了对模块全局锁的写解锁操作。
func UnlockRepository() {
	repoMutex.Unlock()
}

// RLockRepository 封装了对模块全局锁的读锁定操作。
func RLockRepository() {
	repoMutex.RLock()
}

// RUnlockRepository 封装了对模块全局锁的读解锁操作。
func RUnlockRepository() {
	repoMutex.RUnlock()
}
