package catalog

import (
	"sync"
	"sync/atomic"
	"time"
)

// repository 是catalog模块的中央数据仓库。
// 目录在每次装载时整体替换，替换后对读者只读。
type repository struct {
	mu sync.RWMutex

	// entries 是当前生效的规范化目录，按快照原始顺序排列
	entries []GameEntry

	// byIdentity 把条目标识映射到entries下标
	byIdentity map[string]int

	// stores 是快照携带的商店映射
	stores map[string]StoreInfo

	// version 是当前生效目录的装载版本号
	version uint64

	loadedAt time.Time
}

// globalRepository 是仓库的私有单例实例
var globalRepository = &repository{}

// loadCounter 为每次装载分配单调递增的版本号。
// 旧版本的装载结果到达时会被丢弃，防止慢请求覆盖新数据。
var loadCounter atomic.Uint64

// NextLoadVersion 在开始一次装载前调用，领取本次装载的版本号。
func NextLoadVersion() uint64 {
	return loadCounter.Add(1)
}

// ReplaceCatalog 用一次装载的结果替换当前目录。
// 只有版本号不低于当前生效版本时替换才会发生；返回替换是否生效。
func ReplaceCatalog(version uint64, entries []GameEntry, stores map[string]StoreInfo) bool {
	globalRepository.mu.Lock()
	defer globalRepository.mu.Unlock()

	if version < globalRepository.version {
		return false
	}

	byIdentity := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, ok := byIdentity[e.Identity]; !ok {
			byIdentity[e.Identity] = i
		}
	}

	globalRepository.entries = entries
	globalRepository.byIdentity = byIdentity
	globalRepository.stores = stores
	globalRepository.version = version
	globalRepository.loadedAt = time.Now()
	return true
}

// Snapshot 返回当前生效的目录和商店映射。
// 返回的切片在下一次替换前不会被修改，调用方必须按只读对待。
func Snapshot() ([]GameEntry, map[string]StoreInfo) {
	globalRepository.mu.RLock()
	defer globalRepository.mu.RUnlock()
	return globalRepository.entries, globalRepository.stores
}

// EntryByIdentity 按标识查找单个条目
func EntryByIdentity(identity string) (GameEntry, bool) {
	globalRepository.mu.RLock()
	defer globalRepository.mu.RUnlock()
	idx, ok := globalRepository.byIdentity[identity]
	if !ok {
		return GameEntry{}, false
	}
	return globalRepository.entries[idx], true
}

// Count 返回当前目录的条目数量
func Count() int {
	globalRepository.mu.RLock()
	defer globalRepository.mu.RUnlock()
	return len(globalRepository.entries)
}

// Version 返回当前生效目录的装载版本号
func Version() uint64 {
	globalRepository.mu.RLock()
	defer globalRepository.mu.RUnlock()
	return globalRepository.version
}

// LoadedAt 返回当前目录的装载时间
func LoadedAt() time.Time {
	globalRepository.mu.RLock()
	defer globalRepository.mu.RUnlock()
	return globalRepository.loadedAt
}
