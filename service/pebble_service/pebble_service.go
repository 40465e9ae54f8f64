package pebble_service

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
)

const (
	CollectionNotifiedEvents = "notified_events" // 已通知的站点事件集合 key: eventId
)

// PebbleService Pebble 数据库服务
type PebbleService struct {
	collectionMgr *CollectionManager // 集合管理器
	mu            sync.RWMutex
	path          string
}

// Config Pebble 配置
type Config struct {
	DBPath string `yaml:"db_path" json:"db_path"` // 数据库文件路径
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		DBPath: "./data/pebble", // 默认数据库路径
	}
}

// CollectionManager 集合管理器
type CollectionManager struct {
	mu          sync.RWMutex
	collections map[string]*pebble.DB
	basePath    string
}

// NewCollectionManager 创建集合管理器
func NewCollectionManager(basePath string) *CollectionManager {
	return &CollectionManager{
		collections: make(map[string]*pebble.DB),
		basePath:    basePath,
	}
}

// GetCollection 获取指定集合的数据库实例
func (cm *CollectionManager) GetCollection(collectionName string) (*pebble.DB, error) {
	cm.mu.RLock()
	if db, exists := cm.collections[collectionName]; exists {
		cm.mu.RUnlock()
		return db, nil
	}
	cm.mu.RUnlock()

	// 需要创建新的数据库实例
	cm.mu.Lock()
	defer cm.mu.Unlock()

	// 双重检查，防止并发创建
	if db, exists := cm.collections[collectionName]; exists {
		return db, nil
	}

	// 创建集合专用的数据库路径
	dbPath := filepath.Join(cm.basePath, collectionName)

	// 配置 Pebble 选项
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(16 << 20), // 16MB 缓存
		DisableWAL:                  false,                     // 启用 WAL
		FormatMajorVersion:          pebble.FormatNewest,       // 使用最新格式
		L0CompactionThreshold:       2,                         // L0 压缩阈值
		L0StopWritesThreshold:       1000,                      // L0 停止写入阈值
		LBaseMaxBytes:               16 << 20,                  // 16MB
		MaxOpenFiles:                4096,                      // 最大打开文件数
		MemTableSize:                16 << 20,                  // 16MB 内存表
		MemTableStopWritesThreshold: 4,                         // 内存表停止写入阈值
	}

	// 打开数据库
	db, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, fmt.Errorf("打开集合 %s 的数据库失败: %w", collectionName, err)
	}

	cm.collections[collectionName] = db
	log.Printf("✅ 集合 %s 数据库初始化成功: %s", collectionName, dbPath)

	return db, nil
}

// CloseCollection 关闭指定集合的数据库
func (cm *CollectionManager) CloseCollection(collectionName string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if db, exists := cm.collections[collectionName]; exists {
		err := db.Close()
		delete(cm.collections, collectionName)
		if err != nil {
			return fmt.Errorf("关闭集合 %s 的数据库失败: %w", collectionName, err)
		}
		log.Printf("✅ 集合 %s 数据库已关闭", collectionName)
	}
	return nil
}

// CloseAll 关闭所有集合的数据库
func (cm *CollectionManager) CloseAll() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var errors []string
	for collectionName, db := range cm.collections {
		if err := db.Close(); err != nil {
			errors = append(errors, fmt.Sprintf("关闭集合 %s 失败: %v", collectionName, err))
		} else {
			log.Printf("✅ 集合 %s 数据库已关闭", collectionName)
		}
	}

	cm.collections = make(map[string]*pebble.DB)

	if len(errors) > 0 {
		return fmt.Errorf("关闭数据库时发生错误: %s", strings.Join(errors, "; "))
	}
	return nil
}

// ListCollections 列出所有已初始化的集合
func (cm *CollectionManager) ListCollections() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	var collections []string
	for name := range cm.collections {
		collections = append(collections, name)
	}
	return collections
}

// NewPebbleService 创建新的 Pebble 服务实例
func NewPebbleService(config *Config) *PebbleService {
	if config == nil {
		config = DefaultConfig()
	}

	return &PebbleService{
		path:          config.DBPath,
		collectionMgr: NewCollectionManager(config.DBPath),
	}
}

// Initialize 初始化 Pebble 数据库
func (ps *PebbleService) Initialize() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	log.Printf("🚀 正在初始化 Pebble 数据库: %s", ps.path)

	dbPath, err := filepath.Abs(ps.path)
	if err != nil {
		return fmt.Errorf("获取数据库路径失败: %w", err)
	}

	log.Printf("✅ Pebble 数据库初始化成功: %s", dbPath)

	return nil
}

// Close 关闭数据库
func (ps *PebbleService) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	log.Printf("🛑 正在关闭 Pebble 数据库")

	if ps.collectionMgr != nil {
		if err := ps.collectionMgr.CloseAll(); err != nil {
			log.Printf("❌ 关闭集合数据库失败: %v", err)
			return fmt.Errorf("关闭集合数据库失败: %w", err)
		}
	}

	log.Printf("✅ Pebble 数据库已关闭")
	return nil
}

// IsInitialized 检查数据库是否已初始化
func (ps *PebbleService) IsInitialized() bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.collectionMgr != nil
}

// getCollectionDB 获取指定集合的数据库实例
func (ps *PebbleService) getCollectionDB(collectionName string) (*pebble.DB, error) {
	if ps.collectionMgr == nil {
		return nil, fmt.Errorf("集合管理器未初始化")
	}
	return ps.collectionMgr.GetCollection(collectionName)
}

// buildKey 构建集合键（每个 collection 有独立的数据库，键可以简化）
func buildKey(id string) []byte {
	return []byte(id)
}

// NotifiedEvent 已通知事件记录
type NotifiedEvent struct {
	EventID     string `json:"eventId"`               // 站点事件ID
	NotifiedAt  int64  `json:"notifiedAt"`            // 通知时间（秒时间戳）
	MessageHash string `json:"messageHash,omitempty"` // 通知内容摘要
}

// AddNotifiedEvent 记录站点事件已通知
func (ps *PebbleService) AddNotifiedEvent(eventID, messageHash string) error {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if eventID == "" {
		return fmt.Errorf("EventID 不能为空")
	}

	db, err := ps.getCollectionDB(CollectionNotifiedEvents)
	if err != nil {
		return fmt.Errorf("获取已通知事件集合数据库失败: %w", err)
	}

	record := &NotifiedEvent{
		EventID:     eventID,
		NotifiedAt:  time.Now().Unix(),
		MessageHash: messageHash,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化已通知事件失败: %w", err)
	}

	if err := db.Set(buildKey(eventID), data, pebble.Sync); err != nil {
		return fmt.Errorf("保存已通知事件失败: %w", err)
	}

	log.Printf("✅ 已记录通知事件: EventID=%s", eventID)
	return nil
}

// IsNotifiedEvent 判断站点事件是否已通知过
func (ps *PebbleService) IsNotifiedEvent(eventID string) (bool, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if eventID == "" {
		return false, fmt.Errorf("EventID 不能为空")
	}

	db, err := ps.getCollectionDB(CollectionNotifiedEvents)
	if err != nil {
		return false, fmt.Errorf("获取已通知事件集合数据库失败: %w", err)
	}

	_, closer, err := db.Get(buildKey(eventID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("查询已通知事件失败: %w", err)
	}
	defer closer.Close()

	return true, nil
}

// GetNotifiedEvent 获取已通知事件记录
func (ps *PebbleService) GetNotifiedEvent(eventID string) (*NotifiedEvent, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if eventID == "" {
		return nil, fmt.Errorf("EventID 不能为空")
	}

	db, err := ps.getCollectionDB(CollectionNotifiedEvents)
	if err != nil {
		return nil, fmt.Errorf("获取已通知事件集合数据库失败: %w", err)
	}

	value, closer, err := db.Get(buildKey(eventID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询已通知事件失败: %w", err)
	}
	defer closer.Close()

	var record NotifiedEvent
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, fmt.Errorf("反序列化已通知事件失败: %w", err)
	}

	return &record, nil
}

// RemoveNotifiedEvent 删除已通知事件记录
func (ps *PebbleService) RemoveNotifiedEvent(eventID string) error {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if eventID == "" {
		return fmt.Errorf("EventID 不能为空")
	}

	db, err := ps.getCollectionDB(CollectionNotifiedEvents)
	if err != nil {
		return fmt.Errorf("获取已通知事件集合数据库失败: %w", err)
	}

	if err := db.Delete(buildKey(eventID), pebble.Sync); err != nil {
		return fmt.Errorf("删除已通知事件失败: %w", err)
	}

	log.Printf("🗑️ 已删除通知事件记录: EventID=%s", eventID)
	return nil
}

// CountNotifiedEvents 统计已通知事件数量
func (ps *PebbleService) CountNotifiedEvents() (int, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	db, err := ps.getCollectionDB(CollectionNotifiedEvents)
	if err != nil {
		return 0, fmt.Errorf("获取已通知事件集合数据库失败: %w", err)
	}

	iter, err := db.NewIter(nil)
	if err != nil {
		return 0, fmt.Errorf("创建迭代器失败: %w", err)
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	return count, nil
}

// ClearNotifiedEvents 清空已通知事件集合
func (ps *PebbleService) ClearNotifiedEvents() (int, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	db, err := ps.getCollectionDB(CollectionNotifiedEvents)
	if err != nil {
		return 0, fmt.Errorf("获取已通知事件集合数据库失败: %w", err)
	}

	iter, err := db.NewIter(nil)
	if err != nil {
		return 0, fmt.Errorf("创建迭代器失败: %w", err)
	}

	var keys [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		keys = append(keys, key)
	}
	iter.Close()

	for _, key := range keys {
		if err := db.Delete(key, pebble.Sync); err != nil {
			return 0, fmt.Errorf("删除键失败: %w", err)
		}
	}

	log.Printf("🗑️ 已清空通知事件集合: 移除 %d 条", len(keys))
	return len(keys), nil
}

// Stats 集合统计
type Stats struct {
	Collections    []string `json:"collections"`    // 已初始化的集合
	NotifiedEvents int      `json:"notifiedEvents"` // 已通知事件数量
}

// GetStats 获取集合统计信息
func (ps *PebbleService) GetStats() (*Stats, error) {
	count, err := ps.CountNotifiedEvents()
	if err != nil {
		return nil, err
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return &Stats{
		Collections:    ps.collectionMgr.ListCollections(),
		NotifiedEvents: count,
	}, nil
}
