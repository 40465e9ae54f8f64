package pebble_service

import (
	"fmt"
	"log"
)

// 全局服务实例
var globalService *PebbleService

// GetGlobalService 获取全局 Pebble 服务实例
func GetGlobalService() *PebbleService {
	// 如果全局服务已存在，直接返回
	if globalService != nil {
		return globalService
	}

	// 全局服务不存在，抛出错误而不是创建新实例
	log.Printf("❌ 全局 Pebble 服务未初始化，请先调用 InitializeGlobalService")
	return nil
}

// InitializeGlobalService 初始化全局服务
func InitializeGlobalService(config *Config) error {
	if config == nil {
		config = DefaultConfig()
	}

	// 如果全局服务已存在且已初始化，直接返回
	if globalService != nil && globalService.IsInitialized() {
		log.Printf("⚠️ 全局 Pebble 服务已存在，跳过重复初始化")
		return nil
	}

	service := NewPebbleService(config)
	if err := service.Initialize(); err != nil {
		return fmt.Errorf("初始化全局 Pebble 服务失败: %w", err)
	}

	globalService = service
	log.Printf("✅ 全局 Pebble 服务初始化完成: %s", config.DBPath)
	return nil
}

// CloseGlobalService 关闭全局服务
func CloseGlobalService() error {
	if globalService != nil {
		return globalService.Close()
	}
	return nil
}

// AddNotifiedEventGlobal 全局方法：记录站点事件已通知
func AddNotifiedEventGlobal(eventID, messageHash string) error {
	service := GetGlobalService()
	if service == nil {
		return fmt.Errorf("全局 Pebble 服务未初始化，请先初始化分发中心")
	}
	if !service.IsInitialized() {
		return fmt.Errorf("Pebble 服务未正确初始化")
	}
	return service.AddNotifiedEvent(eventID, messageHash)
}

// IsNotifiedEventGlobal 全局方法：判断站点事件是否已通知
func IsNotifiedEventGlobal(eventID string) (bool, error) {
	service := GetGlobalService()
	if service == nil {
		return false, fmt.Errorf("全局 Pebble 服务未初始化，请先初始化分发中心")
	}
	if !service.IsInitialized() {
		return false, fmt.Errorf("Pebble 服务未正确初始化")
	}
	return service.IsNotifiedEvent(eventID)
}

// RemoveNotifiedEventGlobal 全局方法：删除已通知事件记录
func RemoveNotifiedEventGlobal(eventID string) error {
	service := GetGlobalService()
	if service == nil {
		return fmt.Errorf("全局 Pebble 服务未初始化，请先初始化分发中心")
	}
	if !service.IsInitialized() {
		return fmt.Errorf("Pebble 服务未正确初始化")
	}
	return service.RemoveNotifiedEvent(eventID)
}

// GetStatsGlobal 全局方法：获取集合统计
func GetStatsGlobal() (*Stats, error) {
	service := GetGlobalService()
	if service == nil {
		return nil, fmt.Errorf("全局 Pebble 服务未初始化，请先初始化分发中心")
	}
	if !service.IsInitialized() {
		return nil, fmt.Errorf("Pebble 服务未正确初始化")
	}
	return service.GetStats()
}
