package major

import (
	"database/sql"
	"fmt"
	"wolf-push-service/conf"
	"wolf-push-service/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	db    *gorm.DB
	sqlDB *sql.DB
)

func InitSqlConfig() {
	dsn := conf.RdsDsn
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Errorf("DB init error %s", err.Error()))
	}
	sqlDB, err = gdb.DB()
	if err != nil {
		panic(fmt.Errorf("sqlDB error %s", err.Error()))
	}
	sqlDB.SetMaxOpenConns(conf.RdsMaxOpenConns)
	sqlDB.SetMaxIdleConns(conf.RdsMaxIgleConns)
	db = gdb

	// 订阅表结构迁移
	if err := db.AutoMigrate(&models.NotificationSubscription{}); err != nil {
		panic(fmt.Errorf("AutoMigrate error %s", err.Error()))
	}
}

func GetSqlDB() *gorm.DB {
	if db != nil {
		return db
	}
	return nil
}
