package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/restlets/hl7-routing-log/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		createRoutingLogTable(),
	})

	return m.Migrate()
}

func createRoutingLogTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_hlp_routing_log",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.RoutingLogModel{}); err != nil {
				return err
			}
			// One index per supported access pattern: message lookup,
			// time-range scan, status filter, type filter.
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_routing_log_message_id ON hlp_routing_log (message_id)`,
				`CREATE INDEX IF NOT EXISTS idx_routing_log_received_time ON hlp_routing_log (received_time)`,
				`CREATE INDEX IF NOT EXISTS idx_routing_log_status ON hlp_routing_log (status)`,
				`CREATE INDEX IF NOT EXISTS idx_routing_log_message_type ON hlp_routing_log (message_type)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.RoutingLogModel{})
		},
	}
}
