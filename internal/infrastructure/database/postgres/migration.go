// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/campus-delivery-backend/internal/domain/catalog"
	"github.com/your-org/campus-delivery-backend/internal/domain/ledger"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/domain/pricing"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		// Catalog
		&catalog.University{},
		&catalog.Campus{},
		&catalog.Restaurant{},
		&catalog.MenuItem{},
		&catalog.MartItem{},

		// Fees
		&pricing.CampusSetting{},
		&pricing.GlobalSetting{},

		// Orders
		&order.Order{},
		&order.OrderStatusHistory{},

		// Ledger projection
		&ledger.OutboxEntry{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("🔄 Running database auto-migrations...")

	for _, model := range Models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// Indexes are the composite and JSON indexes AutoMigrate does not create
var Indexes = []string{
	// Catalog indexes
	"CREATE INDEX IF NOT EXISTS idx_campuses_university_name ON campuses(university_id, name)",
	"CREATE INDEX IF NOT EXISTS idx_restaurants_campus_name ON restaurants(campus_id, name)",
	"CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant_category ON menu_items(restaurant_id, category)",
	"CREATE INDEX IF NOT EXISTS idx_mart_items_campus_category ON mart_items(campus_id, category)",

	// Order indexes
	"CREATE INDEX IF NOT EXISTS idx_orders_campus_status ON orders(campus_id, status)",
	"CREATE INDEX IF NOT EXISTS idx_orders_campus_created ON orders(campus_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_orders_phone ON orders(phone)",
	"CREATE INDEX IF NOT EXISTS idx_orders_restaurant_ids ON orders USING GIN (restaurant_ids jsonb_path_ops)",

	// Order status history indexes
	"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_order_status_history_status ON order_status_history(status)",

	// Ledger indexes
	"CREATE INDEX IF NOT EXISTS idx_ledger_outbox_due ON ledger_outbox(status, next_attempt_at)",
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	m.logger.Info("🔄 Creating additional database indexes...")

	successCount := 0
	failCount := 0
	for _, indexSQL := range Indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("⚠️ Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.logger.Infof("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData loads the embedded catalog when no university exists yet
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&catalog.University{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count universities: %w", err)
	}
	if count > 0 {
		m.logger.Info("⏭️ Catalog already seeded")
		return nil
	}

	seed, err := DefaultSeed()
	if err != nil {
		return err
	}

	m.logger.Info("🌱 Seeding initial data...")
	err = m.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range seed.Universities {
			if err := seedUniversity(tx, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	m.logger.Info("✅ Initial data seeded successfully")
	return nil
}

func seedUniversity(tx *gorm.DB, u SeedUniversity) error {
	university := u.model()
	if err := tx.Create(university).Error; err != nil {
		return err
	}

	for _, c := range u.Campuses {
		campus := c.model(university.ID)
		if err := tx.Create(campus).Error; err != nil {
			return err
		}
		if setting := c.setting(campus.ID); setting != nil {
			if err := tx.Create(setting).Error; err != nil {
				return err
			}
		}

		for _, r := range c.Restaurants {
			restaurant := r.model(campus.ID)
			if err := tx.Create(restaurant).Error; err != nil {
				return err
			}
			for _, item := range r.Menu {
				menuItem := &catalog.MenuItem{
					RestaurantID: restaurant.ID,
					Name:         item.Name,
					Price:        item.Price,
					Category:     item.Category,
					IsAvailable:  true,
				}
				if err := tx.Create(menuItem).Error; err != nil {
					return err
				}
			}
		}

		for _, item := range c.Mart {
			martItem := &catalog.MartItem{
				CampusID: campus.ID,
				Name:     item.Name,
				Price:    item.Price,
				Category: item.Category,
				InStock:  true,
			}
			if err := tx.Create(martItem).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// DropAllTables drops every application table
func (m *Migration) DropAllTables() error {
	m.logger.Warn("⚠️ WARNING: Dropping all database tables...")

	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(models[i]); err != nil {
			m.logger.WithError(err).Warnf("⚠️ Failed to drop table for %T", models[i])
		} else {
			m.logger.Infof("🗑️ Dropped table for %T", models[i])
		}
	}

	m.logger.Info("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo logs the row count of every public table
func (m *Migration) GetTableInfo() error {
	var tables []string
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	var total int64
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		total += count
		m.logger.Infof("📊 %-25s | %d records", table, count)
	}
	m.logger.Infof("📈 Total records across %d tables: %d", len(tables), total)
	return nil
}
