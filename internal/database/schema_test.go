package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		t.Fatalf("Failed to read migration file %s: %v", name, err)
	}
	return string(content)
}

func TestMigrationFilesExist(t *testing.T) {
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_carts_table.sql",
		"00002_create_users_table.sql",
		"00003_create_products_table.sql",
		"00004_create_product_sizes_table.sql",
		"00005_create_cart_items_table.sql",
		"00006_create_orders_table.sql",
		"00007_create_order_items_table.sql",
		"00008_create_updated_at_trigger.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content := readMigration(t, file.Name())

		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(content, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"carts":         "00001_create_carts_table.sql",
		"users":         "00002_create_users_table.sql",
		"products":      "00003_create_products_table.sql",
		"product_sizes": "00004_create_product_sizes_table.sql",
		"cart_items":    "00005_create_cart_items_table.sql",
		"orders":        "00006_create_orders_table.sql",
		"order_items":   "00007_create_order_items_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content := readMigration(t, migrationFile)

		if !strings.Contains(content, "CREATE TABLE "+tableName) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(content, "DROP TABLE "+tableName) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductSizesTableConstraints(t *testing.T) {
	content := readMigration(t, "00004_create_product_sizes_table.sql")

	// One stock bucket per product and size, never negative
	if !strings.Contains(content, "PRIMARY KEY (product_id, size)") {
		t.Error("product_sizes missing composite primary key on (product_id, size)")
	}
	if !strings.Contains(content, "CHECK (stock >= 0)") {
		t.Error("product_sizes missing non-negative stock constraint")
	}
	for _, size := range []string{"'xs'", "'s'", "'m'", "'l'", "'xl'"} {
		if !strings.Contains(content, size) {
			t.Errorf("product_sizes size constraint missing value %s", size)
		}
	}
}

func TestOrdersTableHasStatusConstraint(t *testing.T) {
	content := readMigration(t, "00006_create_orders_table.sql")

	requiredStatuses := []string{"pending", "processing", "shipped", "delivered", "cancelled"}
	for _, status := range requiredStatuses {
		if !strings.Contains(content, status) {
			t.Errorf("Orders table status constraint missing value: %s", status)
		}
	}

	if !strings.Contains(content, "CHECK (total_amount >= 0)") {
		t.Error("Orders table missing non-negative total constraint")
	}
	if !strings.Contains(content, "idx_orders_user_id_created_at") {
		t.Error("Orders table missing the user history index")
	}
}

func TestUsersTableReferencesCart(t *testing.T) {
	content := readMigration(t, "00002_create_users_table.sql")

	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"email VARCHAR",
		"password_hash VARCHAR",
		"full_name VARCHAR",
		"role VARCHAR",
		"cart_id UUID",
	}
	for _, column := range requiredColumns {
		if !strings.Contains(content, column) {
			t.Errorf("Users table missing required column definition: %s", column)
		}
	}

	if !strings.Contains(content, "FOREIGN KEY (cart_id)") {
		t.Error("Users table missing foreign key constraint to carts")
	}
}

func TestCartItemsAllowDuplicateProductSizeLines(t *testing.T) {
	content := readMigration(t, "00005_create_cart_items_table.sql")

	// Lines are appended, not merged, so there must be no uniqueness
	// across (cart_id, product_id, selected_size)
	if strings.Contains(content, "UNIQUE") {
		t.Error("cart_items must not constrain duplicate product+size lines")
	}
	if !strings.Contains(content, "selected_size VARCHAR") {
		t.Error("cart_items missing selected_size column")
	}
	if !strings.Contains(content, "added_at TIMESTAMP") {
		t.Error("cart_items missing added_at column")
	}
}
