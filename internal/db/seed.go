package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// SeedDemoStudents наполняет пустой реестр демонстрационными учениками.
// Включается флагом SEED_DEMO=1; на непустом реестре ничего не делает.
func SeedDemoStudents(ctx context.Context, database *sql.DB) error {
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count); err != nil {
		return fmt.Errorf("проверка таблицы students: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("🧪 Наполнение реестра демонстрационными учениками...")
	names := []string{
		"Иванов Пётр",
		"Смирнова Анна",
		"Кузнецов Максим",
		"Попова Дарья",
		"Соколов Артём",
		"Лебедева София",
		"Козлов Никита",
		"Новикова Алиса",
		"Морозов Кирилл",
		"Волкова Ева",
	}
	for i, name := range names {
		if _, err := database.ExecContext(ctx, `
			INSERT INTO students (name, student_number)
			VALUES ($1, $2)
			ON CONFLICT (student_number) DO NOTHING
		`, name, int64(i+1)); err != nil {
			return fmt.Errorf("вставка ученика %s: %w", name, err)
		}
	}
	log.Println("✅ Ученики добавлены.")
	return nil
}
