package models

import "time"

// Student — запись в реестре учеников. Номер в журнале уникален по школе.
type Student struct {
	ID            int64
	Name          string
	StudentNumber int64
	Phone         *string
	CreatedAt     time.Time
}

// ParentLink связывает телеграм-аккаунт отправителя с учеником.
// У одного ученика может быть несколько связей (мама, папа, бабушка).
// Деактивированная связь не восстанавливается автоматически.
type ParentLink struct {
	ID             int64
	StudentID      int64
	TelegramID     string
	ParentName     *string
	Relation       *string
	IsActive       bool
	AutoRegistered bool
	FirstContactAt time.Time
	CreatedAt      time.Time
}
