package app

import "github.com/Spok95/telegram-attendance-bot/internal/models"

// Виды подтверждающих документов.
const (
	DocTypeMedical       = "медицинская справка"
	DocTypeAuthorization = "подтверждающий документ"
)

// RequiresDocument — статичная таблица политики: документ нужен только для
// отсутствия по болезни или по уважительной причине. Опоздания и ранние
// уходы документа не требуют никогда.
func RequiresDocument(t models.AttendanceType, r models.AttendanceReason) bool {
	return t == models.Absence && (r == models.Illness || r == models.Authorized)
}

// DocumentTypeFor — подпись требуемого документа; nil, если документ не нужен.
func DocumentTypeFor(t models.AttendanceType, r models.AttendanceReason) *string {
	if !RequiresDocument(t, r) {
		return nil
	}
	var label string
	if r == models.Illness {
		label = DocTypeMedical
	} else {
		label = DocTypeAuthorization
	}
	return &label
}
