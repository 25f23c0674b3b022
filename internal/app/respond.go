package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

// Тексты ответов собраны в одном месте: исход → шаблон, без ветвлений в хендлерах.

const dateLayout = "02.01.2006"

func replyClarification() string {
	return "Простите, я не понял(а) сообщение. 🙈\n\n" +
		"Напишите, пожалуйста, проще, например:\n" +
		"• «Петя Иванов заболел»\n" +
		"• «Аня опоздает завтра»\n" +
		"• «Максим уйдёт раньше в пятницу»\n\n" +
		"💡 Достаточно имени ребёнка и ситуации."
}

func replyMissingField() string {
	return "❌ Для регистрации не хватает данных: нужно понять, отсутствие это, " +
		"опоздание или ранний уход, и по какой причине.\n" +
		"Напишите, пожалуйста, подробнее, например: «Петя завтра не придёт, болеет»."
}

func replyGatewayFailure() string {
	return "Извините, не получилось обработать сообщение.\nПопробуйте ещё раз через минуту."
}

func replyPersistenceError() string {
	return "Извините, произошла внутренняя ошибка.\nПопробуйте ещё раз через минуту."
}

func replyStudentNotFound(name string) string {
	if name == "" {
		name = "ребёнка"
	}
	return fmt.Sprintf("Не нашёл(а) ученика «%s». 🔍\nПроверьте, пожалуйста, имя: оно должно совпадать с записью в журнале.", name)
}

func replyNoPending(studentName string) string {
	return fmt.Sprintf("❌ У ученика %s нет записей, ожидающих подтверждения.\n"+
		"Уже подтверждённые или отклонённые записи меняет только классный руководитель.", studentName)
}

func replyNoChanges() string {
	return "❌ Не понял(а), что нужно исправить.\n" +
		"Например: «исправьте на опоздание», «перенесите на завтра», «причина — болезнь»."
}

func replyInvalidRange() string {
	return "❌ Конец периода раньше его начала. Проверьте, пожалуйста, даты."
}

func replyCreated(studentName string, dates []time.Time, t models.AttendanceType, r models.AttendanceReason, docCount int) string {
	var b strings.Builder
	b.WriteString("✅ Записано!\n\n")
	fmt.Fprintf(&b, "👤 Ученик: %s\n", studentName)
	if len(dates) > 1 {
		fmt.Fprintf(&b, "📅 Период: %s — %s (%d дн.)\n",
			dates[0].Format(dateLayout), dates[len(dates)-1].Format(dateLayout), len(dates))
	} else {
		fmt.Fprintf(&b, "📅 Дата: %s\n", dates[0].Format(dateLayout))
	}
	fmt.Fprintf(&b, "📝 Тип: %s\n", t.Label())
	fmt.Fprintf(&b, "📋 Причина: %s\n\n", r.Label())
	b.WriteString("Ожидает подтверждения классным руководителем.")
	if docCount > 0 {
		fmt.Fprintf(&b, "\n\n📎 Нужен подтверждающий документ (всего: %d).\nСфотографируйте его и пришлите в этот чат.", docCount)
	}
	return b.String()
}

// replyCreatedPartial — период записан не целиком: первые created дат
// сохранены, дальше произошла ошибка. Не маскируем ни под успех, ни под отказ.
func replyCreatedPartial(studentName string, created, total int, failedDate time.Time) string {
	return fmt.Sprintf("⚠️ Записано частично: %d из %d дней для ученика %s.\n"+
		"Начиная с %s сохранить не удалось — пришлите, пожалуйста, оставшиеся дни отдельным сообщением.",
		created, total, studentName, failedDate.Format(dateLayout))
}

func replyUpdated(studentName string, changed []string) string {
	var b strings.Builder
	b.WriteString("✅ Запись исправлена!\n\n")
	fmt.Fprintf(&b, "👤 Ученик: %s\n", studentName)
	b.WriteString("📝 Изменения:\n")
	for _, c := range changed {
		fmt.Fprintf(&b, "  • %s\n", c)
	}
	b.WriteString("\nОжидает подтверждения классным руководителем.")
	return b.String()
}

func replyCanceled(studentName string, rec *models.AttendanceRecord) string {
	return fmt.Sprintf("✅ Запись отменена.\n\n👤 Ученик: %s\n📅 Дата: %s\n📝 Тип: %s\n\nОтменённую запись восстановить нельзя.",
		studentName, rec.Date.Format(dateLayout), rec.Type.Label())
}
