package models

import "time"

type AttendanceType string

const (
	Absence    AttendanceType = "absence"
	Lateness   AttendanceType = "lateness"
	EarlyLeave AttendanceType = "early_leave"
)

func (t AttendanceType) Valid() bool {
	switch t {
	case Absence, Lateness, EarlyLeave:
		return true
	}
	return false
}

func (t AttendanceType) Label() string {
	switch t {
	case Absence:
		return "отсутствие"
	case Lateness:
		return "опоздание"
	case EarlyLeave:
		return "ранний уход"
	}
	return string(t)
}

type AttendanceReason string

const (
	Illness      AttendanceReason = "illness"
	Unauthorized AttendanceReason = "unauthorized"
	Authorized   AttendanceReason = "authorized"
)

func (r AttendanceReason) Valid() bool {
	switch r {
	case Illness, Unauthorized, Authorized:
		return true
	}
	return false
}

func (r AttendanceReason) Label() string {
	switch r {
	case Illness:
		return "болезнь"
	case Unauthorized:
		return "без уважительной причины"
	case Authorized:
		return "по уважительной причине"
	}
	return string(r)
}

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
	StatusModified ApprovalStatus = "modified"
)

// AttendanceRecord — одна дата отсутствия/опоздания/раннего ухода.
// Тип и причина обязательны и всегда из закрытых перечислений: 3×3 комбинаций,
// все девять допустимы. Через бот изменяются только записи в статусе pending.
type AttendanceRecord struct {
	ID             int64
	StudentID      int64
	Date           time.Time
	Type           AttendanceType
	Reason         AttendanceReason
	ApprovalStatus ApprovalStatus
	// исходное сообщение и сериализованный результат извлечения
	OriginalMessage string
	ExtractionLog   string
	// метаданные правок (заполняются административным контуром)
	ModifiedBy         *string
	ModifiedAt         *time.Time
	ModificationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DocumentSubmission — требование подтверждающего документа, создаётся
// вместе с записью, когда политика этого требует; удаляется каскадом при отмене.
type DocumentSubmission struct {
	ID                 int64
	StudentID          int64
	AttendanceRecordID *int64
	Date               time.Time
	IsSubmitted        bool
	SubmittedAt        *time.Time
	DocumentType       *string
	FilePath           *string
	FileTelegramID     *string
	ReminderSent       bool
	ReminderSentAt     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MessageLog — журнал входящих сообщений и результатов извлечения. Только append.
type MessageLog struct {
	ID             int64
	TelegramUserID string
	MessageText    string
	ExtractedData  *string
	Success        bool
	ErrorMessage   *string
	CreatedAt      time.Time
}
