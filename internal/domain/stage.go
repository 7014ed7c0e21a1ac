package domain

// Stage стадия воронки бронирования
type Stage string

const (
	StageInitial             Stage = "initial"
	StageConsultation        Stage = "consultation"
	StageBookingConfirmed    Stage = "booking_confirmed"
	StagePaymentPending      Stage = "payment_pending"
	StagePaymentVerification Stage = "payment_verification"
	StagePaymentConfirmed    Stage = "payment_confirmed"
)

// stageOrder порядок стадий, переходы разрешены только вперёд
var stageOrder = map[Stage]int{
	StageInitial:             0,
	StageConsultation:        1,
	StageBookingConfirmed:    2,
	StagePaymentPending:      3,
	StagePaymentVerification: 4,
	StagePaymentConfirmed:    5,
}

// Stages все стадии по порядку
var Stages = []Stage{
	StageInitial,
	StageConsultation,
	StageBookingConfirmed,
	StagePaymentPending,
	StagePaymentVerification,
	StagePaymentConfirmed,
}

// IsValid проверяет, что стадия известна
func (s Stage) IsValid() bool {
	_, ok := stageOrder[s]
	return ok
}

// CanTransitionTo разрешает переход на ту же или более позднюю стадию
func (s Stage) CanTransitionTo(next Stage) bool {
	from, ok := stageOrder[s]
	if !ok {
		return false
	}
	to, ok := stageOrder[next]
	if !ok {
		return false
	}
	return to >= from
}

// Advance возвращает target, если он дальше текущей стадии, иначе текущую
func (s Stage) Advance(target Stage) Stage {
	if s.CanTransitionTo(target) {
		return target
	}
	return s
}

// ParseStage валидирует строковое значение стадии
func ParseStage(v string) (Stage, error) {
	s := Stage(v)
	if !s.IsValid() {
		return "", NewValidationError("unknown stage "+v, "stage")
	}
	return s, nil
}
