package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	BusinessID  int64     // ID бизнеса
	ServiceID   int64     // ID услуги
	StaffID     int64     // ID сотрудника
	Day         time.Time // Локальная дата (используются только год, месяц, день)
	StepMinutes int       // Шаг сетки, 0 = по умолчанию
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Day       time.Time     // Дата, на которую запрашивались слоты
	ServiceID int64         // ID услуги
	StaffID   int64         // ID сотрудника
	Timezone  string        // Часовой пояс бизнеса
	Slots     []domain.Slot // Слоты в часовом поясе бизнеса, по возрастанию
}
