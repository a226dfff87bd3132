package catalogservice

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Service модель услуги из CatalogService
type Service struct {
	ID              int64  `json:"id"`
	BusinessID      int64  `json:"business_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Price           string `json:"price"` // десятичная строка, например "1500.00"
	IsActive        bool   `json:"is_active"`
}

// WorkingHours рабочее время по дню недели.
// Weekday в формате ISO: 1 - понедельник, 7 - воскресенье.
type WorkingHours struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"` // "HH:MM"
	End     string `json:"end"`   // "HH:MM"
}

// Schedule запись расписания на конкретную дату
type Schedule struct {
	Day          string  `json:"day"`           // "YYYY-MM-DD"
	ScheduleType string  `json:"schedule_type"` // work | break | day_off
	StartTime    *string `json:"start_time,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
}

// Staff модель сотрудника из CatalogService
type Staff struct {
	ID           int64          `json:"id"`
	BusinessID   int64          `json:"business_id"`
	FullName     string         `json:"full_name"`
	Timezone     string         `json:"timezone"`
	IsActive     bool           `json:"is_active"`
	WorkingHours []WorkingHours `json:"working_hours"`
	Schedules    []Schedule     `json:"schedules"`
}

// ToDomain конвертирует услугу в доменную модель
func (s *Service) ToDomain() (*domain.Service, error) {
	if s.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: service id=%d has non-positive duration %d", ErrInvalidResponse, s.ID, s.DurationMinutes)
	}

	var price float64
	if raw := strings.TrimSpace(s.Price); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: service id=%d has invalid price %q", ErrInvalidResponse, s.ID, s.Price)
		}
		price = parsed
	}

	return &domain.Service{
		ID:              s.ID,
		BusinessID:      s.BusinessID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Price:           price,
		IsActive:        s.IsActive,
	}, nil
}

// ToDomain конвертирует сотрудника в доменную модель
func (s *Staff) ToDomain() (*domain.StaffMember, error) {
	staff := &domain.StaffMember{
		ID:         s.ID,
		BusinessID: s.BusinessID,
		FullName:   s.FullName,
		Timezone:   s.Timezone,
		IsActive:   s.IsActive,
		Weekly:     make(map[time.Weekday][]domain.TimeRange),
	}

	if _, err := staff.Location(); err != nil {
		return nil, fmt.Errorf("%w: staff id=%d: %v", ErrInvalidResponse, s.ID, err)
	}

	for _, wh := range s.WorkingHours {
		if wh.Weekday < 1 || wh.Weekday > 7 {
			return nil, fmt.Errorf("%w: staff id=%d has invalid weekday %d", ErrInvalidResponse, s.ID, wh.Weekday)
		}
		r, err := parseRange(wh.Start, wh.End)
		if err != nil {
			return nil, fmt.Errorf("%w: staff id=%d working hours: %v", ErrInvalidResponse, s.ID, err)
		}
		weekday := time.Weekday(wh.Weekday % 7)
		staff.Weekly[weekday] = append(staff.Weekly[weekday], r)
	}

	for _, sc := range s.Schedules {
		entry, err := sc.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: staff id=%d schedule: %v", ErrInvalidResponse, s.ID, err)
		}
		staff.Overrides = append(staff.Overrides, entry)
	}

	return staff, nil
}

func (s Schedule) toDomain() (domain.ScheduleEntry, error) {
	day, err := time.Parse(domain.DateFormat, s.Day)
	if err != nil {
		return domain.ScheduleEntry{}, fmt.Errorf("invalid day %q", s.Day)
	}

	entry := domain.ScheduleEntry{Date: day, Type: domain.ScheduleType(s.ScheduleType)}

	switch entry.Type {
	case domain.ScheduleDayOff:
		return entry, nil
	case domain.ScheduleWork, domain.ScheduleBreak:
		if s.StartTime == nil || s.EndTime == nil {
			return domain.ScheduleEntry{}, fmt.Errorf("%s entry on %s without time range", s.ScheduleType, s.Day)
		}
		entry.Range, err = parseRange(*s.StartTime, *s.EndTime)
		if err != nil {
			return domain.ScheduleEntry{}, err
		}
		return entry, nil
	default:
		return domain.ScheduleEntry{}, fmt.Errorf("unknown schedule type %q", s.ScheduleType)
	}
}

func parseRange(start, end string) (domain.TimeRange, error) {
	// Postgres TIME может прийти как "HH:MM:SS"
	var s, e types.TimeString
	if err := s.Scan(start); err != nil {
		return domain.TimeRange{}, err
	}
	if err := e.Scan(end); err != nil {
		return domain.TimeRange{}, err
	}

	r := domain.TimeRange{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return domain.TimeRange{}, err
	}
	return r, nil
}
