package handler

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/scheduler"
)

// memoryStore 内存中的 Store，WithTx 期间持有锁，提交前的修改都暂存在事务中
type memoryStore struct {
	mu sync.Mutex

	staff          map[int64]*domain.Staff
	shifts         map[int64]*domain.Shift
	schedules      map[int64]*domain.Schedule
	nextShiftID    int64
	nextScheduleID int64

	commitErr error
}

func newMemoryStore(staff ...*domain.Staff) *memoryStore {
	s := &memoryStore{
		staff:     make(map[int64]*domain.Staff),
		shifts:    make(map[int64]*domain.Shift),
		schedules: make(map[int64]*domain.Schedule),
	}
	for _, member := range staff {
		s.staff[member.ID] = member
	}
	return s
}

func (s *memoryStore) GetAllStaff() ([]*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff := make([]*domain.Staff, 0)
	for _, member := range s.staff {
		if member.Role == domain.RoleStaff && member.IsActive {
			staff = append(staff, member)
		}
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].ID < staff[j].ID })
	return staff, nil
}

func (s *memoryStore) GetStaffByID(id int64) (*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.staff[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *member
	return &c, nil
}

func (s *memoryStore) GetStaffByIDs(ids []int64) (map[int64]*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff := make(map[int64]*domain.Staff, len(ids))
	for _, id := range ids {
		if member, ok := s.staff[id]; ok {
			staff[id] = member
		}
	}
	return staff, nil
}

func (s *memoryStore) CreateShift(shift *domain.Shift) error {
	return s.CreateAssignedShift(shift)
}

func (s *memoryStore) CreateAssignedShift(shift *domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextShiftID++
	shift.ID = s.nextShiftID
	shift.CreatedAt = time.Now()
	s.shifts[shift.ID] = cloneShift(shift)
	return nil
}

func (s *memoryStore) GetShiftByID(id int64) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, ok := s.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneShift(shift), nil
}

func (s *memoryStore) GetAllShifts(onlyUnassigned bool) ([]*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedShifts(func(shift *domain.Shift) bool {
		return !onlyUnassigned || shift.StaffID == nil
	}), nil
}

func (s *memoryStore) CreateSchedule(schedule *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextScheduleID++
	schedule.ID = s.nextScheduleID
	schedule.CreatedAt = time.Now()
	s.schedules[schedule.ID] = &domain.Schedule{ID: schedule.ID, PeriodStart: schedule.PeriodStart, CreatedAt: schedule.CreatedAt}
	return nil
}

func (s *memoryStore) GetAllSchedules() ([]*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedules := make([]*domain.Schedule, 0, len(s.schedules))
	for _, schedule := range s.schedules {
		schedules = append(schedules, &domain.Schedule{ID: schedule.ID, PeriodStart: schedule.PeriodStart, Shifts: make([]*domain.Shift, 0)})
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].ID > schedules[j].ID })
	return schedules, nil
}

func (s *memoryStore) GetScheduleByID(id int64) (*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	schedule := &domain.Schedule{ID: stored.ID, PeriodStart: stored.PeriodStart, CreatedAt: stored.CreatedAt, Shifts: make([]*domain.Shift, 0)}
	for _, shift := range s.sortedShifts(func(shift *domain.Shift) bool {
		return shift.ScheduleID != nil && *shift.ScheduleID == id
	}) {
		schedule.AddShift(shift)
	}
	return schedule, nil
}

func (s *memoryStore) sortedShifts(keep func(shift *domain.Shift) bool) []*domain.Shift {
	shifts := make([]*domain.Shift, 0)
	for _, shift := range s.shifts {
		if keep(shift) {
			shifts = append(shifts, cloneShift(shift))
		}
	}
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].ID < shifts[j].ID })
	return shifts
}

func (s *memoryStore) WithTx(ctx context.Context, fn func(tx scheduler.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:          s,
		staged:         make(map[int64]*domain.Shift),
		schedules:      make(map[int64]*domain.Schedule),
		nextScheduleID: s.nextScheduleID,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if s.commitErr != nil {
		return s.commitErr
	}

	for id, shift := range tx.staged {
		s.shifts[id] = shift
	}
	for id, schedule := range tx.schedules {
		s.schedules[id] = schedule
	}
	s.nextScheduleID = tx.nextScheduleID
	return nil
}

type memoryTx struct {
	store          *memoryStore
	staged         map[int64]*domain.Shift
	schedules      map[int64]*domain.Schedule
	nextScheduleID int64
}

func (tx *memoryTx) GetUnassignedShifts(ctx context.Context) ([]*domain.Shift, error) {
	return tx.store.sortedShifts(func(shift *domain.Shift) bool { return shift.StaffID == nil }), nil
}

func (tx *memoryTx) CreateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	tx.nextScheduleID++
	schedule.ID = tx.nextScheduleID
	schedule.CreatedAt = time.Now()
	tx.schedules[schedule.ID] = &domain.Schedule{ID: schedule.ID, PeriodStart: schedule.PeriodStart, CreatedAt: schedule.CreatedAt}
	return nil
}

func (tx *memoryTx) AssignShift(ctx context.Context, shift *domain.Shift) error {
	tx.staged[shift.ID] = cloneShift(shift)
	return nil
}

func cloneShift(shift *domain.Shift) *domain.Shift {
	c := *shift
	if shift.StaffID != nil {
		id := *shift.StaffID
		c.StaffID = &id
	}
	if shift.ScheduleID != nil {
		id := *shift.ScheduleID
		c.ScheduleID = &id
	}
	return &c
}

// recordingPublisher 记录所有发布到队列中的消息
type recordingPublisher struct {
	mu       sync.Mutex
	messages []amqp.Publishing
	keys     []string
}

func (p *recordingPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, msg)
	p.keys = append(p.keys, key)
	return nil
}

type fakeLocker struct {
	mu       sync.Mutex
	err      error
	acquired int
	released int
}

func (l *fakeLocker) Acquire(ctx context.Context) (func(ctx context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}
	l.acquired++

	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, nil
}
