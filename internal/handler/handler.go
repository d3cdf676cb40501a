package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/lock"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/scheduler"
)

const generationLockKey = "shift_roster:schedule_generation"

var _ Store = (*repository.Repository)(nil)

// Store handler 用到的存储操作，由 repository.Repository 实现
type Store interface {
	scheduler.Store

	GetAllStaff() ([]*domain.Staff, error)
	GetStaffByID(id int64) (*domain.Staff, error)
	GetStaffByIDs(ids []int64) (map[int64]*domain.Staff, error)

	CreateShift(shift *domain.Shift) error
	CreateAssignedShift(shift *domain.Shift) error
	GetShiftByID(id int64) (*domain.Shift, error)
	GetAllShifts(onlyUnassigned bool) ([]*domain.Shift, error)

	CreateSchedule(schedule *domain.Schedule) error
	GetAllSchedules() ([]*domain.Schedule, error)
	GetScheduleByID(id int64) (*domain.Schedule, error)
}

// MailPublisher 由 *amqp.Channel 实现
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Locker 由 *lock.GenerationLock 实现
type Locker interface {
	Acquire(ctx context.Context) (func(ctx context.Context) error, error)
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  Store
	translator  ut.Translator
	mailChannel MailPublisher
	genLock     Locker

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Store, mailCh MailPublisher, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		genLock:     lock.NewGenerationLock(rdb, generationLockKey, time.Duration(cfg.Scheduler.LockExpiration)*time.Second),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", h.GetAllStaff)
			r.With(h.staffInfo).Get("/{id}", h.GetStaff)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateShift)
			r.Get("/", h.GetAllShifts)
			r.With(h.shift).Get("/{id}", h.GetShift)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateSchedule)
			r.Get("/", h.GetAllSchedules)
			r.Get("/strategies", h.GetStrategies)
			r.Route("/generate", func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
				r.Post("/", h.GenerateSchedule)
				r.Post("/{strategy}", h.GenerateSchedule)
			})
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.schedule)
				r.Get("/", h.GetSchedule)
				r.Get("/export", h.ExportSchedule)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/shifts", h.CreateAssignedShift)
			})
		})
	})
}
