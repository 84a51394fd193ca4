package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/mingya-dental/clinic-manager/backend/internal/config"
	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
	"github.com/mingya-dental/clinic-manager/backend/internal/repository"
	"github.com/mingya-dental/clinic-manager/backend/internal/scheduling"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	scheduler   *scheduling.Service
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
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
		scheduler:   scheduling.NewService(repo),
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleDirector})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 诊所内部人员都可以查看其他人的基础信息
			r.Get("/dentists", h.GetAllDentists)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialDirector).With(h.RequiredRole([]domain.Role{domain.RoleDirector})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialDirector).With(h.RequiredRole([]domain.Role{domain.RoleDirector})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleDirector})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Use(h.myInfo)
			r.With(h.preventLeavedStaff).With(h.RequiredRole([]domain.Role{domain.RoleDentist})).Post("/", h.RegisterSchedules)
			r.Get("/", h.ListSchedules)
			r.Get("/calendar", h.GetCalendar)
			r.With(h.preventLeavedStaff).With(h.RequiredRole([]domain.Role{domain.RoleDentist})).Delete("/{id}", h.CancelSchedule)
			r.With(h.RequiredRole([]domain.Role{domain.RoleDirector})).Post("/decisions", h.DecideSchedules)
		})
	})
}
