package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stagegear/internal/audit"
	"stagegear/internal/config"
	"stagegear/internal/database"
	"stagegear/internal/domain"
	"stagegear/internal/middleware"
	"stagegear/internal/modules/auth"
	"stagegear/internal/modules/bag"
	"stagegear/internal/modules/equipment"
	"stagegear/internal/modules/event"
	"stagegear/internal/modules/feed"
	"stagegear/internal/modules/report"
	"stagegear/internal/modules/reservation"
	"stagegear/internal/modules/transaction"
	jwtsvc "stagegear/internal/pkg/jwt"
	"stagegear/internal/pkg/logger"
	"stagegear/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		zl.Fatal("connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("migrate database", zap.Error(err))
	}

	r := buildRouter(cfg, db, zl)

	zl.Info("starting api", zap.String("addr", cfg.Addr), zap.String("env", cfg.AppEnv))
	if err := r.Run(cfg.Addr); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func buildRouter(cfg *config.Config, db *gorm.DB, zl *zap.Logger) *gin.Engine {
	if cfg.AppEnv == "prod" || cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepo := repository.NewUserRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	bagRepo := repository.NewBagRepository(db)
	eventRepo := repository.NewEventRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	jwtService := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	recorder := audit.NewRecorder(zl)
	hub := feed.NewHub(zl)

	authService := auth.NewService(userRepo, jwtService, zl)
	equipmentService := equipment.NewService(db, equipmentRepo, hub, zl)
	bagService := bag.NewService(db, bagRepo, equipmentRepo, zl)
	eventService := event.NewService(eventRepo, zl)
	reservationService := reservation.NewService(db, reservationRepo, equipmentRepo, bagRepo, eventRepo, hub, zl)
	transactionService := transaction.NewService(db, transactionRepo, equipmentRepo, bagRepo, eventRepo, recorder, hub, zl)
	reportService := report.NewService(equipmentRepo, eventRepo, transactionRepo, userRepo, auditRepo, zl)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zl))

	api := r.Group("/api/v1")

	authed := api.Group("")
	authed.Use(middleware.Auth(jwtService))

	operators := api.Group("")
	operators.Use(middleware.Auth(jwtService), middleware.RequireRole(domain.RoleOperator))

	managers := api.Group("")
	managers.Use(middleware.Auth(jwtService), middleware.RequireRole(domain.RoleManager))

	admins := api.Group("")
	admins.Use(middleware.Auth(jwtService), middleware.AdminOnly())

	auth.NewHandler(authService).RegisterRoutes(api, authed, admins)
	equipment.NewHandler(equipmentService).RegisterRoutes(authed, admins)
	bag.NewHandler(bagService).RegisterRoutes(authed, admins)
	event.NewHandler(eventService).RegisterRoutes(authed, managers)
	reservation.NewHandler(reservationService).RegisterRoutes(authed, managers)
	transaction.NewHandler(transactionService).RegisterRoutes(authed, operators)
	report.NewHandler(reportService).RegisterRoutes(authed, admins)
	feed.NewHandler(hub, jwtService, zl).RegisterRoutes(r)

	return r
}
