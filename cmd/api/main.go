package main

import (
	"log"
	"net/http"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	"app/internal/infra/mail"
	"app/internal/infra/payment"
	infraRepo "app/internal/infra/repository"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	//.envはローカル用。なくても環境変数があれば動く。
	if err := godotenv.Load("../.env"); err != nil {
		log.Printf("no .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.SellerProfile{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Review{},
		&model.Address{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Redis（商品詳細キャッシュ）
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	productCache := cache.NewProductRedisCache(redisClient)

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	sellerProfileRepo := infraRepo.NewSellerProfileGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス
	razorpay := payment.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
	notifier := mail.NewGomailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)

	//validator
	authValidator := validator.NewAuthValidator(userRepo, sellerProfileRepo)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, txManager, authValidator)
	productUC := usecase.NewProductUsecase(productRepo, userRepo, productCache)
	sellerProductUC := usecase.NewSellerProductUsecase(productRepo, productCache)
	adminProductUC := usecase.NewAdminProductUsecase(productRepo, inventoryRepo, auditRepo, productCache)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo, userRepo, addressRepo, auditRepo, txManager, notifier)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo)
	paymentUC := usecase.NewPaymentUsecase(razorpay)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, orderRepo, productRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, sellerProfileRepo, auditRepo)

	//Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//Handler生成＋ルート登録
	handler.NewAuthHandler(authUC).RegisterRoutes(e, cfg)
	handler.NewProductHandler(productUC).RegisterRoutes(e)
	handler.NewSellerProductHandler(sellerProductUC).RegisterRoutes(e, cfg)
	handler.NewAdminProductHandler(adminProductUC).RegisterRoutes(e, cfg)
	handler.NewCartHandler(cartUC).RegisterRoutes(e, cfg)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e, cfg)
	handler.NewSellerOrderHandler(orderUC).RegisterRoutes(e, cfg)
	handler.NewAdminOrderHandler(adminOrderUC, orderUC).RegisterRoutes(e, cfg)
	handler.NewPaymentHandler(paymentUC).RegisterRoutes(e, cfg)
	handler.NewReviewHandler(reviewUC).RegisterRoutes(e, cfg)
	handler.NewAddressHandler(addressUC).RegisterRoutes(e, cfg)
	handler.NewAdminUserHandler(adminUserUC).RegisterRoutes(e, cfg)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
