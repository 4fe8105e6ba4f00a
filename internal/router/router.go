package router

import (
	"github.com/yudopr11/yupi/internal/config"
	"github.com/yudopr11/yupi/internal/handler"
	"github.com/yudopr11/yupi/internal/llm"
	"github.com/yudopr11/yupi/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires the gin engine: public auth and blog reads, token
// protected API groups, and guest/superuser gates on mutating routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, llmClient *llm.Client) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	jwtSecret := cfg.JWT.Secret

	authHandler := handler.NewAuthHandler(db, cfg.JWT)
	accountHandler := handler.NewAccountHandler(db)
	categoryHandler := handler.NewCategoryHandler(db)
	transactionHandler := handler.NewTransactionHandler(db)
	statisticsHandler := handler.NewStatisticsHandler(db)
	exportHandler := handler.NewExportHandler(db)
	postHandler := handler.NewPostHandler(db, llmClient)
	splitBillHandler := handler.NewSplitBillHandler(llmClient)

	// auth routes that work without a token
	auth := r.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	// user administration is superuser territory
	authAdmin := r.Group("/auth")
	authAdmin.Use(middleware.AuthMiddleware(jwtSecret, db), middleware.RequireSuperuser())
	authAdmin.POST("/register", authHandler.Register)
	authAdmin.DELETE("/users/:id", authHandler.DeleteUser)

	// blog reads are public
	blog := r.Group("/blog")
	blog.GET("", postHandler.ListPosts)
	blog.GET("/search", postHandler.SearchPosts)
	blog.GET("/:slug", postHandler.GetPostBySlug)

	blogAuth := r.Group("/blog")
	blogAuth.Use(middleware.AuthMiddleware(jwtSecret, db))
	blogAuth.POST("", postHandler.CreatePost)
	blogAuth.PUT("/admin/:id", postHandler.UpdatePost)

	blogAdmin := r.Group("/blog")
	blogAdmin.Use(middleware.AuthMiddleware(jwtSecret, db), middleware.RequireSuperuser())
	blogAdmin.DELETE("/admin/:id", postHandler.DeletePost)

	// personal finance API
	cuan := r.Group("/cuan")
	cuan.Use(middleware.AuthMiddleware(jwtSecret, db))

	cuan.GET("/accounts", accountHandler.ListAccounts)
	cuan.GET("/accounts/:id/balance", accountHandler.GetAccountBalance)
	cuan.GET("/categories", categoryHandler.ListCategories)
	cuan.GET("/transactions", transactionHandler.ListTransactions)
	cuan.GET("/transactions/export/csv", exportHandler.ExportCSV)
	cuan.GET("/transactions/export/xlsx", exportHandler.ExportXLSX)

	cuan.GET("/statistics/summary", statisticsHandler.GetFinancialSummary)
	cuan.GET("/statistics/by-category", statisticsHandler.GetCategoryDistribution)
	cuan.GET("/statistics/trends", statisticsHandler.GetTransactionTrends)
	cuan.GET("/statistics/account-summary", statisticsHandler.GetAccountSummary)

	// mutations are blocked for the shared guest account
	cuanWrite := cuan.Group("")
	cuanWrite.Use(middleware.RequireNonGuest(cfg.App.GuestUsername))

	cuanWrite.POST("/accounts", accountHandler.CreateAccount)
	cuanWrite.PUT("/accounts/:id", accountHandler.UpdateAccount)
	cuanWrite.DELETE("/accounts/:id", accountHandler.DeleteAccount)

	cuanWrite.POST("/categories", categoryHandler.CreateCategory)
	cuanWrite.PUT("/categories/:id", categoryHandler.UpdateCategory)
	cuanWrite.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	cuanWrite.POST("/transactions", transactionHandler.CreateTransaction)
	cuanWrite.PUT("/transactions/:id", transactionHandler.UpdateTransaction)
	cuanWrite.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	// bill splitting
	splitbill := r.Group("/splitbill")
	splitbill.Use(middleware.AuthMiddleware(jwtSecret, db))
	splitbill.POST("/analyze", splitBillHandler.AnalyzeBill)

	return r
}
