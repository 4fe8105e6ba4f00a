package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/yudopr11/yupi/internal/config"
	"github.com/yudopr11/yupi/internal/database"
	"github.com/yudopr11/yupi/internal/llm"
	"github.com/yudopr11/yupi/internal/models"
	"github.com/yudopr11/yupi/internal/router"
	"github.com/yudopr11/yupi/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// make sure an admin exists on first boot
	if err := bootstrapSuperuser(db, cfg.Superuser); err != nil {
		log.Fatalf("bootstrap superuser: %v", err)
	}

	// LLM-backed features stay off without an API key
	var llmClient *llm.Client
	if cfg.OpenAI.APIKey != "" {
		llmClient, err = llm.New(llm.Config{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			ChatModel:      cfg.OpenAI.ChatModel,
			AnalysisModel:  cfg.OpenAI.AnalysisModel,
			EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		})
		if err != nil {
			log.Fatalf("init llm client: %v", err)
		}
	} else {
		log.Printf("no OpenAI API key configured, content generation and bill analysis disabled")
	}

	r := router.SetupRouter(cfg, db, llmClient)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

// bootstrapSuperuser creates the configured superuser when no user with that
// username exists yet.
func bootstrapSuperuser(db *gorm.DB, cfg config.SuperuserConfig) error {
	if cfg.Username == "" || cfg.Password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("LOWER(username) = LOWER(?)", cfg.Username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	user := models.User{
		UUID:         uuid.NewString(),
		Username:     cfg.Username,
		Email:        cfg.Email,
		PasswordHash: hash,
		IsSuperuser:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	log.Printf("created superuser %q", cfg.Username)
	return nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
