package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/zeriouslyzen/cosmic-sub000/cart"
	"github.com/zeriouslyzen/cosmic-sub000/checkout"
	orderControllers "github.com/zeriouslyzen/cosmic-sub000/controllers/order"
	"github.com/zeriouslyzen/cosmic-sub000/routes"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

func main() {
	log.Println("✅ Starting Cosmic Deals API...")

	// Load environment variables
	_ = godotenv.Load()

	// Open the record store: Postgres when credentials are configured,
	// the local JSON-file fallback otherwise. Chosen once, never switched.
	db, err := store.Open()
	if err != nil {
		log.Fatalf("❌ Failed to open store: %v", err)
	}
	defer db.Close()
	if os.Getenv("DATABASE_URL") == "" && os.Getenv("DB_HOST") == "" {
		log.Println("🗂️  No database credentials found, using local JSON store")
	} else {
		log.Println("🐘 Connected to Postgres")
	}

	// Cart sessions and checkout
	carts := cart.NewManager(db)
	defer carts.Close()
	stripeClient := checkout.NewStripeClientFromEnv()
	if !stripeClient.Configured() {
		log.Println("💳 No payment provider credential, hosted checkout will simulate success")
	}
	dispatcher := checkout.NewDispatcher(db, carts, stripeClient)
	dispatcher.SetOrderNotifier(orderControllers.BroadcastOrder)

	// Gin setup
	r := gin.Default()

	// CORS: the storefront posts checkout sessions cross-origin
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-OWNER-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Serve the storefront assets
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web"
	}
	if _, err := os.Stat(staticDir); err == nil {
		r.Static("/app", staticDir)
	}

	// Setup routes
	routes.SetupRoutes(r, db, carts, dispatcher)

	// In local mode, back up the data dir daily at 2 AM, keep 4 days
	if dataDir := localDataDir(); dataDir != "" {
		backupDir := filepath.Join(dataDir, "..", "backup")
		go startDailyBackupAtFixedTime(dataDir, backupDir, 4*24*time.Hour, 2, 0)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// localDataDir returns the JSON store directory, or "" in Postgres mode.
func localDataDir() string {
	if os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != "" {
		return ""
	}
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "./data"
	}
	return dir
}

// startDailyBackupAtFixedTime backs up the data dir daily at a fixed hour
// and removes old backups
func startDailyBackupAtFixedTime(srcDir, backupDir string, retention time.Duration, hour, min int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		sleepDuration := next.Sub(now)
		log.Printf("⏳ Next data backup scheduled at: %s", next.Format("2006-01-02 15:04:05"))
		time.Sleep(sleepDuration)

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		destDir := filepath.Join(backupDir, timestamp)

		if err := copyDir(srcDir, destDir); err != nil {
			log.Printf("❌ Failed to back up data: %v", err)
		} else {
			log.Printf("✅ Data backed up to %s", destDir)
		}

		cleanupOldBackups(backupDir, retention)
	}
}

// copyDir recursively copies a folder
func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, destPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, destPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyFile copies a single file
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// cleanupOldBackups removes backup folders older than retention duration
func cleanupOldBackups(backupDir string, retention time.Duration) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		log.Printf("❌ Failed to read backup directory: %v", err)
		return
	}

	cutoff := time.Now().Add(-retention)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(backupDir, entry.Name())
		info, err := os.Stat(folderPath)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(folderPath); err != nil {
				log.Printf("❌ Failed to remove old backup %s: %v", folderPath, err)
			} else {
				log.Printf("🗑️ Removed old backup: %s", folderPath)
			}
		}
	}
}
