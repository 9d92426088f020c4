package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jasonoc/plato/internal/config"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load configuration:\n%v\n", err)
		os.Exit(1)
	}

	problems := cfg.Validate()
	for _, problem := range problems {
		fmt.Printf("❌ %s\n", problem)
	}

	fmt.Printf("📋 Configuration details:\n")
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - Gemini API Key: %s\n", maskToken(cfg.GeminiAPIKey))
	fmt.Printf("  - Allowed User ID: %d\n", cfg.AllowedUserID)
	fmt.Printf("  - DB Host: %s\n", cfg.DB.Host)
	fmt.Printf("  - DB Port: %s\n", cfg.DB.Port)
	fmt.Printf("  - DB User: %s\n", cfg.DB.User)
	fmt.Printf("  - DB Name: %s\n", cfg.DB.DBName)
	fmt.Printf("  - Redis Host: %s\n", orUnset(cfg.Redis.Host))
	fmt.Printf("  - Google Client ID: %s\n", maskToken(cfg.Google.ClientID))
	fmt.Printf("  - Calendar ID: %s\n", cfg.Google.CalendarID)
	fmt.Printf("  - Timezone: %s\n", cfg.Google.Timezone)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)

	if len(problems) > 0 {
		os.Exit(1)
	}
	fmt.Println("✅ Configuration is valid!")
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func orUnset(value string) string {
	if value == "" {
		return "<not set>"
	}
	return value
}
