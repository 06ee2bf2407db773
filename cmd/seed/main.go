package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/amirpoori99/food-ordering-project-sub008/database"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/config"
)

func main() {
	configPath := flag.String("config", "", "fichier de configuration YAML")
	flag.Parse()

	// .env + YAML + variables d'environnement
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("❌ Erreur configuration:", err)
	}

	if err := database.Init(cfg.Source.ConnectionString()); err != nil {
		log.Fatal("❌ Erreur connexion DB:", err)
	}
	defer database.Close()

	fmt.Println("✅ Connexion PostgreSQL établie")

	if err := database.ApplySchema(context.Background(), database.DB); err != nil {
		log.Fatal("❌ Erreur schéma:", err)
	}

	days, _ := strconv.Atoi(getEnv("SEED_DAYS", "90"))

	fmt.Println("🌱 Démarrage du seed de la base de données...")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if err := database.SeedDatabase(days); err != nil {
		log.Fatal("❌ Erreur lors du seed:", err)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("✅ Seed terminé avec succès!")
	fmt.Println()
	fmt.Println("Vous pouvez maintenant lancer l'ETL avec:")
	fmt.Println("  go run . -entities all")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
