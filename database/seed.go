package database

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

var (
	roles          = []string{"CUSTOMER", "CUSTOMER", "CUSTOMER", "CUSTOMER", "RESTAURANT_OWNER", "COURIER", "ADMIN"}
	categories     = []string{"Iranian", "Fast Food", "Pizza", "Kebab", "Cafe", "Seafood", "Vegetarian"}
	cities         = []string{"Tehran", "Isfahan", "Shiraz", "Tabriz", "Mashhad", "Karaj"}
	dishes         = []string{"Chelo Kabab", "Ghormeh Sabzi", "Pizza", "Burger", "Salad", "Falafel", "Joojeh", "Ash Reshteh"}
	paymentMethods = []string{"CARD", "WALLET", "CASH_ON_DELIVERY"}
	orderStatuses  = []string{"PENDING", "CONFIRMED", "PREPARING", "DELIVERED", "COMPLETED", "COMPLETED", "COMPLETED", "CANCELLED"}
)

// SeedDatabase peuple la base source avec days jours d'activité synthétique
func SeedDatabase(days int) error {
	fmt.Println("🌱 Génération des données de référence...")

	since := time.Now().UTC().AddDate(0, 0, -days)

	// 1. Utilisateurs
	userIDs, err := seedUsers(500, since)
	if err != nil {
		return fmt.Errorf("erreur génération utilisateurs: %w", err)
	}

	// 2. Restaurants
	restaurantIDs, err := seedRestaurants(40, since)
	if err != nil {
		return fmt.Errorf("erreur génération restaurants: %w", err)
	}

	// 3. Coupons
	couponIDs, err := seedCoupons(10)
	if err != nil {
		return fmt.Errorf("erreur génération coupons: %w", err)
	}

	// 4. Commandes, lignes et paiements
	fmt.Println("🌱 Génération des commandes et paiements...")
	if err := seedOrders(days, userIDs, restaurantIDs, couponIDs); err != nil {
		return fmt.Errorf("erreur génération commandes: %w", err)
	}

	fmt.Println("🔍 Analyse des tables...")
	if _, err := DB.Exec("ANALYZE"); err != nil {
		fmt.Println("⚠️ Attention: échec de l'analyse:", err)
	}

	return nil
}

// randomTimeAfter horodatage aléatoire entre since et maintenant
func randomTimeAfter(since time.Time) time.Time {
	span := time.Since(since)
	if span <= 0 {
		return since
	}
	return since.Add(time.Duration(rand.Int63n(int64(span))))
}

func seedUsers(count int, since time.Time) ([]int64, error) {
	fmt.Printf("   👤 Génération de %d utilisateurs...\n", count)

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		var id int64
		err := DB.QueryRow(`
			INSERT INTO users (username, email, role, active, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, fmt.Sprintf("user%d", i+1),
			fmt.Sprintf("user%d@example.com", i+1),
			roles[rand.Intn(len(roles))],
			rand.Float32() > 0.05,
			randomTimeAfter(since),
		).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	fmt.Printf("   ✅ %d utilisateurs créés\n", len(ids))
	return ids, nil
}

func seedRestaurants(count int, since time.Time) ([]int64, error) {
	fmt.Printf("   🍽  Génération de %d restaurants...\n", count)

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		var id int64
		err := DB.QueryRow(`
			INSERT INTO restaurants (name, category, city, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, fmt.Sprintf("Restaurant %d", i+1),
			categories[rand.Intn(len(categories))],
			cities[rand.Intn(len(cities))],
			randomTimeAfter(since),
		).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	fmt.Printf("   ✅ %d restaurants créés\n", len(ids))
	return ids, nil
}

func seedCoupons(count int) ([]int64, error) {
	fmt.Printf("   🎁 Génération de %d coupons...\n", count)

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		var id int64
		err := DB.QueryRow(`
			INSERT INTO coupons (code, discount_percent)
			VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET discount_percent = EXCLUDED.discount_percent
			RETURNING id
		`, fmt.Sprintf("FOOD%d", i+1), 5+rand.Intn(26)).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	fmt.Printf("   ✅ %d coupons créés\n", len(ids))
	return ids, nil
}

func seedOrders(days int, userIDs, restaurantIDs, couponIDs []int64) error {
	totalOrders := 0
	totalItems := 0
	startTime := time.Now()

	for day := 0; day < days; day++ {
		dayStart := time.Now().UTC().AddDate(0, 0, -day-1)

		// 10 à 60 commandes par jour
		numOrders := 10 + rand.Intn(51)
		for i := 0; i < numOrders; i++ {
			createdAt := dayStart.Add(time.Duration(rand.Int63n(int64(24 * time.Hour))))
			status := orderStatuses[rand.Intn(len(orderStatuses))]

			var couponID *int64
			if rand.Float32() < 0.2 && len(couponIDs) > 0 {
				c := couponIDs[rand.Intn(len(couponIDs))]
				couponID = &c
			}

			var deliveredAt *time.Time
			if status == "DELIVERED" || status == "COMPLETED" {
				d := createdAt.Add(time.Duration(15+rand.Intn(60)) * time.Minute)
				deliveredAt = &d
			}

			var orderID int64
			err := DB.QueryRow(`
				INSERT INTO orders (customer_id, restaurant_id, coupon_id, status, created_at, delivered_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
			`, userIDs[rand.Intn(len(userIDs))],
				restaurantIDs[rand.Intn(len(restaurantIDs))],
				couponID, status, createdAt, deliveredAt,
			).Scan(&orderID)
			if err != nil {
				return err
			}

			// 1 à 5 plats par commande
			numItems := 1 + rand.Intn(5)
			total := decimal.Zero
			for j := 0; j < numItems; j++ {
				quantity := 1 + rand.Intn(3)
				unitPrice := decimal.NewFromInt(int64(15000 + rand.Intn(120000)))
				total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))

				_, err = DB.Exec(`
					INSERT INTO order_items (order_id, name, quantity, unit_price)
					VALUES ($1, $2, $3, $4)
				`, orderID, dishes[rand.Intn(len(dishes))], quantity, unitPrice.String())
				if err != nil {
					return err
				}
				totalItems++
			}

			if _, err = DB.Exec("UPDATE orders SET total_amount = $1 WHERE id = $2", total.String(), orderID); err != nil {
				return err
			}

			if status != "PENDING" && status != "CANCELLED" {
				_, err = DB.Exec(`
					INSERT INTO payment_transactions (order_id, amount, payment_method, status, created_at)
					VALUES ($1, $2, $3, $4, $5)
				`, orderID, total.String(), paymentMethods[rand.Intn(len(paymentMethods))], "SUCCESS",
					createdAt.Add(time.Duration(rand.Intn(120))*time.Second))
				if err != nil {
					return err
				}
			}

			totalOrders++
		}

		if (day+1)%30 == 0 {
			fmt.Printf("   ... %d jours traités (%d commandes, %d lignes)\n", day+1, totalOrders, totalItems)
		}
	}

	fmt.Printf("   ✅ %d commandes créées avec %d lignes en %v\n", totalOrders, totalItems, time.Since(startTime))
	return nil
}
