package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Oversell checker: seeds one product with limited stock, fires concurrent
// checkouts at a running server, and verifies that exactly `initialStock`
// orders succeed and the rest fail with a stock conflict.

const (
	productID     = "stress-product"
	sellerID      = "stress-seller"
	unitPrice     = "10.00"
	initialStock  = 20
	totalRequests = 50
)

func main() {
	ctx := context.Background()

	baseURL := getenv("BASE_URL", "http://localhost:8080")
	mysqlDSN := getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/shoply?parseTime=true")

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()

	// Reset the product under test.
	if _, err := db.ExecContext(ctx, `DELETE FROM order_items WHERE product_id = ?`, productID); err != nil {
		log.Fatalf("failed to clean order items: %v", err)
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO products (id, title, price, quantity, seller_id)
		VALUES (?, 'Stress Test Product', ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = ?, price = ?`,
		productID, unitPrice, initialStock, sellerID, initialStock, unitPrice); err != nil {
		log.Fatalf("failed to seed product: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"items":           []map[string]any{{"product": productID, "quantity": 1}},
		"shippingAddress": map[string]string{"address": "1 Load Lane", "city": "Benchville", "phone": "5550000"},
		"totalAmount":     10.00,
		"paymentMethod":   "Cash on Delivery",
	})

	var successCount, conflictCount, otherCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				baseURL+"/api/orders/create", bytes.NewReader(body))
			if err != nil {
				otherCount.Add(1)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-Id", fmt.Sprintf("stress-user-%d", userID))
			req.Header.Set("X-User-Role", "buyer")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				otherCount.Add(1)
				return
			}
			resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	conflict := conflictCount.Load()
	other := otherCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Created (201):    %d\n", success)
	fmt.Printf("Conflicts (409):  %d\n", conflict)
	fmt.Printf("Other:            %d\n", other)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == int32(initialStock) && conflict == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d orders succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d conflict, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, conflict)
	}

	var finalStock int
	if err := db.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = ?`, productID).Scan(&finalStock); err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", finalStock)

	if finalStock == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", finalStock)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
