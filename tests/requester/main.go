package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

const baseURL = "http://localhost:8080/orders"

func main() {
	for {
		var wg sync.WaitGroup
		for range rand.Intn(10) {
			wg.Go(createOrder)
		}
		wg.Wait()
		time.Sleep(20 * time.Millisecond)
	}
}

func createOrder() {
	body := map[string]any{
		"user_id":    int64(1 + rand.Intn(100)),
		"product_id": int64(1 + rand.Intn(20)),
		"quantity":   1 + rand.Intn(5),
	}

	// Иногда шлем заведомо плохое количество, чтобы погонять валидацию
	if rand.Intn(5) == 0 {
		body["quantity"] = -1
	}

	payload, _ := json.Marshal(body)

	resp, err := http.Post(baseURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Println("Ошибка запроса:", err)
		return
	}
	fmt.Println("POST", baseURL, "->", resp.Status)
	resp.Body.Close()
}
