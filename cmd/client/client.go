package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// smoke-test CLI over the HTTP intake/query surface, replacing the
// teacher's raw TCP binary protocol client now that §6 mandates JSON/HTTP.
func main() {
	serverAddr := flag.String("server", "http://127.0.0.1:8080", "Base URL of the matching engine's HTTP API")
	owner := flag.String("owner", "", "Owner id to attach to placed orders (optional)")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel', 'modify', 'book', 'log']")

	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	price := flag.String("price", "100.00", "Limit price (decimal string, <=2 fractional digits)")
	qtyStr := flag.String("qty", "10", "Quantity or comma-separated list (e.g. 10,20,50)")

	orderID := flag.String("id", "", "Order id, required for 'cancel'/'modify'")
	depth := flag.Int("depth", 5, "Price-level depth for 'book'")

	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	switch strings.ToLower(*action) {
	case "place":
		for _, qty := range parseQuantities(*qtyStr) {
			body := map[string]any{
				"side":     strings.ToLower(*sideStr),
				"quantity": qty,
				"price":    *price,
			}
			if *owner != "" {
				body["owner_id"] = *owner
			}
			resp, err := postJSON(client, *serverAddr+"/orders/", body)
			if err != nil {
				log.Printf("failed to place order (qty %d): %v", qty, err)
				continue
			}
			fmt.Printf("-> placed %s %v @ %s: %s\n", strings.ToUpper(*sideStr), qty, *price, resp)
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if *orderID == "" {
			log.Fatal("error: -id is required for cancel")
		}
		resp, err := doJSON(client, http.MethodDelete, *serverAddr+"/orders/"+*orderID+"/", nil)
		if err != nil {
			log.Fatalf("failed to cancel order: %v", err)
		}
		fmt.Printf("-> cancelled: %s\n", resp)

	case "modify":
		if *orderID == "" {
			log.Fatal("error: -id is required for modify")
		}
		resp, err := doJSON(client, http.MethodPut, *serverAddr+"/orders/"+*orderID+"/", map[string]any{"price": *price})
		if err != nil {
			log.Fatalf("failed to modify order: %v", err)
		}
		fmt.Printf("-> modified: %s\n", resp)

	case "book":
		resp, err := doJSON(client, http.MethodGet, *serverAddr+"/orderbook/?depth="+strconv.Itoa(*depth), nil)
		if err != nil {
			log.Fatalf("failed to fetch order book: %v", err)
		}
		fmt.Println(resp)

	case "log":
		resp, err := doJSON(client, http.MethodGet, *serverAddr+"/orders/", nil)
		if err != nil {
			log.Fatalf("failed to fetch orders: %v", err)
		}
		fmt.Println(resp)

	default:
		log.Fatalf("unknown action: %s", *action)
	}
}

// parseQuantities splits a comma-separated string into a slice of uint64.
func parseQuantities(input string) []uint64 {
	parts := strings.Split(input, ",")
	var result []uint64
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseUint(p, 10, 64); err == nil {
			result = append(result, val)
		} else {
			log.Printf("warning: invalid quantity %q, skipping", p)
		}
	}
	return result
}

func postJSON(client *http.Client, url string, body any) (string, error) {
	return doJSON(client, http.MethodPost, url, body)
}

func doJSON(client *http.Client, method, url string, body any) (string, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("server returned %s: %s", resp.Status, out)
	}
	return string(out), nil
}
