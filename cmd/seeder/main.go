// Command seeder populates a tenant's menu over the HTTP API. It
// registers (or reuses) a manager account, logs in, and posts the
// static product list.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

type seedItem struct {
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	Category           string   `json:"category"`
	Price              float64  `json:"price"`
	PreparationMinutes int      `json:"preparationMinutes,omitempty"`
	Tags               []string `json:"tags,omitempty"`
}

var menu = []seedItem{
	{Name: "Broasted Chicken - Quarter", Description: "Quarter broasted chicken with one side", Category: "chicken", Price: 18.90, PreparationMinutes: 20, Tags: []string{"classic"}},
	{Name: "Broasted Chicken - Half", Description: "Half broasted chicken with two sides", Category: "chicken", Price: 32.90, PreparationMinutes: 25, Tags: []string{"classic"}},
	{Name: "Broasted Chicken - Whole", Description: "Whole broasted chicken with four sides", Category: "chicken", Price: 59.90, PreparationMinutes: 30, Tags: []string{"classic", "family"}},
	{Name: "Crispy Wings x8", Description: "Eight wings in house batter", Category: "chicken", Price: 24.90, PreparationMinutes: 18},
	{Name: "French Fries", Description: "Hand-cut fries", Category: "sides", Price: 8.90, PreparationMinutes: 8},
	{Name: "Salchipapas", Description: "Fries with sliced sausage", Category: "sides", Price: 12.90, PreparationMinutes: 10},
	{Name: "Coleslaw", Category: "sides", Price: 6.90, PreparationMinutes: 5},
	{Name: "Inca Kola 500ml", Category: "drinks", Price: 5.50},
	{Name: "Chicha Morada 1L", Description: "House-made purple corn drink", Category: "drinks", Price: 9.90},
	{Name: "Picarones x6", Description: "Squash and sweet potato doughnuts with honey", Category: "desserts", Price: 11.90, PreparationMinutes: 12},
	{Name: "Family Combo", Description: "Whole chicken, two large fries, salad, 1.5L drink", Category: "combos", Price: 79.90, PreparationMinutes: 30, Tags: []string{"family", "best-seller"}},
	{Name: "Duo Combo", Description: "Half chicken, fries, two drinks", Category: "combos", Price: 42.90, PreparationMinutes: 25, Tags: []string{"best-seller"}},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	baseURL := envOrDefault("API_URL", "http://localhost:8080")
	tenantID := envOrDefault("TENANT_ID", "demo")
	email := envOrDefault("SEED_EMAIL", "manager@broasteria.dev")
	password := envOrDefault("SEED_PASSWORD", "seed-me-first")

	client := &http.Client{Timeout: 10 * time.Second}

	token, err := authenticate(client, baseURL, tenantID, email, password)
	if err != nil {
		logger.Error("failed to authenticate", slog.String("error", err.Error()))
		os.Exit(1)
	}

	seeded := 0
	for _, item := range menu {
		if err := postItem(client, baseURL, tenantID, token, item); err != nil {
			logger.Warn("failed to seed item", slog.String("name", item.Name), slog.String("error", err.Error()))
			continue
		}
		logger.Info("seeded menu item", slog.String("name", item.Name), slog.String("category", item.Category))
		seeded++
	}
	logger.Info("seeding finished", slog.Int("seeded", seeded), slog.Int("total", len(menu)))
}

// authenticate registers the manager account (ignoring an
// already-registered conflict) and logs in for a token.
func authenticate(client *http.Client, baseURL, tenantID, email, password string) (string, error) {
	register := map[string]any{
		"tenantId": tenantID,
		"email":    email,
		"name":     "Menu Seeder",
		"role":     "manager",
		"password": password,
	}
	status, _, err := postJSON(client, baseURL+"/api/v1/auth/register", "", register)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated && status != http.StatusConflict {
		return "", fmt.Errorf("register returned status %d", status)
	}

	login := map[string]any{
		"tenantId": tenantID,
		"email":    email,
		"password": password,
	}
	status, body, err := postJSON(client, baseURL+"/api/v1/auth/login", "", login)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("login returned status %d", status)
	}
	var parsed struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.Data.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return parsed.Data.Token, nil
}

func postItem(client *http.Client, baseURL, tenantID, token string, item seedItem) error {
	url := fmt.Sprintf("%s/api/v1/tenants/%s/menu", baseURL, tenantID)
	status, _, err := postJSON(client, url, token, item)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("menu create returned status %d", status)
	}
	return nil
}

func postJSON(client *http.Client, url, token string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, buf.Bytes(), nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
