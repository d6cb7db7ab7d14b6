package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"quantum_clicker/internal/domain"
)

// buildInitData builds a valid init_data string for tests using the same
// algorithm as ValidateTelegramInitData.
func buildInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	var parts []string
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	dataString := strings.Join(parts, "\n")

	secret := sha256.Sum256([]byte(botToken))
	h := hmac.New(sha256.New, secret[:])
	h.Write([]byte(dataString))
	hash := hex.EncodeToString(h.Sum(nil))

	vals := url.Values{}
	for k, v := range fields {
		vals.Add(k, v)
	}
	vals.Add("hash", hash)
	return vals.Encode()
}

func TestValidateTelegramInitData_Valid(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}

	initData := buildInitData(t, botToken, fields)

	vals, err := ValidateTelegramInitData(initData, botToken)
	if err != nil {
		t.Fatalf("expected valid init data, got %v", err)
	}
	if vals.Get("user") == "" {
		t.Fatalf("expected user field in values")
	}
}

func TestValidateTelegramInitData_Tampered(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}
	initData := buildInitData(t, botToken, fields)

	// extra field breaks the hash
	tampered := initData + "&x=1"

	_, err := ValidateTelegramInitData(tampered, botToken)
	if !errors.Is(err, domain.ErrForbidden("")) {
		t.Fatalf("expected Forbidden for tampered init data, got %v", err)
	}
}

func TestValidateTelegramInitData_StaleAuthDate(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Add(-2*time.Hour).Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}
	initData := buildInitData(t, botToken, fields)

	_, err := ValidateTelegramInitData(initData, botToken)
	if !errors.Is(err, domain.ErrForbidden("")) {
		t.Fatalf("expected Forbidden for stale init data, got %v", err)
	}
}

func TestValidateTelegramInitData_WrongToken(t *testing.T) {
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}
	initData := buildInitData(t, "token-a", fields)

	_, err := ValidateTelegramInitData(initData, "token-b")
	if !errors.Is(err, domain.ErrForbidden("")) {
		t.Fatalf("expected Forbidden for another token's signature, got %v", err)
	}
}

func TestValidateTelegramInitData_MissingHash(t *testing.T) {
	_, err := ValidateTelegramInitData("auth_date=123&user=x", "token")
	if !errors.Is(err, domain.ErrInvalidInput("")) {
		t.Fatalf("expected InvalidInput when hash is absent, got %v", err)
	}
}
