package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"quantum_clicker/internal/domain"
)

const (
	initDataMaxAge  = time.Hour
	initDataMaxSkew = 5 * time.Minute
)

// ValidateTelegramInitData verifies the WebApp init_data HMAC against the
// bot token and checks auth_date freshness to stop replays. Malformed
// input maps to InvalidInput, a bad signature or stale stamp to Forbidden.
func ValidateTelegramInitData(initData, botToken string) (url.Values, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, domain.ErrInvalidInput("malformed init data")
	}

	provided := values.Get("hash")
	if provided == "" {
		return nil, domain.ErrInvalidInput("init data hash missing")
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for k, v := range values {
		pairs = append(pairs, k+"="+strings.Join(v, ""))
	}
	sort.Strings(pairs)

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))

	providedRaw, err := hex.DecodeString(provided)
	if err != nil {
		return nil, domain.ErrInvalidInput("init data hash is not hex")
	}
	if !hmac.Equal(mac.Sum(nil), providedRaw) {
		return nil, domain.ErrForbidden("init data signature mismatch")
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidInput("auth_date missing or malformed")
	}
	age := time.Now().Unix() - authDate
	if age > int64(initDataMaxAge.Seconds()) || -age > int64(initDataMaxSkew.Seconds()) {
		return nil, domain.ErrForbidden("init data is stale")
	}

	return values, nil
}
