package ton

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

// Validator checks withdrawal destinations. Both user-friendly (base64)
// and raw ("0:hex" / "-1:hex") forms are accepted.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

func (v *Validator) Validate(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	if strings.Contains(addr, ":") {
		_, err := ParseRawAddress(addr)
		return err
	}
	if _, err := address.ParseAddr(addr); err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	return nil
}

// ParseRawAddress parses the raw "0:hex" / "-1:hex" form.
func ParseRawAddress(rawAddr string) (*address.Address, error) {
	var workchain int32
	var hashHex string

	if strings.HasPrefix(rawAddr, "0:") {
		workchain = 0
		hashHex = rawAddr[2:]
	} else if strings.HasPrefix(rawAddr, "-1:") {
		workchain = -1
		hashHex = rawAddr[3:]
	} else {
		return nil, fmt.Errorf("unknown raw address format: %s", rawAddr)
	}

	hashBytes, err := hex.DecodeString(hashHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex in address: %w", err)
	}

	if len(hashBytes) != 32 {
		return nil, fmt.Errorf("invalid hash length: expected 32 bytes, got %d", len(hashBytes))
	}

	return address.NewAddress(0, byte(workchain), hashBytes), nil
}
