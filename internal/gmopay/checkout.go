package gmopay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrMissingConfig = errors.New("missing required gmopay configuration")

// ShopConfig holds the merchant credentials for LinkType Plus.
type ShopConfig struct {
	ShopID   string
	ShopPass string
	ConfigID string
	// LinkURL is the gateway base URL, e.g. https://stg.link.mul-pay.jp.
	LinkURL string
}

func (c ShopConfig) validate() error {
	switch {
	case c.ShopID == "":
		return fmt.Errorf("%w: shop id", ErrMissingConfig)
	case c.ShopPass == "":
		return fmt.Errorf("%w: shop pass", ErrMissingConfig)
	case c.ConfigID == "":
		return fmt.Errorf("%w: config id", ErrMissingConfig)
	case c.LinkURL == "":
		return fmt.Errorf("%w: link url", ErrMissingConfig)
	}
	return nil
}

// checkoutParams is the gateway's transaction JSON. Key names and order are
// part of the wire contract and must be reproduced verbatim.
type checkoutParams struct {
	ConfigID    string              `json:"configid"`
	Transaction checkoutTransaction `json:"transaction"`
}

type checkoutTransaction struct {
	OrderID  string `json:"OrderID"`
	Amount   string `json:"Amount"`
	Overview string `json:"Overview"`
}

// BuildCheckoutURL produces the hash-type checkout URL:
//
//	{LinkURL}/v1/plus/{ShopID}/checkout/{base64(json)}.{sha256hex(base64(json)+ShopPass)}
//
// The result is deterministic for identical inputs. A partially configured
// shop fails fast rather than emitting a syntactically valid but
// cryptographically wrong URL.
func BuildCheckoutURL(cfg ShopConfig, orderID string, amount int64, overview string) (string, error) {
	if err := cfg.validate(); err != nil {
		return "", err
	}
	if orderID == "" {
		return "", fmt.Errorf("%w: order id is empty", ErrMissingConfig)
	}

	params := checkoutParams{
		ConfigID: cfg.ConfigID,
		Transaction: checkoutTransaction{
			OrderID:  orderID,
			Amount:   strconv.FormatInt(amount, 10),
			Overview: overview,
		},
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal checkout params: %w", err)
	}

	alpha := EncodeBase64(raw)
	gamma := SHA256Hex([]byte(alpha + cfg.ShopPass))
	epsilon := alpha + "." + gamma

	return fmt.Sprintf("%s/v1/plus/%s/checkout/%s", cfg.LinkURL, cfg.ShopID, epsilon), nil
}
