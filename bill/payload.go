package bill

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/models"

	"github.com/shopspring/decimal"
)

const (
	// PayloadVersion is bumped whenever a key changes meaning.
	PayloadVersion = 1
	ViewerPath     = "bill-viewer.html"
	FragmentPrefix = "#BILL:"
)

var (
	ErrMalformedPayload          = errors.New("malformed bill payload")
	ErrUnsupportedPayloadVersion = errors.New("unsupported bill payload version")
)

// Payload is the compact scan record. Keys are abbreviated to keep the code small.
type Payload struct {
	V   int           `json:"v"`
	Inv string        `json:"inv"`
	St  string        `json:"st"`
	Dt  string        `json:"dt"`
	Tot float64       `json:"tot"`
	Itm []PayloadItem `json:"itm"`
	Cst string        `json:"cst,omitempty"`
	Pm  string        `json:"pm"`
}

type PayloadItem struct {
	N string  `json:"n"`
	Q int     `json:"q"`
	P float64 `json:"p"`
}

// NewPayload drops fields the viewer does not show, such as per-line discounts.
func NewPayload(b models.BillData) Payload {
	p := Payload{
		V:   PayloadVersion,
		Inv: b.InvoiceNumber,
		St:  b.Store.Name,
		Dt:  b.Date,
		Tot: b.Total.InexactFloat64(),
		Itm: make([]PayloadItem, 0, len(b.Items)),
		Pm:  string(b.PaymentMethod),
	}
	for _, it := range b.Items {
		p.Itm = append(p.Itm, PayloadItem{N: it.Name, Q: it.Quantity, P: it.UnitPrice.InexactFloat64()})
	}
	if b.Customer != nil {
		p.Cst = b.Customer.Name
	}
	return p
}

// Total returns Tot as a decimal at minor-unit precision.
func (p Payload) Total() decimal.Decimal {
	return models.Money(p.Tot)
}

// EncodePayload serializes the bill's payload and base64-encodes its UTF-8 bytes.
func EncodePayload(b models.BillData) (string, error) {
	raw, err := json.Marshal(NewPayload(b))
	if err != nil {
		return "", fmt.Errorf("marshal bill payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ScanURI composes <origin>/bill-viewer.html#BILL:<payload>.
func ScanURI(origin string, b models.BillData) (string, error) {
	enc, err := EncodePayload(b)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(origin, "/") + "/" + ViewerPath + FragmentPrefix + enc, nil
}

// DecodePayload accepts a full scan URI, a "BILL:<payload>" fragment, or the bare
// encoded payload.
func DecodePayload(s string) (Payload, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "BILL:"); i >= 0 {
		s = s[i+len("BILL:"):]
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.V != PayloadVersion {
		return Payload{}, fmt.Errorf("%w: %d", ErrUnsupportedPayloadVersion, p.V)
	}
	return p, nil
}
