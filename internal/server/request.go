package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/expensedesk/claims-engine/constants"
	"github.com/expensedesk/claims-engine/internal/acquire"
	"github.com/expensedesk/claims-engine/internal/common"
	"github.com/expensedesk/claims-engine/internal/entity"
	"github.com/expensedesk/claims-engine/internal/normalize"
)

// Wire shapes for POST /v1/claims/evaluate. Amounts travel as JSON numbers
// or numeric strings; attachments as base64 payloads.
type evaluateRequest struct {
	ClaimantCode  string           `json:"claimant_code"`
	ClaimType     string           `json:"claim_type"`
	ExpectedTotal *json.Number     `json:"expected_total,omitempty"`
	Vouchers      []voucherPayload `json:"vouchers"`
}

type voucherPayload struct {
	SubType     string              `json:"sub_type"`
	BillAmount  json.Number         `json:"bill_amount"`
	DailyLimit  *json.Number        `json:"daily_limit,omitempty"`
	Attachments []attachmentPayload `json:"attachments"`
}

type attachmentPayload struct {
	Filename           string       `json:"filename,omitempty"`
	Content            string       `json:"content"`
	KnownDate          string       `json:"known_date,omitempty"`
	KnownTotal         *json.Number `json:"known_total,omitempty"`
	KnownInvoiceNumber string       `json:"known_invoice_number,omitempty"`
}

const evaluateSchema = `{
	"type": "object",
	"required": ["claimant_code", "claim_type", "vouchers"],
	"properties": {
		"claimant_code": {"type": "string", "minLength": 1},
		"claim_type": {"type": "string", "minLength": 1},
		"expected_total": {"type": ["number", "string"]},
		"vouchers": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["sub_type", "bill_amount", "attachments"],
				"properties": {
					"sub_type": {"type": "string", "minLength": 1},
					"bill_amount": {"type": ["number", "string"]},
					"daily_limit": {"type": ["number", "string"]},
					"attachments": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["content"],
							"properties": {
								"filename": {"type": "string"},
								"content": {"type": "string", "minLength": 1},
								"known_date": {"type": "string"},
								"known_total": {"type": ["number", "string"]},
								"known_invoice_number": {"type": "string"}
							}
						}
					}
				}
			}
		}
	}
}`

var compiledEvaluateSchema = jsonschema.MustCompileString("evaluate.json", evaluateSchema)

// validateEvaluateBody checks the raw request body against the wire schema
// before any field is interpreted.
func validateEvaluateBody(body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("malformed json: %w", common.ErrInvalidInput)
	}
	if err := compiledEvaluateSchema.Validate(v); err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrInvalidInput)
	}
	return nil
}

// unmarshalStrictNumbers decodes the body keeping numeric literals as
// json.Number so amounts never pass through float64.
func unmarshalStrictNumbers(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", common.ErrInvalidInput)
	}
	return nil
}

func parseAmountField(name string, n json.Number) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s is not a valid amount: %w", name, common.ErrInvalidInput)
	}
	return d, nil
}

// toClaimRequest converts the wire payload into the engine's request shape,
// decoding attachments and canonicalizing sub-types along the way.
func toClaimRequest(in evaluateRequest) (entity.ClaimRequest, error) {
	out := entity.ClaimRequest{
		ClaimantCode: in.ClaimantCode,
		ClaimType:    in.ClaimType,
	}
	if in.ExpectedTotal != nil {
		total, err := parseAmountField("expected_total", *in.ExpectedTotal)
		if err != nil {
			return entity.ClaimRequest{}, err
		}
		out.ExpectedTotal = &total
	}

	for vi, vp := range in.Vouchers {
		subType, ok := constants.CanonicalSubType(vp.SubType)
		if !ok {
			return entity.ClaimRequest{}, fmt.Errorf("voucher %d: unknown sub_type %q: %w",
				vi+1, vp.SubType, common.ErrInvalidInput)
		}
		voucher := entity.Voucher{SubType: subType}

		var err error
		voucher.BillAmount, err = parseAmountField("bill_amount", vp.BillAmount)
		if err != nil {
			return entity.ClaimRequest{}, fmt.Errorf("voucher %d: %w", vi+1, err)
		}
		if vp.DailyLimit != nil {
			limit, err := parseAmountField("daily_limit", *vp.DailyLimit)
			if err != nil {
				return entity.ClaimRequest{}, fmt.Errorf("voucher %d: %w", vi+1, err)
			}
			voucher.DailyLimit = &limit
		}

		for ai, ap := range vp.Attachments {
			data, _, err := acquire.DecodeAttachment(ap.Content)
			if err != nil {
				return entity.ClaimRequest{}, fmt.Errorf("voucher %d attachment %d: %w", vi+1, ai+1, err)
			}
			att := entity.Attachment{Bytes: data, Filename: ap.Filename}
			att.Known.InvoiceNumber = ap.KnownInvoiceNumber
			if ap.KnownDate != "" {
				date, ok := normalize.ParseDate(ap.KnownDate)
				if !ok {
					return entity.ClaimRequest{}, fmt.Errorf("voucher %d attachment %d: unparseable known_date %q: %w",
						vi+1, ai+1, ap.KnownDate, common.ErrInvalidInput)
				}
				att.Known.Date = &date
			}
			if ap.KnownTotal != nil {
				total, err := parseAmountField("known_total", *ap.KnownTotal)
				if err != nil {
					return entity.ClaimRequest{}, fmt.Errorf("voucher %d attachment %d: %w", vi+1, ai+1, err)
				}
				att.Known.Total = &total
			}
			voucher.Attachments = append(voucher.Attachments, att)
		}
		out.Vouchers = append(out.Vouchers, voucher)
	}
	return out, nil
}
