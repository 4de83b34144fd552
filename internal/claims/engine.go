// Package claims sequences extraction, validation, and persistence for one
// claim evaluation. An evaluation is a single sequential pipeline: the first
// failing attachment or sheet row decides the disposition and nothing is
// persisted unless every record is accepted.
package claims

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expensedesk/claims-engine/constants"
	"github.com/expensedesk/claims-engine/internal/acquire"
	"github.com/expensedesk/claims-engine/internal/common"
	"github.com/expensedesk/claims-engine/internal/entity"
	"github.com/expensedesk/claims-engine/internal/extract"
	"github.com/expensedesk/claims-engine/internal/normalize"
	"github.com/expensedesk/claims-engine/internal/repository"
	"github.com/expensedesk/claims-engine/internal/validate"
)

// Engine evaluates claim requests against the claim store. It is stateless
// between evaluations and safe for concurrent use; duplicate safety under
// concurrent submission is delegated to the store.
type Engine struct {
	store     repository.ClaimStore
	validator *validate.Validator
	extractor *extract.Extractor
	texts     acquire.TextExtractor
	logger    *slog.Logger
}

func NewEngine(store repository.ClaimStore, texts acquire.TextExtractor, cfg extract.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     store,
		validator: validate.New(store),
		extractor: extract.NewExtractor(cfg, logger),
		texts:     texts,
		logger:    logger,
	}
}

// Fingerprint is the content identity of an attachment, used for the hard
// duplicate check and stored on every record derived from it.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// evaluation carries the accumulating state of one claim pipeline.
type evaluation struct {
	req        entity.ClaimRequest
	pending    []entity.ClaimRecord
	grandTotal decimal.Decimal
	// lastFields keeps the most recent document's extracted fields so the
	// accepted-claim response can echo them (single-document claims are the
	// common case).
	lastFields entity.DocumentFields
}

// Evaluate runs the full pipeline for one claim request. Dispositions are
// results, not errors; the error return is reserved for store and document
// acquisition failures the caller must surface as transport errors.
func (e *Engine) Evaluate(ctx context.Context, req entity.ClaimRequest) (entity.ClaimResult, error) {
	ev := &evaluation{req: req}

	for vi, voucher := range req.Vouchers {
		result, done, err := e.evaluateVoucher(ctx, ev, voucher)
		if err != nil {
			return entity.ClaimResult{}, fmt.Errorf("voucher %d: %w", vi+1, err)
		}
		if done {
			e.logger.Info("claim rejected",
				"claimant", req.ClaimantCode, "status", result.Status, "reason", result.Reason)
			return result, nil
		}
	}

	if req.ExpectedTotal != nil && ev.grandTotal.GreaterThan(*req.ExpectedTotal) {
		expected := *req.ExpectedTotal
		total := ev.grandTotal
		return entity.ClaimResult{
			Status:      constants.StatusClaimTotalMismatch,
			Reason:      fmt.Sprintf("claim total %s exceeds declared total %s", total, expected),
			TotalAmount: &total,
		}, nil
	}

	if err := e.store.Append(ctx, ev.pending); err != nil {
		return entity.ClaimResult{}, common.WrapError(err, "persist records")
	}
	total := ev.grandTotal
	result := entity.ClaimResult{
		Status:        constants.StatusNewClaim,
		InvoiceNumber: ev.lastFields.InvoiceNumber,
		Vendor:        ev.lastFields.Vendor,
		TotalAmount:   &total,
		RecordsSaved:  len(ev.pending),
	}
	if !ev.lastFields.DocumentDate.IsZero() {
		result.InvoiceDate = normalize.FormatDate(ev.lastFields.DocumentDate)
	}
	e.logger.Info("claim accepted",
		"claimant", req.ClaimantCode, "records", len(ev.pending), "total", total)
	return result, nil
}

// evaluateVoucher processes one voucher's attachments. done=true means the
// returned result is the claim's terminal disposition.
func (e *Engine) evaluateVoucher(ctx context.Context, ev *evaluation, voucher entity.Voucher) (entity.ClaimResult, bool, error) {
	voucherTotal := decimal.Zero
	// Mismatches are collected and reported only after the voucher's summed
	// amount has been checked, which ranks above them.
	var firstMismatch *entity.ClaimResult

	for _, att := range voucher.Attachments {
		format := constants.SniffFormat(att.Bytes)
		if bad, result := checkFormat(voucher.SubType, format); bad {
			return result, true, nil
		}

		fingerprint := Fingerprint(att.Bytes)
		hard, err := e.validator.IsHardDuplicate(ctx, fingerprint)
		if err != nil {
			return entity.ClaimResult{}, false, err
		}
		if hard {
			return entity.ClaimResult{
				Status: constants.StatusDuplicateClaim,
				Reason: "identical attachment already claimed",
			}, true, nil
		}

		if format == constants.SHEET {
			sheetTotal, result, done, err := e.evaluateSheet(ctx, ev, voucher, att.Bytes, fingerprint)
			if err != nil || done {
				return result, done, err
			}
			voucherTotal = voucherTotal.Add(sheetTotal)
			continue
		}

		docTotal, mismatch, result, done, err := e.evaluateDocument(ctx, ev, voucher, att, format, fingerprint)
		if err != nil || done {
			return result, done, err
		}
		if mismatch != nil && firstMismatch == nil {
			firstMismatch = mismatch
		}
		voucherTotal = voucherTotal.Add(docTotal)
	}

	if voucherTotal.GreaterThan(voucher.BillAmount) {
		bill := voucher.BillAmount
		total := voucherTotal
		return entity.ClaimResult{
			Status:        constants.StatusVoucherAmountExceeded,
			Reason:        fmt.Sprintf("voucher total %s exceeds bill amount %s", total, bill),
			VoucherAmount: &bill,
			SheetTotal:    &total,
		}, true, nil
	}
	if firstMismatch != nil {
		return *firstMismatch, true, nil
	}

	ev.grandTotal = ev.grandTotal.Add(voucherTotal)
	return entity.ClaimResult{}, false, nil
}

// checkFormat enforces the sub-type contract: daily-expense vouchers carry
// tabular sheets, individual-expense vouchers carry documents.
func checkFormat(subType constants.SubType, format constants.AttachmentFormat) (bool, entity.ClaimResult) {
	wantSheet := subType == constants.DailyExpense
	if wantSheet != (format == constants.SHEET) {
		return true, entity.ClaimResult{
			Status: constants.StatusInvalidAttachment,
			Reason: fmt.Sprintf("%s voucher cannot accept a %s attachment", subType, format),
		}
	}
	if !wantSheet && !format.IsDocumentFormat() {
		return true, entity.ClaimResult{
			Status: constants.StatusInvalidAttachment,
			Reason: fmt.Sprintf("unsupported attachment format %s", format),
		}
	}
	return false, entity.ClaimResult{}
}

// evaluateSheet validates a tabular sheet row by row. Every row is an
// independent candidate record; the first violating row decides the claim.
func (e *Engine) evaluateSheet(ctx context.Context, ev *evaluation, voucher entity.Voucher, data []byte, fingerprint string) (decimal.Decimal, entity.ClaimResult, bool, error) {
	rows, err := acquire.ReadSheetRows(data)
	if err != nil {
		return decimal.Zero, entity.ClaimResult{}, false, err
	}

	sheetTotal := decimal.Zero
	for _, row := range rows {
		amount, ok := normalize.ParseAmount(row.Amount)
		if !ok {
			amount = decimal.Zero
		}
		rowDate, _ := normalize.ParseDate(row.Date)
		claimant := row.Employee
		if claimant == "" {
			claimant = ev.req.ClaimantCode
		}
		rowInvoice := extract.NormalizeID(row.InvoiceNo, nil)

		soft, err := e.validator.IsSoftDuplicate(ctx, claimant, rowInvoice, ev.req.ClaimType, rowDate, amount)
		if err != nil {
			return decimal.Zero, entity.ClaimResult{}, false, err
		}
		if soft {
			return decimal.Zero, entity.ClaimResult{
				Status:        constants.StatusDuplicateClaim,
				Reason:        fmt.Sprintf("row %d: invoice %s already claimed", row.Index, rowInvoice),
				InvoiceNumber: rowInvoice,
				TotalAmount:   &amount,
			}, true, nil
		}
		if validate.ExceedsDailyLimit(amount, voucher.DailyLimit) {
			limit := *voucher.DailyLimit
			return decimal.Zero, entity.ClaimResult{
				Status:        constants.StatusDailyLimitExceeded,
				Reason:        fmt.Sprintf("row %d: amount %s exceeds daily limit %s", row.Index, amount, limit),
				InvoiceNumber: rowInvoice,
				TotalAmount:   &amount,
				DailyLimit:    &limit,
			}, true, nil
		}

		sheetTotal = sheetTotal.Add(amount)
		ev.pending = append(ev.pending, entity.ClaimRecord{
			ClaimantCode:  claimant,
			InvoiceNumber: rowInvoice,
			DocumentDate:  rowDate,
			TotalAmount:   amount,
			ClaimType:     ev.req.ClaimType,
			Fingerprint:   fingerprint,
			CreatedAt:     time.Now().UTC(),
		})
	}
	return sheetTotal, entity.ClaimResult{}, false, nil
}

// evaluateDocument extracts and validates one single-document attachment. A
// known-value mismatch is returned separately so the caller can rank it after
// the voucher amount check.
func (e *Engine) evaluateDocument(ctx context.Context, ev *evaluation, voucher entity.Voucher, att entity.Attachment, format constants.AttachmentFormat, fingerprint string) (decimal.Decimal, *entity.ClaimResult, entity.ClaimResult, bool, error) {
	doc, err := e.texts.ExtractText(ctx, att.Bytes, format)
	if err != nil {
		return decimal.Zero, nil, entity.ClaimResult{}, false, fmt.Errorf("acquire text: %w", err)
	}

	fields := e.extractor.Fields(doc)
	applyKnownFallbacks(&fields, att.Known, doc)

	amount := fields.Total
	date := fields.DocumentDate
	soft, err := e.validator.IsSoftDuplicate(ctx, ev.req.ClaimantCode, fields.InvoiceNumber, ev.req.ClaimType, date, amount)
	if err != nil {
		return decimal.Zero, nil, entity.ClaimResult{}, false, err
	}
	if soft {
		return decimal.Zero, nil, entity.ClaimResult{
			Status:        constants.StatusDuplicateClaim,
			Reason:        fmt.Sprintf("invoice %s already claimed", fields.InvoiceNumber),
			InvoiceNumber: fields.InvoiceNumber,
			Vendor:        fields.Vendor,
			TotalAmount:   &amount,
		}, true, nil
	}

	var mismatch *entity.ClaimResult
	if mismatched := validate.CompareKnown(att.Known, fields); len(mismatched) > 0 {
		total := fields.Total
		mismatch = &entity.ClaimResult{
			Status:           constants.StatusMismatchedValue,
			Reason:           fmt.Sprintf("extracted values disagree with declared values: %s", strings.Join(mismatched, ", ")),
			InvoiceNumber:    fields.InvoiceNumber,
			Vendor:           fields.Vendor,
			TotalAmount:      &total,
			MismatchedFields: mismatched,
		}
		if !fields.DocumentDate.IsZero() {
			mismatch.InvoiceDate = normalize.FormatDate(fields.DocumentDate)
		}
	}

	ev.lastFields = fields
	ev.pending = append(ev.pending, entity.ClaimRecord{
		ClaimantCode:  ev.req.ClaimantCode,
		InvoiceNumber: fields.InvoiceNumber,
		DocumentDate:  date,
		TotalAmount:   amount,
		ClaimType:     ev.req.ClaimType,
		Fingerprint:   fingerprint,
		Vendor:        fields.Vendor,
		ExtractedText: doc.Join(),
		CreatedAt:     time.Now().UTC(),
	})
	return amount, mismatch, entity.ClaimResult{}, false, nil
}

// applyKnownFallbacks fills fields extraction could not find from the
// caller-declared known values. The declared invoice number is adopted only
// when one of the document's tokens normalizes to exactly it, so a typo on
// the claim form cannot fabricate an identifier and a short declared number
// cannot match inside an unrelated longer code.
func applyKnownFallbacks(fields *entity.DocumentFields, known entity.KnownFields, doc entity.ExtractedText) {
	if fields.InvoiceNumber == "" && known.InvoiceNumber != "" {
		declared := extract.NormalizeID(known.InvoiceNumber, nil)
		if declared != "" {
			for _, token := range strings.Fields(doc.Join()) {
				if extract.NormalizeID(token, nil) == declared {
					fields.InvoiceNumber = declared
					break
				}
			}
		}
	}
	if fields.DocumentDate.IsZero() && known.Date != nil {
		fields.DocumentDate = *known.Date
	}
	if !fields.TotalFound && known.Total != nil {
		fields.Total = *known.Total
		fields.TotalFound = true
	}
}
