package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/expensedesk/claims-engine/internal/entity"
)

// Extractor runs the field extraction chains over one document's text.
// It is stateless between calls and safe for concurrent use.
type Extractor struct {
	cfg    Config
	logger *slog.Logger

	// Clock supplies the reference time for date plausibility; overridable
	// in tests.
	Clock func() time.Time
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, logger: logger, Clock: time.Now}
}

// Fields extracts the full candidate field set for one document.
func (e *Extractor) Fields(doc entity.ExtractedText) entity.DocumentFields {
	var out entity.DocumentFields

	if inv := e.InvoiceNumber(doc); inv.Found {
		out.InvoiceNumber = inv.Value
	}
	if dt := e.DocumentDate(doc); dt.Found {
		out.DocumentDate = dt.Value
	}
	if v := e.Vendor(doc); v.Found {
		out.Vendor = v.Value
	}
	if total := e.TotalAmount(doc); total.Found {
		out.Total = total.Value
		out.TotalFound = true
	}

	e.logger.Debug("fields extracted",
		"invoice_number", out.InvoiceNumber,
		"vendor", out.Vendor,
		"total_found", out.TotalFound,
	)
	return out
}

var (
	reTimeOnly   = regexp.MustCompile(`^\d{1,2}(:\d{2})?$`)
	reShortCode  = regexp.MustCompile(`^[0-9A-Z]{1,2}$`)
	rePercentish = regexp.MustCompile(`^\d{1,3}([.,]\d{1,2})?%?$`)
	reDateShape  = regexp.MustCompile(`\d{2,4}[-/.]\d{2,4}[-/.]\d{2,4}`)
)

// isNoise marks lines that can never carry a vendor name: short fragments,
// bare numbers, percentages, boilerplate tokens.
func (e *Extractor) isNoise(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 {
		return true
	}
	if reTimeOnly.MatchString(trimmed) || reShortCode.MatchString(trimmed) || rePercentish.MatchString(trimmed) {
		return true
	}
	low := strings.ToLower(trimmed)
	for _, tok := range e.cfg.NoiseTokens {
		if strings.Contains(low, tok) {
			return true
		}
	}
	if trimmed == strings.ToUpper(trimmed) && len(trimmed) < 5 {
		return true
	}
	return false
}

func (e *Extractor) isAddressLine(line string) bool {
	low := strings.ToLower(line)
	for _, w := range e.cfg.AddressWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

func containsAny(low string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}

func digitDensity(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}
