package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DefaultNumberTemplate = "INV-{YYYY}{MM}{DD}-{SEQ6}"

var paddedSeqRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

// InvoiceNumber renders a template into a human-readable invoice number.
// Supported tokens: {YYYY} {YY} {MM} {DD}, {SEQ}, and {SEQn} for a
// zero-padded sequence of width n. The function is deterministic and
// does no I/O; the caller supplies the issue time and the monotonic
// per-organization sequence.
func InvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	replacer := strings.NewReplacer(
		"{YYYY}", issuedAt.Format("2006"),
		"{YY}", issuedAt.Format("06"),
		"{MM}", issuedAt.Format("01"),
		"{DD}", issuedAt.Format("02"),
		"{SEQ}", strconv.FormatInt(seq, 10),
	)
	out := replacer.Replace(template)

	out = paddedSeqRe.ReplaceAllStringFunc(out, func(token string) string {
		width, err := strconv.Atoi(paddedSeqRe.FindStringSubmatch(token)[1])
		if err != nil || width <= 0 {
			return token
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice number template: %s", out)
	}
	return out, nil
}
