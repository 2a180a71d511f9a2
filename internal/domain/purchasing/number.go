package purchasing

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
)

// PO numbers are per-business, zero-padded to four digits with natural
// growth beyond PO-9999.
const poNumberPrefix = "PO-"

var poNumberPattern = regexp.MustCompile(`^PO-(\d+)$`)

// FirstPONumber is the number assigned to a business's first order
func FirstPONumber() string {
	return poNumberPrefix + "0001"
}

// NextPONumber parses the numeric suffix of the last issued number and
// returns its successor. A malformed last number is surfaced as an error
// rather than silently restarting the sequence, since restarting would
// collide with numbers already issued.
func NextPONumber(last string) (string, error) {
	if last == "" {
		return FirstPONumber(), nil
	}
	m := poNumberPattern.FindStringSubmatch(last)
	if m == nil {
		return "", shared.NewDomainError("MALFORMED_PO_NUMBER", fmt.Sprintf("Last PO number %q does not match the PO-NNNN format", last))
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", shared.NewDomainError("MALFORMED_PO_NUMBER", fmt.Sprintf("Last PO number %q has a non-numeric suffix", last))
	}
	return fmt.Sprintf("%s%04d", poNumberPrefix, n+1), nil
}

// IsValidPONumber reports whether a string matches the issued format
func IsValidPONumber(number string) bool {
	return poNumberPattern.MatchString(number)
}
