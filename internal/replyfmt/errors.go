package replyfmt

import (
	"fmt"
	"strings"

	"github.com/Charile333/TGBOT/internal/leakradar"
	"github.com/Charile333/TGBOT/internal/outputfmt"
)

// ErrorText turns a failed call into the short explanation shown to the
// requester. LeakRadar statuses get fixed wording that depends on the call.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	apiErr, ok := leakradar.AsError(err)
	if !ok {
		return outputfmt.FormatErrorForDisplay(err)
	}
	op := apiErr.Op
	switch apiErr.Kind {
	case leakradar.KindAuth:
		return "API authentication failed, check the API key"
	case leakradar.KindQuota:
		if isExportOp(op) {
			return "A paid plan is required for exports"
		}
		if strings.HasPrefix(op, "unlock") {
			return "Insufficient permission or credits"
		}
		return "Access denied by the API (plan or quota restriction)"
	case leakradar.KindBadRequest:
		if isExportOp(op) {
			return "Export request rejected, check the parameters"
		}
		return withDetail("Bad request", apiErr.Detail)
	case leakradar.KindNotFound:
		return "Not found or no related data"
	case leakradar.KindValidation:
		if op == "domain summary" {
			return "Domain format validation failed"
		}
		return withDetail("Validation failed", apiErr.Detail)
	case leakradar.KindTransport:
		if apiErr.Timeout {
			return "Request timed out, please try again later"
		}
		var cause error = apiErr
		if apiErr.Err != nil {
			cause = apiErr.Err
		}
		return "API request failed: " + outputfmt.FormatErrorForDisplay(cause)
	case leakradar.KindDecode:
		return "The API returned a malformed response"
	default:
		return withDetail(fmt.Sprintf("API returned error: %d", apiErr.Status), apiErr.Detail)
	}
}

func isExportOp(op string) bool {
	return op == "create export" || op == "list exports"
}

func withDetail(msg, detail string) string {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return msg
	}
	return msg + " - " + outputfmt.SanitizeErrorText(detail)
}

