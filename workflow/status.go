package workflow

import (
	"fmt"

	"npj/models"
)

// StatusDisplay is the human-facing rendering of an event's state.
type StatusDisplay struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail,omitempty"`
}

// DisplayStatus maps a stored status plus participant-response counts to
// a label and severity. Unknown statuses fall back to a neutral
// "unknown" rendering instead of failing.
func DisplayStatus(ev models.Event, confirmed, declined int) StatusDisplay {
	var d StatusDisplay
	switch ev.Status {
	case models.StatusRequested:
		d = StatusDisplay{Label: "Em análise", Severity: "warning"}
	case models.StatusApproved:
		d = StatusDisplay{Label: "Marcado", Severity: "success"}
		if confirmed+declined > 0 {
			d.Detail = fmt.Sprintf("%d confirmaram, %d recusaram", confirmed, declined)
		}
	case models.StatusRejected:
		d = StatusDisplay{Label: "Recusado", Severity: "danger"}
		if ev.RejectionReason != "" {
			d.Detail = ev.RejectionReason
		}
	case models.StatusCanceled:
		d = StatusDisplay{Label: "Cancelado", Severity: "danger"}
		if ev.CancelReason != "" {
			d.Detail = ev.CancelReason
		}
	case models.StatusCompleted:
		d = StatusDisplay{Label: "Finalizado", Severity: "neutral"}
	default:
		d = StatusDisplay{Label: "Desconhecido", Severity: "neutral"}
	}
	return d
}
