package workflow_test

import (
	"testing"

	"npj/models"
	"npj/workflow"
)

func TestDisplayStatus(t *testing.T) {
	cases := []struct {
		name     string
		ev       models.Event
		conf     int
		decl     int
		label    string
		severity string
		detail   string
	}{
		{"requested", models.Event{Status: models.StatusRequested}, 0, 0, "Em análise", "warning", ""},
		{"approved no responses", models.Event{Status: models.StatusApproved}, 0, 0, "Marcado", "success", ""},
		{"approved with responses", models.Event{Status: models.StatusApproved}, 2, 1, "Marcado", "success", "2 confirmaram, 1 recusaram"},
		{"rejected", models.Event{Status: models.StatusRejected, RejectionReason: "sem sala"}, 0, 0, "Recusado", "danger", "sem sala"},
		{"canceled", models.Event{Status: models.StatusCanceled, CancelReason: "greve"}, 0, 0, "Cancelado", "danger", "greve"},
		{"completed", models.Event{Status: models.StatusCompleted}, 0, 0, "Finalizado", "neutral", ""},
		{"unknown status tolerated", models.Event{Status: "enviando_convites"}, 5, 5, "Desconhecido", "neutral", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := workflow.DisplayStatus(tc.ev, tc.conf, tc.decl)
			if d.Label != tc.label || d.Severity != tc.severity || d.Detail != tc.detail {
				t.Fatalf("got %+v, want label=%q severity=%q detail=%q", d, tc.label, tc.severity, tc.detail)
			}
		})
	}
}
