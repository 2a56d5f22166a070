package tracking

import "github.com/Ralet11/cocina-orders/internal/domain"

// Progress is what the tracking screen renders: a display string and a
// 0-based index into the ordered step sequence.
type Progress struct {
	DisplayStatus      string `json:"display_status"`
	CompletedStepIndex int    `json:"completed_step_index"`
	TotalSteps         int    `json:"total_steps"`
}

// steps is the happy-path display sequence; index positions match the
// canonical status order.
var steps = []struct {
	status  domain.Status
	display string
}{
	{domain.StatusPending, "Order received"},
	{domain.StatusAccepted, "Being prepared"},
	{domain.StatusSending, "On the way"},
	{domain.StatusFinished, "Delivered"},
}

// ForOrder derives the progress display from an order. It is a pure
// function: a nil order or an unrecognized status maps to the first step
// rather than failing, so the screen always has something to render.
func ForOrder(o *domain.Order) Progress {
	p := Progress{
		DisplayStatus:      steps[0].display,
		CompletedStepIndex: 0,
		TotalSteps:         len(steps),
	}
	if o == nil {
		return p
	}

	if o.Status == domain.StatusRejected {
		p.DisplayStatus = "Rejected"
		return p
	}

	for i, s := range steps {
		if s.status == o.Status {
			p.DisplayStatus = s.display
			p.CompletedStepIndex = i
			break
		}
	}
	return p
}
