package clients

import (
	"github.com/DukeRupert/clientdesk/internal/deleteflow"
	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/DukeRupert/clientdesk/internal/templ/components/pagination"
	"github.com/DukeRupert/clientdesk/internal/templ/shared"
)

// DisplayClient contains client data formatted for display
type DisplayClient struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Company string
}

// NewDisplayClient formats a backend record for the list.
func NewDisplayClient(c domain.Client) DisplayClient {
	return DisplayClient{
		ID:      c.ID.String(),
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Company: c.Company,
	}
}

// ListData contains data for the client list fragment
type ListData struct {
	Clients    []DisplayClient
	Pagination pagination.View
	CSRFToken  string
	Error      string
}

// Empty reports whether there is nothing to list.
func (d ListData) Empty() bool {
	return len(d.Clients) == 0 && d.Error == ""
}

// HomePageData contains data for the clients list page
type HomePageData struct {
	shared.Page
	List ListData
}

// ClientFormValues contains form field values
type ClientFormValues struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

// NewFormValues pre-fills the form from an input record.
func NewFormValues(in domain.ClientInput) ClientFormValues {
	return ClientFormValues{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Company: in.Company,
	}
}

// Input converts submitted values into a client input.
func (v ClientFormValues) Input() domain.ClientInput {
	return domain.ClientInput{
		Name:    v.Name,
		Email:   v.Email,
		Phone:   v.Phone,
		Company: v.Company,
	}
}

// FormData contains data for the create/edit modal
type FormData struct {
	CSRFToken string
	ClientID  string // empty for create
	Form      ClientFormValues
	Errors    map[string]string
	FormError string
	Succeeded bool
	Message   string
}

// IsEdit reports whether the form edits an existing client.
func (d FormData) IsEdit() bool {
	return d.ClientID != ""
}

// DeleteDialogData contains data for the delete confirmation dialog
type DeleteDialogData struct {
	CSRFToken  string
	Visible    bool
	Status     string
	ClientID   string
	ClientName string
	Feedback   string
	Busy       bool
	Succeeded  bool
	Failed     bool
	Poll       bool // keep polling until the flow settles
}

// NewDeleteDialogData renders a snapshot of the delete flow.
func NewDeleteDialogData(s deleteflow.Snapshot, csrfToken string) DeleteDialogData {
	d := DeleteDialogData{
		CSRFToken: csrfToken,
		Visible:   s.Visible,
		Status:    s.Status.String(),
		Feedback:  s.Feedback,
		Busy:      s.Busy(),
		Succeeded: s.Status == deleteflow.Succeeded,
		Failed:    s.Status == deleteflow.Failed,
		Poll:      s.Busy() || s.Resolved(),
	}
	if s.Target != nil {
		d.ClientID = s.Target.ID.String()
		d.ClientName = s.Target.Name
	}
	return d
}
