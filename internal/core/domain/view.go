package domain

// ContextView is everything the dashboard renders about the active context
type ContextView struct {
	ID             string      `json:"id"`
	Type           ContextType `json:"type"`
	Label          string      `json:"label"`
	Credits        int64       `json:"credits"`
	CreditsDisplay string      `json:"credits_display"`
	Icon           string      `json:"icon"`
	CanPurchase    bool        `json:"can_purchase"`
	UploadNotice   string      `json:"upload_notice"`
}

// BindContext derives the view of a context. It holds no state and is
// recomputed on every switch.
func BindContext(c Context) ContextView {
	label := c.Label()
	return ContextView{
		ID:             c.ID,
		Type:           c.Type,
		Label:          label,
		Credits:        c.Credits,
		CreditsDisplay: FormatCredits(c.Credits),
		Icon:           c.Icon(),
		CanPurchase:    c.CanPurchase(),
		UploadNotice:   UploadNotice(label),
	}
}

// UploadNotice is the warning shown before an upload batch is started.
func UploadNotice(label string) string {
	return "You are uploading files as: " + label + ". Credits will be used from this account."
}
