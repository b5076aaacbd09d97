package zohosign

// Document is the file uploaded when creating a request.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// CreateRequestData describes a new signature request.
type CreateRequestData struct {
	RequestName    string      `json:"request_name"`
	ExpirationDays int         `json:"expiration_days"`
	IsSequential   bool        `json:"is_sequential"`
	EmailReminders bool        `json:"email_reminders"`
	ReminderPeriod int         `json:"reminder_period"`
	Actions        []NewAction `json:"actions"`
}

// NewAction is a recipient action in a request being created.
type NewAction struct {
	RecipientName    string `json:"recipient_name"`
	RecipientEmail   string `json:"recipient_email"`
	ActionType       string `json:"action_type"`
	PrivateNotes     string `json:"private_notes,omitempty"`
	SigningOrder     int    `json:"signing_order"`
	VerifyRecipient  bool   `json:"verify_recipient"`
	VerificationType string `json:"verification_type,omitempty"`
	IsEmbedded       bool   `json:"is_embedded"`
}

// ActionRef identifies an action of an existing request.
type ActionRef struct {
	ActionID       string `json:"action_id"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	ActionType     string `json:"action_type"`
}

// SubmitAction is an existing action together with the fields it must fill in.
type SubmitAction struct {
	ActionRef
	Fields []Field `json:"fields"`
}

// Field places a signature field on a document page.
// Dimensions and coordinates are strings on the wire.
type Field struct {
	DocumentID    string `json:"document_id"`
	FieldName     string `json:"field_name"`
	FieldTypeName string `json:"field_type_name"`
	FieldLabel    string `json:"field_label"`
	FieldCategory string `json:"field_category"`
	AbsWidth      string `json:"abs_width"`
	AbsHeight     string `json:"abs_height"`
	IsMandatory   bool   `json:"is_mandatory"`
	XCoord        string `json:"x_coord"`
	YCoord        string `json:"y_coord"`
	PageNo        int    `json:"page_no"`
}

// CreatedRequest holds the identifiers returned when a request is created.
type CreatedRequest struct {
	RequestID  string
	Action     ActionRef
	DocumentID string
}

// envelope wraps payloads as Zoho Sign expects them.
type envelope[T any] struct {
	Requests T `json:"requests"`
}

type submitRequestData struct {
	Actions []SubmitAction `json:"actions"`
}
