package domain

// OrderRequest is the payload accepted by the order email collaborator.
type OrderRequest struct {
	OrderNumber   string            `json:"orderNumber"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	CustomerPhone string            `json:"customerPhone"`
	CompanyName   string            `json:"companyName"`
	OrderDetails  string            `json:"orderDetails"`
	Attachments   []OrderAttachment `json:"attachments,omitempty"`
}

// OrderAttachment is a file inside an OrderRequest.
// Type is "image" or "audio"; Content is base64 without a data URL prefix.
type OrderAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

// OrderResponse is the collaborator reply.
type OrderResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
	OrderNumber string   `json:"orderNumber,omitempty"`
	Error       string   `json:"error,omitempty"`
	Details     []string `json:"details,omitempty"`
}

// Classification is the parsed answer of the categorize request.
type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}
