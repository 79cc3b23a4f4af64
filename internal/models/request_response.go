package models

// Request models
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type RegisterProductRequest struct {
	ProductNumber string `json:"productNumber" binding:"required,max=20"`
	RFID          string `json:"rfid" binding:"required,max=50"`
}

type BulkItem struct {
	ProductNumber string `json:"productNumber" binding:"required"`
	RFID          string `json:"rfid" binding:"required"`
}

type BulkRegisterRequest struct {
	Items []BulkItem `json:"items" binding:"required,min=1,dive"`
}

type SearchRequest struct {
	Query string `form:"query" binding:"required"`
	Sort  string `form:"sort" binding:"omitempty,oneof=oldest newest price_asc price_desc"`
}

type SaveNoteRequest struct {
	Note string `json:"note"`
}

type ReconciliationRequest struct {
	EDIAmount    int64 `json:"ediAmount" binding:"min=0"`
	POSAmount    int64 `json:"posAmount" binding:"min=0"`
	DiscountRate int   `json:"discountRate" binding:"required,oneof=10 15 19"`
}

// Per-row registration outcomes
const (
	RowRegistered  = "registered"
	RowDuplicate   = "duplicate"
	RowPriceFailed = "price-failed"
	RowMissing     = "missing"
	RowFailed      = "failed"
)

// RowResult reports the outcome of registering one item. Bulk and
// spreadsheet registrations return one per input row.
type RowResult struct {
	ProductNumber string `json:"productNumber"`
	RFID          string `json:"rfid"`
	Status        string `json:"status"`
	Price         int64  `json:"price,omitempty"`
	Key           string `json:"key,omitempty"`
	Message       string `json:"message"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type BulkRegisterResponse struct {
	Status     string      `json:"status"`
	Registered int         `json:"registered"`
	Failed     int         `json:"failed"`
	Results    []RowResult `json:"results"`
}

type ImportResponse struct {
	Status     string      `json:"status"`
	Registered int         `json:"registered"`
	Failed     int         `json:"failed"`
	Results    []RowResult `json:"results"`
	Report     []string    `json:"report"`
}

type SearchResponse struct {
	Status  string    `json:"status"`
	Count   int       `json:"count"`
	Results []Product `json:"results"`
}

type DeleteResponse struct {
	Status  string `json:"status"` // "confirm", "deleted" or "cancelled"
	Key     string `json:"key"`
	Message string `json:"message"`
}

type ReconciliationResponse struct {
	Status          string  `json:"status"`
	TotalPrice      int64   `json:"totalPrice"`
	DiscountRate    int     `json:"discountRate"`
	DiscountedTotal float64 `json:"discountedTotal"`
	EDIAmount       int64   `json:"ediAmount"`
	POSAmount       int64   `json:"posAmount"`
	Difference      float64 `json:"difference"`
}

type LogsResponse struct {
	Status  string     `json:"status"`
	Entries []LogEntry `json:"entries"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
