package models

// Actions recorded in the activity log
const (
	ActionRegister            = "register"
	ActionBulkRegister        = "bulk-register"
	ActionSpreadsheetRegister = "spreadsheet-register"
	ActionNoteSave            = "note-save"
	ActionDelete              = "delete"
)

// User roles
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// RFIDNone is the form sentinel meaning "no physical tag available".
// Items registered with it get a generated NOID key instead of a tag key.
const RFIDNone = "X"

// User is one row of the flat credential table. Accounts are created out
// of band; the application reads them on login and rewrites the password
// on a password change, nothing else.
type User struct {
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"` // Compared verbatim, never returned in JSON
	Role     string `db:"role" json:"role"`
}

// Product is one registered unsold item. Key is product_number + "_" + rfid
// for tagged items, or product_number + "_NOID_" + random suffix for
// untagged ones. RFID is nil for untagged items.
type Product struct {
	Key           string  `db:"key" json:"key"`
	ProductNumber string  `db:"product_number" json:"productNumber"`
	RFID          *string `db:"rfid" json:"rfid"`
	Price         int64   `db:"price" json:"price"`
	RegisteredAt  int64   `db:"registered_at" json:"registeredAt"` // unix seconds
	Note          string  `db:"note" json:"note"`
}

// LogEntry is one activity log record. TsKey doubles as the storage key
// and has second precision: two entries written within the same second
// overwrite each other.
type LogEntry struct {
	TsKey         string  `db:"ts_key" json:"timestamp"`
	Actor         string  `db:"actor" json:"actor"`
	Action        string  `db:"action" json:"action"`
	ProductNumber string  `db:"product_number" json:"productNumber"`
	RFID          *string `db:"rfid" json:"rfid,omitempty"`
	Price         *int64  `db:"price" json:"price,omitempty"`
}
