package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jaegodata/unsold-server/internal/models"
	"github.com/jaegodata/unsold-server/internal/pricing"
	"github.com/jaegodata/unsold-server/internal/repository"
	"github.com/jaegodata/unsold-server/internal/session"
	"github.com/jaegodata/unsold-server/internal/spreadsheet"
)

// Timestamp key format of activity log entries, second precision
const logTimeLayout = "2006-01-02_15:04:05"

// Most recent entries shown by the log viewer
const logViewLimit = 100

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	ChangePassword(ctx context.Context, username string, req models.ChangePasswordRequest) error

	// Registration
	RegisterProduct(ctx context.Context, actor string, req models.RegisterProductRequest) (*models.RowResult, error)
	RegisterBulk(ctx context.Context, actor string, req models.BulkRegisterRequest) (*models.BulkRegisterResponse, error)
	ImportSpreadsheet(ctx context.Context, actor string, sess *session.Session, file io.Reader) (*models.ImportResponse, error)

	// Search & maintenance
	SearchProducts(ctx context.Context, sess *session.Session, query, sortOrder string) (*models.SearchResponse, error)
	SaveNote(ctx context.Context, actor, key, note string) error
	DeleteProduct(ctx context.Context, actor string, sess *session.Session, key string) (*models.DeleteResponse, error)
	CancelDelete(sess *session.Session, key string) *models.DeleteResponse

	// Restricted screens
	Reconcile(ctx context.Context, req models.ReconciliationRequest) (*models.ReconciliationResponse, error)
	RecentLogs(ctx context.Context) (*models.LogsResponse, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	prices        pricing.Lookup
	sessions      *session.Manager
	jwtSecret     []byte
	tokenDuration time.Duration
	log           *slog.Logger

	now    func() time.Time
	suffix func() string
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(
	repo repository.Repository,
	prices pricing.Lookup,
	sessions *session.Manager,
	jwtSecret string,
	logger *slog.Logger,
) *DefaultService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultService{
		repo:          repo,
		prices:        prices,
		sessions:      sessions,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour,
		log:           logger,
		now:           time.Now,
		suffix:        noIDSuffix,
	}
}

// noIDSuffix generates the random key suffix for items without a tag
func noIDSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
}

// Authentication methods

// Login checks the supplied password against the stored one verbatim. The
// credential table is provisioned out of band and compared by exact string
// equality; unknown user and wrong password get the same answer.
func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUser(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil || user.Password != req.Password {
		return nil, ErrInvalidCredentials
	}

	sess := s.sessions.Create(user.Username, user.Role)

	token, err := s.generateJWT(user, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		Username:  user.Username,
		Role:      user.Role,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

// ChangePassword validates the old password by the same equality check as
// login, then overwrites the stored password unconditionally.
func (s *DefaultService) ChangePassword(ctx context.Context, username string, req models.ChangePasswordRequest) error {
	user, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return fmt.Errorf("error getting user: %w", err)
	}

	if user == nil || user.Password != req.OldPassword {
		return ErrWrongPassword
	}

	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	if utf8.RuneCountInString(req.NewPassword) < 4 {
		return ErrPasswordTooShort
	}

	if err := s.repo.UpdatePassword(ctx, username, req.NewPassword); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	return nil
}

// Registration methods

func (s *DefaultService) RegisterProduct(ctx context.Context, actor string, req models.RegisterProductRequest) (*models.RowResult, error) {
	result := s.registerOne(ctx, actor, req.ProductNumber, req.RFID, models.ActionRegister)
	return &result, nil
}

func (s *DefaultService) RegisterBulk(ctx context.Context, actor string, req models.BulkRegisterRequest) (*models.BulkRegisterResponse, error) {
	resp := &models.BulkRegisterResponse{
		Status:  "success",
		Results: make([]models.RowResult, 0, len(req.Items)),
	}

	// Per-row isolation: a failed row never affects the others, and there
	// is no rollback across rows.
	for _, item := range req.Items {
		result := s.registerOne(ctx, actor, item.ProductNumber, item.RFID, models.ActionBulkRegister)
		if result.Status == models.RowRegistered {
			resp.Registered++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	return resp, nil
}

// ImportSpreadsheet registers every row of an .xlsx upload. A missing
// required column aborts the whole import before any row is processed;
// after that, rows succeed or fail independently. Each session gets one
// import; a second upload is rejected until the user logs in again.
func (s *DefaultService) ImportSpreadsheet(ctx context.Context, actor string, sess *session.Session, file io.Reader) (*models.ImportResponse, error) {
	if sess.ImportDone() {
		return nil, ErrImportDone
	}

	rows, err := spreadsheet.Parse(file)
	if err != nil {
		return nil, err
	}

	resp := &models.ImportResponse{
		Status:  "success",
		Results: make([]models.RowResult, 0, len(rows)),
		Report:  make([]string, 0, len(rows)),
	}

	for _, row := range rows {
		result := s.registerOne(ctx, actor, row.ProductNumber, row.RFID, models.ActionSpreadsheetRegister)

		switch result.Status {
		case models.RowRegistered:
			resp.Registered++
			resp.Report = append(resp.Report, fmt.Sprintf("registered: %s (RFID: %s)", result.ProductNumber, result.RFID))
		case models.RowDuplicate:
			resp.Failed++
			resp.Report = append(resp.Report, fmt.Sprintf("duplicate, not registered: %s (RFID: %s)", result.ProductNumber, result.RFID))
		case models.RowPriceFailed:
			resp.Failed++
			resp.Report = append(resp.Report, fmt.Sprintf("price lookup failed: %s", result.ProductNumber))
		case models.RowMissing:
			resp.Failed++
			resp.Report = append(resp.Report, fmt.Sprintf("missing data (row %d)", row.Line))
		default:
			resp.Failed++
			resp.Report = append(resp.Report, fmt.Sprintf("failed: %s", result.ProductNumber))
		}

		resp.Results = append(resp.Results, result)
	}

	sess.MarkImportDone()

	return resp, nil
}

// registerOne is the core registration algorithm shared by the single,
// bulk and spreadsheet paths. Order matters: derive the key, reject
// duplicates for real tags, then look up the price, then write. A failed
// price lookup writes nothing.
func (s *DefaultService) registerOne(ctx context.Context, actor, productNumber, rfid, action string) models.RowResult {
	pnum := strings.ToUpper(strings.TrimSpace(productNumber))
	tag := strings.ToUpper(strings.TrimSpace(rfid))

	result := models.RowResult{ProductNumber: pnum, RFID: tag}

	if pnum == "" || tag == "" {
		result.Status = models.RowMissing
		result.Message = ErrMissingFields.Error()
		return result
	}

	var key string
	var rfidValue *string
	if tag == models.RFIDNone {
		// No physical tag: a random suffix makes the key unique, so a
		// repeated upload of the same untagged item creates a second
		// record. Known gap, kept deliberately.
		key = fmt.Sprintf("%s_NOID_%s", pnum, s.suffix())
	} else {
		key = pnum + "_" + tag
		rfidValue = &tag

		existing, err := s.repo.GetProduct(ctx, key)
		if err != nil {
			s.log.Error("product lookup failed", "key", key, "error", err)
			result.Status = models.RowFailed
			result.Message = "storage lookup failed"
			return result
		}
		if existing != nil {
			result.Status = models.RowDuplicate
			result.Message = ErrDuplicate.Error()
			return result
		}
	}

	price, err := s.prices.Price(ctx, pnum)
	if err != nil {
		s.log.Warn("price lookup failed", "productNumber", pnum, "error", err)
		result.Status = models.RowPriceFailed
		result.Message = fmt.Sprintf("could not fetch price for %s", pnum)
		return result
	}

	product := &models.Product{
		Key:           key,
		ProductNumber: pnum,
		RFID:          rfidValue,
		Price:         price,
		RegisteredAt:  s.now().Unix(),
	}

	inserted, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		s.log.Error("product insert failed", "key", key, "error", err)
		result.Status = models.RowFailed
		result.Message = "storage write failed"
		return result
	}
	if !inserted {
		// Lost the race between the pre-check and the conditional write
		result.Status = models.RowDuplicate
		result.Message = ErrDuplicate.Error()
		return result
	}

	s.logActivity(ctx, actor, action, pnum, rfidValue, &price)

	result.Status = models.RowRegistered
	result.Price = price
	result.Key = key
	result.Message = fmt.Sprintf("registered %s (price: %d)", pnum, price)
	return result
}

// Search & maintenance methods

// SearchProducts matches the query as a case-insensitive substring of the
// product number. A new search is a navigation, so it drops any armed
// delete confirmations.
func (s *DefaultService) SearchProducts(ctx context.Context, sess *session.Session, query, sortOrder string) (*models.SearchResponse, error) {
	sess.ClearArmedDeletes()

	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrEmptyQuery
	}

	products, err := s.repo.SearchProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error searching products: %w", err)
	}

	sortProducts(products, sortOrder)

	return &models.SearchResponse{
		Status:  "success",
		Count:   len(products),
		Results: products,
	}, nil
}

// sortProducts orders the results by the user-selected key. Input arrives
// in insertion order and the sort is stable, so ties keep that order.
func sortProducts(products []models.Product, order string) {
	switch order {
	case "newest":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].RegisteredAt > products[j].RegisteredAt
		})
	case "price_desc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case "price_asc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	default: // "oldest"
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].RegisteredAt < products[j].RegisteredAt
		})
	}
}

// SaveNote overwrites the free-text note of a product and logs the save.
// Saving the same text twice is a no-op on the stored value but still
// succeeds and still logs.
func (s *DefaultService) SaveNote(ctx context.Context, actor, key, note string) error {
	product, err := s.repo.GetProduct(ctx, key)
	if err != nil {
		return fmt.Errorf("error getting product: %w", err)
	}
	if product == nil {
		return ErrNotFound
	}

	if _, err := s.repo.UpdateNote(ctx, key, note); err != nil {
		return fmt.Errorf("error updating note: %w", err)
	}

	price := product.Price
	s.logActivity(ctx, actor, models.ActionNoteSave, product.ProductNumber, product.RFID, &price)

	return nil
}

// DeleteProduct is two-phase: the first call arms a per-row confirmation
// flag in the session and commits nothing; the second call deletes the
// record and logs it. The armed flag never expires on its own.
func (s *DefaultService) DeleteProduct(ctx context.Context, actor string, sess *session.Session, key string) (*models.DeleteResponse, error) {
	product, err := s.repo.GetProduct(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error getting product: %w", err)
	}
	if product == nil {
		sess.DisarmDelete(key)
		return nil, ErrNotFound
	}

	if !sess.DeleteArmed(key) {
		sess.ArmDelete(key)
		return &models.DeleteResponse{
			Status:  "confirm",
			Key:     key,
			Message: fmt.Sprintf("confirm deletion of %s", product.ProductNumber),
		}, nil
	}

	if _, err := s.repo.DeleteProduct(ctx, key); err != nil {
		return nil, fmt.Errorf("error deleting product: %w", err)
	}
	sess.DisarmDelete(key)

	price := product.Price
	s.logActivity(ctx, actor, models.ActionDelete, product.ProductNumber, product.RFID, &price)

	return &models.DeleteResponse{
		Status:  "deleted",
		Key:     key,
		Message: fmt.Sprintf("%s deleted", product.ProductNumber),
	}, nil
}

// CancelDelete disarms a pending delete confirmation
func (s *DefaultService) CancelDelete(sess *session.Session, key string) *models.DeleteResponse {
	sess.DisarmDelete(key)
	return &models.DeleteResponse{
		Status:  "cancelled",
		Key:     key,
		Message: "deletion cancelled",
	}
}

// Restricted screens

// Reconcile sums the list price of every registered item, applies the
// selected discount rate and compares against the externally supplied EDI
// and POS figures. Nothing is persisted.
func (s *DefaultService) Reconcile(ctx context.Context, req models.ReconciliationRequest) (*models.ReconciliationResponse, error) {
	total, err := s.repo.SumPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("error summing prices: %w", err)
	}

	discounted := float64(total) * (1 - float64(req.DiscountRate)/100)
	difference := float64(req.EDIAmount) - (float64(req.POSAmount) + discounted)

	return &models.ReconciliationResponse{
		Status:          "success",
		TotalPrice:      total,
		DiscountRate:    req.DiscountRate,
		DiscountedTotal: discounted,
		EDIAmount:       req.EDIAmount,
		POSAmount:       req.POSAmount,
		Difference:      difference,
	}, nil
}

// RecentLogs returns the newest activity log entries, most recent first
func (s *DefaultService) RecentLogs(ctx context.Context) (*models.LogsResponse, error) {
	entries, err := s.repo.RecentLogs(ctx, logViewLimit)
	if err != nil {
		return nil, fmt.Errorf("error reading logs: %w", err)
	}

	return &models.LogsResponse{
		Status:  "success",
		Entries: entries,
	}, nil
}

// Helper methods

func (s *DefaultService) logActivity(ctx context.Context, actor, action, productNumber string, rfid *string, price *int64) {
	entry := &models.LogEntry{
		TsKey:         s.now().Format(logTimeLayout),
		Actor:         actor,
		Action:        action,
		ProductNumber: productNumber,
		RFID:          rfid,
		Price:         price,
	}

	if err := s.repo.AppendLog(ctx, entry); err != nil {
		s.log.Error("append activity log", "action", action, "error", err)
	}
}

func (s *DefaultService) generateJWT(user *models.User, sessionID string) (string, error) {
	expirationTime := s.now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub":  user.Username,
		"sid":  sessionID,
		"role": user.Role,
		"exp":  expirationTime.Unix(),
		"iat":  s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
