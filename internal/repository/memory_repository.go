package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jaegodata/unsold-server/internal/models"
)

// MemoryRepository implements the Repository interface with in-process
// maps. It backs tests and local development without a database; the
// Postgres implementation is the one deployed.
type MemoryRepository struct {
	mu       sync.RWMutex
	users    map[string]models.User
	products map[string]models.Product
	order    []string // product keys in insertion order
	logs     map[string]models.LogEntry
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[string]models.User),
		products: make(map[string]models.Product),
		logs:     make(map[string]models.LogEntry),
	}
}

// SeedUser inserts a credential row, standing in for out-of-band
// provisioning against the real table.
func (r *MemoryRepository) SeedUser(user models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.Role == "" {
		user.Role = models.RoleStaff
	}
	r.users[user.Username] = user
}

func (r *MemoryRepository) GetUser(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, username, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil
	}
	user.Password = password
	r.users[username] = user
	return nil
}

func (r *MemoryRepository) SetAdminRoles(ctx context.Context, usernames []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range usernames {
		if user, ok := r.users[name]; ok {
			user.Role = models.RoleAdmin
			r.users[name] = user
		}
	}
	return nil
}

func (r *MemoryRepository) CreateProduct(ctx context.Context, product *models.Product) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.products[product.Key]; exists {
		return false, nil
	}
	r.products[product.Key] = *product
	r.order = append(r.order, product.Key)
	return true, nil
}

func (r *MemoryRepository) GetProduct(ctx context.Context, key string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[key]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (r *MemoryRepository) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := []models.Product{}
	for _, key := range r.order {
		product, ok := r.products[key]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToUpper(product.ProductNumber), query) {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

func (r *MemoryRepository) UpdateNote(ctx context.Context, key, note string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[key]
	if !ok {
		return false, nil
	}
	product.Note = note
	r.products[key] = product
	return true, nil
}

func (r *MemoryRepository) DeleteProduct(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[key]; !ok {
		return false, nil
	}
	delete(r.products, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *MemoryRepository) SumPrices(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total int64
	for _, product := range r.products {
		total += product.Price
	}
	return total, nil
}

func (r *MemoryRepository) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[entry.TsKey] = *entry
	return nil
}

func (r *MemoryRepository) RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.logs))
	for key := range r.logs {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if len(keys) > limit {
		keys = keys[:limit]
	}
	entries := make([]models.LogEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, r.logs[key])
	}
	return entries, nil
}
