package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/repository"
)

// memStore is an in-memory store whose WithinTx gives the same
// observable guarantees as the postgres one: mutations inside fn are
// all-or-nothing, and concurrent transactions are serialized the way
// the order row lock serializes them.
type memStore struct {
	mu         sync.Mutex
	orders     map[int64]domain.Order
	extensions map[int64]domain.ExtensionRequest
	disputes   map[int64]domain.Dispute
	wallets    map[int64]domain.Wallet // keyed by user id
	txs        map[int64]domain.WalletTransaction
	txByKey    map[string]int64
	notes      map[int64]domain.Notification
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{
		orders:     make(map[int64]domain.Order),
		extensions: make(map[int64]domain.ExtensionRequest),
		disputes:   make(map[int64]domain.Dispute),
		wallets:    make(map[int64]domain.Wallet),
		txs:        make(map[int64]domain.WalletTransaction),
		txByKey:    make(map[string]int64),
		notes:      make(map[int64]domain.Notification),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	c.nextID = s.nextID
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.extensions {
		c.extensions[k] = v
	}
	for k, v := range s.disputes {
		c.disputes[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.txs {
		c.txs[k] = v
	}
	for k, v := range s.txByKey {
		c.txByKey[k] = v
	}
	for k, v := range s.notes {
		c.notes[k] = v
	}
	return c
}

func (s *memStore) restore(c *memStore) {
	s.orders = c.orders
	s.extensions = c.extensions
	s.disputes = c.disputes
	s.wallets = c.wallets
	s.txs = c.txs
	s.txByKey = c.txByKey
	s.notes = c.notes
	s.nextID = c.nextID
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	err := fn(repository.Repos{
		Orders:        &memOrders{s: s},
		Extensions:    &memExtensions{s: s},
		Disputes:      &memDisputes{s: s},
		Wallets:       &memWallets{s: s},
		Notifications: &memNotes{s: s},
	})
	if err != nil {
		s.restore(snap)
	}
	return err
}

// seedWallet creates a wallet with an opening balance.
func (s *memStore) seedWallet(userID, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[userID] = domain.Wallet{ID: s.id(), UserID: userID, BalanceCents: balance}
}

func (s *memStore) balance(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets[userID].BalanceCents
}

// seedOrder installs an order directly, bypassing escrow.
func (s *memStore) seedOrder(o domain.Order) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id()
	s.orders[o.ID] = o
	return o.ID
}

func (s *memStore) seedDispute(d domain.Dispute) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	s.disputes[d.ID] = d
	return d.ID
}

func (s *memStore) order(id int64) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memStore) transactionsFor(userID int64) []domain.WalletTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.wallets[userID]
	var out []domain.WalletTransaction
	for _, tx := range s.txs {
		if tx.WalletID == w.ID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

type memOrders struct{ s *memStore }

func (r *memOrders) Create(ctx context.Context, o *domain.Order) error {
	o.ID = r.s.id()
	o.CreatedOn = time.Now()
	o.UpdatedOn = o.CreatedOn
	r.s.orders[o.ID] = *o
	return nil
}

func (r *memOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("order %d not found", id)
	}
	return &o, nil
}

func (r *memOrders) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *memOrders) Update(ctx context.Context, o *domain.Order) error {
	if _, ok := r.s.orders[o.ID]; !ok {
		return domain.NewNotFoundError("order %d not found", o.ID)
	}
	o.UpdatedOn = time.Now()
	r.s.orders[o.ID] = *o
	return nil
}

func (r *memOrders) list(filter func(domain.Order) bool) []domain.Order {
	var out []domain.Order
	for _, o := range r.s.orders {
		if filter(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memOrders) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Order, int32, error) {
	out := r.list(func(o domain.Order) bool {
		return o.RenterID == renterID && (status == "" || string(o.Status) == status)
	})
	return out, int32(len(out)), nil
}

func (r *memOrders) ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Order, int32, error) {
	out := r.list(func(o domain.Order) bool {
		return o.OwnerID == ownerID && (status == "" || string(o.Status) == status)
	})
	return out, int32(len(out)), nil
}

func (r *memOrders) ListDue(ctx context.Context, asOf time.Time, limit int32) ([]domain.Order, error) {
	out := r.list(func(o domain.Order) bool {
		active := o.Status == domain.OrderStatusActive || o.Status == domain.OrderStatusExtended
		return active && !o.EndAt.After(asOf)
	})
	if limit > 0 && int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memExtensions struct{ s *memStore }

func (r *memExtensions) Create(ctx context.Context, ext *domain.ExtensionRequest) error {
	for _, e := range r.s.extensions {
		if e.OrderID == ext.OrderID && e.Status == domain.ExtensionStatusPending {
			return domain.NewConflictError("order %d already has a pending extension request", ext.OrderID)
		}
	}
	ext.ID = r.s.id()
	ext.CreatedOn = time.Now()
	r.s.extensions[ext.ID] = *ext
	return nil
}

func (r *memExtensions) GetByID(ctx context.Context, id int64) (*domain.ExtensionRequest, error) {
	e, ok := r.s.extensions[id]
	if !ok {
		return nil, domain.NewNotFoundError("extension %d not found", id)
	}
	return &e, nil
}

func (r *memExtensions) GetPendingByOrder(ctx context.Context, orderID int64) (*domain.ExtensionRequest, error) {
	for _, e := range r.s.extensions {
		if e.OrderID == orderID && e.Status == domain.ExtensionStatusPending {
			return &e, nil
		}
	}
	return nil, domain.NewNotFoundError("no pending extension for order %d", orderID)
}

func (r *memExtensions) Update(ctx context.Context, ext *domain.ExtensionRequest) error {
	if _, ok := r.s.extensions[ext.ID]; !ok {
		return domain.NewNotFoundError("extension %d not found", ext.ID)
	}
	r.s.extensions[ext.ID] = *ext
	return nil
}

func (r *memExtensions) ListByOrder(ctx context.Context, orderID int64) ([]domain.ExtensionRequest, error) {
	var out []domain.ExtensionRequest
	for _, e := range r.s.extensions {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memDisputes struct{ s *memStore }

func (r *memDisputes) Create(ctx context.Context, d *domain.Dispute) error {
	for _, e := range r.s.disputes {
		if e.OrderID == d.OrderID && e.Status == domain.DisputeStatusPending {
			return domain.NewConflictError("order %d already has an open dispute", d.OrderID)
		}
	}
	d.ID = r.s.id()
	d.CreatedOn = time.Now()
	r.s.disputes[d.ID] = *d
	return nil
}

func (r *memDisputes) GetByID(ctx context.Context, id int64) (*domain.Dispute, error) {
	d, ok := r.s.disputes[id]
	if !ok {
		return nil, domain.NewNotFoundError("dispute %d not found", id)
	}
	return &d, nil
}

func (r *memDisputes) GetOpenByOrder(ctx context.Context, orderID int64) (*domain.Dispute, error) {
	for _, d := range r.s.disputes {
		if d.OrderID == orderID && d.Status == domain.DisputeStatusPending {
			return &d, nil
		}
	}
	return nil, domain.NewNotFoundError("no open dispute for order %d", orderID)
}

func (r *memDisputes) Close(ctx context.Context, d *domain.Dispute) error {
	cur, ok := r.s.disputes[d.ID]
	if !ok {
		return domain.NewNotFoundError("dispute %d not found", d.ID)
	}
	if cur.Status != domain.DisputeStatusPending {
		return domain.NewConflictError("dispute %d is no longer pending", d.ID)
	}
	r.s.disputes[d.ID] = *d
	return nil
}

func (r *memDisputes) HasDepositSettlement(ctx context.Context, orderID int64) (bool, error) {
	for _, d := range r.s.disputes {
		if d.OrderID == orderID && d.Status == domain.DisputeStatusResolved && d.Decision != domain.DecisionReject {
			return true, nil
		}
	}
	return false, nil
}

type memWallets struct{ s *memStore }

func (r *memWallets) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, domain.NewNotFoundError("wallet for user %d not found", userID)
	}
	return &w, nil
}

func (r *memWallets) Create(ctx context.Context, w *domain.Wallet) error {
	if _, ok := r.s.wallets[w.UserID]; ok {
		return domain.NewConflictError("wallet for user %d already exists", w.UserID)
	}
	w.ID = r.s.id()
	r.s.wallets[w.UserID] = *w
	return nil
}

func (r *memWallets) Post(ctx context.Context, p repository.WalletPost) (*domain.WalletTransaction, bool, error) {
	if p.IdempotencyKey == "" {
		return nil, false, domain.NewValidationError("idempotency_key", "idempotency key is required")
	}
	if id, ok := r.s.txByKey[p.IdempotencyKey]; ok {
		prior := r.s.txs[id]
		return &prior, true, nil
	}
	w, ok := r.s.wallets[p.UserID]
	if !ok {
		return nil, false, domain.NewNotFoundError("wallet for user %d not found", p.UserID)
	}
	if p.AmountCents < 0 && w.BalanceCents+p.AmountCents < 0 {
		return nil, false, domain.NewInsufficientFundsError(
			"wallet of user %d has balance %d, cannot absorb debit %d", p.UserID, w.BalanceCents, p.AmountCents)
	}
	tx := domain.WalletTransaction{
		ID:             r.s.id(),
		WalletID:       w.ID,
		Type:           p.Type,
		AmountCents:    p.AmountCents,
		RelatedOrderID: p.RelatedOrderID,
		Status:         domain.TransactionStatusPosted,
		IdempotencyKey: p.IdempotencyKey,
		Description:    p.Description,
		CreatedOn:      time.Now(),
	}
	r.s.txs[tx.ID] = tx
	r.s.txByKey[tx.IdempotencyKey] = tx.ID
	w.BalanceCents += p.AmountCents
	w.Version++
	r.s.wallets[p.UserID] = w
	return &tx, false, nil
}

func (r *memWallets) ListTransactions(ctx context.Context, userID int64, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, 0, nil
	}
	var out []domain.WalletTransaction
	for _, tx := range r.s.txs {
		if tx.WalletID == w.ID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int32(len(out)), nil
}

type memNotes struct{ s *memStore }

func (r *memNotes) Create(ctx context.Context, n *domain.Notification) error {
	n.ID = r.s.id()
	n.CreatedOn = time.Now()
	r.s.notes[n.ID] = *n
	return nil
}

func (r *memNotes) List(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error) {
	var out []domain.Notification
	for _, n := range r.s.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int32(len(out)), nil
}

func (r *memNotes) MarkAsRead(ctx context.Context, id, userID int64) error {
	n, ok := r.s.notes[id]
	if !ok || n.UserID != userID {
		return domain.NewNotFoundError("notification %d not found", id)
	}
	n.IsRead = true
	r.s.notes[id] = n
	return nil
}

// nopNotifier records nothing; scenario tests assert on the ledger,
// not on notices.
type nopNotifier struct{}

func (nopNotifier) OrderCompleted(ctx context.Context, order *domain.Order)    {}
func (nopNotifier) OrderCancelled(ctx context.Context, order *domain.Order)    {}
func (nopNotifier) ExtensionRequested(ctx context.Context, order *domain.Order, ext *domain.ExtensionRequest) {
}
func (nopNotifier) ExtensionApproved(ctx context.Context, order *domain.Order, ext *domain.ExtensionRequest) {
}
func (nopNotifier) ExtensionRejected(ctx context.Context, order *domain.Order, ext *domain.ExtensionRequest) {
}
func (nopNotifier) DisputeOpened(ctx context.Context, order *domain.Order, d *domain.Dispute)   {}
func (nopNotifier) DisputeResolved(ctx context.Context, order *domain.Order, d *domain.Dispute) {}
