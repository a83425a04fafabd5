package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrValidation is returned when a caller violates the append contract,
	// e.g. hands in a negative magnitude or an unknown movement type.
	ErrValidation = errors.New("invalid entry")
	// ErrNotFound is returned when the referenced item does not exist.
	ErrNotFound = errors.New("item not found")
)

// Service derives stock balances from the transaction log and appends new
// movements. Balances are never stored; every read folds over the full log,
// so they cannot drift out of sync with it. Reads are pure queries and safe
// to run concurrently; appends rely on the database's own write serialization.
type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// SignedQuantity derives the signed movement from a type and an unsigned
// magnitude. Receipts add stock; everything else removes it, regardless of
// the sign typed in the source. This is the single place the sign rule lives
// — both the direct append path and the bulk replay go through it.
func SignedQuantity(t models.TransactionType, magnitude int) int {
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if t == models.TypeReceipt {
		return magnitude
	}
	return -magnitude
}

// Entry carries caller-supplied fields for AppendEntry. Magnitude is the
// unsigned quantity; the service derives the sign from Type.
type Entry struct {
	Type       models.TransactionType
	Magnitude  int
	Date       time.Time // zero value defaults to the processing date
	DocNo      string
	Department string
}

// Balances holds every derived quantity for one item, computed in a single
// pass (one item fetch plus one aggregate sum).
type Balances struct {
	Current      int
	Physical     int
	Deficit      int
	Surplus      int
	NeedsReorder bool
	Status       models.ReorderStatus
}

func (s *Service) item(db *gorm.DB, itemID uint) (*models.Item, error) {
	var item models.Item
	if err := db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("load item %d: %w", itemID, err)
	}
	return &item, nil
}

// movement returns the net signed movement over the item's full entry log.
// An item with no entries nets to zero.
func (s *Service) movement(db *gorm.DB, itemID uint) (int, error) {
	var total int64
	err := db.Model(&models.StockTransaction{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(SUM(qty), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum movements for item %d: %w", itemID, err)
	}
	return int(total), nil
}

// Balances computes all derived quantities for an item.
func (s *Service) Balances(itemID uint) (*Balances, error) {
	item, err := s.item(s.DB, itemID)
	if err != nil {
		return nil, err
	}
	mv, err := s.movement(s.DB, itemID)
	if err != nil {
		return nil, err
	}
	return derive(item, mv), nil
}

// BalancesFor computes derived quantities for an already-loaded item,
// avoiding the extra fetch when the caller is iterating a list.
func (s *Service) BalancesFor(item *models.Item) (*Balances, error) {
	mv, err := s.movement(s.DB, item.ID)
	if err != nil {
		return nil, err
	}
	return derive(item, mv), nil
}

func derive(item *models.Item, movement int) *Balances {
	b := &Balances{
		Current:  item.OpeningBinBalance + movement,
		Physical: item.OpeningPhysical + movement,
	}
	if b.Current > b.Physical {
		b.Deficit = b.Current - b.Physical
	} else {
		b.Surplus = b.Physical - b.Current
	}
	b.NeedsReorder = b.Current <= item.ReorderLevel

	// Zero or negative balance always reports OUT_OF_STOCK, even when the
	// reorder level is itself <= 0.
	switch {
	case b.Current <= 0:
		b.Status = models.StatusOutOfStock
	case b.NeedsReorder:
		b.Status = models.StatusReorder
	default:
		b.Status = models.StatusAvailable
	}
	return b
}

// CurrentBalance is the book-keeping quantity: opening bin balance plus net
// ledger movement.
func (s *Service) CurrentBalance(itemID uint) (int, error) {
	b, err := s.Balances(itemID)
	if err != nil {
		return 0, err
	}
	return b.Current, nil
}

// PhysicalBalance is the counted-on-floor quantity: opening physical count
// plus net ledger movement.
func (s *Service) PhysicalBalance(itemID uint) (int, error) {
	b, err := s.Balances(itemID)
	if err != nil {
		return 0, err
	}
	return b.Physical, nil
}

// Deficit is the non-negative amount by which the book balance exceeds the
// physical balance.
func (s *Service) Deficit(itemID uint) (int, error) {
	b, err := s.Balances(itemID)
	if err != nil {
		return 0, err
	}
	return b.Deficit, nil
}

// Surplus is the non-negative amount by which the physical balance exceeds
// the book balance.
func (s *Service) Surplus(itemID uint) (int, error) {
	b, err := s.Balances(itemID)
	if err != nil {
		return 0, err
	}
	return b.Surplus, nil
}

// NeedsReorder reports whether the current balance is at or below the reorder
// level. The level is a threshold, not a strictly-below check: equality flags
// the item.
func (s *Service) NeedsReorder(itemID uint) (bool, error) {
	b, err := s.Balances(itemID)
	if err != nil {
		return false, err
	}
	return b.NeedsReorder, nil
}

// Status classifies the item as OUT_OF_STOCK, REORDER or AVAILABLE.
func (s *Service) Status(itemID uint) (models.ReorderStatus, error) {
	b, err := s.Balances(itemID)
	if err != nil {
		return "", err
	}
	return b.Status, nil
}

// AppendEntry validates and persists one movement. The caller supplies an
// unsigned magnitude; the signed quantity is derived here, never trusted from
// the caller. Returns ErrValidation for a negative magnitude or unknown type
// and ErrNotFound when the item does not resolve.
func (s *Service) AppendEntry(itemID uint, e Entry) (*models.StockTransaction, error) {
	if e.Magnitude < 0 {
		return nil, fmt.Errorf("%w: magnitude %d is negative", ErrValidation, e.Magnitude)
	}
	if e.Type != models.TypeReceipt && e.Type != models.TypeIssue {
		return nil, fmt.Errorf("%w: unknown type %q", ErrValidation, e.Type)
	}
	if _, err := s.item(s.DB, itemID); err != nil {
		return nil, err
	}
	return s.AppendSigned(s.DB, itemID, e.Type, SignedQuantity(e.Type, e.Magnitude), e.Date, e.DocNo, e.Department)
}

// AppendSigned records a movement whose sign has already been resolved via
// SignedQuantity. The bulk importer uses it inside its per-sheet transaction;
// db may be a gorm transaction handle, or nil for the service's own DB.
func (s *Service) AppendSigned(db *gorm.DB, itemID uint, t models.TransactionType, qty int, date time.Time, docNo, department string) (*models.StockTransaction, error) {
	if db == nil {
		db = s.DB
	}
	if date.IsZero() {
		date = time.Now()
	}
	txn := &models.StockTransaction{
		ItemID:     itemID,
		Date:       date,
		DocNo:      docNo,
		Type:       t,
		Qty:        qty,
		Department: department,
	}
	if err := db.Create(txn).Error; err != nil {
		return nil, fmt.Errorf("append entry for item %d: %w", itemID, err)
	}
	return txn, nil
}
